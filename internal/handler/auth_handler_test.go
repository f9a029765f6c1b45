package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/murdoch-its/complaints-api/internal/mailer"
	"github.com/murdoch-its/complaints-api/internal/models"
	"github.com/murdoch-its/complaints-api/internal/otp"
	"github.com/murdoch-its/complaints-api/internal/service"
	"github.com/murdoch-its/complaints-api/pkg/config"
)

type fakeAccountRepo struct {
	accounts map[string]models.Account
}

func (f *fakeAccountRepo) List(ctx context.Context, filter models.AccountFilter) ([]models.Account, int, error) {
	return nil, 0, nil
}

func (f *fakeAccountRepo) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if a, ok := f.accounts[id]; ok {
		return &a, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAccountRepo) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	for _, a := range f.accounts {
		if a.Email == email {
			account := a
			return &account, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAccountRepo) Create(ctx context.Context, account *models.Account) error { return nil }
func (f *fakeAccountRepo) Update(ctx context.Context, account *models.Account) error { return nil }
func (f *fakeAccountRepo) Delete(ctx context.Context, id string) error               { return nil }

type recordingNotifier struct {
	codes []mailer.LoginCode
}

func (n *recordingNotifier) SendTicketConfirmation(context.Context, mailer.TicketConfirmation) error {
	return nil
}

func (n *recordingNotifier) SendLoginCode(_ context.Context, msg mailer.LoginCode) error {
	n.codes = append(n.codes, msg)
	return nil
}

func newAuthHandlerFixture() (*AuthHandler, *recordingNotifier, otp.Store) {
	repo := &fakeAccountRepo{accounts: map[string]models.Account{
		"a1": {ID: "a1", Name: "Jane", Email: "jane@murdoch.edu.au", Role: models.RoleAdmin},
	}}
	notifier := &recordingNotifier{}
	codes := otp.NewMemoryStore(5 * time.Minute)
	cfg := config.JWTConfig{Secret: "test_secret", Expiration: time.Hour, Issuer: "complaints-api"}
	svc := service.NewAuthService(repo, codes, notifier, cfg, validator.New(), zap.NewNop())
	return NewAuthHandler(svc, service.NewMetricsService()), notifier, codes
}

func postJSON(t *testing.T, handler gin.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	handler(c)
	return rec
}

func TestAuthHandlerLoginUnknownEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, notifier, _ := newAuthHandlerFixture()

	rec := postJSON(t, handler.Login, "/auth/login", map[string]string{"email": "ghost@murdoch.edu.au"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, notifier.codes)
}

func TestAuthHandlerLoginMailsCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, notifier, _ := newAuthHandlerFixture()

	rec := postJSON(t, handler.Login, "/auth/login", map[string]string{"email": "jane@murdoch.edu.au"})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, notifier.codes, 1)
	assert.Equal(t, "jane@murdoch.edu.au", notifier.codes[0].Email)
	assert.Len(t, notifier.codes[0].Code, 4)

	var envelope struct {
		Data bool `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data)
}

func TestAuthHandlerConfirmIssuesToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, codes := newAuthHandlerFixture()
	require.NoError(t, codes.Put(context.Background(), "jane@murdoch.edu.au", "0042"))

	rec := postJSON(t, handler.Confirm, "/auth/login/confirm", map[string]string{
		"email": "jane@murdoch.edu.au",
		"otp":   "0042",
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data models.ConfirmResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Flag)
	assert.Equal(t, models.RoleAdmin, envelope.Data.Role)
	assert.NotEmpty(t, envelope.Data.Token)
}

func TestAuthHandlerConfirmWrongCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, codes := newAuthHandlerFixture()
	require.NoError(t, codes.Put(context.Background(), "jane@murdoch.edu.au", "0042"))

	rec := postJSON(t, handler.Confirm, "/auth/login/confirm", map[string]string{
		"email": "jane@murdoch.edu.au",
		"otp":   "9999",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
