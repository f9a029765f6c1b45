package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/murdoch-its/complaints-api/internal/mailer"
	"github.com/murdoch-its/complaints-api/internal/models"
	"github.com/murdoch-its/complaints-api/internal/otp"
	"github.com/murdoch-its/complaints-api/pkg/config"
	appErrors "github.com/murdoch-its/complaints-api/pkg/errors"
)

type stubNotifier struct {
	loginCodes    []mailer.LoginCode
	confirmations []mailer.TicketConfirmation
	err           error
}

func (s *stubNotifier) SendTicketConfirmation(_ context.Context, msg mailer.TicketConfirmation) error {
	s.confirmations = append(s.confirmations, msg)
	return s.err
}

func (s *stubNotifier) SendLoginCode(_ context.Context, msg mailer.LoginCode) error {
	s.loginCodes = append(s.loginCodes, msg)
	return s.err
}

func newAuthFixture(t *testing.T) (*AuthService, *mockAccountRepo, *stubNotifier, otp.Store) {
	t.Helper()
	repo := newMockAccountRepo()
	notifier := &stubNotifier{}
	codes := otp.NewMemoryStore(5 * time.Minute)
	cfg := config.JWTConfig{Secret: "test_secret", Expiration: time.Hour, Issuer: "complaints-api"}
	svc := NewAuthService(repo, codes, notifier, cfg, validator.New(), zap.NewNop())
	return svc, repo, notifier, codes
}

func TestAuthRequestCodeUnknownEmail(t *testing.T) {
	svc, _, notifier, _ := newAuthFixture(t)

	err := svc.RequestCode(context.Background(), models.LoginRequest{Email: "ghost@murdoch.edu.au"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthenticated.Status, appErrors.FromError(err).Status)
	assert.Empty(t, notifier.loginCodes)
}

func TestAuthRequestCodeMailsGeneratedCode(t *testing.T) {
	svc, repo, notifier, codes := newAuthFixture(t)
	repo.add(models.Account{ID: "a1", Name: "Jane", Email: "jane@murdoch.edu.au", Role: models.RoleAdmin})
	svc.generate = func() (string, error) { return "0042", nil }

	require.NoError(t, svc.RequestCode(context.Background(), models.LoginRequest{Email: "  Jane@Murdoch.edu.au "}))

	require.Len(t, notifier.loginCodes, 1)
	assert.Equal(t, "jane@murdoch.edu.au", notifier.loginCodes[0].Email)
	assert.Equal(t, "0042", notifier.loginCodes[0].Code)

	ok, err := codes.Consume(context.Background(), "jane@murdoch.edu.au", "0042")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthGeneratedCodesAreFourDigits(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{4}$`)
	for i := 0; i < 256; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestAuthConfirmCodeExactMatchOnly(t *testing.T) {
	svc, repo, _, codes := newAuthFixture(t)
	repo.add(models.Account{ID: "a1", Name: "Jane", Email: "jane@murdoch.edu.au", Role: models.RoleAdmin})
	require.NoError(t, codes.Put(context.Background(), "jane@murdoch.edu.au", "0042"))

	_, err := svc.ConfirmCode(context.Background(), models.ConfirmRequest{Email: "jane@murdoch.edu.au", OTP: "42"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthenticated.Status, appErrors.FromError(err).Status)

	// the failed attempt must not burn the outstanding code
	res, err := svc.ConfirmCode(context.Background(), models.ConfirmRequest{Email: "jane@murdoch.edu.au", OTP: "0042"})
	require.NoError(t, err)
	assert.True(t, res.Flag)
}

func TestAuthConfirmCodeSingleUse(t *testing.T) {
	svc, repo, _, codes := newAuthFixture(t)
	repo.add(models.Account{ID: "a1", Name: "Jane", Email: "jane@murdoch.edu.au", Role: models.RoleAdmin})
	require.NoError(t, codes.Put(context.Background(), "jane@murdoch.edu.au", "7777"))

	_, err := svc.ConfirmCode(context.Background(), models.ConfirmRequest{Email: "jane@murdoch.edu.au", OTP: "7777"})
	require.NoError(t, err)

	_, err = svc.ConfirmCode(context.Background(), models.ConfirmRequest{Email: "jane@murdoch.edu.au", OTP: "7777"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthenticated.Status, appErrors.FromError(err).Status)
}

func TestAuthSecondRequestInvalidatesFirstCode(t *testing.T) {
	svc, repo, _, _ := newAuthFixture(t)
	repo.add(models.Account{ID: "a1", Name: "Jane", Email: "jane@murdoch.edu.au", Role: models.RoleAdmin})

	codesIssued := []string{"1111", "2222"}
	svc.generate = func() (string, error) {
		code := codesIssued[0]
		codesIssued = codesIssued[1:]
		return code, nil
	}

	require.NoError(t, svc.RequestCode(context.Background(), models.LoginRequest{Email: "jane@murdoch.edu.au"}))
	require.NoError(t, svc.RequestCode(context.Background(), models.LoginRequest{Email: "jane@murdoch.edu.au"}))

	_, err := svc.ConfirmCode(context.Background(), models.ConfirmRequest{Email: "jane@murdoch.edu.au", OTP: "1111"})
	require.Error(t, err)

	res, err := svc.ConfirmCode(context.Background(), models.ConfirmRequest{Email: "jane@murdoch.edu.au", OTP: "2222"})
	require.NoError(t, err)
	assert.True(t, res.Flag)
}

func TestAuthConfirmCodeIssuesValidToken(t *testing.T) {
	svc, repo, _, codes := newAuthFixture(t)
	repo.add(models.Account{ID: "a1", Name: "Jane", Email: "jane@murdoch.edu.au", Role: models.RoleInvestigator})
	require.NoError(t, codes.Put(context.Background(), "jane@murdoch.edu.au", "0042"))

	res, err := svc.ConfirmCode(context.Background(), models.ConfirmRequest{Email: "jane@murdoch.edu.au", OTP: "0042"})
	require.NoError(t, err)
	assert.True(t, res.Flag)
	assert.Equal(t, models.RoleInvestigator, res.Role)
	assert.Equal(t, int64(3600), res.ExpiresIn)

	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "a1", claims.AccountID)
	assert.Equal(t, "jane@murdoch.edu.au", claims.Email)
	assert.Equal(t, models.RoleInvestigator, claims.Role)
}

func TestAuthValidateTokenRejectsWrongSecret(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, models.JWTClaims{
		AccountID: "a1",
		Email:     "jane@murdoch.edu.au",
		Role:      models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("other_secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthenticated.Status, appErrors.FromError(err).Status)
}
