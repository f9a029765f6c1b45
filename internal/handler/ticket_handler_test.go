package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/murdoch-its/complaints-api/internal/mailer"
	"github.com/murdoch-its/complaints-api/internal/models"
	"github.com/murdoch-its/complaints-api/internal/service"
)

type fakeTicketRepo struct {
	tickets map[string]models.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]models.Ticket)}
}

func (f *fakeTicketRepo) List(ctx context.Context, filter models.TicketFilter) ([]models.Ticket, int, error) {
	list := make([]models.Ticket, 0, len(f.tickets))
	for _, tk := range f.tickets {
		list = append(list, tk)
	}
	return list, len(list), nil
}

func (f *fakeTicketRepo) FindByID(ctx context.Context, id string) (*models.Ticket, error) {
	if tk, ok := f.tickets[id]; ok {
		return &tk, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeTicketRepo) FindByReportName(ctx context.Context, filename string) (*models.Ticket, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *models.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = "t-created"
	}
	f.tickets[ticket.ID] = *ticket
	return nil
}

func (f *fakeTicketRepo) Update(ctx context.Context, ticket *models.Ticket) error {
	f.tickets[ticket.ID] = *ticket
	return nil
}

func (f *fakeTicketRepo) SetReport(ctx context.Context, id string, report models.Report) error {
	return nil
}

func (f *fakeTicketRepo) Delete(ctx context.Context, id string) error {
	delete(f.tickets, id)
	return nil
}

type fakeStorage struct{}

func (fakeStorage) SaveStream(filename string, r io.Reader) (int64, error) {
	return io.Copy(io.Discard, r)
}

func (fakeStorage) Open(filename string) (*os.File, error) {
	return nil, os.ErrNotExist
}

func (fakeStorage) Path(filename string) string {
	return filename
}

type failingNotifier struct {
	calls int
}

func (n *failingNotifier) SendTicketConfirmation(context.Context, mailer.TicketConfirmation) error {
	n.calls++
	return assert.AnError
}

func (n *failingNotifier) SendLoginCode(context.Context, mailer.LoginCode) error {
	n.calls++
	return assert.AnError
}

func newTicketHandlerFixture(notifier mailer.Notifier) (*TicketHandler, *fakeTicketRepo) {
	repo := newFakeTicketRepo()
	svc := service.NewTicketService(repo, fakeStorage{}, notifier, validator.New(), zap.NewNop())
	return NewTicketHandler(svc, service.NewMetricsService(), 0), repo
}

func TestTicketHandlerCreateSucceedsDespiteMailFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	notifier := &failingNotifier{}
	handler, repo := newTicketHandlerFixture(notifier)

	payload, _ := json.Marshal(map[string]interface{}{
		"title":     "Broken projector",
		"type":      "student",
		"category":  "Stu2",
		"content":   "The projector in ECL2 is broken.",
		"firstName": "Sam",
		"email":     "sam@murdoch.edu.au",
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/tickets", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, notifier.calls)
	assert.Len(t, repo.tickets, 1)

	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "Broken projector", envelope.Data["title"])
	assert.Equal(t, "pending", envelope.Data["status"])
}

func TestTicketHandlerCreateInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newTicketHandlerFixture(&failingNotifier{})

	payload, _ := json.Marshal(map[string]interface{}{"title": "no content"})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/tickets", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, repo.tickets)
}

func TestTicketHandlerGetMalformedID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTicketHandlerFixture(&failingNotifier{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/tickets/oops", nil)
	c.Params = gin.Params{{Key: "id", Value: "oops"}}

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTicketHandlerDownloadUnknownReport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTicketHandlerFixture(&failingNotifier{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/tickets/upload/nope.pdf", nil)
	c.Params = gin.Params{{Key: "filename", Value: "nope.pdf"}}

	handler.Download(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTicketHandlerExportCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newTicketHandlerFixture(&failingNotifier{})
	tk := models.Ticket{ID: "t1", Title: "Broken projector", Type: models.ComplainantStudent, Category: "Stu2", Content: "x", Status: "pending", SeverityLevel: "low"}
	repo.tickets["t1"] = tk

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/tickets/export?format=csv", nil)

	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Body.String(), "Broken projector")
}

func TestTicketHandlerExportUnknownFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTicketHandlerFixture(&failingNotifier{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/tickets/export?format=xml", nil)

	handler.Export(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
