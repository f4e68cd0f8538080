package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	ledgerapp "github.com/tradebooks/backend/internal/application/ledger"
	"github.com/tradebooks/backend/internal/infrastructure/export"
	"github.com/tradebooks/backend/internal/infrastructure/lock"
	"github.com/tradebooks/backend/internal/infrastructure/persistence"
	"github.com/tradebooks/backend/internal/infrastructure/persistence/models"
	"github.com/tradebooks/backend/internal/infrastructure/storage"
	"github.com/tradebooks/backend/internal/interfaces/http/dto"
	"github.com/tradebooks/backend/internal/interfaces/http/middleware"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testToday = time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

type testServer struct {
	engine  *gin.Engine
	archive *storage.MemoryReportArchive
}

// newTestServer wires the real services over an in-memory database
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.PartyModel{}, &models.TransactionModel{}))

	partyRepo := persistence.NewGormPartyRepository(db)
	txRepo := persistence.NewGormTransactionRepository(db)
	archive := storage.NewMemoryReportArchive("reports")

	parties := NewPartyHandler(ledgerapp.NewPartyService(partyRepo, "PK"))
	entries := NewEntryHandler(ledgerapp.NewEntryService(partyRepo, persistence.NewGormUnitOfWork(db), lock.NewMemoryLocker()), 50)
	entries.now = func() time.Time { return testToday }
	reports := NewReportHandler(ledgerapp.NewReportService(partyRepo, txRepo,
		ledgerapp.WithExporter(export.NewExcelExporter()),
		ledgerapp.WithArchive(archive),
		ledgerapp.WithClock(func() time.Time { return testToday }),
	))
	health := NewHealthHandler(&persistence.Database{DB: db}, "test")

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")
	api.GET("/health", health.Health)
	api.POST("/parties", parties.Create)
	api.GET("/parties", parties.List)
	api.GET("/parties/:id", parties.GetByID)
	api.PUT("/parties/:id/terms", parties.UpdateTerms)
	api.POST("/parties/:id/archive", parties.Archive)
	api.POST("/parties/:id/transactions", entries.Record)
	api.POST("/parties/:id/transactions/import", entries.Import)
	api.POST("/parties/:id/credit-check", entries.CreditCheck)
	api.GET("/parties/:id/ledger", reports.Statement)
	api.POST("/transactions/:id/settle", entries.Settle)
	api.GET("/reports/aging", reports.Aging)
	api.GET("/reports/aging/export", reports.ExportAging)
	api.POST("/reports/totals", reports.Totals)

	return &testServer{engine: engine, archive: archive}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.serve(req)
}

func (s *testServer) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// createParty posts a party and returns its ID
func (s *testServer) createParty(t *testing.T, body map[string]any) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/parties", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return dataMap(t, w)["id"].(string)
}

func (s *testServer) recordEntry(t *testing.T, partyID string, body map[string]any) map[string]any {
	t.Helper()
	w := s.do(t, http.MethodPost, "/parties/"+partyID+"/transactions", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return dataMap(t, w)
}

func creditCustomer(code, limit string) map[string]any {
	return map[string]any{
		"code":              code,
		"name":              "Customer " + code,
		"type":              "CUSTOMER",
		"payment_terms":     "CREDIT",
		"credit_days_limit": 30,
		"credit_cash_limit": limit,
	}
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func dataMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	resp := decodeResponse(t, w)
	require.True(t, resp.Success, w.Body.String())
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is not an object: %s", w.Body.String())
	return data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeResponse(t, w)
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}

// dec reads a decimal that the API rendered as a JSON string
func dec(t *testing.T, v any) decimal.Decimal {
	t.Helper()
	s, ok := v.(string)
	require.True(t, ok, "expected decimal string, got %T", v)
	return decimal.RequireFromString(s)
}
