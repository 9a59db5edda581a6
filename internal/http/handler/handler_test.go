package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auditapi/internal/model"
	"auditapi/internal/service"
	serviceMocks "auditapi/internal/service/mocks"
	"auditapi/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func postJSON(path string, body *bytes.Reader) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "healthy", body["status"])
		assert.NotEmpty(t, body["timestamp"])
		assert.NotEmpty(t, body["endpoints"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.False(t, body.Success)
		assert.Equal(t, "dependency unavailable", body.Error)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateAudit(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuditService)
	app := fiber.New()
	app.Post("/create-audit", CreateAudit(mockSvc))

	t.Run("success", func(t *testing.T) {
		created := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
		mockSvc.On("Create", mock.Anything, service.CreateAuditInput{
			DocumentID: "doc-1",
			Filename:   "report.pdf",
			FileSize:   1024,
		}).Return(&model.Audit{
			ID:         1,
			DocumentID: "doc-1",
			Filename:   "report.pdf",
			Status:     model.StatusPending,
			CreatedAt:  created,
		}, nil).Once()

		body := jsonBody(t, map[string]any{"document_id": "doc-1", "filename": "report.pdf", "file_size": 1024})
		resp, _ := app.Test(postJSON("/create-audit", body))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var res createAuditResponse
		json.NewDecoder(resp.Body).Decode(&res)
		assert.True(t, res.Success)
		assert.Equal(t, int64(1), res.AuditID)
		assert.Equal(t, "doc-1", res.DocumentID)
		assert.Equal(t, model.StatusPending, res.Status)
		mockSvc.AssertExpectations(t)
	})

	t.Run("validation error", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything).
			Return(nil, service.ErrDocumentIDRequired).Once()

		resp, _ := app.Test(postJSON("/create-audit", jsonBody(t, map[string]any{"filename": "report.pdf"})))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.False(t, res.Success)
		assert.Equal(t, "document_id is required", res.Error)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, _ := app.Test(postJSON("/create-audit", bytes.NewReader([]byte("{not json"))))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything).
			Return(nil, errors.New("create audit: db fail")).Once()

		resp, _ := app.Test(postJSON("/create-audit", jsonBody(t, map[string]any{"document_id": "d", "filename": "f"})))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestUpdateAuditResults(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuditService)
	app := fiber.New()
	app.Post("/update-audit", UpdateAuditResults(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("RecordFindings", mock.Anything, int64(1), []service.FindingInput{
			{WCAGID: "1.1.1", Status: model.FindingFail, Severity: model.SeverityCritical, Notes: "missing alt text"},
		}).Return(&model.Audit{ID: 1, Status: model.StatusComplete, TotalIssues: 1, CriticalIssues: 1}, nil).Once()

		body := jsonBody(t, map[string]any{
			"audit_id": 1,
			"findings": []map[string]any{
				{"wcag_id": "1.1.1", "status": "fail", "severity": "critical", "notes": "missing alt text"},
			},
		})
		resp, _ := app.Test(postJSON("/update-audit", body))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res updateAuditResponse
		json.NewDecoder(resp.Body).Decode(&res)
		assert.True(t, res.Success)
		assert.Equal(t, int64(1), res.AuditID)
		assert.Equal(t, 1, res.FindingsCount)
		assert.Equal(t, model.StatusComplete, res.Status)
		mockSvc.AssertExpectations(t)
	})

	t.Run("audit not found", func(t *testing.T) {
		mockSvc.On("RecordFindings", mock.Anything, int64(999), mock.Anything).
			Return(nil, service.ErrAuditNotFound).Once()

		body := jsonBody(t, map[string]any{
			"audit_id": 999,
			"findings": []map[string]any{{"wcag_id": "1.1.1"}},
		})
		resp, _ := app.Test(postJSON("/update-audit", body))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "audit not found", res.Error)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty findings", func(t *testing.T) {
		mockSvc.On("RecordFindings", mock.Anything, int64(1), mock.Anything).
			Return(nil, service.ErrFindingsRequired).Once()

		resp, _ := app.Test(postJSON("/update-audit", jsonBody(t, map[string]any{"audit_id": 1})))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetAudit(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuditService)
	app := fiber.New()
	app.Get("/audit/:id", GetAudit(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, int64(1)).Return(&service.AuditDetail{
			Audit:    &model.Audit{ID: 1, DocumentID: "doc-1", Filename: "report.pdf", Status: model.StatusComplete},
			Findings: []model.Finding{{ID: 1, AuditID: 1, WCAGID: "1.1.1", Status: model.FindingFail}},
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/audit/1", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res struct {
			Success  bool            `json:"success"`
			Audit    model.Audit     `json:"audit"`
			Findings []model.Finding `json:"findings"`
		}
		json.NewDecoder(resp.Body).Decode(&res)
		assert.True(t, res.Success)
		assert.Equal(t, "doc-1", res.Audit.DocumentID)
		assert.Len(t, res.Findings, 1)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, int64(999)).Return(nil, service.ErrAuditNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/audit/999", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.False(t, res.Success)
		assert.Equal(t, "audit not found", res.Error)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/audit/abc", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestListAudits(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuditService)
	app := fiber.New()
	app.Get("/audits", ListAudits(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).Return(&service.AuditListResult{
			Items: []model.Audit{{ID: 1}},
			Total: 1,
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/audits?limit=10&offset=0", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res struct {
			Success bool          `json:"success"`
			Data    []model.Audit `json:"data"`
			Total   int           `json:"total"`
		}
		json.NewDecoder(resp.Body).Decode(&res)
		assert.True(t, res.Success)
		assert.Len(t, res.Data, 1)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/audits?limit=abc", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestPresignHandlers(t *testing.T) {
	mockSvc := new(serviceMocks.MockObjectService)
	app := fiber.New()
	app.Post("/presigned-put", PresignPut(mockSvc))
	app.Post("/presigned-get", PresignGet(mockSvc))

	issuedAt := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	t.Run("presigned-put success", func(t *testing.T) {
		mockSvc.On("PresignUpload", mock.Anything, "docs/report.pdf", 900).Return(&service.PresignedURL{
			URL:       "https://store.example/docs/report.pdf?sig=abc",
			ExpiresIn: 900,
			IssuedAt:  issuedAt,
			ExpiresAt: issuedAt.Add(900 * time.Second),
		}, nil).Once()

		body := jsonBody(t, map[string]any{"key": "docs/report.pdf", "expiresIn": 900})
		resp, _ := app.Test(postJSON("/presigned-put", body))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res presignResponse
		json.NewDecoder(resp.Body).Decode(&res)
		assert.True(t, res.Success)
		assert.Equal(t, 900, res.ExpiresIn)
		assert.True(t, res.ExpiresAt.Equal(issuedAt.Add(900*time.Second)))
		mockSvc.AssertExpectations(t)
	})

	t.Run("presigned-get success", func(t *testing.T) {
		mockSvc.On("PresignDownload", mock.Anything, "k", 60).Return(&service.PresignedURL{
			URL:       "https://store.example/k?sig=def",
			ExpiresIn: 60,
			IssuedAt:  issuedAt,
			ExpiresAt: issuedAt.Add(time.Minute),
		}, nil).Once()

		resp, _ := app.Test(postJSON("/presigned-get", jsonBody(t, map[string]any{"key": "k", "expiresIn": 60})))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res presignResponse
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "https://store.example/k?sig=def", res.PresignedURL)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid expiry", func(t *testing.T) {
		mockSvc.On("PresignUpload", mock.Anything, "k", 0).Return(nil, service.ErrInvalidExpiry).Once()

		resp, _ := app.Test(postJSON("/presigned-put", jsonBody(t, map[string]any{"key": "k"})))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestPutObject(t *testing.T) {
	mockSvc := new(serviceMocks.MockObjectService)
	app := fiber.New()
	app.Post("/put", PutObject(mockSvc))

	t.Run("success round trips base64", func(t *testing.T) {
		content := []byte("hello world")
		uploaded := time.Now().UTC()

		mockSvc.On("Upload", mock.Anything, "docs/a.txt", content, "text/plain").Return(&service.ObjectPayload{
			Key:        "docs/a.txt",
			Size:       int64(len(content)),
			ETag:       "abc123",
			UploadedAt: uploaded,
		}, nil).Once()

		body := jsonBody(t, map[string]any{
			"key":         "docs/a.txt",
			"body":        base64.StdEncoding.EncodeToString(content),
			"contentType": "text/plain",
		})
		resp, _ := app.Test(postJSON("/put", body))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res putObjectResponse
		json.NewDecoder(resp.Body).Decode(&res)
		assert.True(t, res.Success)
		assert.Equal(t, "abc123", res.ETag)
		assert.Equal(t, int64(len(content)), res.Size)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid base64", func(t *testing.T) {
		body := jsonBody(t, map[string]any{"key": "k", "body": "!!not-base64!!"})
		resp, _ := app.Test(postJSON("/put", body))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "body must be base64-encoded", res.Error)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, "k", mock.Anything, mock.Anything).
			Return(nil, errors.New("put object: storage fail")).Once()

		body := jsonBody(t, map[string]any{"key": "k", "body": base64.StdEncoding.EncodeToString([]byte("x"))})
		resp, _ := app.Test(postJSON("/put", body))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetObject(t *testing.T) {
	mockSvc := new(serviceMocks.MockObjectService)
	app := fiber.New()
	app.Get("/get", GetObject(mockSvc))

	t.Run("success", func(t *testing.T) {
		content := []byte("hello world")
		mockSvc.On("Download", mock.Anything, "docs/a.txt").Return(&service.ObjectPayload{
			Key:         "docs/a.txt",
			Data:        content,
			Size:        int64(len(content)),
			ETag:        "abc123",
			ContentType: "text/plain",
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/get?key=docs/a.txt", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res getObjectResponse
		json.NewDecoder(resp.Body).Decode(&res)
		assert.True(t, res.Success)
		decoded, err := base64.StdEncoding.DecodeString(res.Body)
		require.NoError(t, err)
		assert.Equal(t, content, decoded)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing key param", func(t *testing.T) {
		mockSvc.On("Download", mock.Anything, "").Return(nil, service.ErrKeyRequired).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/get", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("object not found", func(t *testing.T) {
		mockSvc.On("Download", mock.Anything, "missing").Return(nil, storage.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/get?key=missing", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "object not found", res.Error)
		mockSvc.AssertExpectations(t)
	})
}

func TestRouting(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})
	app.Use(cors.New(cors.Config{AllowOrigins: "*"}))

	RegisterRoutes(app, db, new(serviceMocks.MockAuditService), new(serviceMocks.MockObjectService))

	t.Run("not found route", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.False(t, res.Success)
		assert.Equal(t, "resource not found", res.Error)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/health", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "method not allowed", res.Error)
	})

	t.Run("preflight carries CORS headers and hits no handler", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/create-audit", nil)
		req.Header.Set("Origin", "https://app.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	})
}
