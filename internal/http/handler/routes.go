package handler

import (
	"context"
	"database/sql"
	"encoding/base64"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"auditapi/internal/model"
	"auditapi/internal/service"
)

// endpoints is what /health advertises.
var endpoints = []string{
	"POST /create-audit",
	"POST /update-audit",
	"POST /update-audit-results",
	"GET /audit/:id",
	"GET /audits",
	"POST /presigned-put",
	"POST /presigned-get",
	"POST /put",
	"GET /get",
	"GET /health",
}

type createAuditRequest struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	FileSize   int64  `json:"file_size"`
	FileType   string `json:"file_type"`
}

type createAuditResponse struct {
	Success    bool              `json:"success"`
	AuditID    int64             `json:"audit_id"`
	DocumentID string            `json:"document_id"`
	Status     model.AuditStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
}

type findingPayload struct {
	WCAGID   string `json:"wcag_id"`
	Status   string `json:"status"`
	Severity string `json:"severity"`
	Notes    string `json:"notes"`
}

type updateAuditRequest struct {
	AuditID  int64            `json:"audit_id"`
	Findings []findingPayload `json:"findings"`
}

type updateAuditResponse struct {
	Success       bool              `json:"success"`
	AuditID       int64             `json:"audit_id"`
	FindingsCount int               `json:"findings_count"`
	Status        model.AuditStatus `json:"status"`
}

type presignRequest struct {
	Key       string `json:"key"`
	ExpiresIn int    `json:"expiresIn"`
}

type presignResponse struct {
	Success      bool      `json:"success"`
	PresignedURL string    `json:"presignedUrl"`
	ExpiresIn    int       `json:"expiresIn"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type putObjectRequest struct {
	Key         string `json:"key"`
	Body        string `json:"body"`
	ContentType string `json:"contentType"`
}

type putObjectResponse struct {
	Success    bool      `json:"success"`
	Key        string    `json:"key"`
	ETag       string    `json:"etag"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type getObjectResponse struct {
	Success     bool      `json:"success"`
	Key         string    `json:"key"`
	Size        int64     `json:"size"`
	ETag        string    `json:"etag"`
	ContentType string    `json:"contentType"`
	Body        string    `json:"body"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// RegisterRoutes attaches the API's HTTP routes to the provided Fiber app.
// Handlers are pure translations: validate the payload, call exactly one
// service operation, shape the response envelope.
func RegisterRoutes(app *fiber.App, db *sql.DB, auditSvc service.AuditService, objSvc service.ObjectService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/create-audit", CreateAudit(auditSvc))
	app.Post("/update-audit", UpdateAuditResults(auditSvc))
	app.Post("/update-audit-results", UpdateAuditResults(auditSvc))
	app.Get("/audit/:id", GetAudit(auditSvc))
	app.Get("/audits", ListAudits(auditSvc))

	app.Post("/presigned-put", PresignPut(objSvc))
	app.Post("/presigned-get", PresignGet(objSvc))
	app.Post("/put", PutObject(objSvc))
	app.Put("/put", PutObject(objSvc))
	app.Get("/get", GetObject(objSvc))
}

// HealthCheck reports readiness: it pings the database and lists the API surface.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "dependency unavailable")
		}
		return c.JSON(fiber.Map{
			"success":   true,
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"endpoints": endpoints,
		})
	}
}

// LivenessProbe is a bare liveness check with no dependency probing.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// CreateAudit registers a new audit in pending state.
func CreateAudit(svc service.AuditService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createAuditRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid request body")
		}

		a, err := svc.Create(c.UserContext(), service.CreateAuditInput{
			DocumentID: req.DocumentID,
			Filename:   req.Filename,
			FileSize:   req.FileSize,
			FileType:   req.FileType,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(createAuditResponse{
			Success:    true,
			AuditID:    a.ID,
			DocumentID: a.DocumentID,
			Status:     a.Status,
			CreatedAt:  a.CreatedAt,
		})
	}
}

// UpdateAuditResults records a batch of findings and advances the audit lifecycle.
func UpdateAuditResults(svc service.AuditService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateAuditRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid request body")
		}

		findings := make([]service.FindingInput, 0, len(req.Findings))
		for _, f := range req.Findings {
			findings = append(findings, service.FindingInput{
				WCAGID:   f.WCAGID,
				Status:   model.FindingStatus(f.Status),
				Severity: model.Severity(f.Severity),
				Notes:    f.Notes,
			})
		}

		a, err := svc.RecordFindings(c.UserContext(), req.AuditID, findings)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(updateAuditResponse{
			Success:       true,
			AuditID:       a.ID,
			FindingsCount: len(findings),
			Status:        a.Status,
		})
	}
}

// GetAudit returns one audit with all of its findings.
func GetAudit(svc service.AuditService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid audit id")
		}

		d, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":  true,
			"audit":    d.Audit,
			"findings": d.Findings,
		})
	}
}

// ListAudits returns audits with limit/offset pagination.
func ListAudits(svc service.AuditService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    res.Items,
			"total":   res.Total,
		})
	}
}

// PresignPut issues a time-limited upload URL for a key.
func PresignPut(svc service.ObjectService) fiber.Handler {
	return presignHandler(func(c *fiber.Ctx, req presignRequest) (*service.PresignedURL, error) {
		return svc.PresignUpload(c.UserContext(), req.Key, req.ExpiresIn)
	})
}

// PresignGet issues a time-limited download URL for a key.
func PresignGet(svc service.ObjectService) fiber.Handler {
	return presignHandler(func(c *fiber.Ctx, req presignRequest) (*service.PresignedURL, error) {
		return svc.PresignDownload(c.UserContext(), req.Key, req.ExpiresIn)
	})
}

func presignHandler(issue func(*fiber.Ctx, presignRequest) (*service.PresignedURL, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req presignRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid request body")
		}

		p, err := issue(c, req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(presignResponse{
			Success:      true,
			PresignedURL: p.URL,
			ExpiresIn:    p.ExpiresIn,
			ExpiresAt:    p.ExpiresAt,
		})
	}
}

// PutObject stores a base64-encoded payload under a key.
func PutObject(svc service.ObjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req putObjectRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid request body")
		}
		data, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "body must be base64-encoded")
		}

		p, err := svc.Upload(c.UserContext(), req.Key, data, req.ContentType)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(putObjectResponse{
			Success:    true,
			Key:        p.Key,
			ETag:       p.ETag,
			Size:       p.Size,
			UploadedAt: p.UploadedAt,
		})
	}
}

// GetObject returns an object's content base64-encoded along with its metadata.
func GetObject(svc service.ObjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.Download(c.UserContext(), c.Query("key"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(getObjectResponse{
			Success:     true,
			Key:         p.Key,
			Size:        p.Size,
			ETag:        p.ETag,
			ContentType: p.ContentType,
			Body:        base64.StdEncoding.EncodeToString(p.Data),
			UploadedAt:  p.UploadedAt,
		})
	}
}
