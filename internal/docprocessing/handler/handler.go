package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/domain"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/service"
	"github.com/fleetdocs/fleetdocs-backend/pkg/errors"
	"github.com/fleetdocs/fleetdocs-backend/pkg/httputil"
	"github.com/fleetdocs/fleetdocs-backend/pkg/logger"
)

const maxRequestSize = 10 << 20 // 10MB of OCR text is already generous

// Handler handles HTTP requests for document extraction and reconciliation
type Handler struct {
	service *service.Service
	log     *logger.Logger
}

// NewHandler creates a new document processing handler
func NewHandler(svc *service.Service, log *logger.Logger) *Handler {
	return &Handler{
		service: svc,
		log:     log,
	}
}

// Routes mounts the document processing endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/extract", h.Extract)
	r.Get("/extract/{jobId}", h.GetResult)
	r.Post("/reconcile", h.Reconcile)
	r.Get("/review", h.ListNeedingReview)
	return r
}

// ExtractRequest is the payload for POST /documents/extract
type ExtractRequest struct {
	Text         string `json:"text" validate:"required"`
	FileName     string `json:"file_name" validate:"required,max=255"`
	DocumentType string `json:"document_type" validate:"omitempty,oneof=registration insurance medical_certificate cdl"`
}

// Extract handles POST /documents/extract. It accepts the OCR text of one
// document and starts an asynchronous extraction job.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)

	var req ExtractRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	job, err := h.service.StartExtraction(r.Context(), req.Text, req.FileName, domain.DocumentType(req.DocumentType))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Accepted(w, job)
}

// GetResult handles GET /documents/extract/{jobId}.
// Returns the extraction job status and results.
func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	if jobID == "" {
		httputil.Error(w, errors.BadRequest("missing jobId parameter"))
		return
	}

	job, err := h.service.GetJob(jobID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, job)
}

// ReconcileRequest is the payload for POST /documents/reconcile. Records can
// be referenced by extraction job ID, passed inline, or both.
type ReconcileRequest struct {
	JobIDs   []string                         `json:"job_ids"`
	Vehicles []*domain.ExtractedVehicleRecord `json:"vehicles"`
	Drivers  []*domain.ExtractedDriverRecord  `json:"drivers"`
}

// Reconcile handles POST /documents/reconcile
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)

	var req ReconcileRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.ReconcileBatch(r.Context(), req.JobIDs, req.Vehicles, req.Drivers)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// ListNeedingReview handles GET /documents/review
func (h *Handler) ListNeedingReview(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	vehicles, err := h.service.VehiclesNeedingReview(r.Context(), limit, offset)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, vehicles)
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
