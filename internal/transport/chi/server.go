package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/archivist/internal/domain"
	"github.com/kailas-cloud/archivist/internal/domain/catalog"
	"github.com/kailas-cloud/archivist/internal/logger"
	documentuc "github.com/kailas-cloud/archivist/internal/usecase/document"
	healthuc "github.com/kailas-cloud/archivist/internal/usecase/health"
)

// BasePath prefixes every document request route.
const BasePath = "/api/v1/document-request"

// PageCountsHeader reports whether listed page counts are real.
const PageCountsHeader = "X-Page-Counts"

// maxBodyBytes caps filter request bodies.
const maxBodyBytes = 1 << 20

// ErrorCode is a machine-readable error code in API responses.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest            ErrorCode = "bad_request"
	ErrorCodeUnauthorized          ErrorCode = "unauthorized"
	ErrorCodeNotFound              ErrorCode = "not_found"
	ErrorCodeValidationFailed      ErrorCode = "validation_failed"
	ErrorCodeRepositoryUnavailable ErrorCode = "repository_unavailable"
	ErrorCodeDocumentUnavailable   ErrorCode = "document_unavailable"
	ErrorCodeInternalError         ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// HealthResponse is the JSON body of GET /health.
type HealthResponse struct {
	Status healthuc.Status                 `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

// Catalog is the read side of the taxonomy registry.
type Catalog interface {
	Entities() []catalog.Entity
	AttributeTypes() []catalog.Type
	Entity(name string) (catalog.Entity, error)
}

// Documents lists and retrieves archived documents.
type Documents interface {
	FilteredList(ctx context.Context, selection catalog.Category) (documentuc.Listing, error)
	ListAll(ctx context.Context, entityName, categoryName string) (documentuc.Listing, error)
	Retrieve(ctx context.Context, entityName, categoryName string, documentID int) (io.ReadCloser, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the document request API.
type Server struct {
	catalog       Catalog
	documents     Documents
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(cat Catalog, documents Documents, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		catalog:   cat,
		documents: documents,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrRepositoryUnavailable, http.StatusBadGateway, ErrorCodeRepositoryUnavailable),
		sentinelHandler(domain.ErrDocumentUnavailable, http.StatusBadGateway, ErrorCodeDocumentUnavailable),
	}
	return s
}

// Mount registers every route on r.
func (s *Server) Mount(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route(BasePath, func(r chi.Router) {
		r.Get("/entities", s.ListEntities)
		r.Get("/attribute-types", s.ListAttributeTypes)
		r.Get("/document-categories/{entityName}", s.ListDocumentCategories)
		r.Post("/filtered-document-list", s.FilteredDocumentList)
		r.Get("/document-list/{entityName}/{categoryName}", s.ListDocuments)
		r.Get("/get-document/{entityName}/{categoryName}/{documentId}", s.GetDocument)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})
}

// ListEntities handles GET /entities.
func (s *Server) ListEntities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Entities())
}

// ListAttributeTypes handles GET /attribute-types.
func (s *Server) ListAttributeTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.AttributeTypes())
}

// ListDocumentCategories handles GET /document-categories/{entityName}.
func (s *Server) ListDocumentCategories(w http.ResponseWriter, r *http.Request) {
	var entityName string
	if !s.bindPath(w, r, "entityName", &entityName) {
		return
	}

	entity, err := s.catalog.Entity(entityName)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entity.Categories)
}

// FilteredDocumentList handles POST /filtered-document-list.
func (s *Server) FilteredDocumentList(w http.ResponseWriter, r *http.Request) {
	var selection catalog.Category
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&selection); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if selection.ID <= 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "Category id is required")
		return
	}

	listing, err := s.documents.FilteredList(r.Context(), selection)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeListing(w, listing)
}

// ListDocuments handles GET /document-list/{entityName}/{categoryName}.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	var entityName, categoryName string
	if !s.bindPath(w, r, "entityName", &entityName) || !s.bindPath(w, r, "categoryName", &categoryName) {
		return
	}

	listing, err := s.documents.ListAll(r.Context(), entityName, categoryName)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeListing(w, listing)
}

// GetDocument handles GET /get-document/{entityName}/{categoryName}/{documentId}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	var (
		entityName, categoryName string
		documentID               int
	)
	if !s.bindPath(w, r, "entityName", &entityName) ||
		!s.bindPath(w, r, "categoryName", &categoryName) ||
		!s.bindPath(w, r, "documentId", &documentID) {
		return
	}

	body, err := s.documents.Retrieve(r.Context(), entityName, categoryName, documentID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"%d.pdf\"", documentID))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		logger.FromContextOr(r.Context(), s.logger).Warn("document stream interrupted",
			zap.Int("document_id", documentID),
			zap.Error(err))
	}
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: report.Status,
		Checks: report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// bindPath binds a required path parameter into dest, writing a 400 on failure.
func (s *Server) bindPath(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest,
			fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
		return false
	}
	return true
}

func writeListing(w http.ResponseWriter, l documentuc.Listing) {
	w.Header().Set(PageCountsHeader, string(l.PageCounts))
	writeJSON(w, http.StatusOK, l.Result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidRequest,
		domain.ErrRepositoryUnavailable,
		domain.ErrDocumentUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
