package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/docmind/internal/application/analysis"
	appdocs "github.com/bryanwahyu/docmind/internal/application/documents"
	"github.com/bryanwahyu/docmind/internal/application/magic"
	"github.com/bryanwahyu/docmind/internal/domain/ai"
	"github.com/bryanwahyu/docmind/internal/domain/documents"
	"github.com/bryanwahyu/docmind/internal/domain/results"
	"github.com/bryanwahyu/docmind/internal/middleware"
	"github.com/bryanwahyu/docmind/internal/pkg/logger"
)

// Options tunes the transport. Zero values select the defaults.
type Options struct {
	AllowedOrigins []string
	RateEvery      time.Duration
	RateBurst      int
	MaxConcurrent  int64
	MaxUploadBytes int64
	HealthCheckers map[string]middleware.HealthChecker
}

type Router struct {
	docsSvc     *appdocs.Service
	analysisSvc *analysis.Service
	magicSvc    *magic.Service
	log         *logger.Logger
	maxUpload   int64
}

func NewRouter(docsSvc *appdocs.Service, analysisSvc *analysis.Service, magicSvc *magic.Service, log *logger.Logger, opts Options) http.Handler {
	r := &Router{
		docsSvc:     docsSvc,
		analysisSvc: analysisSvc,
		magicSvc:    magicSvc,
		log:         logger.OrNop(log),
		maxUpload:   opts.MaxUploadBytes,
	}
	if r.maxUpload <= 0 {
		r.maxUpload = 20 << 20
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mux := chi.NewRouter()
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	mux.Use(middleware.Logging(r.log))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(opts.RateEvery, opts.RateBurst))

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/healthz", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/metrics", middleware.MetricsHandler)

	llmLimit := middleware.ConcurrencyLimit(opts.MaxConcurrent)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Get("/analysis-types", r.wrap(r.handleAnalysisTypes))
		rt.Post("/documents", r.wrap(r.handleUpload))
		rt.Get("/documents", r.wrap(r.handleListDocuments))
		rt.Route("/documents/{id}", func(doc chi.Router) {
			doc.Get("/", r.wrap(r.handleGetDocument))
			doc.Delete("/", r.wrap(r.handleDeleteDocument))
			doc.Get("/analyses", r.wrap(r.handleListResults))
			doc.With(llmLimit).Post("/analyses", r.wrap(r.handleRunAnalysis))
			doc.With(llmLimit).Post("/magic", r.wrap(r.handleMagic))
		})
	})

	return mux
}

// badRequest marks malformed input.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func badRequestf(format string, args ...any) error {
	return badRequest{msg: fmt.Sprintf(format, args...)}
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		code := statusFor(err)
		if code >= 500 {
			r.log.Error("request failed", "path", req.URL.Path, "status", code, "error", err)
		}
		writeJSON(w, code, map[string]string{"error": ai.PublicMessage(err)})
	}
}

func statusFor(err error) int {
	var br badRequest
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &br),
		errors.Is(err, ai.ErrUnknownAnalysisType),
		errors.Is(err, ai.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ai.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ai.ErrSourceNotFound):
		return http.StatusGone
	case errors.Is(err, ai.ErrPromptAssetMissing), errors.Is(err, ai.ErrMissingCredential):
		return http.StatusServiceUnavailable
	case errors.Is(err, ai.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case ai.IsBackendError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

type documentResponse struct {
	ID        documents.DocumentID `json:"id"`
	UserID    string               `json:"user_id"`
	Filename  string               `json:"filename"`
	CreatedAt time.Time            `json:"created_at"`
}

func toDocument(d *documents.Document) documentResponse {
	return documentResponse{ID: d.ID, UserID: d.UserID, Filename: d.Filename, CreatedAt: d.CreatedAt}
}

type resultResponse struct {
	ResultID     results.ResultID     `json:"result_id"`
	DocumentID   string               `json:"document_id"`
	AnalysisType results.AnalysisType `json:"analysis_type"`
	Content      string               `json:"content"`
	CreatedAt    time.Time            `json:"created_at"`
}

func toResult(res *results.Result) resultResponse {
	return resultResponse{
		ResultID:     res.ID,
		DocumentID:   res.DocumentID,
		AnalysisType: res.AnalysisType,
		Content:      res.Content,
		CreatedAt:    res.CreatedAt,
	}
}

func documentID(req *http.Request) (string, error) {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateDocumentID(id); err != nil {
		return "", badRequest{msg: err.Error()}
	}
	return id, nil
}

// GET /v1/analysis-types
func (r *Router) handleAnalysisTypes(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string][]string{"analysis_types": r.analysisSvc.AnalysisTypes()})
}

// POST /v1/documents (multipart: file, user_id)
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return err
		}
		return badRequestf("invalid multipart form: %v", err)
	}
	defer req.MultipartForm.RemoveAll()

	userID := middleware.SanitizeString(req.FormValue("user_id"))
	if err := middleware.ValidateUserID(userID); err != nil {
		return badRequest{msg: err.Error()}
	}
	file, header, err := req.FormFile("file")
	if err != nil {
		return badRequestf("file is required")
	}
	defer file.Close()

	doc, err := r.docsSvc.Upload(req.Context(), userID, header.Filename, file, header.Size)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, toDocument(doc))
}

// GET /v1/documents?user_id=&limit=
func (r *Router) handleListDocuments(w http.ResponseWriter, req *http.Request) error {
	userID := req.URL.Query().Get("user_id")
	if err := middleware.ValidateUserID(userID); err != nil {
		return badRequest{msg: err.Error()}
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.docsSvc.ListByUser(req.Context(), userID, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	out := make([]documentResponse, 0, len(list))
	for _, d := range list {
		out = append(out, toDocument(d))
	}
	return writeJSON(w, http.StatusOK, out)
}

// GET /v1/documents/{id}
func (r *Router) handleGetDocument(w http.ResponseWriter, req *http.Request) error {
	id, err := documentID(req)
	if err != nil {
		return err
	}
	doc, err := r.docsSvc.Get(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, toDocument(doc))
}

// DELETE /v1/documents/{id}
func (r *Router) handleDeleteDocument(w http.ResponseWriter, req *http.Request) error {
	id, err := documentID(req)
	if err != nil {
		return err
	}
	if err := r.docsSvc.Delete(req.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// POST /v1/documents/{id}/analyses
// Body: {"analysis_type": "summary"}
func (r *Router) handleRunAnalysis(w http.ResponseWriter, req *http.Request) error {
	id, err := documentID(req)
	if err != nil {
		return err
	}
	var body struct {
		AnalysisType string `json:"analysis_type"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequestf("invalid JSON body: %v", err)
	}
	analysisType := strings.TrimSpace(body.AnalysisType)
	if err := middleware.ValidateAnalysisType(analysisType); err != nil {
		return badRequest{msg: err.Error()}
	}

	res, err := r.analysisSvc.Run(req.Context(), id, analysisType)
	middleware.RecordAnalysis(err)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, toResult(res))
}

// GET /v1/documents/{id}/analyses
func (r *Router) handleListResults(w http.ResponseWriter, req *http.Request) error {
	id, err := documentID(req)
	if err != nil {
		return err
	}
	list, err := r.analysisSvc.ListResults(req.Context(), id)
	if err != nil {
		return err
	}
	out := make([]resultResponse, 0, len(list))
	for _, res := range list {
		out = append(out, toResult(res))
	}
	return writeJSON(w, http.StatusOK, out)
}

// POST /v1/documents/{id}/magic
// Body (optional): {"audience": "legal"}
func (r *Router) handleMagic(w http.ResponseWriter, req *http.Request) error {
	id, err := documentID(req)
	if err != nil {
		return err
	}
	var body struct {
		Audience string `json:"audience"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return badRequestf("invalid JSON body: %v", err)
	}
	audience, err := middleware.CleanAudience(body.Audience)
	if err != nil {
		return badRequest{msg: err.Error()}
	}

	content, err := r.magicSvc.Synthesize(req.Context(), id, audience)
	middleware.RecordReport(err)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"content": content})
}
