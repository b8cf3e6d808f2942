package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"ahab-backend/internal/analysis"
	"ahab-backend/internal/catalog"
	"ahab-backend/internal/charts"
	"ahab-backend/internal/models"
	"ahab-backend/internal/service"
	"ahab-backend/internal/state"

	"github.com/go-chi/chi/v5"
)

// MaxUploadSize is the default cap on a session-creation request body.
const MaxUploadSize = 100 * 1024 * 1024

// multipartMemory is how much of a form is buffered before spilling to disk.
const multipartMemory = 8 * 1024 * 1024

// Limits bounds what a client may ask the generator for.
type Limits struct {
	DefaultSamples int
	MaxSamples     int
	MaxUploadBytes int64 // 0 means MaxUploadSize
}

func (l Limits) uploadBytes() int64 {
	if l.MaxUploadBytes > 0 {
		return l.MaxUploadBytes
	}
	return MaxUploadSize
}

type Handler struct {
	Catalog     *catalog.Catalog
	Generator   *service.CandidateGenerator
	Synthesizer *service.ROCSynthesizer
	Dashboard   *analysis.DashboardService
	Store       *state.Store
	Limits      Limits
	Logger      *slog.Logger

	// applied to session creation only
	createLimit func(http.Handler) http.Handler
}

func NewHandler(cat *catalog.Catalog, gen *service.CandidateGenerator, synth *service.ROCSynthesizer, store *state.Store, limits Limits, logger *slog.Logger) *Handler {
	return &Handler{
		Catalog:     cat,
		Generator:   gen,
		Synthesizer: synth,
		Dashboard:   analysis.NewDashboardService(cat),
		Store:       store,
		Limits:      limits,
		Logger:      logger,
		createLimit: func(next http.Handler) http.Handler { return next },
	}
}

// WithCreateLimit installs a middleware in front of session creation.
func (h *Handler) WithCreateLimit(mw func(http.Handler) http.Handler) *Handler {
	h.createLimit = mw
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)

	// Catalog
	r.Get("/api/models", h.ListModels)
	r.Get("/api/models/compare", h.CompareModels)
	r.Get("/api/models/{model}/roc", h.GetModelROC)
	r.Get("/api/models/{model}/confusion-matrix", h.GetReferenceConfusion)
	r.Get("/api/features", h.GetFeatures)

	// Stateless computations
	r.Get("/api/roc", h.SynthesizeROC)
	r.Post("/api/confusion-matrix", h.DeriveConfusionMatrix)

	// Sessions
	r.With(h.createLimit).Post("/api/sessions", h.CreateSession)
	r.Route("/api/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.DeleteSession)
		r.Get("/candidates", h.GetCandidates)
		r.Get("/candidates/{candidateID}/light-curve", h.GetLightCurve)
		r.Get("/roc/{model}", h.GetSessionROC)
		r.Post("/roc/{model}/select", h.SelectROCPoint)
		r.Get("/dashboard", h.GetDashboard)
	})
}

// ============================================================================
// Health
// ============================================================================

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// ============================================================================
// Catalog
// ============================================================================

// ListModels returns every catalog model in display order
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.Models())
}

// CompareModels compares ?base= against ?other=, defaulting to saved vs best
func (h *Handler) CompareModels(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	if base == "" {
		base = h.Catalog.Saved().Key
	}
	other := r.URL.Query().Get("other")
	if other == "" {
		other = h.Catalog.Best().Key
	}

	cmp, err := h.Dashboard.Compare(base, other)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (h *Handler) GetModelROC(w http.ResponseWriter, r *http.Request) {
	m, err := h.Catalog.Model(chi.URLParam(r, "model"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	points, err := h.Synthesizer.Synthesize(m.AUC)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, models.ROCResponse{Model: m.Key, AUC: m.AUC, Points: points})
}

func (h *Handler) GetReferenceConfusion(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Dashboard.ReferenceConfusion(chi.URLParam(r, "model"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetFeatures returns the ?top= most important features
func (h *Handler) GetFeatures(w http.ResponseWriter, r *http.Request) {
	top := getIntParam(r, "top", analysis.DefaultTopFeatures)
	writeJSON(w, http.StatusOK, h.Dashboard.FeatureRanking(top))
}

// ============================================================================
// Stateless computations
// ============================================================================

// SynthesizeROC builds a curve for an arbitrary ?auc=
func (h *Handler) SynthesizeROC(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("auc")
	if raw == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: auc query parameter is required", service.ErrInvalidArgument))
		return
	}
	auc, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: auc %q is not a number", service.ErrInvalidArgument, raw))
		return
	}

	points, err := h.Synthesizer.Synthesize(auc)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, models.ROCResponse{AUC: auc, Points: points})
}

func (h *Handler) DeriveConfusionMatrix(w http.ResponseWriter, r *http.Request) {
	var req models.ConfusionMatrixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: invalid JSON: %v", service.ErrInvalidArgument, err))
		return
	}

	matrix, err := service.DeriveConfusionMatrix(req.Point, req.TotalNegatives, req.TotalPositives)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, matrix.Summarize())
}

// ============================================================================
// Sessions
// ============================================================================

// CreateSession runs the analyze flow: an optional .csv upload whose content
// is ignored, followed by a freshly generated candidate set.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	filename := ""
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		limit := h.Limits.uploadBytes()
		if r.ContentLength > limit {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", limit))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", limit))
				return
			}
			writeError(w, http.StatusBadRequest, fmt.Errorf("%w: malformed multipart form", service.ErrInvalidArgument))
			return
		}

		file, header, err := r.FormFile("file")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			writeError(w, http.StatusBadRequest, fmt.Errorf("%w: unreadable file field", service.ErrInvalidArgument))
			return
		default:
			file.Close()
			if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
				writeError(w, http.StatusBadRequest, fmt.Errorf("%w: only CSV files are allowed", service.ErrInvalidArgument))
				return
			}
			filename = header.Filename
		}
	}

	count, err := h.sampleCount(r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	candidates, err := h.Generator.Generate(count)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	sess := h.Store.Create(filename, candidates)
	h.Logger.Info("session created", "session", sess.ID, "samples", count, "file", filename)

	writeJSON(w, http.StatusCreated, h.sessionResponse(sess))
}

func (h *Handler) sampleCount(r *http.Request) (int, error) {
	raw := r.FormValue("sample_count")
	if raw == "" {
		return h.Limits.DefaultSamples, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: sample_count %q is not an integer", service.ErrInvalidArgument, raw)
	}
	if n <= 0 || (h.Limits.MaxSamples > 0 && n > h.Limits.MaxSamples) {
		return 0, fmt.Errorf("%w: sample_count must be in [1, %d], got %d", service.ErrInvalidArgument, h.Limits.MaxSamples, n)
	}
	return n, nil
}

func (h *Handler) sessionResponse(sess *state.Session) models.SessionResponse {
	return models.SessionResponse{
		ID:          sess.ID,
		CreatedAt:   sess.CreatedAt,
		Filename:    sess.Filename,
		SampleCount: len(sess.Candidates),
		Stats:       h.Dashboard.Stats(sess.Candidates),
	}
}

// session resolves the {id} URL parameter, writing a 404 when missing
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*state.Session, bool) {
	sess, err := h.Store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return nil, false
	}
	return sess, true
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.sessionResponse(sess))
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCandidates returns the scatter records; ?light_curve=false drops the
// flux sequences to keep the payload small
func (h *Handler) GetCandidates(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	withCurves := true
	if raw := r.URL.Query().Get("light_curve"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("%w: light_curve %q is not a boolean", service.ErrInvalidArgument, raw))
			return
		}
		withCurves = b
	}

	candidates := sess.Candidates
	if !withCurves {
		candidates = make([]models.Candidate, len(sess.Candidates))
		for i, c := range sess.Candidates {
			candidates[i] = c.WithoutLightCurve()
		}
	}

	writeJSON(w, http.StatusOK, models.CandidatesResponse{
		SessionID:  sess.ID,
		Count:      len(candidates),
		Candidates: candidates,
	})
}

func (h *Handler) GetLightCurve(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "candidateID")
	c, found := sess.Candidate(id)
	if !found {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %q", errCandidateNotFound, id))
		return
	}

	writeJSON(w, http.StatusOK, models.LightCurveResponse{
		CandidateID: c.ID,
		Class:       c.Class,
		Confidence:  c.Confidence,
		Points:      c.LightCurve,
	})
}

// sessionCurve returns the memoized curve of a catalog model for the session
func (h *Handler) sessionCurve(sess *state.Session, key string) (models.ModelResult, []models.ROCPoint, error) {
	m, err := h.Catalog.Model(key)
	if err != nil {
		return models.ModelResult{}, nil, err
	}
	points, err := sess.Curve(m.Key, func() ([]models.ROCPoint, error) {
		return h.Synthesizer.Synthesize(m.AUC)
	})
	return m, points, err
}

func (h *Handler) GetSessionROC(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	m, points, err := h.sessionCurve(sess, chi.URLParam(r, "model"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, models.ROCResponse{Model: m.Key, AUC: m.AUC, Points: points})
}

// SelectROCPoint derives the confusion matrix at the clicked curve index
func (h *Handler) SelectROCPoint(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.PointSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: invalid JSON: %v", service.ErrInvalidArgument, err))
		return
	}

	if req.Index == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: index is required", service.ErrInvalidArgument))
		return
	}
	index := *req.Index

	m, points, err := h.sessionCurve(sess, chi.URLParam(r, "model"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if index < 0 || index >= len(points) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: index must be in [0, %d), got %d", service.ErrInvalidArgument, len(points), index))
		return
	}

	resp, err := h.Dashboard.SelectPoint(m.Key, points[index])
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// Dashboard
// ============================================================================

// GetDashboard renders the session as an HTML page. ?candidate= picks the
// light curve, ?model= with ?index= marks a selected threshold.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	view := charts.DashboardView{
		Title:      "AHAB Exoplanet Dashboard",
		Candidates: sess.Candidates,
		Comparison: h.Dashboard.DefaultComparison(),
		Features:   h.Catalog.TopFeatures(analysis.DefaultTopFeatures),
	}

	if id := r.URL.Query().Get("candidate"); id != "" {
		c, found := sess.Candidate(id)
		if !found {
			writeError(w, http.StatusNotFound, fmt.Errorf("%w: %q", errCandidateNotFound, id))
			return
		}
		view.Focus = &c
	}

	for _, m := range h.Catalog.Models() {
		_, points, err := h.sessionCurve(sess, m.Key)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		view.Curves = append(view.Curves, charts.ROCSeries{Model: m.Key, Name: m.Name, AUC: m.AUC, Points: points})
	}

	if key := r.URL.Query().Get("model"); key != "" {
		_, points, err := h.sessionCurve(sess, key)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		index := getIntParam(r, "index", len(points)/2)
		if index < 0 || index >= len(points) {
			writeError(w, http.StatusBadRequest, fmt.Errorf("%w: index must be in [0, %d), got %d", service.ErrInvalidArgument, len(points), index))
			return
		}
		view.Selected = &points[index]
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := charts.RenderDashboard(w, view, charts.DefaultChartConfig()); err != nil {
		h.Logger.Error("dashboard render failed", "session", sess.ID, "error", err)
		http.Error(w, "Failed to render dashboard", http.StatusInternalServerError)
	}
}

// ============================================================================
// Helpers
// ============================================================================

func getIntParam(r *http.Request, name string, defaultVal int) int {
	valStr := r.URL.Query().Get(name)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}
