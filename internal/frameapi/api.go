package frameapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/defectscope/internal/defect"
	"github.com/linnemanlabs/defectscope/internal/frame"
)

// FrameService defines the business operations frameapi needs.
type FrameService interface {
	Classify(ctx context.Context, f *frame.Frame) (*frame.Result, error)
	Get(ctx context.Context, id string) (*frame.Summary, bool, error)
	List(ctx context.Context, limit int) ([]*frame.Summary, error)
	ClassifyAtom(sig defect.AtomSignal) defect.Result
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    FrameService
}

// New creates a new API handler.
func New(logger log.Logger, svc FrameService) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("frame service is required"))
	}
	return &API{
		logger: logger,
		svc:    svc,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		a.Routes(r)
	})
}

// Routes attaches the endpoints to a router already mounted at /api/v1, so
// callers can put their own middleware in front of them.
func (a *API) Routes(r chi.Router) {
	r.Post("/frames", a.handleClassifyFrame)
	r.Get("/frames", a.handleListFrames)
	r.Get("/frames/{id}", a.handleGetFrame)
	r.Post("/classify", a.handleClassifyAtom)
	r.Get("/labels", a.handleLabels)
}

func (a *API) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("defectscope.frame.id", id))

	sum, ok, err := a.svc.Get(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to get frame summary", "id", id)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	span.SetAttributes(attribute.Int("defectscope.frame.atoms", sum.Atoms))

	writeJSON(w, http.StatusOK, sum)
}

func (a *API) handleListFrames(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	sums, err := a.svc.List(r.Context(), limit)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to list frame summaries", "limit", limit)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if sums == nil {
		sums = []*frame.Summary{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"frames": sums})
}

type swatchResponse struct {
	Code  int        `json:"code"`
	Label string     `json:"label"`
	Name  string     `json:"name"`
	Color [3]float64 `json:"color"`
	Hex   string     `json:"hex"`
}

func (a *API) handleLabels(w http.ResponseWriter, _ *http.Request) {
	palette := defect.Palette()
	out := make([]swatchResponse, len(palette))
	for i, s := range palette {
		out[i] = swatchResponse{
			Code:  int(s.Label),
			Label: s.Label.String(),
			Name:  s.Name,
			Color: s.Color.RGB(),
			Hex:   s.Color.Hex(),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"labels": out})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// nothing to do with errors here, headers are already out
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
