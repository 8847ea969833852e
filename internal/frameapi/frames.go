package frameapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/defectscope/internal/frame"
)

// frameRequest mirrors the host's particle properties for one frame.
type frameRequest struct {
	Frame      int `json:"frame"`
	Properties struct {
		Coordination   []int     `json:"Coordination"`
		Centrosymmetry []float64 `json:"Centrosymmetry"`
		StructureType  []int     `json:"Structure Type"`
	} `json:"properties"`
}

type frameProperties struct {
	DefectType []int        `json:"Defect Type"`
	Color      [][3]float64 `json:"Color"`
}

type frameResponse struct {
	ID         string          `json:"id"`
	Frame      int             `json:"frame"`
	Atoms      int             `json:"atoms"`
	Properties frameProperties `json:"properties"`
	Counts     frame.Counts    `json:"counts"`
	Duration   float64         `json:"duration_seconds"`
}

func (a *API) handleClassifyFrame(w http.ResponseWriter, r *http.Request) {
	var req frameRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	f := &frame.Frame{
		Index:          req.Frame,
		Coordination:   req.Properties.Coordination,
		Centrosymmetry: req.Properties.Centrosymmetry,
		StructureType:  req.Properties.StructureType,
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.Int("defectscope.frame.index", f.Index),
		attribute.Int("defectscope.frame.atoms", f.Atoms()),
	)

	res, err := a.svc.Classify(r.Context(), f)
	if err != nil {
		switch {
		case errors.Is(err, frame.ErrMissingProperty), errors.Is(err, frame.ErrLengthMismatch):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, frame.ErrTooManyAtoms):
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		case r.Context().Err() != nil:
			// client went away, nobody to answer
			a.logger.Info(r.Context(), "frame classification canceled", "frame", f.Index)
		default:
			a.logger.Error(r.Context(), err, "failed to classify frame", "frame", f.Index)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	span.SetAttributes(
		attribute.String("defectscope.frame.id", res.ID),
		attribute.Float64("defectscope.frame.defect_fraction", res.Counts.DefectFraction()),
	)

	writeJSON(w, http.StatusOK, frameResponse{
		ID:    res.ID,
		Frame: res.Frame,
		Atoms: res.Atoms,
		Properties: frameProperties{
			DefectType: res.DefectTypes(),
			Color:      res.ColorProperty(),
		},
		Counts:   res.Counts,
		Duration: res.Duration,
	})
}
