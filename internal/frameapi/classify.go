package frameapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/linnemanlabs/defectscope/internal/defect"
)

// atomRequest uses pointers so an absent signal is told apart from a zero one.
type atomRequest struct {
	Coordination   *int     `json:"coordination"`
	Centrosymmetry *float64 `json:"centrosymmetry"`
	StructureType  *int     `json:"structure_type"`
}

// missing names the signals the request left out.
func (req *atomRequest) missing() []string {
	var out []string
	if req.Coordination == nil {
		out = append(out, "coordination")
	}
	if req.Centrosymmetry == nil {
		out = append(out, "centrosymmetry")
	}
	if req.StructureType == nil {
		out = append(out, "structure_type")
	}
	return out
}

type atomResponse struct {
	Label string     `json:"label"`
	Code  int        `json:"code"`
	Color [3]float64 `json:"color"`
	Hex   string     `json:"hex"`
	Rule  string     `json:"rule"`
}

// handleClassifyAtom labels a single atom. All three signals must be present;
// out-of-domain values are not an error and come back as unidentified like
// they would inside a frame.
func (a *API) handleClassifyAtom(w http.ResponseWriter, r *http.Request) {
	var req atomRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if missing := req.missing(); len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "missing signal: "+strings.Join(missing, ", "))
		return
	}

	res := a.svc.ClassifyAtom(defect.AtomSignal{
		Coordination:   *req.Coordination,
		Centrosymmetry: *req.Centrosymmetry,
		Structure:      defect.StructureType(*req.StructureType),
	})
	writeJSON(w, http.StatusOK, atomResponse{
		Label: res.Label.String(),
		Code:  int(res.Label),
		Color: res.Color.RGB(),
		Hex:   res.Color.Hex(),
		Rule:  res.Rule,
	})
}
