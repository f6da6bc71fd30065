package httpserver

import (
	"net/http"

	"github.com/bryanwahyu/audit-compliance/internal/domain/controls"
)

type controlsResponse struct {
	Controls []controls.Control `json:"controls"`
}

// GET /api/controls
func (r *Router) handleControls(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, http.StatusOK, controlsResponse{Controls: r.svc.Controls()})
}

// POST /api/assess
// Body: {"control_id": "A.8.1"}
func (r *Router) handleAssess(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ControlID string `json:"control_id"`
	}
	if err := decodeStrict(w, req, &body); err != nil {
		return err
	}
	r.log.Debug().Str("control_id", body.ControlID).Msg("assess requested")

	text, err := r.svc.Assess(req.Context(), body.ControlID)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"assessment": text})
}

// POST /api/chat
// Body: {"message": "..."}
func (r *Router) handleChat(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := decodeStrict(w, req, &body); err != nil {
		return err
	}

	text, err := r.svc.Chat(req.Context(), body.Message)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"response": text})
}

// POST /api/gap-analysis
// Body: {"control_id": "A.5.1", "description": "..."}
func (r *Router) handleGapAnalysis(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ControlID   string `json:"control_id"`
		Description string `json:"description"`
	}
	if err := decodeStrict(w, req, &body); err != nil {
		return err
	}

	text, err := r.svc.GapAnalysis(req.Context(), body.ControlID, body.Description)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"analysis": text})
}

// GET /api/history
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	snap, err := r.svc.History(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, snap)
}

// POST /api/history/archive
func (r *Router) handleArchive(w http.ResponseWriter, req *http.Request) error {
	url, err := r.svc.Archive(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"object_url": url})
}
