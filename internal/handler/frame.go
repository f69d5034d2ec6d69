package handler

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/blake2b"

	"netlens/internal/domain"
	"netlens/internal/logging"
	"netlens/internal/render"
)

// FramePayload is a rendered frame as pushed to streaming clients
type FramePayload struct {
	Topology string  `json:"topology"`
	Digest   string  `json:"digest"`
	Selected string  `json:"selected,omitempty"`
	Paused   bool    `json:"paused"`
	Sample   float64 `json:"sample"`
	SVG      string  `json:"svg"`
}

// NewFramePayload renders f to SVG for streaming
func NewFramePayload(f render.Frame) FramePayload {
	return FramePayload{
		Topology: f.Topology,
		Digest:   f.Digest,
		Selected: f.Selected,
		Paused:   f.Paused,
		Sample:   f.Sample,
		SVG:      render.SVG(f),
	}
}

// FrameSVG renders one frame as an SVG document. A paused engine produces
// identical frames, so clients can revalidate with If-None-Match.
func (h *TopologyHandler) FrameSVG(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := render.WriteSVG(&buf, h.svc.Engine().Frame()); err != nil {
		h.log.Error(r.Context(), "failed to render frame", logging.Err(err))
		writeError(w, "Failed to render frame", err.Error(), http.StatusInternalServerError)
		return
	}

	tag := contentTag(buf.Bytes())
	w.Header().Set("ETag", tag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && match == tag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(buf.Bytes())
}

// FrameJSON returns one frame as its command list
func (h *TopologyHandler) FrameJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Engine().Frame(), http.StatusOK)
}

// PointerRequest is a click in canvas coordinates
type PointerRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// SelectionResponse reports the selection after a click
type SelectionResponse struct {
	Selected *string `json:"selected"`
}

func selectionResponse(id string, ok bool) SelectionResponse {
	if !ok {
		return SelectionResponse{}
	}
	return SelectionResponse{Selected: &id}
}

// Pointer hit-tests a click and applies the selection transition
func (h *TopologyHandler) Pointer(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.X == nil || req.Y == nil {
		writeError(w, "x and y are required", "", http.StatusBadRequest)
		return
	}

	sel := h.svc.Click(domain.Position{X: *req.X, Y: *req.Y})
	writeJSON(w, selectionResponse(sel.ID()), http.StatusOK)
}

// AnimationRequest changes animation flags; absent fields are left alone
type AnimationRequest struct {
	Paused     *bool `json:"paused"`
	AnimateAll *bool `json:"animate_all"`
}

// AnimationResponse reports the animation flags
type AnimationResponse struct {
	Paused     bool `json:"paused"`
	AnimateAll bool `json:"animate_all"`
}

// SetAnimation pauses, resumes or switches all-node pulsing
func (h *TopologyHandler) SetAnimation(w http.ResponseWriter, r *http.Request) {
	var req AnimationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Paused != nil {
		h.svc.SetPaused(*req.Paused)
	}
	if req.AnimateAll != nil {
		h.svc.SetAnimateAll(*req.AnimateAll)
	}
	h.animationState(w)
}

// ToggleAnimation flips between paused and running
func (h *TopologyHandler) ToggleAnimation(w http.ResponseWriter, r *http.Request) {
	h.svc.TogglePaused()
	h.animationState(w)
}

func (h *TopologyHandler) animationState(w http.ResponseWriter) {
	eng := h.svc.Engine()
	writeJSON(w, AnimationResponse{Paused: eng.Paused(), AnimateAll: eng.AnimateAll()}, http.StatusOK)
}

func etag(digest string) string {
	return `"` + digest + `"`
}

func contentTag(b []byte) string {
	sum := blake2b.Sum256(b)
	return etag(hex.EncodeToString(sum[:16]))
}
