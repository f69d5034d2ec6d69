package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"netlens/internal/domain"
	"netlens/internal/export"
	"netlens/internal/logging"
	"netlens/internal/remote"
	"netlens/internal/repository"
	"netlens/internal/service"
	"netlens/internal/source"
)

// maxImportBytes caps imported topology bodies
const maxImportBytes = 4 << 20

// SourceRegistry lists topology sources and triggers syncs
type SourceRegistry interface {
	List() []source.Info
	TriggerSync(ctx context.Context, name string) error
}

// TopologyHandler handles the topology and rendering API
type TopologyHandler struct {
	svc     *service.TopologyService
	sources SourceRegistry
	log     logging.Logger
}

// NewTopologyHandler creates a new topology handler
func NewTopologyHandler(svc *service.TopologyService, log logging.Logger) *TopologyHandler {
	if log == nil {
		log = logging.Noop()
	}
	return &TopologyHandler{svc: svc, log: log}
}

// SetSources sets the registry behind /api/sources
func (h *TopologyHandler) SetSources(r SourceRegistry) {
	h.sources = r
}

// Register adds the API routes to mux
func (h *TopologyHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/topologies", h.ListTopologies)
	mux.HandleFunc("GET /api/topology", h.GetTopology)
	mux.HandleFunc("POST /api/topology/switch", h.SwitchTopology)
	mux.HandleFunc("POST /api/topology/refresh", h.RefreshTopology)
	mux.HandleFunc("POST /api/topology/import", h.ImportTopology)

	mux.HandleFunc("GET /api/stats", h.GetStats)
	mux.HandleFunc("GET /api/nodes/{id}", h.GetNode)

	mux.HandleFunc("GET /api/frame.svg", h.FrameSVG)
	mux.HandleFunc("GET /api/frame.json", h.FrameJSON)
	mux.HandleFunc("POST /api/pointer", h.Pointer)
	mux.HandleFunc("POST /api/animation", h.SetAnimation)
	mux.HandleFunc("POST /api/animation/toggle", h.ToggleAnimation)

	mux.HandleFunc("POST /api/path", h.SetPath)
	mux.HandleFunc("DELETE /api/path", h.ClearPath)

	mux.HandleFunc("POST /api/network/save", h.SaveTopology)
	mux.HandleFunc("GET /api/network/saved", h.ListSaved)
	mux.HandleFunc("GET /api/network/saved/{name}", h.LoadSaved)
	mux.HandleFunc("DELETE /api/network/saved/{name}", h.DeleteSaved)

	mux.HandleFunc("GET /api/export/json", h.export("json", "application/json"))
	mux.HandleFunc("GET /api/export/yaml", h.export("yaml", "application/yaml"))
	mux.HandleFunc("GET /api/export/toml", h.export("toml", "application/toml"))
	mux.HandleFunc("GET /api/export/echarts", h.ExportECharts)

	mux.HandleFunc("GET /api/sources", h.ListSources)
	mux.HandleFunc("POST /api/sources/{name}/sync", h.SyncSource)

	mux.HandleFunc("GET /healthz", h.Healthz)
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TopologyResponse is the displayed snapshot with its load status
type TopologyResponse struct {
	Status   service.Status   `json:"status"`
	Topology *domain.Topology `json:"topology"`
}

// ListTopologies returns the canonical library
func (h *TopologyHandler) ListTopologies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Library(), http.StatusOK)
}

// GetTopology returns the displayed snapshot
func (h *TopologyHandler) GetTopology(w http.ResponseWriter, r *http.Request) {
	st := h.svc.Status()
	if st.Digest != "" {
		w.Header().Set("ETag", etag(st.Digest))
	}
	writeJSON(w, TopologyResponse{Status: st, Topology: h.svc.Topology()}, http.StatusOK)
}

// SwitchRequest selects a canonical topology
type SwitchRequest struct {
	Topology string `json:"topology"`
}

// SwitchTopology loads a canonical topology
func (h *TopologyHandler) SwitchTopology(w http.ResponseWriter, r *http.Request) {
	var req SwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Topology == "" {
		writeError(w, "Topology is required", "", http.StatusBadRequest)
		return
	}

	if err := h.svc.Switch(r.Context(), req.Topology); err != nil {
		h.fail(w, r, "Failed to switch topology", err)
		return
	}
	h.GetTopology(w, r)
}

// RefreshTopology reloads the displayed topology from its source
func (h *TopologyHandler) RefreshTopology(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Refresh(r.Context()); err != nil {
		h.fail(w, r, "Failed to refresh topology", err)
		return
	}
	h.GetTopology(w, r)
}

// ImportResponse reports an import
type ImportResponse struct {
	Status  service.Status      `json:"status"`
	Dropped []*domain.DataError `json:"dropped"`
}

// ImportTopology loads topology data from the request body. The format comes
// from the format query parameter, then the Content-Type, then defaults to JSON.
func (h *TopologyHandler) ImportTopology(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = formatFromContentType(r.Header.Get("Content-Type"))
	}

	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	report, err := h.svc.Import(r.Context(), format, body)
	if err != nil {
		h.fail(w, r, "Failed to import topology", err)
		return
	}

	dropped := report.Dropped
	if dropped == nil {
		dropped = []*domain.DataError{}
	}
	writeJSON(w, ImportResponse{Status: h.svc.Status(), Dropped: dropped}, http.StatusOK)
}

func formatFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "yaml"):
		return "yaml"
	case strings.Contains(ct, "toml"):
		return "toml"
	default:
		return "json"
	}
}

// GetStats returns the statistics of the displayed topology
func (h *TopologyHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Stats(), http.StatusOK)
}

// GetNode returns the detail view of one node
func (h *TopologyHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, "Invalid node ID", "Node ID is required", http.StatusBadRequest)
		return
	}

	detail, err := h.svc.Detail(id)
	if err != nil {
		h.fail(w, r, "Failed to get node", err)
		return
	}
	writeJSON(w, detail, http.StatusOK)
}

// PathRequest names the endpoints of a shortest path
type PathRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// SetPath computes a shortest path and shows it as an overlay
func (h *TopologyHandler) SetPath(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Source == "" || req.Destination == "" {
		writeError(w, "Source and destination are required", "", http.StatusBadRequest)
		return
	}

	res, err := h.svc.ShortestPath(r.Context(), req.Source, req.Destination)
	if err != nil {
		h.fail(w, r, "Failed to compute path", err)
		return
	}
	writeJSON(w, res, http.StatusOK)
}

// ClearPath removes the path overlay
func (h *TopologyHandler) ClearPath(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearPath()
	w.WriteHeader(http.StatusNoContent)
}

// SaveRequest names a snapshot to persist
type SaveRequest struct {
	Name string `json:"name"`
}

// SaveTopology persists the displayed topology
func (h *TopologyHandler) SaveTopology(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	saved, err := h.svc.Save(r.Context(), req.Name)
	if err != nil {
		h.fail(w, r, "Failed to save topology", err)
		return
	}
	writeJSON(w, saved, http.StatusCreated)
}

// ListSaved returns the saved topologies
func (h *TopologyHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	saved, err := h.svc.ListSaved(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list saved topologies", err)
		return
	}
	if saved == nil {
		saved = []repository.SavedTopology{}
	}
	writeJSON(w, saved, http.StatusOK)
}

// LoadSaved displays a saved topology
func (h *TopologyHandler) LoadSaved(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.LoadSaved(r.Context(), r.PathValue("name")); err != nil {
		h.fail(w, r, "Failed to load saved topology", err)
		return
	}
	h.GetTopology(w, r)
}

// DeleteSaved removes a saved topology
func (h *TopologyHandler) DeleteSaved(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSaved(r.Context(), r.PathValue("name")); err != nil {
		h.fail(w, r, "Failed to delete saved topology", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TopologyHandler) export(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", attachment(h.svc.Topology(), format))
		if err := h.svc.Export(format, w); err != nil {
			h.log.Error(r.Context(), "export failed", logging.String("format", format), logging.Err(err))
		}
	}
}

// ExportECharts returns a standalone HTML page of the displayed topology
func (h *TopologyHandler) ExportECharts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition", attachment(h.svc.Topology(), "html"))
	}
	if err := export.ECharts(w, h.svc.Topology(), h.svc.Engine().Config()); err != nil {
		h.log.Error(r.Context(), "echarts export failed", logging.Err(err))
	}
}

func attachment(t *domain.Topology, ext string) string {
	name := t.Key
	if name == "" {
		name = "topology"
	}
	return fmt.Sprintf("attachment; filename=%q", name+"."+ext)
}

// ListSources returns the registered topology sources
func (h *TopologyHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	if h.sources == nil {
		writeJSON(w, []source.Info{}, http.StatusOK)
		return
	}
	writeJSON(w, h.sources.List(), http.StatusOK)
}

// SyncSource runs one sync of a source and returns the resulting status
func (h *TopologyHandler) SyncSource(w http.ResponseWriter, r *http.Request) {
	if h.sources == nil {
		writeError(w, "Sources not configured", "No source registry is set", http.StatusServiceUnavailable)
		return
	}
	if err := h.sources.TriggerSync(r.Context(), r.PathValue("name")); err != nil {
		h.fail(w, r, "Failed to sync source", err)
		return
	}
	h.GetTopology(w, r)
}

// Healthz reports liveness
func (h *TopologyHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok", "state": string(h.svc.Status().State)}, http.StatusOK)
}

// fail maps service errors onto status codes
func (h *TopologyHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	code := statusFor(err)
	if code >= 500 {
		h.log.Error(r.Context(), msg, logging.Err(err))
	}
	writeError(w, msg, err.Error(), code)
}

func statusFor(err error) int {
	var (
		de       *domain.DataError
		te       *remote.TransportError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.Is(err, service.ErrNodeNotFound), errors.Is(err, repository.ErrNotFound),
		errors.Is(err, source.ErrUnknownSource):
		return http.StatusNotFound
	case errors.As(err, &de):
		if de.Kind == domain.DataErrorUnknownTopology {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrInvalidName), errors.Is(err, service.ErrUnknownFormat),
		errors.Is(err, service.ErrMalformed):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoRemote), errors.Is(err, service.ErrNoRepository),
		errors.Is(err, source.ErrSourceDisabled):
		return http.StatusServiceUnavailable
	case errors.As(err, &te):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message, details string, status int) {
	writeJSON(w, ErrorResponse{Error: message, Details: details}, status)
}
