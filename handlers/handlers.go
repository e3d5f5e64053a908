package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mihai888nextlab/ecotag/extractor"
	"github.com/mihai888nextlab/ecotag/models"
	"github.com/mihai888nextlab/ecotag/repository"
)

// Handlers exposes the extraction engine over HTTP: session management, the
// message interface (getProduct/ping), one-shot extraction and, when a
// database is configured, the watched-page registry.
type Handlers struct {
	manager   *extractor.Manager
	watchRepo *repository.WatchRepository
}

// NewHandlers builds the handler set. watchRepo may be nil when no database
// is configured; the watch endpoints then answer 503.
func NewHandlers(manager *extractor.Manager, watchRepo *repository.WatchRepository) *Handlers {
	return &Handlers{manager: manager, watchRepo: watchRepo}
}

// GetManager returns the session manager.
func (h *Handlers) GetManager() *extractor.Manager {
	return h.manager
}

type openSessionRequest struct {
	URL string `json:"url"`
}

type sessionInfo struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// OpenSession starts a live page session for a URL. The initial product
// record, when extractable, rides along in the response.
func (h *Handlers) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	sess, err := h.manager.Open(req.URL)
	if err != nil {
		log.Printf("Failed to open session for %s: %v", req.URL, err)
		writeError(w, http.StatusBadGateway, "failed to open page")
		return
	}

	response := map[string]interface{}{
		"session": sessionInfo{ID: sess.ID(), URL: sess.URL()},
	}
	if product, err := sess.ExtractNow(); err == nil {
		response["product"] = product
	}
	writeJSON(w, http.StatusCreated, response)
}

// ListSessions returns every open session.
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.manager.List()
	infos := make([]sessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, sessionInfo{ID: sess.ID(), URL: sess.URL()})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": infos})
}

// CloseSession tears down one session.
func (h *Handlers) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.manager.Close(id) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

// SessionMessage dispatches an action-tagged request against one session.
// Every request gets an answer; an unreadable page comes back as
// {ok:false, error} rather than a hung request.
func (h *Handlers) SessionMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	sess, ok := h.manager.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, models.MessageResponse{Ok: false, Error: "session not found"})
		return
	}

	var req models.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.MessageResponse{Ok: false, Error: "invalid message"})
		return
	}

	switch req.Action {
	case models.ActionGetProduct:
		product, err := sess.ExtractNow()
		if err != nil {
			writeJSON(w, http.StatusOK, models.MessageResponse{Ok: false, Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, models.MessageResponse{Ok: true, Product: product})
	case models.ActionPing:
		writeJSON(w, http.StatusOK, models.MessageResponse{Ok: true})
	default:
		writeJSON(w, http.StatusOK, models.MessageResponse{Ok: false, Error: "unknown action: " + req.Action})
	}
}

// ExtractOnce runs a one-shot extraction pass against a URL using an
// ephemeral session.
func (h *Handlers) ExtractOnce(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	product, err := h.manager.ExtractOnce(req.URL)
	if err != nil {
		writeJSON(w, http.StatusOK, models.MessageResponse{Ok: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Ok: true, Product: product})
}

type addWatchRequest struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

// AddWatch registers a page for scheduled re-extraction.
func (h *Handlers) AddWatch(w http.ResponseWriter, r *http.Request) {
	if h.watchRepo == nil {
		writeError(w, http.StatusServiceUnavailable, "watch registry not configured")
		return
	}

	var req addWatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	watch, err := h.watchRepo.AddWatch(req.URL, req.Label)
	if err != nil {
		log.Printf("Failed to add watch for %s: %v", req.URL, err)
		writeError(w, http.StatusInternalServerError, "failed to add watch")
		return
	}
	writeJSON(w, http.StatusCreated, watch)
}

// GetWatches lists the registered pages.
func (h *Handlers) GetWatches(w http.ResponseWriter, r *http.Request) {
	if h.watchRepo == nil {
		writeError(w, http.StatusServiceUnavailable, "watch registry not configured")
		return
	}

	watches, err := h.watchRepo.GetWatchedPages()
	if err != nil {
		log.Printf("Failed to list watches: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list watches")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"watches": watches})
}

// DeleteWatch unregisters a page.
func (h *Handlers) DeleteWatch(w http.ResponseWriter, r *http.Request) {
	if h.watchRepo == nil {
		writeError(w, http.StatusServiceUnavailable, "watch registry not configured")
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid watch id")
		return
	}
	if err := h.watchRepo.DeleteWatch(id); err != nil {
		log.Printf("Failed to delete watch %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete watch")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
