package feed

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/emberdating/ember-server/internal/app"
	"github.com/emberdating/ember-server/internal/apperr"
	"github.com/emberdating/ember-server/internal/server"
)

// Registrar ties the feed service into the HTTP router.
type Registrar struct {
	svc *Service
}

// NewRegistrar creates a new Registrar for the feed service.
func NewRegistrar(appCtx *app.AppContext, poolTTL time.Duration) *Registrar {
	return &Registrar{svc: NewFeedService(appCtx, poolTTL)}
}

// Register attaches the feed endpoints under /api/feed.
func (reg *Registrar) Register(r *mux.Router) {
	sub := r.PathPrefix("/api/feed").Subrouter()
	sub.HandleFunc("/pool", reg.handleBuildPool).Methods(http.MethodPost)
	sub.HandleFunc("/card", reg.handleCard).Methods(http.MethodGet)
}

func (reg *Registrar) handleBuildPool(w http.ResponseWriter, r *http.Request) {
	var req PoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.WriteError(w, apperr.Validation("invalid request body"))
		return
	}

	resp, err := reg.svc.BuildPool(r.Context(), req)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, resp)
}

func (reg *Registrar) handleCard(w http.ResponseWriter, r *http.Request) {
	viewerID, err := strconv.ParseUint(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		server.WriteError(w, apperr.Validation("userId must be a valid uint64"))
		return
	}
	generation, err := strconv.ParseUint(r.URL.Query().Get("generation"), 10, 64)
	if err != nil {
		server.WriteError(w, apperr.Validation("generation must be a valid uint64"))
		return
	}
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		server.WriteError(w, apperr.Validation("index must be a valid integer"))
		return
	}

	card, err := reg.svc.Card(r.Context(), viewerID, generation, index)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, card)
}
