package likes

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/emberdating/ember-server/internal/app"
	"github.com/emberdating/ember-server/internal/apperr"
	"github.com/emberdating/ember-server/internal/match"
	"github.com/emberdating/ember-server/internal/server"
)

// Registrar ties the likes service into the HTTP router.
type Registrar struct {
	svc *Service
}

// NewRegistrar creates a new Registrar for the likes service.
func NewRegistrar(appCtx *app.AppContext, coordinator *match.Coordinator) *Registrar {
	return &Registrar{svc: NewLikesService(appCtx, coordinator)}
}

// Register attaches the likes endpoints under /api/likes.
func (reg *Registrar) Register(r *mux.Router) {
	sub := r.PathPrefix("/api/likes").Subrouter()
	sub.HandleFunc("", reg.handleSubmit).Methods(http.MethodPost)
	sub.HandleFunc("/received", reg.handleListReceived).Methods(http.MethodGet)
	sub.HandleFunc("/received/count", reg.handleCountReceived).Methods(http.MethodGet)
}

type submitRequest struct {
	ActorID     uint64 `json:"actorId"`
	TargetID    uint64 `json:"targetId"`
	IsSuperLike bool   `json:"isSuperLike"`
}

func (reg *Registrar) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.WriteError(w, apperr.Validation("invalid request body"))
		return
	}

	if err := reg.svc.SubmitLike(r.Context(), req.ActorID, req.TargetID, req.IsSuperLike); err != nil {
		server.WriteError(w, err)
		return
	}
	// the like is durable; match resolution is not part of the response
	server.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (reg *Registrar) handleListReceived(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseUint(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		server.WriteError(w, apperr.Validation("userId must be a valid uint64"))
		return
	}

	var token *string
	if t := r.URL.Query().Get("token"); t != "" {
		token = &t
	}

	items, nextToken, err := reg.svc.ListReceived(r.Context(), userID, token)
	if err != nil {
		server.WriteError(w, err)
		return
	}

	resp := map[string]interface{}{"likers": items}
	if nextToken != nil {
		resp["nextToken"] = *nextToken
	}
	server.WriteJSON(w, http.StatusOK, resp)
}

func (reg *Registrar) handleCountReceived(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseUint(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		server.WriteError(w, apperr.Validation("userId must be a valid uint64"))
		return
	}

	count, err := reg.svc.CountReceived(r.Context(), userID)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]int64{"count": count})
}
