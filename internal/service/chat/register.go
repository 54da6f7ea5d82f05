package chat

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/emberdating/ember-server/internal/app"
	"github.com/emberdating/ember-server/internal/apperr"
	"github.com/emberdating/ember-server/internal/server"
)

// Registrar ties the chat service into the HTTP router.
type Registrar struct {
	svc *Service
}

// NewRegistrar creates a new Registrar for the chat service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{svc: NewChatService(appCtx)}
}

// Register attaches the chat endpoints under /api/chats.
func (reg *Registrar) Register(r *mux.Router) {
	sub := r.PathPrefix("/api/chats").Subrouter()
	sub.HandleFunc("", reg.handleListThreads).Methods(http.MethodGet)
	sub.HandleFunc("/{pairKey}/messages", reg.handleSendMessage).Methods(http.MethodPost)
	sub.HandleFunc("/{pairKey}/messages", reg.handleListMessages).Methods(http.MethodGet)
}

type sendMessageRequest struct {
	SenderID uint64 `json:"senderId"`
	Text     string `json:"text"`
}

func (reg *Registrar) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	pairKey := mux.Vars(r)["pairKey"]

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.WriteError(w, apperr.Validation("invalid request body"))
		return
	}

	msg, err := reg.svc.SendMessage(r.Context(), pairKey, req.SenderID, req.Text)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, msg)
}

func (reg *Registrar) handleListMessages(w http.ResponseWriter, r *http.Request) {
	pairKey := mux.Vars(r)["pairKey"]

	var token *string
	if t := r.URL.Query().Get("token"); t != "" {
		token = &t
	}

	messages, nextToken, err := reg.svc.ListMessages(r.Context(), pairKey, token)
	if err != nil {
		server.WriteError(w, err)
		return
	}

	resp := map[string]interface{}{"messages": messages}
	if nextToken != nil {
		resp["nextToken"] = *nextToken
	}
	server.WriteJSON(w, http.StatusOK, resp)
}

func (reg *Registrar) handleListThreads(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseUint(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		server.WriteError(w, apperr.Validation("userId must be a valid uint64"))
		return
	}

	threads, err := reg.svc.ListThreads(r.Context(), userID)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]interface{}{"chats": threads})
}
