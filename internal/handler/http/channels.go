package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkarpenko/streamhub/internal/logger"
	"github.com/mkarpenko/streamhub/internal/store"
	"github.com/mkarpenko/streamhub/internal/utils"
)

// userIDFrom pulls the authenticated user id the session gate stored. A
// miss means a route was wired without the gate, which is a server bug.
func userIDFrom(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		logger.FromRequest(r).Error().Msg("user id missing from authenticated request context")
		internalError(w)
		return 0, false
	}
	return userID, true
}

// submitForString runs one store command expected to answer StringResp and
// maps its failure modes: a zero-row miss is the caller's fault, anything
// else, a multi-row match included, is infrastructure.
func (h *Handler) submitForString(w http.ResponseWriter, r *http.Request, action store.Action) (string, bool) {
	log := logger.FromRequest(r)

	resp, err := h.store.Submit(r.Context(), action)
	if err != nil {
		var rowErr *store.InvalidRowCountError
		if errors.As(err, &rowErr) && rowErr.NotFound() {
			log.Warn().Msg("request for missing row rejected")
			forbidden(w)
			return "", false
		}
		log.Err(err).Msg("error executing store command")
		internalError(w)
		return "", false
	}

	str, ok := resp.(store.StringResp)
	if !ok {
		log.Error().Err(store.ErrUnexpectedResponse).Msg("executing store command")
		internalError(w)
		return "", false
	}

	return str.Value, true
}

func (h *Handler) getChannelLists(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}

	names, ok := h.submitForString(w, r, store.GetChannelLists{UserID: userID})
	if !ok {
		return
	}

	w.Write([]byte(names))
}

func (h *Handler) getChannelList(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}

	name := r.URL.Query().Get("list_name")
	if name == "" {
		forbidden(w)
		return
	}

	data, ok := h.submitForString(w, r, store.GetChannelList{UserID: userID, Name: name})
	if !ok {
		return
	}

	w.Write([]byte(data))
}

func (h *Handler) setChannelList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}

	form, ok := parseAuthForm(w, r, "listname", "listdata")
	if !ok {
		forbidden(w)
		return
	}
	name, data := form[0], form[1]

	// The payload must at least be JSON; its shape is the frontend's
	// business.
	if !json.Valid([]byte(data)) {
		log.Warn().Msg("channel list update with invalid JSON rejected")
		forbidden(w)
		return
	}

	if _, err := h.store.Submit(ctx, store.SetChannelList{UserID: userID, Name: name, Data: data}); err != nil {
		var rowErr *store.InvalidRowCountError
		if errors.As(err, &rowErr) && rowErr.NotFound() {
			log.Warn().Msg("update of missing channel list rejected")
			forbidden(w)
			return
		}
		log.Err(err).Msg("error updating channel list")
		internalError(w)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) createChannelList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}

	form, ok := parseAuthForm(w, r, "listname")
	if !ok {
		forbidden(w)
		return
	}

	if _, err := h.store.Submit(ctx, store.CreateChannelList{UserID: userID, Name: form[0]}); err != nil {
		if errors.Is(err, store.ErrEntryExists) {
			log.Warn().Msg("creation of duplicate channel list rejected")
			forbidden(w)
			return
		}
		log.Err(err).Msg("error creating channel list")
		internalError(w)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) setActiveChannel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}

	form, ok := parseAuthForm(w, r, "listname")
	if !ok {
		forbidden(w)
		return
	}

	if _, err := h.store.Submit(ctx, store.SetActiveChannel{UserID: userID, Name: form[0]}); err != nil {
		var rowErr *store.InvalidRowCountError
		if errors.As(err, &rowErr) && rowErr.NotFound() {
			log.Warn().Msg("activating missing channel list rejected")
			forbidden(w)
			return
		}
		log.Err(err).Msg("error setting active channel")
		internalError(w)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) getActiveChannel(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}

	data, ok := h.submitForString(w, r, store.GetActiveChannel{UserID: userID})
	if !ok {
		return
	}

	w.Write([]byte(data))
}

func (h *Handler) getActiveChannelName(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}

	name, ok := h.submitForString(w, r, store.GetActiveChannelName{UserID: userID})
	if !ok {
		return
	}

	w.Write([]byte(name))
}

// getChannelXML renders the active channel list as the XML document the
// streaming player consumes.
func (h *Handler) getChannelXML(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}

	data, ok := h.submitForString(w, r, store.GetActiveChannel{UserID: userID})
	if !ok {
		return
	}

	var decoded any
	if err := json.Unmarshal([]byte(data), &decoded); err != nil {
		log.Err(err).Msg("error decoding stored channel list")
		internalError(w)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(utils.BuildXML(decoded)))
}
