package http

import (
	"errors"
	"net/http"
	"net/mail"

	"github.com/mkarpenko/streamhub/internal/hashver"
	"github.com/mkarpenko/streamhub/internal/logger"
	"github.com/mkarpenko/streamhub/internal/session"
	"github.com/mkarpenko/streamhub/internal/store"
	"github.com/mkarpenko/streamhub/internal/utils"
	"github.com/mkarpenko/streamhub/models"
)

// maxAuthFormLen caps credential form bodies.
const maxAuthFormLen = 256 * 1024

// parseAuthForm reads an x-www-form-urlencoded body with a size cap and
// returns the named fields. Any missing field fails the whole parse.
func parseAuthForm(w http.ResponseWriter, r *http.Request, fields ...string) ([]string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAuthFormLen)
	if err := r.ParseForm(); err != nil {
		return nil, false
	}

	values := make([]string, 0, len(fields))
	for _, field := range fields {
		v := r.PostFormValue(field)
		if v == "" {
			return nil, false
		}
		values = append(values, v)
	}

	return values, true
}

func setSessionCookie(w http.ResponseWriter, class models.SessionClass, key string) {
	http.SetCookie(w, &http.Cookie{
		Name:     class.Info().CookieName,
		Value:    key,
		Path:     "/",
		MaxAge:   int(class.Info().MaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	form, ok := parseAuthForm(w, r, "username", "password")
	if !ok {
		forbidden(w)
		return
	}
	username, password := form[0], form[1]

	// The username doubles as the address the validation email goes to.
	if _, err := mail.ParseAddress(username); err != nil {
		log.Warn().Msg("account creation with invalid email address rejected")
		forbidden(w)
		return
	}

	validationCode, err := session.NewToken()
	if err != nil {
		log.Err(err).Msg("error generating validation code")
		internalError(w)
		return
	}

	passHash, version, err := hashver.Hash(password)
	if err != nil {
		log.Err(err).Msg("error hashing password")
		internalError(w)
		return
	}

	resp, err := h.store.Submit(ctx, store.AddUser{
		Username:       username,
		PassHash:       passHash,
		HashVersion:    version,
		ValidationCode: validationCode,
	})
	if err != nil {
		if errors.Is(err, store.ErrEntryExists) {
			log.Warn().Msg("account creation for existing username rejected")
			forbidden(w)
			return
		}
		log.Err(err).Msg("error adding user")
		internalError(w)
		return
	}

	userID, ok := resp.(store.UserID)
	if !ok {
		log.Error().Err(store.ErrUnexpectedResponse).Msg("adding user")
		internalError(w)
		return
	}

	if err := h.mailer.SendRegistration(username, validationCode); err != nil {
		// The account exists either way; the user can ask for help if the
		// email never arrives.
		log.Err(err).Msg("error queueing registration email")
	}

	// A starter list saves the first login from an empty state. Failures
	// here leave a usable account behind, so they are logged and accepted.
	const firstChannelName = "First Channel"
	if _, err := h.store.Submit(ctx, store.CreateChannelList{
		UserID: userID.ID,
		Name:   firstChannelName,
	}); err != nil {
		log.Err(err).Msg("user created, error creating first channel list")
	} else if _, err := h.store.Submit(ctx, store.SetActiveChannel{
		UserID: userID.ID,
		Name:   firstChannelName,
	}); err != nil {
		log.Err(err).Msg("user created, error setting first channel active")
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) validateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	code := r.URL.Query().Get("val_code")
	if code == "" {
		forbidden(w)
		return
	}

	resp, err := h.store.Submit(ctx, store.ValidateAccount{Code: code})
	if err != nil {
		var rowErr *store.InvalidRowCountError
		if errors.As(err, &rowErr) && rowErr.NotFound() {
			log.Warn().Msg("account validation with unknown code rejected")
			forbidden(w)
			return
		}
		log.Err(err).Msg("error validating account")
		internalError(w)
		return
	}

	if b, ok := resp.(store.Bool); !ok || !b.OK {
		log.Error().Err(store.ErrUnexpectedResponse).Msg("validating account")
		internalError(w)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// authenticate checks the submitted credentials and, only when they verify,
// issues a session key for the class. The key reaches the client as a
// cookie; device classes also receive it as the response body because their
// players cannot read cookies.
func (h *Handler) authenticate(class models.SessionClass) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.FromRequest(r)

		form, ok := parseAuthForm(w, r, "username", "password")
		if !ok {
			forbidden(w)
			return
		}
		username, password := form[0], form[1]

		resp, err := h.store.Submit(ctx, store.GetUserPassHash{Username: username})
		if err != nil {
			var rowErr *store.InvalidRowCountError
			if errors.As(err, &rowErr) && rowErr.NotFound() {
				log.Warn().Msg("authentication for unknown username rejected")
				forbidden(w)
				return
			}
			log.Err(err).Msg("error looking up user credential")
			internalError(w)
			return
		}

		cred, ok := resp.(store.UserPassHash)
		if !ok {
			log.Error().Err(store.ErrUnexpectedResponse).Msg("looking up user credential")
			internalError(w)
			return
		}

		if !cred.Validated {
			log.Warn().Msg("authentication for unvalidated account rejected")
			forbidden(w)
			return
		}

		match, err := hashver.Verify(password, cred.Hash, cred.Version)
		if err != nil {
			log.Err(err).Msg("error verifying password")
			internalError(w)
			return
		}
		if !match {
			log.Warn().Msg("authentication with wrong password rejected")
			forbidden(w)
			return
		}

		key, err := h.sessions.Issue(ctx, store.UserRef{Name: username}, class)
		if err != nil {
			log.Err(err).Str("class", class.String()).Msg("error issuing session key")
			internalError(w)
			return
		}

		setSessionCookie(w, class, key)

		if class != models.SessFrontend {
			w.Write([]byte(key))
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// validateSession answers 200 for any request the session gate let through.
func (h *Handler) validateSession(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) logoutSession(class models.SessionClass) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.FromRequest(r)

		key, ok := utils.GetSessionKeyFromContext(ctx)
		if !ok {
			log.Error().Msg("session key missing from authenticated request context")
			internalError(w)
			return
		}

		if err := h.sessions.Logout(ctx, class, key); err != nil {
			log.Err(err).Str("class", class.String()).Msg("error logging out session")
			internalError(w)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func (h *Handler) refreshSession(class models.SessionClass) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.FromRequest(r)

		key, ok := utils.GetSessionKeyFromContext(ctx)
		if !ok {
			log.Error().Msg("session key missing from authenticated request context")
			internalError(w)
			return
		}

		newKey, err := h.sessions.Refresh(ctx, class, key)
		if err != nil {
			if errors.Is(err, session.ErrClassNotRefreshable) || errors.Is(err, session.ErrInvalidSession) {
				forbidden(w)
				return
			}
			log.Err(err).Str("class", class.String()).Msg("error refreshing session")
			internalError(w)
			return
		}

		setSessionCookie(w, class, newKey)
		w.Write([]byte(newKey))
	}
}
