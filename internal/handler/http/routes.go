package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkarpenko/streamhub/models"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	router.Route("/api/v1", func(api chi.Router) {
		// Device endpoints: no origin filtering, the clients are not
		// browsers.
		api.Get("/status_report", h.statusReport)
		api.Post("/authenticate_ro", h.authenticate(models.SessRoku))
		api.Group(func(r chi.Router) {
			r.Use(h.sessionGate(models.SessRoku))
			r.Get("/validate_session_ro", h.validateSession)
			r.Get("/logout_session_ro", h.logoutSession(models.SessRoku))
			r.Get("/refresh_session_ro", h.refreshSession(models.SessRoku))
			r.Get("/get_active_channel_ro", h.getActiveChannel)
			r.Get("/get_channel_xml_ro", h.getChannelXML)
		})

		// Browser endpoints: the origin/referer filter provides CSRF
		// protection.
		api.Group(func(browser chi.Router) {
			browser.Use(h.withOriginCheck)

			browser.Post("/create_account", h.createAccount)
			browser.Get("/validate_account", h.validateAccount)
			browser.Post("/authenticate_fe", h.authenticate(models.SessFrontend))
			browser.Post("/authenticate_di", h.authenticate(models.SessDisplay))

			browser.Group(func(r chi.Router) {
				r.Use(h.sessionGate(models.SessFrontend))
				r.Get("/validate_session_fe", h.validateSession)
				r.Get("/logout_session_fe", h.logoutSession(models.SessFrontend))
				r.Get("/get_channel_lists_fe", h.getChannelLists)
				r.Get("/get_channel_list_fe", h.getChannelList)
				r.Post("/set_channel_list_fe", h.setChannelList)
				r.Post("/create_channel_list_fe", h.createChannelList)
				r.Post("/set_active_channel_fe", h.setActiveChannel)
				r.Get("/get_active_channel_fe", h.getActiveChannel)
				r.Get("/get_active_channel_name_fe", h.getActiveChannelName)
			})

			browser.Group(func(r chi.Router) {
				r.Use(h.sessionGate(models.SessDisplay))
				r.Get("/validate_session_di", h.validateSession)
				r.Get("/logout_session_di", h.logoutSession(models.SessDisplay))
				r.Get("/refresh_session_di", h.refreshSession(models.SessDisplay))
				r.Get("/get_channel_list_di", h.getChannelList)
				r.Get("/get_active_channel_di", h.getActiveChannel)
			})
		})
	})

	return router
}
