package http

import (
	"time"

	"github.com/mkarpenko/streamhub/internal/logger"
	"github.com/mkarpenko/streamhub/internal/session"
	"github.com/mkarpenko/streamhub/models"
)

// Mailer is the slice of the notifier the handler needs.
type Mailer interface {
	SendRegistration(addr, validationCode string) error
	AppendStatus(report *models.StatusReport)
}

type Handler struct {
	store    session.Submitter
	sessions *session.Service
	mailer   Mailer

	// origins are the URL prefixes accepted by the origin/referer filter
	// on browser endpoints.
	origins []string

	startupTime time.Time

	logger *logger.Logger
}

func NewHandler(st session.Submitter, sessions *session.Service, mailer Mailer,
	origins []string, log *logger.Logger) *Handler {
	log.Info().Msg("http handler created")
	return &Handler{
		store:       st,
		sessions:    sessions,
		mailer:      mailer,
		origins:     origins,
		startupTime: time.Now(),
		logger:      log,
	}
}
