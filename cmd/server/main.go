package main

import (
	"context"
	"fmt"
	"time"

	"github.com/mkarpenko/streamhub/internal/config"
	handlerhttp "github.com/mkarpenko/streamhub/internal/handler/http"
	"github.com/mkarpenko/streamhub/internal/logger"
	"github.com/mkarpenko/streamhub/internal/notifier"
	"github.com/mkarpenko/streamhub/internal/server"
	"github.com/mkarpenko/streamhub/internal/session"
	"github.com/mkarpenko/streamhub/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

const shutdownTimeout = 10 * time.Second

func main() {
	printBuildInfo()

	log := logger.NewLogger("streamhub-server")

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx := context.Background()

	st, err := store.New(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating store")
	}

	mailer, err := notifier.New(cfg.SMTP, cfg.App.FrontendURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating notifier")
	}

	sessions := session.NewService(st, log)

	origins := append([]string{cfg.App.FrontendURL}, cfg.App.CORSOrigins...)
	handlers := handlerhttp.NewHandler(st, sessions, mailer, origins, log)

	srv, err := server.NewServer(handlers.Init(), cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()

	// The HTTP surface is down; stop the actors, mail queue first so any
	// registration emails queued by the final requests still go out.
	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := mailer.Shutdown(stopCtx); err != nil {
		log.Err(err).Msg("error stopping notifier")
	}
	if err := st.Close(stopCtx); err != nil {
		log.Err(err).Msg("error stopping store")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
