package http

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mkarpenko/streamhub/internal/logger"
	"github.com/mkarpenko/streamhub/internal/store"
)

// statusReport renders a human-readable summary of the server's counters.
// It is intentionally plain text: the consumer is an operator's browser or
// curl, not a scraper.
func (h *Handler) statusReport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	resp, err := h.store.Submit(r.Context(), store.GetStatusReport{})
	if err != nil {
		log.Err(err).Msg("error getting status report")
		internalError(w)
		return
	}

	report, ok := resp.(store.StatusReport)
	if !ok {
		log.Error().Err(store.ErrUnexpectedResponse).Msg("getting status report")
		internalError(w)
		return
	}

	h.mailer.AppendStatus(&report.Report)

	names := make([]string, 0, len(report.Report.Counters))
	for name := range report.Report.Counters {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "StreamHub status report\n\n")
	fmt.Fprintf(&b, "Server started: %s\n", h.startupTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Uptime: %s\n\n", time.Since(h.startupTime).Round(time.Second))
	fmt.Fprintf(&b, "Counters:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %s: %d\n", name, report.Report.Counters[name])
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(b.String()))
}
