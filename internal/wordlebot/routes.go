package wordlebot

import (
	"context"
	"net/http"

	"github.com/bloops-games/wordlebot/internal/logging"
	"github.com/bloops-games/wordlebot/internal/metrics"
	"github.com/bloops-games/wordlebot/internal/server"
	"github.com/gorilla/mux"
)

// Routes is the HTTP surface of the bot: health, metrics and command
// registration.
func Routes(ctx context.Context, api requester, commands []Command, config *Config) http.Handler {
	logger := logging.FromContext(ctx).Named("wordlebot.Routes")

	r := mux.NewRouter()
	r.Handle("/health", metrics.Instrument("/health", server.HandleHealth(ctx))).Methods(http.MethodGet)
	r.Handle("/metrics", server.HandleMetrics()).Methods(http.MethodGet)
	r.Handle("/commands", metrics.Instrument("/commands", server.RequireSecret(
		config.RegisterSecret,
		HandleRegister(ctx, api, commands, config.Backoff),
	))).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debugf("route not found: %s %s", r.Method, r.URL.Path)
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	return r
}
