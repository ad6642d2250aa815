package wordlebot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bloops-games/wordlebot/internal/fetch"
	"github.com/bloops-games/wordlebot/internal/logging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

const endpointSetMyCommands = "setMyCommands"

type requester interface {
	MakeRequest(endpoint string, params url.Values) (tgbotapi.APIResponse, error)
}

type botCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// RegisterCommands publishes the command list shown by Telegram clients.
func RegisterCommands(ctx context.Context, api requester, commands []Command, backoff fetch.Backoff) error {
	list := make([]botCommand, 0, len(commands))
	for _, c := range commands {
		list = append(list, botCommand{Command: c.Name(), Description: c.Description()})
	}

	bytes, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal commands: %w", err)
	}

	params := url.Values{}
	params.Set("commands", string(bytes))

	return fetch.Retry(ctx, func(context.Context) error {
		resp, err := api.MakeRequest(endpointSetMyCommands, params)
		if err != nil {
			return classify(err)
		}
		if !resp.Ok {
			return fmt.Errorf("%s: %s", endpointSetMyCommands, resp.Description)
		}
		return nil
	}, backoff)
}

// HandleRegister publishes the commands on POST. It is served behind the
// shared secret check.
func HandleRegister(ctx context.Context, api requester, commands []Command, backoff fetch.Backoff) http.Handler {
	logger := logging.FromContext(ctx).Named("wordlebot.HandleRegister")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		if err := RegisterCommands(r.Context(), api, commands, backoff); err != nil {
			logger.Errorf("register commands: %v", err)
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"registered":%d}`, len(commands))
	})
}
