package chat

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"rencar/internal/chat"
	resp "rencar/internal/lib/api/response"
	sl "rencar/internal/lib/logger"
	"rencar/internal/storage"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Request struct {
	Message             string         `json:"message"`
	ConversationHistory []chat.Message `json:"conversationHistory"`
}

type Response struct {
	resp.Response
	Reply     string    `json:"reply"`
	Timestamp time.Time `json:"timestamp"`
}

// New handles POST /api/chat. Public: the assistant answers anonymous
// visitors; history lives on the client.
func New(log *slog.Logger, service *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.chat.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		if strings.TrimSpace(req.Message) == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("message must not be empty"))

			return
		}

		reply, err := service.Reply(r.Context(), req.Message, req.ConversationHistory)
		if err != nil {
			if errors.Is(err, chat.ErrRateLimited) {
				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, resp.Error("too many requests, please wait a moment"))

				return
			}

			if errors.Is(err, storage.ErrUnavailable) {
				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, resp.Error("service temporarily unavailable"))

				return
			}

			log.Error("chat completion failed", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("failed to process the message, please try again"))

			return
		}

		render.JSON(w, r, Response{
			Response:  resp.OK(),
			Reply:     reply,
			Timestamp: time.Now().UTC(),
		})
	}
}
