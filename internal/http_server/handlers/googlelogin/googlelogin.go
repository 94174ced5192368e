package googlelogin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"rencar/internal/auth"
	resp "rencar/internal/lib/api/response"
	sl "rencar/internal/lib/logger"
	"rencar/internal/models"
	"rencar/internal/storage"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	IDToken string `json:"idToken" validate:"required"`
}

type Response struct {
	resp.Response
	Token   string         `json:"token"`
	Profile models.Profile `json:"profile"`
}

// New handles POST /auth/google-login: a Google ID token in, a session token
// plus profile out. The account is created on first login.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.googlelogin.New"

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

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		accessToken, user, err := authService.LoginWithGoogle(ctx, req.IDToken)
		if err != nil {
			if errors.Is(err, auth.ErrIdentityVerification) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("google token verification failed"))

				return
			}

			log.Error("failed to login with google", sl.Err(err))

			if errors.Is(err, storage.ErrUnavailable) {
				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, resp.Error("service temporarily unavailable"))

				return
			}

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Token:    accessToken,
			Profile:  user.Profile(),
		})
	}
}
