package banners

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	req "rencar/internal/lib/api/request"
	resp "rencar/internal/lib/api/response"
	sl "rencar/internal/lib/logger"
	"rencar/internal/media"
	"rencar/internal/models"
	"rencar/internal/storage"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

const imageFolder = "rencar/banners"

type Storage interface {
	Banners(ctx context.Context) ([]models.Banner, error)
	BannerByID(ctx context.Context, id string) (models.Banner, error)
	CreateBanner(ctx context.Context, banner models.Banner) (models.Banner, error)
	UpdateBanner(ctx context.Context, banner models.Banner) (models.Banner, error)
	DeleteBanner(ctx context.Context, id string) error
}

type Request struct {
	Title       string `json:"title"`
	Channel     string `json:"channel"`
	Format      string `json:"format"`
	URL         string `json:"url"`
	Tone        string `json:"tone"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

type Response struct {
	resp.Response
	Data models.Banner `json:"data"`
}

type ListResponse struct {
	resp.Response
	Data []models.Banner `json:"data"`
}

type DeleteResponse struct {
	resp.Response
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// List is public: banners are rendered on the marketing site.
func List(log *slog.Logger, store Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.banners.List"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		banners, err := store.Banners(ctx)
		if err != nil {
			storeError(w, r, log, "failed to list banners", err)

			return
		}

		render.JSON(w, r, ListResponse{Response: resp.OK(), Data: banners})
	}
}

func Create(log *slog.Logger, store Storage, uploads media.Uploader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.banners.Create"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		payload, ok := decodeRequest(w, r, log, uploads)
		if !ok {
			return
		}

		if payload.Title == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("title is required"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		banner, err := store.CreateBanner(ctx, payload.toBanner())
		if err != nil {
			storeError(w, r, log, "failed to create banner", err)

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{Response: resp.OK(), Data: banner})
	}
}

func Update(log *slog.Logger, store Storage, uploads media.Uploader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.banners.Update"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		existing, err := store.BannerByID(ctx, chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("banner not found"))

				return
			}

			storeError(w, r, log, "failed to load banner", err)

			return
		}

		payload, ok := decodeRequest(w, r, log, uploads)
		if !ok {
			return
		}

		banner := payload.toBanner()
		banner.ID = existing.ID

		if banner.Image == "" {
			banner.Image = existing.Image
		}

		saved, err := store.UpdateBanner(ctx, banner)
		if err != nil {
			storeError(w, r, log, "failed to update banner", err)

			return
		}

		if existing.Image != "" && existing.Image != saved.Image {
			uploads.Destroy(r.Context(), existing.Image)
		}

		render.JSON(w, r, Response{Response: resp.OK(), Data: saved})
	}
}

func Delete(log *slog.Logger, store Storage, uploads media.Uploader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.banners.Delete"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := chi.URLParam(r, "id")

		existing, err := store.BannerByID(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("banner not found"))

				return
			}

			storeError(w, r, log, "failed to load banner", err)

			return
		}

		if err := store.DeleteBanner(ctx, id); err != nil {
			storeError(w, r, log, "failed to delete banner", err)

			return
		}

		if existing.Image != "" {
			uploads.Destroy(r.Context(), existing.Image)
		}

		response := DeleteResponse{Response: resp.OK()}
		response.Data.ID = id

		render.JSON(w, r, response)
	}
}

func (p Request) toBanner() models.Banner {
	return models.Banner{
		Title:       p.Title,
		Channel:     p.Channel,
		Format:      p.Format,
		URL:         p.URL,
		Tone:        p.Tone,
		Image:       p.Image,
		Description: p.Description,
	}
}

func decodeRequest(w http.ResponseWriter, r *http.Request, log *slog.Logger, uploads media.Uploader) (Request, bool) {
	if !req.IsMultipart(r) {
		var payload Request
		if err := render.DecodeJSON(r.Body, &payload); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return Request{}, false
		}

		return payload, true
	}

	if err := r.ParseMultipartForm(media.MaxImageSize); err != nil {
		log.Error("Failed to parse multipart form", sl.Err(err))

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, resp.Error("Failed to decode request"))

		return Request{}, false
	}

	payload := Request{
		Title:       r.FormValue("title"),
		Channel:     r.FormValue("channel"),
		Format:      r.FormValue("format"),
		URL:         r.FormValue("url"),
		Tone:        r.FormValue("tone"),
		Image:       r.FormValue("image"),
		Description: r.FormValue("description"),
	}

	url, err := req.UploadImage(r, uploads, imageFolder)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedType) || errors.Is(err, media.ErrTooLarge) || errors.Is(err, media.ErrUploadsDisabled) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error(err.Error()))

			return Request{}, false
		}

		log.Error("failed to upload image", sl.Err(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, resp.Error("Internal error"))

		return Request{}, false
	}

	if url != "" {
		payload.Image = url
	}

	return payload, true
}

// storeError answers 503 when the database is unreachable, 500 otherwise.
func storeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, msg string, err error) {
	log.Error(msg, sl.Err(err))

	if errors.Is(err, storage.ErrUnavailable) {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, resp.Error("service temporarily unavailable"))

		return
	}

	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, resp.Error("Internal error"))
}
