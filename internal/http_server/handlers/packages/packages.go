package packages

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

const imageFolder = "rencar/packages"

type Storage interface {
	Packages(ctx context.Context) ([]models.Package, error)
	PackageByID(ctx context.Context, id string) (models.Package, error)
	CreatePackage(ctx context.Context, pkg models.Package) (models.Package, error)
	UpdatePackage(ctx context.Context, pkg models.Package) (models.Package, error)
	DeletePackage(ctx context.Context, id string) error
}

type Request struct {
	Name        string         `json:"name"`
	Duration    string         `json:"duration"`
	Description string         `json:"description"`
	Price       string         `json:"price"`
	Category    string         `json:"category"`
	Image       string         `json:"image"`
	Features    req.StringList `json:"features"`
}

type Response struct {
	resp.Response
	Data models.Package `json:"data"`
}

type ListResponse struct {
	resp.Response
	Data []models.Package `json:"data"`
}

type DeleteResponse struct {
	resp.Response
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// List is public: tour packages are shown on the landing page.
func List(log *slog.Logger, store Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.packages.List"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		packages, err := store.Packages(ctx)
		if err != nil {
			storeError(w, r, log, "failed to list packages", err)

			return
		}

		render.JSON(w, r, ListResponse{Response: resp.OK(), Data: packages})
	}
}

func Create(log *slog.Logger, store Storage, uploads media.Uploader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.packages.Create"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		payload, ok := decodeRequest(w, r, log, uploads)
		if !ok {
			return
		}

		if payload.Name == "" || payload.Price == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("name and price are required"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		pkg, err := store.CreatePackage(ctx, payload.toPackage())
		if err != nil {
			storeError(w, r, log, "failed to create package", err)

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{Response: resp.OK(), Data: pkg})
	}
}

func Update(log *slog.Logger, store Storage, uploads media.Uploader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.packages.Update"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		existing, err := store.PackageByID(ctx, chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("package not found"))

				return
			}

			storeError(w, r, log, "failed to load package", err)

			return
		}

		payload, ok := decodeRequest(w, r, log, uploads)
		if !ok {
			return
		}

		pkg := payload.toPackage()
		pkg.ID = existing.ID

		if pkg.Image == "" {
			pkg.Image = existing.Image
		}

		saved, err := store.UpdatePackage(ctx, pkg)
		if err != nil {
			storeError(w, r, log, "failed to update package", err)

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
		const op = "handlers.packages.Delete"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := chi.URLParam(r, "id")

		existing, err := store.PackageByID(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("package not found"))

				return
			}

			storeError(w, r, log, "failed to load package", err)

			return
		}

		if err := store.DeletePackage(ctx, id); err != nil {
			storeError(w, r, log, "failed to delete package", err)

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

func (p Request) toPackage() models.Package {
	features := []string(p.Features)
	if features == nil {
		features = []string{}
	}

	return models.Package{
		Name:        p.Name,
		Duration:    p.Duration,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Image:       p.Image,
		Features:    features,
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
		Name:        r.FormValue("name"),
		Duration:    r.FormValue("duration"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		Category:    r.FormValue("category"),
		Image:       r.FormValue("image"),
	}

	if v := r.FormValue("features"); v != "" {
		payload.Features = req.Split(v)
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
