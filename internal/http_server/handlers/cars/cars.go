package cars

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
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

const imageFolder = "rencar/cars"

type Storage interface {
	Cars(ctx context.Context) ([]models.Car, error)
	CarByID(ctx context.Context, id string) (models.Car, error)
	CreateCar(ctx context.Context, car models.Car) (models.Car, error)
	UpdateCar(ctx context.Context, car models.Car) (models.Car, error)
	DeleteCar(ctx context.Context, id string) error
}

type Request struct {
	Name           string         `json:"name"`
	Category       string         `json:"category"`
	Seats          int            `json:"seats"`
	Luggage        int            `json:"luggage"`
	Price          string         `json:"price"`
	DriverIncluded *bool          `json:"driverIncluded"`
	Image          string         `json:"image"`
	Highlight      req.StringList `json:"highlight"`
	Description    string         `json:"description"`
}

type Response struct {
	resp.Response
	Data models.Car `json:"data"`
}

type ListResponse struct {
	resp.Response
	Data []models.Car `json:"data"`
}

type DeleteResponse struct {
	resp.Response
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func List(log *slog.Logger, store Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.cars.List"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		cars, err := store.Cars(ctx)
		if err != nil {
			storeError(w, r, log, "failed to list cars", err)

			return
		}

		render.JSON(w, r, ListResponse{Response: resp.OK(), Data: cars})
	}
}

func Create(log *slog.Logger, store Storage, uploads media.Uploader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.cars.Create"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		payload, ok := decodeRequest(w, r, log, uploads)
		if !ok {
			return
		}

		if payload.Name == "" || payload.Category == "" || payload.Price == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("name, category and price are required"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		car, err := store.CreateCar(ctx, payload.toCar())
		if err != nil {
			storeError(w, r, log, "failed to create car", err)

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{Response: resp.OK(), Data: car})
	}
}

func Update(log *slog.Logger, store Storage, uploads media.Uploader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.cars.Update"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		existing, err := store.CarByID(ctx, chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("car not found"))

				return
			}

			storeError(w, r, log, "failed to load car", err)

			return
		}

		payload, ok := decodeRequest(w, r, log, uploads)
		if !ok {
			return
		}

		car := payload.toCar()
		car.ID = existing.ID

		// No new file and no image field: keep the current image.
		if car.Image == "" {
			car.Image = existing.Image
		}

		saved, err := store.UpdateCar(ctx, car)
		if err != nil {
			storeError(w, r, log, "failed to update car", err)

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
		const op = "handlers.cars.Delete"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := chi.URLParam(r, "id")

		existing, err := store.CarByID(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("car not found"))

				return
			}

			storeError(w, r, log, "failed to load car", err)

			return
		}

		if err := store.DeleteCar(ctx, id); err != nil {
			storeError(w, r, log, "failed to delete car", err)

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

func (p Request) toCar() models.Car {
	driverIncluded := true
	if p.DriverIncluded != nil {
		driverIncluded = *p.DriverIncluded
	}

	highlight := []string(p.Highlight)
	if highlight == nil {
		highlight = []string{}
	}

	return models.Car{
		Name:           p.Name,
		Category:       p.Category,
		Seats:          p.Seats,
		Luggage:        p.Luggage,
		Price:          p.Price,
		DriverIncluded: driverIncluded,
		Image:          p.Image,
		Highlight:      highlight,
		Description:    p.Description,
	}
}

// decodeRequest accepts JSON or multipart form bodies. A multipart "image"
// file is pushed to the media store and its URL takes the image field's
// place. Writes the error response itself and reports ok=false on failure.
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
		Category:    r.FormValue("category"),
		Price:       r.FormValue("price"),
		Image:       r.FormValue("image"),
		Description: r.FormValue("description"),
	}

	payload.Seats, _ = strconv.Atoi(r.FormValue("seats"))
	payload.Luggage, _ = strconv.Atoi(r.FormValue("luggage"))

	if v := r.FormValue("driverIncluded"); v != "" {
		included, err := strconv.ParseBool(v)
		if err == nil {
			payload.DriverIncluded = &included
		}
	}

	if v := r.FormValue("highlight"); v != "" {
		payload.Highlight = req.Split(v)
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
