package health

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
)

type Response struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, Response{
			Status:    "ok",
			Timestamp: time.Now().UTC(),
		})
	}
}
