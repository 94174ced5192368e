package request

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"rencar/internal/media"
)

// StringList accepts either a JSON array of strings or a single
// comma-separated string. Admin clients send both shapes.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = normalize(items)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	*l = Split(s)

	return nil
}

// Split turns a comma-separated string into a trimmed list, dropping empty
// entries.
func Split(s string) []string {
	return normalize(strings.Split(s, ","))
}

func normalize(items []string) []string {
	out := []string{}

	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}

func IsMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// UploadImage pulls the optional "image" file out of an already parsed
// multipart form, validates it and pushes it to the media store. Returns ""
// when no file was sent.
func UploadImage(r *http.Request, up media.Uploader, folder string) (string, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := media.ValidateImage(header.Filename, header.Size); err != nil {
		return "", err
	}

	return up.Upload(r.Context(), folder, header.Filename, file)
}
