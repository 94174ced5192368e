package media_test

import (
	"testing"

	"rencar/internal/media"

	"github.com/stretchr/testify/require"
)

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  error
	}{
		{name: "jpg", filename: "avanza.jpg", size: 1024},
		{name: "jpeg", filename: "avanza.jpeg", size: 1024},
		{name: "png", filename: "banner.png", size: 1024},
		{name: "webp", filename: "poster.webp", size: 1024},
		{name: "uppercase extension", filename: "AVANZA.JPG", size: 1024},
		{name: "gif", filename: "anim.gif", size: 1024, wantErr: media.ErrUnsupportedType},
		{name: "no extension", filename: "avanza", size: 1024, wantErr: media.ErrUnsupportedType},
		{name: "svg", filename: "logo.svg", size: 1024, wantErr: media.ErrUnsupportedType},
		{name: "at the limit", filename: "big.jpg", size: media.MaxImageSize},
		{name: "over the limit", filename: "big.jpg", size: media.MaxImageSize + 1, wantErr: media.ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := media.ValidateImage(tt.filename, tt.size)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestPublicIDFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "versioned delivery url",
			url:  "https://res.cloudinary.com/demo/image/upload/v1712345678/rencar/cars/avanza.jpg",
			want: "rencar/cars/avanza",
		},
		{
			name: "no version segment",
			url:  "https://res.cloudinary.com/demo/image/upload/rencar/banners/promo.png",
			want: "rencar/banners/promo",
		},
		{
			name: "not a cloudinary url",
			url:  "https://example.com/image/upload/v1/rencar/cars/avanza.jpg",
			want: "",
		},
		{
			name: "cloudinary url without upload path",
			url:  "https://res.cloudinary.com/demo/avanza.jpg",
			want: "",
		},
		{
			name: "empty",
			url:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, media.PublicIDFromURL(tt.url))
		})
	}
}
