package chat

import (
	"fmt"
	"testing"

	"rencar/internal/models"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

func TestBuildMessages(t *testing.T) {
	t.Run("system prompts come first, user message last", func(t *testing.T) {
		messages := buildMessages("Halo, ada mobil apa saja?", nil, nil)

		require.Len(t, messages, 3)
		require.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
		require.Equal(t, systemPrompt, messages[0].Content)
		require.Equal(t, openai.ChatMessageRoleSystem, messages[1].Role)
		require.Contains(t, messages[1].Content, "ARMADA TERSEDIA")
		require.Equal(t, openai.ChatMessageRoleUser, messages[2].Role)
		require.Equal(t, "Halo, ada mobil apa saja?", messages[2].Content)
	})

	t.Run("history is replayed in order", func(t *testing.T) {
		history := []Message{
			{Role: "user", Content: "Ada Avanza?"},
			{Role: "assistant", Content: "Ada, Rp 350.000/hari."},
		}

		messages := buildMessages("Boleh tanpa driver?", history, nil)

		require.Len(t, messages, 5)
		require.Equal(t, "Ada Avanza?", messages[2].Content)
		require.Equal(t, "Ada, Rp 350.000/hari.", messages[3].Content)
		require.Equal(t, "Boleh tanpa driver?", messages[4].Content)
	})

	t.Run("history is trimmed to the last ten entries", func(t *testing.T) {
		history := make([]Message, 0, 25)
		for i := 0; i < 25; i++ {
			history = append(history, Message{Role: "user", Content: fmt.Sprintf("pesan %d", i)})
		}

		messages := buildMessages("terakhir", history, nil)

		require.Len(t, messages, 2+maxHistory+1)
		require.Equal(t, "pesan 15", messages[2].Content)
		require.Equal(t, "pesan 24", messages[2+maxHistory-1].Content)
		require.Equal(t, "terakhir", messages[len(messages)-1].Content)
	})
}

func TestFleetContext(t *testing.T) {
	t.Run("full car line", func(t *testing.T) {
		got := fleetContext([]models.Car{{
			Name:           "Toyota Avanza",
			Category:       "MPV",
			Seats:          7,
			Luggage:        3,
			Price:          "350.000",
			DriverIncluded: true,
			Highlight:      []string{"AC Dingin", "Irit BBM"},
			Description:    "Pilihan favorit keluarga.",
		}})

		require.Contains(t, got, "- Toyota Avanza (MPV): Rp 350.000/hari, 7 kursi, 3 bagasi, dengan driver, Fitur: AC Dingin, Irit BBM. Pilihan favorit keluarga.")
	})

	t.Run("optional parts are omitted", func(t *testing.T) {
		got := fleetContext([]models.Car{{
			Name:     "Brio",
			Category: "City Car",
			Seats:    5,
			Luggage:  2,
			Price:    "250.000",
		}})

		require.Contains(t, got, "- Brio (City Car): Rp 250.000/hari, 5 kursi, 2 bagasi\n")
		require.NotContains(t, got, "dengan driver")
		require.NotContains(t, got, "Fitur:")
	})

	t.Run("empty fleet still frames the context", func(t *testing.T) {
		got := fleetContext(nil)

		require.Contains(t, got, "ARMADA TERSEDIA:")
		require.Contains(t, got, "Gunakan informasi di atas")
	})
}
