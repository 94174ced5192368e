// Package chat proxies the public assistant endpoint to Groq's
// OpenAI-compatible inference API, grounding every conversation in the
// current car fleet.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"rencar/internal/models"

	openai "github.com/sashabaranov/go-openai"
)

// ErrRateLimited surfaces the provider's 429 so the handler can answer 503.
var ErrRateLimited = errors.New("chat provider rate limited")

// maxHistory bounds how many prior messages are replayed for context.
const maxHistory = 10

const systemPrompt = `Kamu adalah asisten virtual untuk Sena Rencar, layanan rental mobil premium di Indonesia.

INFORMASI PERUSAHAAN:
- Nama: Sena Rencar
- Layanan: Rental mobil untuk berbagai kebutuhan (wisata, bisnis, acara khusus)
- Keunggulan: Armada terawat, driver profesional (opsional), harga kompetitif
- Area layanan: Indonesia (fokus utama)

TUGAS KAMU:
1. Bantu customer mencari mobil yang sesuai kebutuhan
2. Jelaskan harga dan layanan dengan ramah dan profesional
3. Jawab pertanyaan umum tentang rental mobil
4. Arahkan customer untuk booking/kontak jika tertarik

CARA MENJAWAB:
- Gunakan bahasa Indonesia yang sopan dan ramah
- Berikan informasi yang akurat berdasarkan data armada yang tersedia
- Jika ditanya tentang mobil tertentu, sebutkan detail lengkapnya (harga, kapasitas, fitur)
- Jika customer tertarik booking, sarankan mereka untuk menghubungi admin atau isi form kontak
- Jangan berikan informasi yang tidak kamu ketahui - lebih baik bilang "untuk informasi lebih lanjut silakan hubungi admin"

Selalu ramah, membantu, dan profesional!`

type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

type CarProvider interface {
	Cars(ctx context.Context) ([]models.Car, error)
}

type Service struct {
	log    *slog.Logger
	client *openai.Client
	model  string
	cars   CarProvider
}

func New(log *slog.Logger, apiKey, baseURL, model string, cars CarProvider) *Service {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Service{
		log:    log,
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		cars:   cars,
	}
}

// Reply answers a customer message, replaying at most the last ten history
// entries and injecting the live fleet as context.
func (s *Service) Reply(ctx context.Context, message string, history []Message) (string, error) {
	const op = "chat.Reply"

	cars, err := s.cars.Cars(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    buildMessages(message, history, cars),
		Temperature: 0.7,
		MaxTokens:   500,
		TopP:        0.9,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", ErrRateLimited
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: provider returned no choices", op)
	}

	return resp.Choices[0].Message.Content, nil
}

func buildMessages(message string, history []Message, cars []models.Car) []openai.ChatCompletionMessage {
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+3)

	messages = append(messages,
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: fleetContext(cars)},
	)

	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})
}

func fleetContext(cars []models.Car) string {
	var b strings.Builder

	b.WriteString("ARMADA TERSEDIA:\n")

	for _, car := range cars {
		fmt.Fprintf(&b, "- %s (%s): Rp %s/hari, %d kursi, %d bagasi",
			car.Name, car.Category, car.Price, car.Seats, car.Luggage)

		if car.DriverIncluded {
			b.WriteString(", dengan driver")
		}
		if len(car.Highlight) > 0 {
			fmt.Fprintf(&b, ", Fitur: %s", strings.Join(car.Highlight, ", "))
		}
		if car.Description != "" {
			fmt.Fprintf(&b, ". %s", car.Description)
		}

		b.WriteString("\n")
	}

	b.WriteString("\nGunakan informasi di atas untuk menjawab pertanyaan customer tentang mobil yang tersedia.")

	return b.String()
}
