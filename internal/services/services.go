package services

import (
	"context"

	"github.com/desertthunder/healthart/internal/models"
	"golang.org/x/oauth2"
)

// MetricsService fetches the latest metric snapshot for an authenticated user.
type MetricsService interface {
	// FetchSnapshot returns the newest scored record visible to token.
	FetchSnapshot(ctx context.Context, token *oauth2.Token) (*models.MetricSnapshot, error)

	// Name returns the name of the provider (e.g., "WHOOP")
	Name() string
}

// ImageGenerator renders a text prompt into an image.
type ImageGenerator interface {
	// Generate produces exactly one image for prompt.
	Generate(ctx context.Context, prompt string) (*Image, error)

	// Name returns the name of the generator (e.g., "OpenAI")
	Name() string
}

// Image is a generated image and its detected content type.
type Image struct {
	Data          []byte
	ContentType   string
	RevisedPrompt string
}
