package art

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/healthart/internal/auth"
	"github.com/desertthunder/healthart/internal/models"
	"github.com/desertthunder/healthart/internal/services"
	"github.com/desertthunder/healthart/internal/shared"
)

// Recorder stores finished artworks.
type Recorder interface {
	Create(art *models.Artwork) error
}

// Bridge connects the metrics provider to the image generator.
type Bridge struct {
	metrics  services.MetricsService
	images   services.ImageGenerator
	recorder Recorder
	logger   *log.Logger
}

// NewBridge creates a [Bridge]. recorder may be nil to skip the gallery.
func NewBridge(metrics services.MetricsService, images services.ImageGenerator, recorder Recorder, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.Default()
	}
	return &Bridge{
		metrics:  metrics,
		images:   images,
		recorder: recorder,
		logger:   shared.WithLogger(logger, "component", "art"),
	}
}

// FetchSnapshot reads the latest metrics with the session's access token.
func (b *Bridge) FetchSnapshot(ctx context.Context, token *auth.TokenRecord) (*models.MetricSnapshot, error) {
	if token == nil {
		return nil, fmt.Errorf("%w: no token", shared.ErrUnauthorized)
	}
	return b.metrics.FetchSnapshot(ctx, token.Token())
}

// BuildPrompt is [BuildPrompt] exposed on the bridge.
func (b *Bridge) BuildPrompt(snap models.MetricSnapshot) Prompt {
	return BuildPrompt(snap)
}

// RequestArt asks the image generator for one image. Failures are never retried.
func (b *Bridge) RequestArt(ctx context.Context, prompt Prompt) (*services.Image, error) {
	img, err := b.images.Generate(ctx, prompt.String())
	if err != nil {
		if errors.Is(err, shared.ErrArtGenerationFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrArtGenerationFailed, err)
	}
	if img == nil || len(img.Data) == 0 {
		return nil, fmt.Errorf("%w: %s returned no image", shared.ErrArtGenerationFailed, b.images.Name())
	}
	if !strings.HasPrefix(img.ContentType, "image/") {
		return nil, fmt.Errorf("%w: %s returned %q", shared.ErrArtGenerationFailed, b.images.Name(), img.ContentType)
	}
	return img, nil
}

// Render fetches a snapshot, builds its prompt and requests an image.
//
// The artwork is recorded when a [Recorder] is configured; a recording failure is logged only.
func (b *Bridge) Render(ctx context.Context, token *auth.TokenRecord) (*models.Artwork, error) {
	snap, err := b.FetchSnapshot(ctx, token)
	if err != nil {
		return nil, err
	}

	prompt := BuildPrompt(*snap)
	b.logger.Debug("prompt built", "score", snap.RecoveryScore, "metrics", PresentMetrics(*snap))

	img, err := b.RequestArt(ctx, prompt)
	if err != nil {
		return nil, err
	}

	artwork := models.NewArtwork(*snap, prompt.String(), img.ContentType, img.Data)
	if b.recorder != nil {
		if err := b.recorder.Create(artwork); err != nil {
			b.logger.Warn("failed to record artwork", "error", err)
		} else {
			b.logger.Info("artwork recorded", "id", artwork.ID(), "sequence", artwork.Sequence())
		}
	}

	return artwork, nil
}
