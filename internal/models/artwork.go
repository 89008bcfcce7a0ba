package models

import (
	"errors"
	"time"
)

// Artwork is a generated image stored in the gallery.
type Artwork struct {
	id          string
	sequence    int
	snapshot    MetricSnapshot
	prompt      string
	contentType string
	image       []byte
	createdAt   time.Time
}

// NewArtwork creates an unsaved artwork; the repository assigns ID and sequence.
func NewArtwork(snapshot MetricSnapshot, prompt, contentType string, image []byte) *Artwork {
	return &Artwork{
		snapshot:    snapshot,
		prompt:      prompt,
		contentType: contentType,
		image:       image,
		createdAt:   time.Now().UTC(),
	}
}

func (a *Artwork) ID() string               { return a.id }
func (a *Artwork) Sequence() int            { return a.sequence }
func (a *Artwork) Snapshot() MetricSnapshot { return a.snapshot }
func (a *Artwork) Prompt() string           { return a.prompt }
func (a *Artwork) ContentType() string      { return a.contentType }
func (a *Artwork) Image() []byte            { return a.image }
func (a *Artwork) CreatedAt() time.Time     { return a.createdAt }

func (a *Artwork) SetID(id string)          { a.id = id }
func (a *Artwork) SetSequence(seq int)      { a.sequence = seq }
func (a *Artwork) SetCreatedAt(t time.Time) { a.createdAt = t }

// Validate checks the artwork has a prompt, an image and an in-range score.
func (a *Artwork) Validate() error {
	if a.prompt == "" {
		return errors.New("prompt is required")
	}
	if len(a.image) == 0 {
		return errors.New("image is required")
	}
	if a.contentType == "" {
		return errors.New("content type is required")
	}
	return a.snapshot.Validate()
}
