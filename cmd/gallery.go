package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/healthart/internal/formatter"
	"github.com/desertthunder/healthart/internal/models"
	"github.com/desertthunder/healthart/internal/shared"
	"github.com/desertthunder/healthart/internal/ui"
	"github.com/urfave/cli/v3"
)

// artworkSummary is the JSON shape of a gallery entry; image bytes are left out.
type artworkSummary struct {
	ID          string                `json:"id"`
	Sequence    int                   `json:"sequence"`
	Snapshot    models.MetricSnapshot `json:"snapshot"`
	Prompt      string                `json:"prompt"`
	ContentType string                `json:"content_type"`
	Bytes       int                   `json:"bytes"`
	CreatedAt   time.Time             `json:"created_at"`
}

func summarize(a *models.Artwork) artworkSummary {
	return artworkSummary{
		ID:          a.ID(),
		Sequence:    a.Sequence(),
		Snapshot:    a.Snapshot(),
		Prompt:      a.Prompt(),
		ContentType: a.ContentType(),
		Bytes:       len(a.Image()),
		CreatedAt:   a.CreatedAt(),
	}
}

// GalleryList lists stored artworks, newest first.
func (r *Runner) GalleryList(ctx context.Context, cmd *cli.Command) error {
	limit := int(cmd.Int("limit"))
	offset := int(cmd.Int("offset"))

	db, repo, err := r.openGallery()
	if err != nil {
		return err
	}
	defer db.Close()

	artworks, err := repo.List(limit, offset)
	if err != nil {
		return fmt.Errorf("failed to list artworks: %w", err)
	}

	switch {
	case cmd.Bool("csv"):
		data, err := formatter.ExportToCSV(artworks)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	case cmd.Bool("json"):
		summaries := make([]artworkSummary, 0, len(artworks))
		for _, a := range artworks {
			summaries = append(summaries, summarize(a))
		}
		return r.writeJSON(summaries, cmd.Bool("pretty"))
	}

	total, err := repo.Count()
	if err != nil {
		return fmt.Errorf("failed to count artworks: %w", err)
	}

	r.writePlainHeader(fmt.Sprintf("Gallery (%d of %d)", len(artworks), total))
	if len(artworks) == 0 {
		return r.writePlain("%s\n", ui.Styles.Help("No artworks yet. Run 'healthart login' or 'healthart serve'."))
	}

	for _, a := range artworks {
		snap := a.Snapshot()
		score := ui.Styles.Band(snap.RecoveryScore).Render(formatter.FormatMetric(&snap.RecoveryScore) + "%")
		r.writePlain("%3d. %s  %s  %s\n", a.Sequence(), a.ID(), score, a.CreatedAt().Local().Format(time.DateTime))
	}
	return nil
}

// GalleryExport writes one artwork and its README into a directory.
func (r *Runner) GalleryExport(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: artwork id", shared.ErrMissingArgument)
	}

	db, repo, err := r.openGallery()
	if err != nil {
		return err
	}
	defer db.Close()

	artwork, err := repo.Get(id)
	if err != nil {
		return err
	}

	result, err := formatter.WriteExport(artwork, cmd.String("dir"))
	if err != nil {
		return err
	}

	r.logger.Info("artwork exported", "id", id, "dir", result.Directory)
	r.writePlain("%s Exported to %s\n", ui.Styles.OK("✓"), result.Directory)
	r.writePlain("  %s\n  %s\n", result.Image, result.Readme)
	return nil
}

// GalleryDelete removes one artwork.
func (r *Runner) GalleryDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: artwork id", shared.ErrMissingArgument)
	}

	db, repo, err := r.openGallery()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repo.Delete(id); err != nil {
		return err
	}
	return r.writePlain("%s Deleted %s\n", ui.Styles.OK("✓"), id)
}
