package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/healthart/internal/models"
	"github.com/desertthunder/healthart/internal/shared"
)

var _ models.Repository[*models.Artwork] = (*ArtworkRepository)(nil)

// ArtworkRepository implements [models.Repository] for [models.Artwork] persistence.
type ArtworkRepository struct {
	db *sql.DB
}

// NewArtworkRepository creates a new [ArtworkRepository] with the given database connection
func NewArtworkRepository(db *sql.DB) *ArtworkRepository {
	return &ArtworkRepository{db: db}
}

const artworkColumns = `id, sequence, recovery_score, sleep_quality, strain, hrv, prompt, content_type, image, created_at`

// Create validates and inserts an artwork, assigning its ID and sequence.
func (r *ArtworkRepository) Create(art *models.Artwork) error {
	if err := art.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "artworks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	snap := art.Snapshot()

	query := `INSERT INTO artworks (` + artworkColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.Exec(query,
		id, sequence, snap.RecoveryScore,
		nullable(snap.SleepQuality), nullable(snap.Strain), nullable(snap.HRV),
		art.Prompt(), art.ContentType(), art.Image(), art.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert artwork: %w", err)
	}

	art.SetID(id)
	art.SetSequence(sequence)
	return nil
}

// Get retrieves an artwork by ID, returning [shared.ErrArtworkNotFound] when absent.
func (r *ArtworkRepository) Get(id string) (*models.Artwork, error) {
	row := r.db.QueryRow(`SELECT `+artworkColumns+` FROM artworks WHERE id = ?`, id)

	art, err := scanArtwork(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrArtworkNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query artwork: %w", err)
	}
	return art, nil
}

// Delete removes an artwork by ID.
func (r *ArtworkRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM artworks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete artwork: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrArtworkNotFound, id)
	}
	return nil
}

// List returns artworks newest first. A non-positive limit defaults to 20.
func (r *ArtworkRepository) List(limit, offset int) ([]*models.Artwork, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(`SELECT `+artworkColumns+` FROM artworks ORDER BY sequence DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query artworks: %w", err)
	}
	defer rows.Close()

	var artworks []*models.Artwork
	for rows.Next() {
		art, err := scanArtwork(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artwork: %w", err)
		}
		artworks = append(artworks, art)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating artworks: %w", err)
	}
	return artworks, nil
}

// Count returns the number of stored artworks.
func (r *ArtworkRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM artworks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count artworks: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArtwork(s scanner) (*models.Artwork, error) {
	var (
		id          string
		sequence    int
		score       float64
		sleep       sql.NullFloat64
		strain      sql.NullFloat64
		hrv         sql.NullFloat64
		prompt      string
		contentType string
		image       []byte
		createdAt   time.Time
	)

	if err := s.Scan(&id, &sequence, &score, &sleep, &strain, &hrv, &prompt, &contentType, &image, &createdAt); err != nil {
		return nil, err
	}

	snap := models.MetricSnapshot{
		RecoveryScore: score,
		SleepQuality:  pointer(sleep),
		Strain:        pointer(strain),
		HRV:           pointer(hrv),
	}

	art := models.NewArtwork(snap, prompt, contentType, image)
	art.SetID(id)
	art.SetSequence(sequence)
	art.SetCreatedAt(createdAt)
	return art, nil
}
