package readinglog

import (
	"context"

	"github.com/zombar/readinglog/models"
)

// Repository persists and reads article records. Lookup methods return
// (nil, nil) when no record matches; mutation methods wrap the package
// sentinel errors so callers can test with errors.Is.
type Repository interface {
	// FindByURL returns the record for a canonical URL, if any.
	FindByURL(ctx context.Context, url string) (*models.Article, error)
	// GetByID returns the record with the given id, if any.
	GetByID(ctx context.Context, id int64) (*models.Article, error)
	// Insert stores a new record and assigns its id. It is atomic with
	// respect to URL uniqueness: of concurrent inserts for the same URL,
	// exactly one succeeds and the rest fail with ErrDuplicateURL.
	Insert(ctx context.Context, article *models.Article) (*models.Article, error)
	// List returns records ordered newest first.
	List(ctx context.Context, limit, offset int) ([]*models.Article, error)
	// Delete removes a record, failing with ErrNotFound for unknown ids.
	Delete(ctx context.Context, id int64) error
	// SetRead updates the read flag, failing with ErrNotFound for unknown ids.
	SetRead(ctx context.Context, id int64, hasRead bool) error
	// SetRating updates the rating, failing with ErrInvalidRating outside
	// [0,5] and ErrNotFound for unknown ids.
	SetRating(ctx context.Context, id int64, rating int) error
	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)
}
