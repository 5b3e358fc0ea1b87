// Package db implements the article repository on PostgreSQL.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	readinglog "github.com/zombar/readinglog"
	"github.com/zombar/readinglog/models"
)

// DB wraps the database connection and provides data access methods.
type DB struct {
	conn *sql.DB
}

var _ readinglog.Repository = (*DB)(nil)

// Config contains database configuration.
type Config struct {
	DSN string // PostgreSQL connection string
}

// New creates a new database connection and runs pending migrations.
func New(config Config) (*DB, error) {
	conn, err := sql.Open("postgres", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// DB returns the underlying connection for stats collection.
func (db *DB) DB() *sql.DB {
	return db.conn
}

const articleColumns = `id, url, title, author, content, summary, tags, word_count, has_read, rating, snapshot_path, created_at, updated_at`

// Insert stores a new article. The uniqueness of url is enforced by the
// database constraint: of two concurrent inserts for the same URL exactly
// one sees a returned row, the other gets ErrDuplicateURL.
func (db *DB) Insert(ctx context.Context, article *models.Article) (*models.Article, error) {
	tagsJSON, err := json.Marshal(article.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		INSERT INTO articles (url, title, author, content, summary, tags, word_count, has_read, rating, snapshot_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		ON CONFLICT (url) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	stored := *article
	err = db.conn.QueryRowContext(ctx, query,
		article.URL,
		nullString(article.Title),
		nullString(article.Author),
		article.Content,
		nullString(article.Summary),
		string(tagsJSON),
		article.WordCount,
		article.HasRead,
		article.Rating,
		article.SnapshotPath,
	).Scan(&stored.ID, &stored.CreatedAt, &stored.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("url %q: %w", article.URL, readinglog.ErrDuplicateURL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert article: %w", err)
	}

	return &stored, nil
}

// FindByURL retrieves an article by URL, returning (nil, nil) when absent.
func (db *DB) FindByURL(ctx context.Context, url string) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE url = $1`
	return db.scanOne(db.conn.QueryRowContext(ctx, query, url))
}

// GetByID retrieves an article by id, returning (nil, nil) when absent.
func (db *DB) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`
	return db.scanOne(db.conn.QueryRowContext(ctx, query, id))
}

// List returns articles ordered newest first.
func (db *DB) List(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	rows, err := db.conn.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var results []*models.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}

	return results, nil
}

// Delete removes an article by id.
func (db *DB) Delete(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, "DELETE FROM articles WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return checkAffected(result, id)
}

// SetRead updates the read flag of an article.
func (db *DB) SetRead(ctx context.Context, id int64, hasRead bool) error {
	result, err := db.conn.ExecContext(ctx,
		"UPDATE articles SET has_read = $1, updated_at = NOW() WHERE id = $2", hasRead, id)
	if err != nil {
		return fmt.Errorf("failed to update read status: %w", err)
	}
	return checkAffected(result, id)
}

// SetRating updates the rating of an article. Ratings outside [0,5] are
// rejected before touching the database; the CHECK constraint is a backstop.
func (db *DB) SetRating(ctx context.Context, id int64, rating int) error {
	if rating < 0 || rating > 5 {
		return fmt.Errorf("rating %d is outside [0,5]: %w", rating, readinglog.ErrInvalidRating)
	}

	result, err := db.conn.ExecContext(ctx,
		"UPDATE articles SET rating = $1, updated_at = NOW() WHERE id = $2", rating, id)
	if err != nil {
		return fmt.Errorf("failed to update rating: %w", err)
	}
	return checkAffected(result, id)
}

// Count returns the number of stored articles.
func (db *DB) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

func checkAffected(result sql.Result, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("article %d: %w", id, readinglog.ErrNotFound)
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (db *DB) scanOne(row *sql.Row) (*models.Article, error) {
	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return article, err
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var (
		article      models.Article
		title        sql.NullString
		author       sql.NullString
		summary      sql.NullString
		tagsJSON     string
		snapshotPath sql.NullString
	)

	err := row.Scan(
		&article.ID,
		&article.URL,
		&title,
		&author,
		&article.Content,
		&summary,
		&tagsJSON,
		&article.WordCount,
		&article.HasRead,
		&article.Rating,
		&snapshotPath,
		&article.CreatedAt,
		&article.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan article: %w", err)
	}

	article.Title = fromNull(title)
	article.Author = fromNull(author)
	article.Summary = fromNull(summary)
	article.SnapshotPath = snapshotPath.String

	article.Tags = []string{}
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &article.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}

	return &article, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
