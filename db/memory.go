package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	readinglog "github.com/zombar/readinglog"
	"github.com/zombar/readinglog/models"
)

// Memory is an in-process Repository backed by a map. It is used by the
// memory storage driver and throughout the test suite.
type Memory struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.Article
	byURL  map[string]int64
}

var _ readinglog.Repository = (*Memory)(nil)

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		nextID: 1,
		byID:   make(map[int64]*models.Article),
		byURL:  make(map[string]int64),
	}
}

func (m *Memory) Insert(ctx context.Context, article *models.Article) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byURL[article.URL]; exists {
		return nil, fmt.Errorf("url %q: %w", article.URL, readinglog.ErrDuplicateURL)
	}

	stored := cloneArticle(article)
	stored.ID = m.nextID
	m.nextID++
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	m.byID[stored.ID] = stored
	m.byURL[stored.URL] = stored.ID

	return cloneArticle(stored), nil
}

func (m *Memory) FindByURL(ctx context.Context, url string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byURL[url]
	if !ok {
		return nil, nil
	}
	return cloneArticle(m.byID[id]), nil
}

func (m *Memory) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	article, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return cloneArticle(article), nil
}

func (m *Memory) List(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]*models.Article, 0, len(m.byID))
	for _, article := range m.byID {
		all = append(all, article)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}

	results := make([]*models.Article, len(all))
	for i, article := range all {
		results[i] = cloneArticle(article)
	}
	return results, nil
}

func (m *Memory) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	article, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("article %d: %w", id, readinglog.ErrNotFound)
	}
	delete(m.byURL, article.URL)
	delete(m.byID, id)
	return nil
}

func (m *Memory) SetRead(ctx context.Context, id int64, hasRead bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	article, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("article %d: %w", id, readinglog.ErrNotFound)
	}
	article.HasRead = hasRead
	article.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Memory) SetRating(ctx context.Context, id int64, rating int) error {
	if rating < 0 || rating > 5 {
		return fmt.Errorf("rating %d is outside [0,5]: %w", rating, readinglog.ErrInvalidRating)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	article, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("article %d: %w", id, readinglog.ErrNotFound)
	}
	article.Rating = rating
	article.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Memory) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.byID)), nil
}

func cloneArticle(a *models.Article) *models.Article {
	clone := *a
	if a.Tags != nil {
		clone.Tags = append([]string(nil), a.Tags...)
	}
	clone.Title = cloneString(a.Title)
	clone.Author = cloneString(a.Author)
	clone.Summary = cloneString(a.Summary)
	return &clone
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
