package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"shortener-backend/internal/domain"
	"shortener-backend/internal/repository"
	"shortener-backend/pkg/base62"
)

// MemStorage хранит ссылки и клики в памяти процесса.
// Все записи сериализуются мьютексом, поэтому pending-состояние никогда не видно читателям.
type MemStorage struct {
	mu          sync.RWMutex
	links       map[int64]*domain.Link
	linksByURL  map[string]int64
	linksByCode map[string]int64
	clicks      map[int64][]domain.Click
	linkCounter int64
	clickSeq    int64
	now         func() time.Time
}

func New() *MemStorage {
	return &MemStorage{
		links:       make(map[int64]*domain.Link),
		linksByURL:  make(map[string]int64),
		linksByCode: make(map[string]int64),
		clicks:      make(map[int64][]domain.Click),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// --- Link Methods ---

func (s *MemStorage) CreateLink(ctx context.Context, originalURL string) (*domain.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.linksByURL[originalURL]; exists {
		return nil, repository.ErrDuplicateURL
	}

	s.linkCounter++
	code := base62.Encode(uint64(s.linkCounter))
	if _, exists := s.linksByCode[code]; exists {
		return nil, repository.ErrDuplicateCode
	}

	link := &domain.Link{
		ID:          s.linkCounter,
		OriginalURL: originalURL,
		ShortCode:   &code,
		State:       domain.LinkCoded,
		CreatedAt:   s.now(),
	}
	s.links[link.ID] = link
	s.linksByURL[originalURL] = link.ID
	s.linksByCode[code] = link.ID

	return copyLink(link), nil
}

func (s *MemStorage) FindLinkByURL(ctx context.Context, originalURL string) (*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(s.linksByURL, originalURL)
}

func (s *MemStorage) FindLinkByCode(ctx context.Context, code string) (*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(s.linksByCode, code)
}

func (s *MemStorage) FindLinkByID(_ context.Context, id int64) (*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.links[id]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	return copyLink(link), nil
}

func (s *MemStorage) lookup(idx map[string]int64, key string) (*domain.Link, error) {
	id, ok := idx[key]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	return copyLink(s.links[id]), nil
}

func (s *MemStorage) ListLinks(_ context.Context) ([]domain.LinkSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.LinkSummary, 0, len(s.links))
	for id, link := range s.links {
		out = append(out, domain.LinkSummary{
			Link:       *copyLink(link),
			ClickCount: int64(len(s.clicks[id])),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemStorage) DeleteLink(_ context.Context, id int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[id]
	if !ok {
		return "", repository.ErrLinkNotFound
	}
	code := link.Code()

	delete(s.links, id)
	delete(s.linksByURL, link.OriginalURL)
	delete(s.linksByCode, code)
	delete(s.clicks, id)
	return code, nil
}

// --- Click Methods ---

func (s *MemStorage) InsertClick(ctx context.Context, click *domain.Click) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.links[click.LinkID]; !ok {
		return repository.ErrLinkNotFound
	}
	if click.ClickedAt.IsZero() {
		click.ClickedAt = s.now()
	}
	s.clickSeq++
	click.ID = s.clickSeq
	s.clicks[click.LinkID] = append(s.clicks[click.LinkID], *click)
	return nil
}

func (s *MemStorage) ListClicks(_ context.Context, linkID int64) ([]domain.Click, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.clicks[linkID]
	out := make([]domain.Click, len(stored))
	copy(out, stored)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ClickedAt.Equal(out[j].ClickedAt) {
			return out[i].ClickedAt.After(out[j].ClickedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemStorage) CountClicks(_ context.Context, linkID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.clicks[linkID])), nil
}

func (s *MemStorage) GetClicksByDevice(_ context.Context, linkID int64) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byDevice := make(map[string]int64)
	for i := range s.clicks[linkID] {
		byDevice[s.clicks[linkID][i].GetDeviceType()]++
	}
	return byDevice, nil
}

func (s *MemStorage) Ping(ctx context.Context) error {
	return ctx.Err()
}

func copyLink(l *domain.Link) *domain.Link {
	c := *l
	if l.ShortCode != nil {
		code := *l.ShortCode
		c.ShortCode = &code
	}
	return &c
}
