package repository

import (
	"context"
	"errors"

	"shortener-backend/internal/domain"
)

var (
	ErrLinkNotFound  = errors.New("link not found")
	ErrDuplicateURL  = errors.New("original url already exists")
	ErrDuplicateCode = errors.New("short code already exists")
)

type Storage interface {
	// Link methods
	CreateLink(ctx context.Context, originalURL string) (*domain.Link, error)
	FindLinkByURL(ctx context.Context, originalURL string) (*domain.Link, error)
	FindLinkByCode(ctx context.Context, code string) (*domain.Link, error)
	FindLinkByID(ctx context.Context, id int64) (*domain.Link, error)
	ListLinks(ctx context.Context) ([]domain.LinkSummary, error)
	DeleteLink(ctx context.Context, id int64) (string, error)

	// Click methods
	InsertClick(ctx context.Context, click *domain.Click) error
	ListClicks(ctx context.Context, linkID int64) ([]domain.Click, error)
	CountClicks(ctx context.Context, linkID int64) (int64, error)
	GetClicksByDevice(ctx context.Context, linkID int64) (map[string]int64, error)

	Ping(ctx context.Context) error
}
