package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shortener-backend/internal/domain"
	"shortener-backend/internal/repository"
	"shortener-backend/pkg/base62"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Storage реализует repository.Storage поверх GORM (PostgreSQL или SQLite)
type Storage struct {
	db  *gorm.DB
	log *zap.Logger
}

// New создает новый экземпляр storage
func New(db *gorm.DB, log *zap.Logger) *Storage {
	return &Storage{
		db:  db,
		log: log,
	}
}

// --- Link Methods ---

// CreateLink создает ссылку в две фазы внутри одной транзакции:
// вставка pending-строки, вычисление кода из выданного ID, запись кода.
// Любой выход без коммита (ошибка, паника, отмена ctx) откатывает транзакцию.
func (s *Storage) CreateLink(ctx context.Context, originalURL string) (*domain.Link, error) {
	var link domain.Link

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		link = domain.Link{
			OriginalURL: originalURL,
			State:       domain.LinkPending,
			CreatedAt:   nowUTC(),
		}

		// Фаза 1: получаем ID
		if err := tx.Create(&link).Error; err != nil {
			if isUniqueViolation(err) {
				return repository.ErrDuplicateURL
			}
			return fmt.Errorf("failed to insert pending link: %w", err)
		}
		if link.ID <= 0 {
			return fmt.Errorf("failed to insert pending link: invalid id %d", link.ID)
		}

		// Фаза 2: код детерминированно выводится из ID
		code := base62.Encode(uint64(link.ID))
		result := tx.Model(&domain.Link{}).
			Where("id = ? AND state = ?", link.ID, domain.LinkPending).
			Updates(map[string]interface{}{
				"short_code": code,
				"state":      domain.LinkCoded,
			})
		if result.Error != nil {
			if isUniqueViolation(result.Error) {
				return repository.ErrDuplicateCode
			}
			return fmt.Errorf("failed to assign short code: %w", result.Error)
		}
		if result.RowsAffected != 1 {
			return fmt.Errorf("failed to assign short code: %d rows affected", result.RowsAffected)
		}

		link.ShortCode = &code
		link.State = domain.LinkCoded
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateURL) {
			s.log.Debug("link already exists", zap.String("original_url", originalURL))
			return nil, err
		}
		s.log.Error("failed to create link", zap.String("original_url", originalURL), zap.Error(err))
		return nil, err
	}

	s.log.Info("created new link", zap.Int64("link_id", link.ID), zap.String("short_code", link.Code()))
	return &link, nil
}

// FindLinkByURL ищет ссылку по точному значению оригинального URL
func (s *Storage) FindLinkByURL(ctx context.Context, originalURL string) (*domain.Link, error) {
	return s.findLink(ctx, "original_url = ?", originalURL)
}

// FindLinkByCode ищет ссылку по короткому коду
func (s *Storage) FindLinkByCode(ctx context.Context, code string) (*domain.Link, error) {
	return s.findLink(ctx, "short_code = ?", code)
}

// FindLinkByID ищет ссылку по ID
func (s *Storage) FindLinkByID(ctx context.Context, id int64) (*domain.Link, error) {
	return s.findLink(ctx, "id = ?", id)
}

func (s *Storage) findLink(ctx context.Context, query string, arg interface{}) (*domain.Link, error) {
	var link domain.Link

	err := s.db.WithContext(ctx).
		Where(query, arg).
		Where("state = ?", domain.LinkCoded).
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrLinkNotFound
	}
	if err != nil {
		s.log.Error("failed to get link", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return &link, nil
}

// ListLinks возвращает все ссылки (новые первыми) с актуальным числом кликов
func (s *Storage) ListLinks(ctx context.Context) ([]domain.LinkSummary, error) {
	var links []domain.LinkSummary

	err := s.db.WithContext(ctx).
		Model(&domain.Link{}).
		Select("links.id, links.original_url, links.short_code, links.state, links.created_at, COUNT(clicks.id) AS click_count").
		Joins("LEFT JOIN clicks ON clicks.link_id = links.id").
		Where("links.state = ?", domain.LinkCoded).
		Group("links.id, links.original_url, links.short_code, links.state, links.created_at").
		Order("links.created_at DESC, links.id DESC").
		Scan(&links).Error
	if err != nil {
		s.log.Error("failed to list links", zap.Error(err))
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	return links, nil
}

// DeleteLink удаляет ссылку вместе со всеми кликами и возвращает её код
func (s *Storage) DeleteLink(ctx context.Context, id int64) (string, error) {
	var code string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link domain.Link
		err := tx.Where("id = ? AND state = ?", id, domain.LinkCoded).First(&link).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrLinkNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get link: %w", err)
		}

		// Каскад на уровне FK тоже есть, но SQLite без foreign_keys его не выполнит
		if err := tx.Where("link_id = ?", id).Delete(&domain.Click{}).Error; err != nil {
			return fmt.Errorf("failed to delete clicks: %w", err)
		}

		result := tx.Delete(&domain.Link{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete link: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return repository.ErrLinkNotFound
		}

		code = link.Code()
		return nil
	})
	if err != nil {
		if !errors.Is(err, repository.ErrLinkNotFound) {
			s.log.Error("failed to delete link", zap.Int64("link_id", id), zap.Error(err))
		}
		return "", err
	}

	s.log.Info("deleted link", zap.Int64("link_id", id), zap.String("short_code", code))
	return code, nil
}

// --- Click Methods ---

// InsertClick добавляет запись о клике
func (s *Storage) InsertClick(ctx context.Context, click *domain.Click) error {
	if click.ClickedAt.IsZero() {
		click.ClickedAt = nowUTC()
	}

	if err := s.db.WithContext(ctx).Omit("Link").Create(click).Error; err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrLinkNotFound
		}
		s.log.Error("failed to create click record", zap.Int64("link_id", click.LinkID), zap.Error(err))
		return fmt.Errorf("failed to create click: %w", err)
	}

	return nil
}

// ListClicks возвращает историю кликов ссылки, новые первыми
func (s *Storage) ListClicks(ctx context.Context, linkID int64) ([]domain.Click, error) {
	var clicks []domain.Click

	err := s.db.WithContext(ctx).
		Where("link_id = ?", linkID).
		Order("clicked_at DESC, id DESC").
		Find(&clicks).Error
	if err != nil {
		s.log.Error("failed to list clicks", zap.Int64("link_id", linkID), zap.Error(err))
		return nil, fmt.Errorf("failed to list clicks: %w", err)
	}

	return clicks, nil
}

// CountClicks возвращает количество кликов по ссылке
func (s *Storage) CountClicks(ctx context.Context, linkID int64) (int64, error) {
	var count int64

	err := s.db.WithContext(ctx).Model(&domain.Click{}).Where("link_id = ?", linkID).Count(&count).Error
	if err != nil {
		s.log.Error("failed to count clicks", zap.Int64("link_id", linkID), zap.Error(err))
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}

	return count, nil
}

// GetClicksByDevice возвращает статистику кликов по типам устройств для ссылки
func (s *Storage) GetClicksByDevice(ctx context.Context, linkID int64) (map[string]int64, error) {
	var results []struct {
		DeviceType string `gorm:"column:device_type"`
		Count      int64  `gorm:"column:count"`
	}

	err := s.db.WithContext(ctx).
		Model(&domain.Click{}).
		Select("COALESCE(device_type, 'unknown') as device_type, count(*) as count").
		Where("link_id = ?", linkID).
		Group("COALESCE(device_type, 'unknown')").
		Find(&results).Error

	if err != nil {
		s.log.Error("failed to get clicks by device", zap.Int64("link_id", linkID), zap.Error(err))
		return nil, fmt.Errorf("failed to get clicks by device: %w", err)
	}

	clicksByDevice := make(map[string]int64, len(results))
	for _, result := range results {
		clicksByDevice[result.DeviceType] += result.Count
	}

	return clicksByDevice, nil
}

// Ping проверяет доступность базы данных
func (s *Storage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// --- Helper Methods ---

var nowUTC = func() time.Time {
	return time.Now().UTC()
}

// isUniqueViolation распознает нарушение уникального индекса.
// TranslateError покрывает оба драйвера, текстовая проверка нужна для старых версий.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "sqlstate 23505")
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key constraint") ||
		strings.Contains(msg, "sqlstate 23503")
}
