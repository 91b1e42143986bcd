package domain

import "time"

// LinkState отражает этап двухфазного создания ссылки
type LinkState string

const (
	// LinkPending строка вставлена, код ещё не присвоен. Читателям не показывается.
	LinkPending LinkState = "pending"
	// LinkCoded код присвоен, ссылка полностью инициализирована
	LinkCoded LinkState = "coded"
)

// Link представляет сокращенную ссылку
type Link struct {
	ID          int64     `gorm:"primaryKey;column:id" json:"id"`
	OriginalURL string    `gorm:"column:original_url;size:2048;not null;uniqueIndex" json:"original_url"`
	ShortCode   *string   `gorm:"column:short_code;size:16;uniqueIndex" json:"short_code"`
	State       LinkState `gorm:"column:state;size:10;not null;default:pending;index" json:"-"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;index" json:"created_at"`
}

// TableName возвращает название таблицы для GORM
func (Link) TableName() string {
	return "links"
}

// Code возвращает короткий код или пустую строку для pending-ссылки
func (l *Link) Code() string {
	if l.ShortCode == nil {
		return ""
	}
	return *l.ShortCode
}

// IsCoded проверяет, завершено ли создание ссылки
func (l *Link) IsCoded() bool {
	return l.State == LinkCoded && l.ShortCode != nil && *l.ShortCode != ""
}

// LinkSummary ссылка вместе с текущим количеством кликов
type LinkSummary struct {
	Link
	ClickCount int64 `gorm:"column:click_count" json:"clicks"`
}
