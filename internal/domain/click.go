package domain

import "time"

// DeviceUnknown используется, когда тип устройства не удалось определить
const DeviceUnknown = "unknown"

// Click представляет клик по сокращенной ссылке
type Click struct {
	ID         int64     `gorm:"primaryKey;column:id" json:"id"`
	LinkID     int64     `gorm:"column:link_id;not null;index" json:"link_id"`
	ClickedAt  time.Time `gorm:"column:clicked_at;not null;index" json:"clicked_at"`
	IPAddress  *string   `gorm:"column:ip_address;size:45" json:"ip_address"`
	UserAgent  *string   `gorm:"column:user_agent;type:text" json:"user_agent"`
	DeviceType *string   `gorm:"column:device_type;size:10" json:"device_type,omitempty"` // 'desktop', 'mobile', 'tablet', 'bot'
	Browser    *string   `gorm:"column:browser;size:50" json:"browser,omitempty"`
	OS         *string   `gorm:"column:os;size:50" json:"os,omitempty"`
	Country    *string   `gorm:"column:country;size:2" json:"country,omitempty"` // ISO код страны
	City       *string   `gorm:"column:city;size:100" json:"city,omitempty"`

	// Relationships
	Link *Link `gorm:"foreignKey:LinkID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName возвращает название таблицы для GORM
func (Click) TableName() string {
	return "clicks"
}

// GetDeviceType возвращает тип устройства или "unknown"
func (c *Click) GetDeviceType() string {
	if c.DeviceType != nil && *c.DeviceType != "" {
		return *c.DeviceType
	}
	return DeviceUnknown
}
