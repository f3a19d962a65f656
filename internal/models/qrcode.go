package models

import (
	"time"
)

// QRCode is one generated code. The printed image encodes the redirect
// endpoint for Identifier (or CustomAlias), never the destination itself,
// so the destination can change after printing.
type QRCode struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	UserID      uint    `gorm:"not null;index" json:"user_id"`
	User        *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Identifier  string  `gorm:"unique;not null;size:36;index" json:"identifier"`
	CustomAlias *string `gorm:"uniqueIndex;size:64" json:"custom_alias,omitempty"`

	// OriginalURL is the destination supplied at creation and never changes.
	// CurrentURL is where a scan redirects right now.
	OriginalURL string `gorm:"not null;type:text" json:"original_url"`
	CurrentURL  string `gorm:"not null;type:text" json:"current_url"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	URLHistory []URLChange `gorm:"foreignKey:QRCodeID;constraint:OnDelete:CASCADE" json:"url_history,omitempty"`
	Scans      []Scan      `gorm:"foreignKey:QRCodeID;constraint:OnDelete:CASCADE" json:"scans,omitempty"`
}

func (QRCode) TableName() string {
	return "qr_codes"
}

// URLChange is one entry of a code's URL history. Rows are only ever
// inserted: the history is seeded with the creation URL and gains one row
// each time the destination is replaced (holding the URL that was live
// until that moment).
type URLChange struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	QRCodeID  uint      `gorm:"not null;index" json:"qr_code_id"`
	URL       string    `gorm:"not null;type:text" json:"url"`
	ChangedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"changed_at"`
}

func (URLChange) TableName() string {
	return "url_changes"
}
