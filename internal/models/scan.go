package models

import (
	"time"
)

// Device classes recorded on a scan. DeviceUnknown is reserved for requests
// without a User-Agent header; the classifier itself never returns it.
const (
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceDesktop = "Desktop"
	DeviceOther   = "Other"
	DeviceUnknown = "unknown"
)

// Scan is one recorded visit to a redirect URL. Scans are append-only: a
// visit is a single row INSERT, so concurrent visits to the same code can
// never overwrite each other. The scan count for a code is always a COUNT
// over this table, never a separately maintained counter.
type Scan struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QRCodeID   uint      `gorm:"not null;index" json:"qr_code_id"`
	Timestamp  time.Time `gorm:"default:CURRENT_TIMESTAMP;index" json:"timestamp"`
	IPAddress  string    `gorm:"size:45" json:"ip_address"`
	DeviceInfo string    `gorm:"size:20" json:"device_info"`
	Country    string    `gorm:"size:100" json:"country,omitempty"`
	City       string    `gorm:"size:100" json:"city,omitempty"`
	Browser    string    `gorm:"size:100" json:"browser,omitempty"`
	OS         string    `gorm:"size:100" json:"os,omitempty"`
}
