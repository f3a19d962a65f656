package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"qrtrack/internal/models"

	"gorm.io/gorm"
)

type DailyStat struct {
	Date  string `json:"date"`
	Scans int64  `json:"scans"`
}

type HourlyStat struct {
	Hour  string `json:"hour"`
	Scans int64  `json:"scans"`
}

type DeviceStat struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type CodeAnalytics struct {
	TotalScans     int64        `json:"totalScans"`
	UniqueVisitors int64        `json:"uniqueVisitors"`
	DaysActive     int          `json:"daysActive"`
	ScansPerDay    string       `json:"scansPerDay"`
	LastScan       *time.Time   `json:"lastScan"`
	DailyStats     []DailyStat  `json:"dailyStats"`
	HourlyStats    []HourlyStat `json:"hourlyStats"`
	DeviceStats    []DeviceStat `json:"deviceStats"`
}

type GlobalAnalytics struct {
	TotalScans     int64        `json:"totalScans"`
	UniqueVisitors int64        `json:"uniqueVisitors"`
	DailyStats     []DailyStat  `json:"dailyStats"`
	HourlyStats    []HourlyStat `json:"hourlyStats"`
	DeviceStats    []DeviceStat `json:"deviceStats"`
}

// AnalyticsService reduces append-only scan logs into summary statistics.
// Strictly read-only; identical inputs produce identical outputs.
type AnalyticsService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db, now: time.Now}
}

// ForCode computes analytics for one code, owner-scoped.
func (s *AnalyticsService) ForCode(userID uint, identifier string) (*CodeAnalytics, error) {
	var code models.QRCode
	err := s.db.Where("identifier = ? AND user_id = ?", identifier, userID).First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var scans []models.Scan
	if err := s.db.Where("qr_code_id = ?", code.ID).Order("timestamp ASC").Find(&scans).Error; err != nil {
		return nil, err
	}

	total := int64(len(scans))
	daysActive := s.daysActive(code.CreatedAt)

	uniqueIPs := make(map[string]struct{}, len(scans))
	daily := make(map[string]int64)
	var hourly [24]int64
	devices := make(map[string]int64)
	var lastScan *time.Time

	for i := range scans {
		scan := &scans[i]
		uniqueIPs[scan.IPAddress] = struct{}{}
		daily[scan.Timestamp.UTC().Format("2006-01-02")]++
		hourly[scan.Timestamp.Hour()]++

		device := scan.DeviceInfo
		if device == "" {
			device = models.DeviceUnknown
		}
		devices[device]++

		if lastScan == nil || scan.Timestamp.After(*lastScan) {
			ts := scan.Timestamp
			lastScan = &ts
		}
	}

	return &CodeAnalytics{
		TotalScans:     total,
		UniqueVisitors: int64(len(uniqueIPs)),
		DaysActive:     daysActive,
		ScansPerDay:    fmt.Sprintf("%.2f", float64(total)/float64(daysActive)),
		LastScan:       lastScan,
		DailyStats:     sortedDailyStats(daily),
		HourlyStats:    hourlyStats(hourly),
		DeviceStats:    deviceStats(devices),
	}, nil
}

// Global computes the same shapes across all of one owner's codes. Counts
// come from SQL aggregates and the histograms from a single streaming pass
// over a scans cursor, so no scan log is ever held in memory whole.
func (s *AnalyticsService) Global(userID uint) (*GlobalAnalytics, error) {
	base := func() *gorm.DB {
		return s.db.Model(&models.Scan{}).
			Joins("JOIN qr_codes ON qr_codes.id = scans.qr_code_id").
			Where("qr_codes.user_id = ?", userID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, err
	}

	var unique int64
	if err := base().Distinct("scans.ip_address").Count(&unique).Error; err != nil {
		return nil, err
	}

	var deviceRows []struct {
		DeviceInfo string
		Count      int64
	}
	err := base().
		Select("scans.device_info, count(*) as count").
		Group("scans.device_info").
		Scan(&deviceRows).Error
	if err != nil {
		return nil, err
	}
	devices := make(map[string]int64, len(deviceRows))
	for _, row := range deviceRows {
		name := row.DeviceInfo
		if name == "" {
			name = models.DeviceUnknown
		}
		devices[name] += row.Count
	}

	daily := make(map[string]int64)
	var hourly [24]int64

	rows, err := base().Select("scans.timestamp").Order("scans.timestamp ASC").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		daily[ts.UTC().Format("2006-01-02")]++
		hourly[ts.Hour()]++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &GlobalAnalytics{
		TotalScans:     total,
		UniqueVisitors: unique,
		DailyStats:     sortedDailyStats(daily),
		HourlyStats:    hourlyStats(hourly),
		DeviceStats:    deviceStats(devices),
	}, nil
}

// daysActive is at least 1 so a brand-new code never divides by zero.
func (s *AnalyticsService) daysActive(createdAt time.Time) int {
	elapsed := s.now().Sub(createdAt)
	days := int(math.Ceil(elapsed.Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

func sortedDailyStats(daily map[string]int64) []DailyStat {
	stats := make([]DailyStat, 0, len(daily))
	for date, count := range daily {
		stats = append(stats, DailyStat{Date: date, Scans: count})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Date < stats[j].Date })
	return stats
}

// hourlyStats always returns 24 buckets in hour order, zero-filled.
func hourlyStats(hourly [24]int64) []HourlyStat {
	stats := make([]HourlyStat, 24)
	for hour := 0; hour < 24; hour++ {
		stats[hour] = HourlyStat{
			Hour:  fmt.Sprintf("%02d:00", hour),
			Scans: hourly[hour],
		}
	}
	return stats
}

func deviceStats(devices map[string]int64) []DeviceStat {
	stats := make([]DeviceStat, 0, len(devices))
	for name, count := range devices {
		stats = append(stats, DeviceStat{Name: name, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}
