package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"qrtrack/internal/models"

	"github.com/mssola/user_agent"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const resolveCacheTTL = 10 * time.Minute

// TrackerService is the scan hot path: resolve an inbound identifier to a
// live destination, record the visit, hand back the redirect target. The
// tracking half is strictly best-effort — a failed scan insert is logged
// and the visitor is still redirected.
type TrackerService struct {
	db     *gorm.DB
	rdb    *redis.Client
	logger *slog.Logger
	geo    *GeoService
}

func NewTrackerService(db *gorm.DB, rdb *redis.Client, logger *slog.Logger, geo *GeoService) *TrackerService {
	return &TrackerService{
		db:     db,
		rdb:    rdb,
		logger: logger,
		geo:    geo,
	}
}

// CleanIP strips the IPv6-mapped-IPv4 prefix and substitutes the 0.0.0.0
// sentinel when no address is available.
func CleanIP(ip string) string {
	ip = strings.TrimPrefix(ip, "::ffff:")
	if ip == "" {
		return "0.0.0.0"
	}
	return ip
}

// Resolve finds the code whose system identifier or custom alias matches.
// Redis caches identifier -> primary key only; both sides of that mapping
// are immutable, so the cache can never serve a stale destination. The
// destination itself is always read from the database.
func (s *TrackerService) Resolve(ctx context.Context, identifier string) (*models.QRCode, error) {
	var code models.QRCode

	if s.rdb != nil {
		val, err := s.rdb.Get(ctx, "resolve:"+identifier).Result()
		if err == nil {
			if pk, convErr := strconv.ParseUint(val, 10, 64); convErr == nil {
				if dbErr := s.db.First(&code, uint(pk)).Error; dbErr == nil {
					return &code, nil
				}
			}
		}
	}

	err := s.db.Where("identifier = ? OR custom_alias = ?", identifier, identifier).First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if s.rdb != nil {
		s.rdb.Set(ctx, "resolve:"+identifier, strconv.FormatUint(uint64(code.ID), 10), resolveCacheTTL)
	}

	return &code, nil
}

// Track appends a scan for code and returns the URL to redirect to. The
// scan is a single row INSERT so concurrent scans never lose each other.
// The destination is re-read after the append; if a URL update raced in,
// the visitor gets the newer URL. Every failure after resolution degrades:
// geo lookup to an empty location, the insert and the re-read to a logged
// warning, with the redirect served from the value read at resolve time.
func (s *TrackerService) Track(ctx context.Context, code *models.QRCode, rawIP, userAgent string) string {
	scan := models.Scan{
		QRCodeID:  code.ID,
		Timestamp: time.Now(),
		IPAddress: CleanIP(rawIP),
	}

	if userAgent == "" {
		scan.DeviceInfo = models.DeviceUnknown
	} else {
		scan.DeviceInfo = ClassifyDevice(userAgent)
		ua := user_agent.New(userAgent)
		name, version := ua.Browser()
		scan.Browser = strings.TrimSpace(name + " " + version)
		scan.OS = ua.OS()
	}

	loc := s.geo.Lookup(ctx, scan.IPAddress)
	scan.Country = loc.Country
	scan.City = loc.City

	if err := s.db.Create(&scan).Error; err != nil {
		s.logger.Error("Failed to record scan", "identifier", code.Identifier, "error", err)
	}

	var current struct{ CurrentURL string }
	err := s.db.Model(&models.QRCode{}).Select("current_url").Where("id = ?", code.ID).First(&current).Error
	if err != nil {
		s.logger.Warn("Failed to re-read destination, using resolved value", "identifier", code.Identifier, "error", err)
		return code.CurrentURL
	}

	return current.CurrentURL
}

// InvalidateResolve drops any cached resolution for the given keys. Called
// on delete so a reprinted identifier cannot resolve to a dead row.
func (s *TrackerService) InvalidateResolve(ctx context.Context, keys ...string) {
	if s.rdb == nil {
		return
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		s.rdb.Del(ctx, "resolve:"+key)
	}
}
