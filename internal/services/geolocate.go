package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"qrtrack/internal/config"

	"github.com/oschwald/geoip2-golang"
)

// Location is a coarse, best-effort position for a scanning client. Both
// fields may be empty; an empty Location means the lookup was skipped or
// failed and is never an error condition.
type Location struct {
	Country string `json:"country,omitempty"`
	City    string `json:"city,omitempty"`
}

type geoReader interface {
	City(ip net.IP) (*geoip2.City, error)
	Close() error
}

type providerResponse struct {
	Status  string `json:"status"`
	Country string `json:"country"`
	City    string `json:"city"`
}

// GeoService resolves client IPs to a (country, city) pair. It prefers a
// local MaxMind database when one is configured and readable; otherwise it
// makes a single bounded-timeout HTTP call to the configured provider per
// lookup. Either way a failed lookup degrades to an empty Location.
type GeoService struct {
	cfg       config.Config
	logger    *slog.Logger
	client    *http.Client
	geoReader geoReader
	geoLock   sync.RWMutex
}

func NewGeoService(cfg config.Config, logger *slog.Logger) *GeoService {
	timeout := time.Duration(cfg.GeoTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &GeoService{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: timeout},
	}
}

// Init opens the local GeoIP database if one is configured. Failure to open
// it is logged and the service falls back to the HTTP provider.
func (s *GeoService) Init() {
	if s.cfg.GeoIPDBPath == "" {
		return
	}

	reader, err := geoip2.Open(s.cfg.GeoIPDBPath)
	if err != nil {
		s.logger.Warn("Geo: failed to open local database, using HTTP provider", "path", s.cfg.GeoIPDBPath, "error", err)
		return
	}

	s.geoLock.Lock()
	s.geoReader = reader
	s.geoLock.Unlock()
	s.logger.Info("Geo: using local database", "path", s.cfg.GeoIPDBPath)
}

func (s *GeoService) Close() {
	s.geoLock.Lock()
	defer s.geoLock.Unlock()
	if s.geoReader != nil {
		s.geoReader.Close()
		s.geoReader = nil
	}
}

// Lookup resolves ip to a best-effort Location. It never returns an error:
// loopback addresses short-circuit, and any provider or database failure
// degrades to an empty Location. One attempt per call, no retry.
func (s *GeoService) Lookup(ctx context.Context, ip string) Location {
	if ip == "" || ip == "127.0.0.1" || ip == "::1" || ip == "localhost" {
		return Location{}
	}

	s.geoLock.RLock()
	reader := s.geoReader
	s.geoLock.RUnlock()

	if reader != nil {
		return s.lookupLocal(reader, ip)
	}
	return s.lookupProvider(ctx, ip)
}

func (s *GeoService) lookupLocal(reader geoReader, ipStr string) Location {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return Location{}
	}

	record, err := reader.City(ip)
	if err != nil {
		s.logger.Warn("Geo: local lookup failed", "ip", ipStr, "error", err)
		return Location{}
	}

	loc := Location{City: record.City.Names["en"]}
	if name, ok := record.Country.Names["en"]; ok {
		loc.Country = name
	} else {
		loc.Country = record.Country.IsoCode
	}
	return loc
}

func (s *GeoService) lookupProvider(ctx context.Context, ip string) Location {
	url := fmt.Sprintf("%s/json/%s", s.cfg.GeoProvider, ip)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		s.logger.Warn("Geo: building provider request failed", "ip", ip, "error", err)
		return Location{}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("Geo: provider lookup failed", "ip", ip, "error", err)
		return Location{}
	}
	defer resp.Body.Close()

	var body providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		s.logger.Warn("Geo: malformed provider response", "ip", ip, "error", err)
		return Location{}
	}

	if body.Status != "success" {
		return Location{}
	}

	return Location{Country: body.Country, City: body.City}
}
