package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"qrtrack/internal/models"
	"qrtrack/pkg/utils"

	"gorm.io/gorm"
)

var (
	// ErrNotFound covers both a genuinely missing code and an ownership
	// miss: non-owners are told "not found" so they cannot probe for
	// identifiers that exist.
	ErrNotFound = errors.New("qr code not found")

	ErrAliasTaken = errors.New("custom alias already taken")
)

type GenerateDTO struct {
	UserID      uint
	TargetURL   string
	CustomAlias string
	IPAddress   string // for the audit trail
}

type GenerateResult struct {
	Code       *models.QRCode
	ImageData  string // PNG data URL encoding the redirect endpoint
	TargetURL  string
	Identifier string
}

// CodeService owns the lifecycle of QR code records: creation, destination
// updates, owner-scoped reads, and deletion. Every operation takes the
// authenticated owner id explicitly; nothing here trusts ambient state.
type CodeService struct {
	db           *gorm.DB
	auditService *AuditService
	qrService    *QRService
	baseURL      string
	identifierFn func() string
}

func NewCodeService(db *gorm.DB, auditService *AuditService, qrService *QRService, baseURL string) *CodeService {
	return &CodeService{
		db:           db,
		auditService: auditService,
		qrService:    qrService,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		identifierFn: utils.GenerateIdentifier,
	}
}

// NormalizeURL prefixes https:// when the input carries no scheme. Already
// schemed URLs pass through untouched.
func NormalizeURL(raw string) string {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "https://" + raw
	}
	return raw
}

// Generate creates a code record seeded with one URL history entry and
// renders the scannable image. The image encodes the redirect endpoint, not
// the destination, so later destination changes need no reprint.
func (s *CodeService) Generate(dto GenerateDTO) (*GenerateResult, error) {
	if dto.TargetURL == "" {
		return nil, errors.New("target URL is required")
	}

	var alias *string
	if dto.CustomAlias != "" {
		var existing models.QRCode
		err := s.db.Where("custom_alias = ?", dto.CustomAlias).First(&existing).Error
		if err == nil {
			return nil, ErrAliasTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		alias = &dto.CustomAlias
	}

	target := NormalizeURL(dto.TargetURL)
	now := time.Now()

	code := models.QRCode{
		UserID:      dto.UserID,
		Identifier:  s.identifierFn(),
		CustomAlias: alias,
		OriginalURL: target,
		CurrentURL:  target,
		CreatedAt:   now,
		URLHistory: []models.URLChange{
			{URL: target, ChangedAt: now},
		},
	}

	if err := s.db.Create(&code).Error; err != nil {
		// A concurrent generate can take the alias between the check above
		// and this insert; the unique index is the real arbiter.
		if alias != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAliasTaken
		}
		return nil, err
	}

	scanTarget := dto.CustomAlias
	if scanTarget == "" {
		scanTarget = code.Identifier
	}
	redirectURL := fmt.Sprintf("%s/api/qr/redirect/%s", s.baseURL, scanTarget)

	imageData, err := s.qrService.RenderDataURL(redirectURL, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr image: %w", err)
	}

	s.auditService.LogAction(&dto.UserID, "GENERATE", code.Identifier, map[string]interface{}{
		"target_url": target,
	}, dto.IPAddress)

	return &GenerateResult{
		Code:       &code,
		ImageData:  imageData,
		TargetURL:  target,
		Identifier: code.Identifier,
	}, nil
}

// UpdateURL replaces the live destination. The outgoing URL is pushed onto
// the history first, then the new one becomes current, so history only ever
// holds URLs that were actually live and never the one that is live now.
// Concurrent owner edits can still lose one update; owner edits are rare
// and that race is accepted.
func (s *CodeService) UpdateURL(userID uint, identifier, newURL string) (*models.QRCode, error) {
	if newURL == "" {
		return nil, errors.New("new URL is required")
	}

	var code models.QRCode
	err := s.db.Where("identifier = ? AND user_id = ?", identifier, userID).First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	normalized := NormalizeURL(newURL)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		change := models.URLChange{
			QRCodeID:  code.ID,
			URL:       code.CurrentURL,
			ChangedAt: time.Now(),
		}
		if err := tx.Create(&change).Error; err != nil {
			return err
		}
		return tx.Model(&code).Update("current_url", normalized).Error
	})
	if err != nil {
		return nil, err
	}

	s.auditService.LogAction(&userID, "UPDATE_URL", code.Identifier, map[string]interface{}{
		"new_url": normalized,
	}, "")

	code.CurrentURL = normalized
	return &code, nil
}

// Get fetches one code with its history and scans, owner-scoped.
func (s *CodeService) Get(userID uint, identifier string) (*models.QRCode, error) {
	var code models.QRCode
	err := s.db.Preload("URLHistory", func(db *gorm.DB) *gorm.DB {
		return db.Order("changed_at ASC")
	}).Preload("Scans", func(db *gorm.DB) *gorm.DB {
		return db.Order("timestamp ASC")
	}).Where("identifier = ? AND user_id = ?", identifier, userID).First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &code, nil
}

// List returns the owner's codes, newest first.
func (s *CodeService) List(userID uint) ([]models.QRCode, error) {
	var codes []models.QRCode
	err := s.db.Preload("URLHistory", func(db *gorm.DB) *gorm.DB {
		return db.Order("changed_at ASC")
	}).Where("user_id = ?", userID).Order("created_at DESC").Find(&codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// Delete removes a code and, via FK cascade, its history and scans.
func (s *CodeService) Delete(userID uint, identifier string) error {
	var code models.QRCode
	err := s.db.Where("identifier = ? AND user_id = ?", identifier, userID).First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.db.Select("URLHistory", "Scans").Delete(&code).Error; err != nil {
		return err
	}

	s.auditService.LogAction(&userID, "DELETE", code.Identifier, nil, "")
	return nil
}
