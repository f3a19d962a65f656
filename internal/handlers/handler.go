package handlers

import (
	"log/slog"

	"qrtrack/internal/config"
	"qrtrack/internal/services"
	"qrtrack/pkg/token"

	"gorm.io/gorm"
)

type Handler struct {
	cfg              config.Config
	logger           *slog.Logger
	db               *gorm.DB
	tokens           *token.Manager
	codeService      *services.CodeService
	trackerService   *services.TrackerService
	analyticsService *services.AnalyticsService
	auditService     *services.AuditService
}

func NewHandler(
	cfg config.Config,
	logger *slog.Logger,
	db *gorm.DB,
	tokens *token.Manager,
	codeService *services.CodeService,
	trackerService *services.TrackerService,
	analyticsService *services.AnalyticsService,
	auditService *services.AuditService,
) *Handler {
	return &Handler{
		cfg:              cfg,
		logger:           logger,
		db:               db,
		tokens:           tokens,
		codeService:      codeService,
		trackerService:   trackerService,
		analyticsService: analyticsService,
		auditService:     auditService,
	}
}
