package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"qrtrack/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAuditService_WritesEntries(t *testing.T) {
	db := setupTestDB(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	service := NewAuditService(db, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go service.Start(ctx)

	userID := uint(7)
	service.LogAction(&userID, "GENERATE", "abc-123", map[string]interface{}{"target_url": "https://example.com"}, "1.2.3.4")

	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&models.AuditLog{}).Count(&count)
		return count == 1
	}, time.Second, 10*time.Millisecond)

	var entry models.AuditLog
	assert.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "GENERATE", entry.Action)
	assert.Equal(t, "abc-123", entry.EntityID)
	assert.Equal(t, "1.2.3.4", entry.IPAddress)
	assert.Contains(t, entry.Details, "https://example.com")
}

func TestAuditService_DropsWhenChannelFull(t *testing.T) {
	db := setupTestDB(t)
	service := NewAuditService(db, slog.Default())

	// no worker running; fill the channel past capacity
	for i := 0; i < 150; i++ {
		service.LogAction(nil, "GENERATE", "x", nil, "")
	}
	// must not block or panic
	assert.Len(t, service.channel, 100)
}
