package services

import (
	"testing"

	"qrtrack/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDevice(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		want      string
	}{
		{"iPhone", "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X)", models.DeviceMobile},
		{"Android phone", "Mozilla/5.0 (Linux; Android 13; Pixel 7)", models.DeviceMobile},
		{"iPod", "Mozilla/5.0 (iPod touch; CPU iPhone OS 15_0 like Mac OS X)", models.DeviceMobile},
		{"BlackBerry", "Mozilla/5.0 (BlackBerry; U; BlackBerry 9900)", models.DeviceMobile},
		{"webOS", "Mozilla/5.0 (webOS/1.4.0; U; en-US)", models.DeviceMobile},
		{"Windows Phone before Windows", "Mozilla/5.0 (Windows Phone 10.0; Android 6.0.1)", models.DeviceMobile},
		// iPad carries the ipad token in the mobile list, so it lands in
		// Mobile and never reaches the tablet branch.
		{"iPad claimed by mobile branch", "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X)", models.DeviceMobile},
		{"Generic tablet token", "Mozilla/5.0 (Tablet; rv:68.0) Gecko/68.0 Firefox/68.0", models.DeviceTablet},
		{"Windows desktop", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)", models.DeviceDesktop},
		{"Mac desktop", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)", models.DeviceDesktop},
		{"Linux desktop", "Mozilla/5.0 (X11; Linux x86_64)", models.DeviceDesktop},
		{"Unrecognized", "curl/8.0.1", models.DeviceOther},
		{"Case insensitive", "MOZILLA/5.0 (IPHONE)", models.DeviceMobile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDevice(tt.userAgent))
		})
	}
}
