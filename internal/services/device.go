package services

import (
	"strings"

	"qrtrack/internal/models"
)

var mobileTokens = []string{"iphone", "ipad", "ipod", "android", "webos", "blackberry", "windows phone"}

var tabletTokens = []string{"tablet", "ipad"}

var desktopTokens = []string{"windows", "macintosh", "linux"}

// ClassifyDevice maps a raw User-Agent string onto a coarse device class.
// Matching is case-insensitive and first-match-wins, so token order matters:
// "windows phone" must be claimed before "windows", and Android tablets are
// reported as Mobile because their UA carries the android token.
//
// TODO: "ipad" is claimed by the mobile token list, so the tablet branch can
// only ever match the bare "tablet" token; reorder the lists if iPads should
// be reported as Tablet.
func ClassifyDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)

	for _, token := range mobileTokens {
		if strings.Contains(ua, token) {
			return models.DeviceMobile
		}
	}
	for _, token := range tabletTokens {
		if strings.Contains(ua, token) {
			return models.DeviceTablet
		}
	}
	for _, token := range desktopTokens {
		if strings.Contains(ua, token) {
			return models.DeviceDesktop
		}
	}
	return models.DeviceOther
}
