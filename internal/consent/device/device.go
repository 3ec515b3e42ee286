// Package device turns raw client metadata into the descriptions stored on
// access ledger entries.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Describe returns "Browser on OS" for a User-Agent string, "bot: Name" for
// crawlers, and "" when the header is absent. Mobile agents report their
// platform (iPhone, Android) rather than the OS string.
func Describe(userAgent string) string {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return ""
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	browser = strings.TrimSpace(browser)

	if ua.Bot() {
		if browser == "" {
			browser = "unknown"
		}
		return "bot: " + browser
	}

	os := strings.TrimSpace(ua.OS())
	if ua.Mobile() {
		if platform := strings.TrimSpace(ua.Platform()); platform != "" {
			os = platform
		}
	}

	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return browser + " on " + os
}
