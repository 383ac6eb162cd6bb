package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Label extracts a coarse submission-channel label from a User-Agent string,
// e.g. "Chrome on Linux" or "Safari on iOS (mobile)". Authorities see it on
// complaint detail; it carries no identifying precision beyond browser and OS.
func Label(userAgentString string) string {
	if userAgentString == "" {
		return ""
	}

	ua := useragent.New(userAgentString)
	if ua.Bot() {
		return "bot"
	}

	browser, _ := ua.Browser()
	browser = strings.TrimSpace(browser)
	if browser == "" {
		browser = "Unknown"
	}

	os := strings.TrimSpace(ua.OS())
	if os == "" {
		os = "Unknown"
	}

	label := browser + " on " + os
	if ua.Mobile() {
		label += " (mobile)"
	}
	return label
}
