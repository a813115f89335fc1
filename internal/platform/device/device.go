package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Describe extracts a human-readable device name from a User-Agent string,
// e.g. "Chrome on macOS". Reference providers respond through unauthenticated
// browser links, so the device description goes into the request log for
// later dispute handling.
func Describe(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgentString)
	browser, _ := ua.Browser()
	browser = strings.TrimSpace(browser)
	if browser == "" {
		browser = "Unknown Browser"
	}

	os := strings.TrimSpace(ua.OSInfo().Name)
	if os == "" {
		os = "Unknown OS"
	}

	return browser + " on " + os
}
