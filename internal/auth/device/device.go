// Package device turns a browser User-Agent into the label shown next to a
// console session and a stable fingerprint used to correlate log lines.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// Label returns "Browser on OS" ("Chrome on macOS", "Safari on iPhone").
// adminctl and other non-browser clients report their product name.
func Label(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgent)
	if ua.Bot() {
		name, _ := ua.Browser()
		return strings.TrimSpace("Bot " + name)
	}

	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}
	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		return browser
	}
	return strings.TrimSpace(browser + " on " + os)
}

// Fingerprint hashes browser, major version, OS and form factor. IP is left
// out so a visitor keeps the same fingerprint across networks.
func Fingerprint(userAgent string) string {
	if userAgent == "" {
		return ""
	}

	ua := useragent.New(userAgent)
	browser, version := ua.Browser()

	major := "unknown"
	if v, _, _ := strings.Cut(version, "."); v != "" {
		major = v
	}
	formFactor := "desktop"
	if ua.Mobile() {
		formFactor = "mobile"
	}

	data := fmt.Sprintf("%s|%s|%s|%s",
		normalize(browser), major, normalize(ua.OS()), formFactor)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	return s
}
