package device

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Signals are the request headers and addresses a fingerprint is derived
// from. Absent values stay empty strings so the digest is stable.
type Signals struct {
	UserAgent      string
	AcceptLanguage string
	AcceptEncoding string
	ClientIP       string
	ForwardedFor   string
}

// Fingerprint derives an opaque 16-hex-character correlation id from the
// ordered concatenation of the request signals. It is deterministic and
// side-effect free, and is never an authentication factor on its own.
func Fingerprint(s Signals) string {
	components := strings.Join([]string{
		s.UserAgent,
		s.AcceptLanguage,
		s.AcceptEncoding,
		s.ClientIP,
		s.ForwardedFor,
	}, "|")

	sum := sha256.Sum256([]byte(components))
	return hex.EncodeToString(sum[:])[:16]
}

// Descriptor is a coarse classification of the scanning device, recorded
// alongside scan events for fraud review.
type Descriptor struct {
	Browser   string `json:"browser"`
	Platform  string `json:"platform"`
	IsMobile  bool   `json:"is_mobile"`
	IsTablet  bool   `json:"is_tablet"`
	UserAgent string `json:"user_agent"`
}

// ParseUserAgent classifies a raw User-Agent header. An empty header yields
// the zero Descriptor.
func ParseUserAgent(userAgent string) Descriptor {
	if userAgent == "" {
		return Descriptor{}
	}

	d := Descriptor{
		Browser:   "Unknown",
		Platform:  "Unknown",
		UserAgent: userAgent,
	}

	d.IsMobile = containsAny(userAgent, "Mobile", "Android", "iPhone", "iPad")
	d.IsTablet = strings.Contains(userAgent, "iPad") ||
		(strings.Contains(userAgent, "Android") && !strings.Contains(userAgent, "Mobile"))

	switch {
	case strings.Contains(userAgent, "Edge"):
		d.Browser = "Edge"
	case strings.Contains(userAgent, "Chrome"):
		d.Browser = "Chrome"
	case strings.Contains(userAgent, "Firefox"):
		d.Browser = "Firefox"
	case strings.Contains(userAgent, "Safari"):
		d.Browser = "Safari"
	}

	switch {
	case strings.Contains(userAgent, "Windows"):
		d.Platform = "Windows"
	case strings.Contains(userAgent, "Android"):
		d.Platform = "Android"
	case strings.Contains(userAgent, "iPhone"), strings.Contains(userAgent, "iPad"):
		d.Platform = "iOS"
	case strings.Contains(userAgent, "Mac"):
		d.Platform = "macOS"
	case strings.Contains(userAgent, "Linux"):
		d.Platform = "Linux"
	}

	return d
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
