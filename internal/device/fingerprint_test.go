package device

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	signals := Signals{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0",
		AcceptLanguage: "en-US,en;q=0.9",
		AcceptEncoding: "gzip, deflate, br",
		ClientIP:       "203.0.113.7",
		ForwardedFor:   "203.0.113.7",
	}

	t.Run("deterministic for identical signals", func(t *testing.T) {
		assert.Equal(t, Fingerprint(signals), Fingerprint(signals))
	})

	t.Run("sixteen lowercase hex characters", func(t *testing.T) {
		fp := Fingerprint(signals)
		assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{16}$`), fp)
	})

	t.Run("any changed signal changes the output", func(t *testing.T) {
		base := Fingerprint(signals)

		variants := []Signals{}
		v := signals
		v.UserAgent = "curl/8.0"
		variants = append(variants, v)
		v = signals
		v.AcceptLanguage = "de-DE"
		variants = append(variants, v)
		v = signals
		v.AcceptEncoding = "identity"
		variants = append(variants, v)
		v = signals
		v.ClientIP = "198.51.100.9"
		variants = append(variants, v)
		v = signals
		v.ForwardedFor = "198.51.100.9"
		variants = append(variants, v)

		for _, variant := range variants {
			assert.NotEqual(t, base, Fingerprint(variant))
		}
	})

	t.Run("absent signals default to empty", func(t *testing.T) {
		fp := Fingerprint(Signals{})
		assert.Len(t, fp, 16)
		assert.Equal(t, fp, Fingerprint(Signals{}))
	})
}

func TestParseUserAgent(t *testing.T) {
	t.Run("empty user agent yields zero descriptor", func(t *testing.T) {
		assert.Equal(t, Descriptor{}, ParseUserAgent(""))
	})

	t.Run("desktop chrome on windows", func(t *testing.T) {
		d := ParseUserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0 Safari/537.36")
		assert.Equal(t, "Chrome", d.Browser)
		assert.Equal(t, "Windows", d.Platform)
		assert.False(t, d.IsMobile)
		assert.False(t, d.IsTablet)
	})

	t.Run("mobile safari on iphone", func(t *testing.T) {
		d := ParseUserAgent("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile Safari/604.1")
		assert.Equal(t, "Safari", d.Browser)
		assert.Equal(t, "iOS", d.Platform)
		assert.True(t, d.IsMobile)
	})

	t.Run("android tablet", func(t *testing.T) {
		d := ParseUserAgent("Mozilla/5.0 (Linux; Android 13; SM-X700) Chrome/119.0")
		assert.Equal(t, "Android", d.Platform)
		assert.True(t, d.IsTablet)
	})
}
