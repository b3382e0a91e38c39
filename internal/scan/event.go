package scan

import (
	"time"

	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/risk"
)

// QRType distinguishes the two payload variants a code can carry.
type QRType string

const (
	QRTypeUser    QRType = "user"
	QRTypeVehicle QRType = "vehicle"
)

// Event is one scan attempt. The risk score is computed exactly once at
// creation and never mutated; a new scan produces a new event.
type Event struct {
	ID          string
	QRType      QRType
	ScannerID   string
	ScannerRole string
	TargetID    string
	// TargetOwnerID is the identity that owns the scanned code, used by the
	// foreign-owner signal.
	TargetOwnerID string

	Success   bool
	RiskScore int
	Flags     risk.Flags

	IP                string
	DeviceFingerprint string

	CreatedAt time.Time
}

// RetentionHorizon is how long scan events are kept before data-layer
// expiry, shorter than the audit horizon for privacy reasons.
const RetentionHorizon = 365 * 24 * time.Hour
