package audit

import (
	"time"
)

// RiskLevel classifies how suspicious an audited action is.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Category groups audited actions by subsystem.
type Category string

const (
	CategoryAuth     Category = "auth"
	CategoryDocument Category = "document"
	CategoryQR       Category = "qr"
	CategoryPayment  Category = "payment"
	CategoryAdmin    Category = "admin"
)

// Record is the immutable audit trail entry produced once per intercepted
// request/response cycle. The only mutation allowed after creation is the
// flag transition, which raises the risk level to high.
type Record struct {
	ID        string
	ActorID   string
	ActorRole string

	Action   string
	Category Category

	ResourceType string
	ResourceID   string

	IP        string
	UserAgent string
	Method    string
	Endpoint  string

	StatusCode int
	Success    bool
	DurationMs int64

	RiskLevel RiskLevel
	Flagged   bool

	ErrorMessage      string
	SessionID         string
	DeviceFingerprint string

	Details map[string]any

	CreatedAt time.Time
}

// RetentionHorizon is how long audit records are kept before the data layer
// expires them. Enforced by the store's DeleteExpired contract, not by an
// application loop.
const RetentionHorizon = 2 * 365 * 24 * time.Hour
