package scan

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/narasimharaokandula8/qr-vehicle-docs/config"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/audit"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/auth/domain"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/obs"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/risk"
)

// Office hours bound the off-hours signal: scans between 08:00 and 19:59
// local time are considered routine.
const (
	officeHoursStart = 8
	officeHoursEnd   = 20
)

// EventStore persists scan events.
type EventStore interface {
	Insert(ctx context.Context, e *Event) error
}

// Input describes one scan attempt before evaluation.
type Input struct {
	QRType        QRType
	TargetID      string
	TargetOwnerID string

	Scanner     domain.AuthUser
	IP          string
	Fingerprint string

	Success bool

	// Observed carries the signals only the caller can see, such as a
	// client-reported location anomaly. Rapid scanning, off hours and the
	// foreign-owner rule are computed here and override these fields.
	Observed risk.Flags
}

// Service evaluates scan attempts: it derives the behavioral flags, scores
// them, and persists the resulting event. Scoring is advisory and never
// blocks the scan.
type Service struct {
	events   EventStore
	velocity VelocityCounter
	scorer   *risk.Scorer
	cfg      *config.Config
	now      func() time.Time
}

func NewService(events EventStore, velocity VelocityCounter, scorer *risk.Scorer, cfg *config.Config) *Service {
	return &Service{
		events:   events,
		velocity: velocity,
		scorer:   scorer,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Record evaluates and persists one scan attempt, returning the stored
// event with its immutable risk score.
func (s *Service) Record(ctx context.Context, in Input) (*Event, error) {
	now := s.now()
	flags := in.Observed

	count, err := s.velocity.CountRecent(ctx, in.Scanner.ID, time.Duration(s.cfg.RapidScanWindowSec)*time.Second)
	if err != nil {
		// Velocity is a detection signal, not a gate.
		log.Printf("warn: scan velocity lookup failed for scanner %s: %v", in.Scanner.ID, err)
		count = 0
	}
	flags.RapidScanning = count >= s.cfg.RapidScanMax

	hour := now.Hour()
	flags.OffHours = hour < officeHoursStart || hour >= officeHoursEnd

	flags.ForeignOwnerScan = in.Scanner.Role == domain.RoleOwner &&
		in.TargetOwnerID != "" && in.TargetOwnerID != in.Scanner.ID

	event := &Event{
		ID:                uuid.New().String(),
		QRType:            in.QRType,
		ScannerID:         in.Scanner.ID,
		ScannerRole:       string(in.Scanner.Role),
		TargetID:          in.TargetID,
		TargetOwnerID:     in.TargetOwnerID,
		Success:           in.Success,
		RiskScore:         s.scorer.Score(flags),
		Flags:             flags,
		IP:                in.IP,
		DeviceFingerprint: in.Fingerprint,
		CreatedAt:         now.UTC(),
	}

	if err := s.velocity.Record(ctx, in.Scanner.ID, now); err != nil {
		log.Printf("warn: scan velocity record failed for scanner %s: %v", in.Scanner.ID, err)
	}

	if err := s.events.Insert(ctx, event); err != nil {
		return nil, err
	}
	obs.ObserveScan(string(event.QRType), event.Success)

	return event, nil
}

// LevelForScore maps a risk score onto the audit risk taxonomy.
func LevelForScore(score int) audit.RiskLevel {
	switch {
	case score >= 75:
		return audit.RiskCritical
	case score >= 50:
		return audit.RiskHigh
	case score >= 25:
		return audit.RiskMedium
	default:
		return audit.RiskLow
	}
}
