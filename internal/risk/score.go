package risk

import "github.com/narasimharaokandula8/qr-vehicle-docs/config"

// Flags are the behavioral signals observed for a single scan attempt.
// RapidScanning is set upstream when the scanner exceeded the short
// velocity window; the remaining flags come from the scan context.
type Flags struct {
	RapidScanning   bool `json:"rapid_scanning"`
	UnusualLocation bool `json:"unusual_location"`
	MultipleDevices bool `json:"multiple_devices"`
	OffHours        bool `json:"off_hours"`

	// ForeignOwnerScan marks an owner-role scanner viewing another
	// identity's own code.
	ForeignOwnerScan bool `json:"foreign_owner_scan"`
}

// Scorer computes advisory suspicion scores for scan events. A score never
// blocks the scan by itself; it feeds the audit pipeline's risk escalation.
type Scorer struct {
	weights config.RiskWeights
}

func NewScorer(weights config.RiskWeights) *Scorer {
	return &Scorer{weights: weights}
}

// Score sums the weights of the raised flags and clamps to [0, 100].
func (s *Scorer) Score(f Flags) int {
	score := 0
	if f.RapidScanning {
		score += s.weights.RapidScanning
	}
	if f.UnusualLocation {
		score += s.weights.UnusualLocation
	}
	if f.MultipleDevices {
		score += s.weights.MultipleDevices
	}
	if f.OffHours {
		score += s.weights.OffHours
	}
	if f.ForeignOwnerScan {
		score += s.weights.ForeignOwnerScan
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}
