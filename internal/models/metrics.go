package models

import "fmt"

// MetricSnapshot is the subset of a provider recovery record used to build a prompt.
//
// Optional metrics are nil when the provider did not report them.
type MetricSnapshot struct {
	RecoveryScore float64  `json:"recovery_score"`
	SleepQuality  *float64 `json:"sleep_quality,omitempty"`
	Strain        *float64 `json:"strain,omitempty"`
	HRV           *float64 `json:"hrv,omitempty"`
}

// Validate checks the recovery score lies within [0, 100].
func (m MetricSnapshot) Validate() error {
	if m.RecoveryScore < 0 || m.RecoveryScore > 100 {
		return fmt.Errorf("recovery score %v out of range [0,100]", m.RecoveryScore)
	}
	return nil
}

// Float returns a pointer to v, for populating optional metrics.
func Float(v float64) *float64 {
	return &v
}
