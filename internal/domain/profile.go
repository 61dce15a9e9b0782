package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// HourRange is a declared peak operating window, inclusive on both ends.
// Hours are 0-23 local time.
type HourRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether the given hour falls inside the range.
func (r HourRange) Contains(hour int) bool {
	return hour >= r.Start && hour <= r.End
}

// Validate checks the range bounds.
func (r HourRange) Validate() error {
	if r.Start < 0 || r.Start > 23 || r.End < 0 || r.End > 23 {
		return fmt.Errorf("hour range bounds must be 0-23, got %d-%d", r.Start, r.End)
	}
	if r.End < r.Start {
		return fmt.Errorf("hour range end %d before start %d", r.End, r.Start)
	}
	return nil
}

// BusinessProfile is the baseline the anomaly detector scores against.
type BusinessProfile struct {
	BusinessID         string          `json:"business_id"`
	AverageTransaction decimal.Decimal `json:"average_transaction"`
	PeakHours          []HourRange     `json:"peak_hours"`
	HomeNetwork        Network         `json:"home_network"`
}

// InPeakHours reports whether the given hour falls inside any declared peak
// window. A profile with no declared windows treats every hour as peak.
func (p *BusinessProfile) InPeakHours(hour int) bool {
	if len(p.PeakHours) == 0 {
		return true
	}
	for _, r := range p.PeakHours {
		if r.Contains(hour) {
			return true
		}
	}
	return false
}
