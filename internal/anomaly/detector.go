// Package anomaly runs independent heuristic fraud checks over a batch of
// transactions and aggregates per-transaction risk scores. Findings are
// recomputed on demand from the batch handed in; the detector holds no state
// across calls.
package anomaly

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/jumahq/pesaflow/internal/domain"
)

// Sensitivity controls how far above the business baseline an amount must be
// before unusual_amount fires. Higher sensitivity means a lower threshold and
// more flags.
type Sensitivity string

const (
	SensitivityHigh   Sensitivity = "high"
	SensitivityMedium Sensitivity = "medium"
	SensitivityLow    Sensitivity = "low"
)

// Multiplier returns the baseline multiplier for the sensitivity level.
// Unknown values fall back to medium.
func (s Sensitivity) Multiplier() int64 {
	switch s {
	case SensitivityHigh:
		return 3
	case SensitivityLow:
		return 10
	default:
		return 5
	}
}

// immediateAttentionChecks mark a finding as needing action now rather than
// at the next review.
var immediateAttentionChecks = map[string]bool{
	CheckFraudNamePattern: true,
	CheckUnusualAmount:    true,
	CheckRapidConsecutive: true,
	CheckDuplicate:        true,
}

// highRiskBar is the per-finding score above which a finding counts as high
// risk when grading the whole batch.
const highRiskBar = 0.7

// Detector scores transaction batches against a business profile.
type Detector struct {
	log zerolog.Logger
}

// New returns a Detector.
func New(log zerolog.Logger) *Detector {
	return &Detector{log: log}
}

// Detect runs every check against every transaction in the window and
// returns one finding per transaction that tripped at least one check,
// sorted by descending risk score.
func (d *Detector) Detect(txs []domain.Transaction, profile *domain.BusinessProfile, sensitivity Sensitivity) []domain.AnomalyFinding {
	w := buildWindow(txs, profile, sensitivity.Multiplier())

	var findings []domain.AnomalyFinding
	for i := range txs {
		if f, flagged := d.score(&txs[i], w); flagged {
			findings = append(findings, f)
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].RiskScore > findings[j].RiskScore
	})

	d.log.Debug().
		Int("transactions", len(txs)).
		Int("flagged", len(findings)).
		Str("sensitivity", string(sensitivity)).
		Msg("anomaly scan complete")

	return findings
}

// DetectBatch runs Detect and grades the batch as a whole.
func (d *Detector) DetectBatch(txs []domain.Transaction, profile *domain.BusinessProfile, sensitivity Sensitivity) domain.BatchRiskReport {
	findings := d.Detect(txs, profile, sensitivity)
	return domain.BatchRiskReport{
		Findings:     findings,
		FlaggedCount: len(findings),
		RiskLevel:    batchRiskLevel(findings),
	}
}

// score evaluates one transaction. The second return is false when no check
// fired, in which case the transaction is not flagged at all.
func (d *Detector) score(tx *domain.Transaction, w *window) (domain.AnomalyFinding, bool) {
	var (
		fired          []string
		weightSum      float64
		immediate      bool
		recommendation string
	)

	// Checks are declared in severity order, so the first fired check also
	// supplies the recommendation.
	for _, c := range checks {
		if !c.fires(tx, w) {
			continue
		}
		fired = append(fired, c.name)
		weightSum += c.weight
		if immediateAttentionChecks[c.name] {
			immediate = true
		}
		if recommendation == "" {
			recommendation = c.recommendation
		}
	}

	if len(fired) == 0 {
		return domain.AnomalyFinding{}, false
	}

	risk := weightSum / float64(len(fired))
	if risk > 1 {
		risk = 1
	}
	if risk < 0 {
		risk = 0
	}

	return domain.AnomalyFinding{
		TransactionID:              tx.TransactionID,
		Checks:                     fired,
		RiskScore:                  risk,
		RequiresImmediateAttention: immediate,
		Recommendation:             recommendation,
	}, true
}

// batchRiskLevel grades a scanned batch: high when high-risk findings
// dominate a multi-finding batch, medium when any finding crosses the
// high-risk bar, low otherwise. A lone high-risk finding grades medium; one
// suspicious transaction is not yet a pattern.
func batchRiskLevel(findings []domain.AnomalyFinding) domain.RiskLevel {
	high := 0
	for _, f := range findings {
		if f.RiskScore > highRiskBar {
			high++
		}
	}
	switch {
	case len(findings) > 1 && high*2 > len(findings):
		return domain.RiskLevelHigh
	case high > 0:
		return domain.RiskLevelMedium
	default:
		return domain.RiskLevelLow
	}
}
