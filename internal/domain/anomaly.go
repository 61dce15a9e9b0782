package domain

// AnomalyFinding is the result of running the independent fraud checks
// against a single transaction. Findings are recomputed on demand and never
// stored as authoritative state.
type AnomalyFinding struct {
	TransactionID              string   `json:"transaction_id"`
	Checks                     []string `json:"checks"`
	RiskScore                  float64  `json:"risk_score"`
	RequiresImmediateAttention bool     `json:"requires_immediate_attention"`
	Recommendation             string   `json:"recommendation"`
}

// RiskLevel summarizes a whole scanned batch.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// BatchRiskReport aggregates the findings for one detector run.
type BatchRiskReport struct {
	Findings     []AnomalyFinding `json:"findings"`
	FlaggedCount int              `json:"flagged_count"`
	RiskLevel    RiskLevel        `json:"risk_level"`
}
