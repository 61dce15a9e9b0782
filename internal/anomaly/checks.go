package anomaly

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jumahq/pesaflow/internal/domain"
)

// Check names. These appear verbatim in AnomalyFinding.Checks and in the
// scan API response.
const (
	CheckFraudNamePattern = "fraud_name_pattern"
	CheckUnusualAmount    = "unusual_amount"
	CheckRapidConsecutive = "rapid_consecutive"
	CheckDuplicate        = "duplicate_transactions"
	CheckCrossNetwork     = "cross_network_anomaly"
	CheckRoundNumberFraud = "round_number_fraud"
	CheckUnusualTime      = "unusual_time"
	CheckFulizaOveruse    = "fuliza_overuse"
)

// Fixed thresholds shared by the checks.
var (
	// MicroProbeAmount is the classic penny-testing probe value.
	MicroProbeAmount = decimal.NewFromInt(10)

	// LargeSentThreshold is the sent-amount above which low extraction
	// confidence becomes a fraud signal.
	LargeSentThreshold = decimal.NewFromInt(50000)

	// RoundFraudFloor is the minimum amount for round-number screening.
	RoundFraudFloor = decimal.NewFromInt(1000)

	// CrossNetworkThreshold is the amount above which an off-network
	// transaction is flagged.
	CrossNetworkThreshold = decimal.NewFromInt(100000)

	roundStep = decimal.NewFromInt(1000)
)

const (
	// LowConfidenceBar marks extraction confidence too weak to trust on a
	// large outbound transfer.
	LowConfidenceBar = 0.7

	// RapidWindow is the spacing under which two transactions on the same
	// account count as rapid-consecutive.
	RapidWindow = 300 * time.Second

	// FulizaOveruseMax is the number of overdraft draws tolerated per
	// scanned window before overuse fires.
	FulizaOveruseMax = 5
)

// suspiciousTokens flag counterparty names associated with common M-PESA
// social-engineering scams.
var suspiciousTokens = []string{
	"mpesa reversal",
	"m-pesa reversal",
	"safaricom promo",
	"promo winner",
	"lottery",
	"bonus claim",
	"test test",
	"xxx",
}

// legitimateRoundKeywords exempt expected whole-amount payments from
// round-number screening.
var legitimateRoundKeywords = []string{"rent", "salary", "loan"}

// check is one independent heuristic. Checks are declared in severity order;
// that order also decides which recommendation a multi-check finding carries.
type check struct {
	name           string
	weight         float64
	recommendation string
	fires          func(tx *domain.Transaction, w *window) bool
}

// window carries the batch-level context the per-transaction checks need.
type window struct {
	profile     *domain.BusinessProfile
	multiplier  int64
	dedupCounts map[string]int
	timestamps  []time.Time
	fulizaCount int
}

func buildWindow(txs []domain.Transaction, profile *domain.BusinessProfile, multiplier int64) *window {
	w := &window{
		profile:     profile,
		multiplier:  multiplier,
		dedupCounts: make(map[string]int, len(txs)),
	}
	for i := range txs {
		w.dedupCounts[txs[i].DedupKey()]++
		if ts, ok := txs[i].Timestamp(); ok {
			w.timestamps = append(w.timestamps, ts)
		}
		if txs[i].Type == domain.TypeFuliza {
			w.fulizaCount++
		}
	}
	return w
}

var checks = []check{
	{
		name:           CheckFraudNamePattern,
		weight:         0.9,
		recommendation: "Block the counterparty and verify the transaction through a second channel before releasing funds.",
		fires: func(tx *domain.Transaction, w *window) bool {
			name := strings.ToLower(tx.Counterparty)
			for _, token := range suspiciousTokens {
				if token != "" && strings.Contains(name, token) {
					return true
				}
			}
			if tx.Amount.Equal(MicroProbeAmount) {
				return true
			}
			return tx.Type == domain.TypeSent &&
				tx.Amount.GreaterThan(LargeSentThreshold) &&
				tx.ConfidenceScore < LowConfidenceBar
		},
	},
	{
		name:           CheckUnusualAmount,
		weight:         0.8,
		recommendation: "Confirm this amount with the account owner; it is far above the business baseline.",
		fires: func(tx *domain.Transaction, w *window) bool {
			if w.profile == nil || !w.profile.AverageTransaction.IsPositive() {
				return false
			}
			threshold := w.profile.AverageTransaction.Mul(decimal.NewFromInt(w.multiplier))
			return tx.Amount.GreaterThan(threshold)
		},
	},
	{
		name:           CheckRapidConsecutive,
		weight:         0.7,
		recommendation: "Review the burst of transactions on this account for an automated or coerced session.",
		fires: func(tx *domain.Transaction, w *window) bool {
			ts, ok := tx.Timestamp()
			if !ok {
				return false
			}
			sameInstant := 0
			for _, other := range w.timestamps {
				if other.Equal(ts) {
					sameInstant++ // includes this transaction itself
					continue
				}
				delta := ts.Sub(other)
				if delta < 0 {
					delta = -delta
				}
				if delta <= RapidWindow {
					return true
				}
			}
			return sameInstant > 1
		},
	},
	{
		name:           CheckDuplicate,
		weight:         0.7,
		recommendation: "Check whether this payment was submitted twice and reverse the extra copy.",
		fires: func(tx *domain.Transaction, w *window) bool {
			return w.dedupCounts[tx.DedupKey()] > 1
		},
	},
	{
		name:           CheckCrossNetwork,
		weight:         0.6,
		recommendation: "Verify the destination network for this large transfer before it settles.",
		fires: func(tx *domain.Transaction, w *window) bool {
			if w.profile == nil || tx.Network == "" {
				return false
			}
			return tx.Network != w.profile.HomeNetwork &&
				tx.Amount.GreaterThan(CrossNetworkThreshold)
		},
	},
	{
		name:           CheckRoundNumberFraud,
		weight:         0.5,
		recommendation: "Ask for the supporting invoice; unexplained whole-thousand transfers are a known scam shape.",
		fires: func(tx *domain.Transaction, w *window) bool {
			if tx.Type != domain.TypeSent {
				return false
			}
			if !tx.Amount.GreaterThan(RoundFraudFloor) || !tx.Amount.Mod(roundStep).IsZero() {
				return false
			}
			ref := strings.ToLower(tx.Reference)
			for _, kw := range legitimateRoundKeywords {
				if strings.Contains(ref, kw) {
					return false
				}
			}
			return true
		},
	},
	{
		name:           CheckUnusualTime,
		weight:         0.4,
		recommendation: "Confirm the business was operating when this transaction went through.",
		fires: func(tx *domain.Transaction, w *window) bool {
			if w.profile == nil {
				return false
			}
			ts, ok := tx.Timestamp()
			if !ok {
				return false
			}
			return !w.profile.InPeakHours(ts.Hour())
		},
	},
	{
		name:           CheckFulizaOveruse,
		weight:         0.4,
		recommendation: "The account is leaning on overdraft credit repeatedly; review its cash-flow position.",
		fires: func(tx *domain.Transaction, w *window) bool {
			return tx.Type == domain.TypeFuliza && w.fulizaCount > FulizaOveruseMax
		},
	},
}
