package anomaly

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumahq/pesaflow/internal/domain"
	"github.com/jumahq/pesaflow/internal/logger"
)

func newDetector() *Detector {
	return New(logger.New())
}

func mkTx(id string, typ domain.TransactionType, amount int64, counterparty string) domain.Transaction {
	return domain.Transaction{
		TransactionID:   id,
		Date:            time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Type:            typ,
		Amount:          decimal.NewFromInt(amount),
		Counterparty:    counterparty,
		ConfidenceScore: 0.9,
	}
}

// quietProfile has a baseline too high for unusual_amount to fire and no
// declared peak hours, so only the check under test trips.
func quietProfile() *domain.BusinessProfile {
	return &domain.BusinessProfile{
		BusinessID:         "biz-1",
		AverageTransaction: decimal.NewFromInt(10_000_000),
		HomeNetwork:        domain.NetworkHome,
	}
}

func findFor(findings []domain.AnomalyFinding, id string) (domain.AnomalyFinding, bool) {
	for _, f := range findings {
		if f.TransactionID == id {
			return f, true
		}
	}
	return domain.AnomalyFinding{}, false
}

func TestDetect_UnusualAmountSensitivity(t *testing.T) {
	d := newDetector()
	tx := mkTx("TX1", domain.TypeReceived, 50_000, "MARY ATIENO")

	high := &domain.BusinessProfile{AverageTransaction: decimal.NewFromInt(2_000)}
	findings := d.Detect([]domain.Transaction{tx}, high, SensitivityHigh)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Checks, CheckUnusualAmount)
	assert.True(t, findings[0].RequiresImmediateAttention)

	low := &domain.BusinessProfile{AverageTransaction: decimal.NewFromInt(6_000)}
	findings = d.Detect([]domain.Transaction{tx}, low, SensitivityLow)
	assert.Empty(t, findings, "50,000 is under a 60,000 threshold")
}

func TestDetect_UnusualTime(t *testing.T) {
	d := newDetector()
	profile := quietProfile()
	profile.PeakHours = []domain.HourRange{{Start: 8, End: 18}}

	late := mkTx("TX1", domain.TypeReceived, 500, "MARY ATIENO")
	late.Time = "02:15"
	findings := d.Detect([]domain.Transaction{late, mkTx("TX2", domain.TypeReceived, 600, "JOHN DOE")}, profile, SensitivityMedium)
	require.Len(t, findings, 1)
	assert.Equal(t, "TX1", findings[0].TransactionID)
	assert.Equal(t, []string{CheckUnusualTime}, findings[0].Checks)
	assert.False(t, findings[0].RequiresImmediateAttention)

	// No declared peak hours means every hour is peak.
	findings = d.Detect([]domain.Transaction{late}, quietProfile(), SensitivityMedium)
	assert.Empty(t, findings)
}

func TestDetect_DuplicateTransactions(t *testing.T) {
	d := newDetector()

	a := mkTx("TX1", domain.TypeReceived, 500, "MARY ATIENO")
	b := mkTx("TX2", domain.TypeReceived, 500, "MARY ATIENO") // same amount+counterparty+date
	findings := d.Detect([]domain.Transaction{a, b}, quietProfile(), SensitivityMedium)

	require.Len(t, findings, 2, "both copies are flagged")
	for _, f := range findings {
		assert.Contains(t, f.Checks, CheckDuplicate)
		assert.True(t, f.RequiresImmediateAttention)
	}
}

func TestDetect_RapidConsecutive(t *testing.T) {
	d := newDetector()

	a := mkTx("TX1", domain.TypeReceived, 500, "MARY ATIENO")
	a.Time = "14:30"
	b := mkTx("TX2", domain.TypeReceived, 600, "JOHN DOE")
	b.Time = "14:33"
	c := mkTx("TX3", domain.TypeReceived, 700, "PETER OUMA")
	c.Time = "19:00"

	findings := d.Detect([]domain.Transaction{a, b, c}, quietProfile(), SensitivityMedium)
	require.Len(t, findings, 2)
	_, ok := findFor(findings, "TX3")
	assert.False(t, ok, "a lone transaction hours away is not rapid")
}

func TestDetect_FraudNamePattern(t *testing.T) {
	d := newDetector()
	tests := []struct {
		name string
		tx   domain.Transaction
	}{
		{"suspicious token", mkTx("TX1", domain.TypeReceived, 500, "MPESA REVERSAL DESK")},
		{"micro probe amount", mkTx("TX2", domain.TypeReceived, 10, "MARY ATIENO")},
		{"large low-confidence send", func() domain.Transaction {
			tx := mkTx("TX3", domain.TypeSent, 60_500, "JOHN DOE")
			tx.ConfidenceScore = 0.5
			return tx
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := d.Detect([]domain.Transaction{tt.tx}, quietProfile(), SensitivityMedium)
			require.Len(t, findings, 1)
			assert.Contains(t, findings[0].Checks, CheckFraudNamePattern)
			assert.True(t, findings[0].RequiresImmediateAttention)
		})
	}
}

func TestDetect_RoundNumberFraud(t *testing.T) {
	d := newDetector()
	tests := []struct {
		name  string
		tx    domain.Transaction
		fires bool
	}{
		{"unexplained whole thousands", mkTx("TX1", domain.TypeSent, 5_000, "JOHN DOE"), true},
		{"rent reference is exempt", func() domain.Transaction {
			tx := mkTx("TX2", domain.TypeSent, 5_000, "LANDLORD AGENCY")
			tx.Reference = "january rent"
			return tx
		}(), false},
		{"exactly the floor", mkTx("TX3", domain.TypeSent, 1_000, "JOHN DOE"), false},
		{"not a round amount", mkTx("TX4", domain.TypeSent, 5_500, "JOHN DOE"), false},
		{"received is out of scope", mkTx("TX5", domain.TypeReceived, 5_000, "JOHN DOE"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := d.Detect([]domain.Transaction{tt.tx}, quietProfile(), SensitivityMedium)
			if !tt.fires {
				assert.Empty(t, findings)
				return
			}
			require.Len(t, findings, 1)
			assert.Equal(t, []string{CheckRoundNumberFraud}, findings[0].Checks)
			assert.False(t, findings[0].RequiresImmediateAttention)
		})
	}
}

func TestDetect_CrossNetworkAnomaly(t *testing.T) {
	d := newDetector()

	big := mkTx("TX1", domain.TypeReceived, 150_500, "MARY ATIENO")
	big.Network = domain.NetworkOther
	small := mkTx("TX2", domain.TypeReceived, 50_500, "JOHN DOE")
	small.Network = domain.NetworkOther

	findings := d.Detect([]domain.Transaction{big, small}, quietProfile(), SensitivityMedium)
	require.Len(t, findings, 1)
	assert.Equal(t, "TX1", findings[0].TransactionID)
	assert.Contains(t, findings[0].Checks, CheckCrossNetwork)
}

func TestDetect_FulizaOveruse(t *testing.T) {
	d := newDetector()

	var window []domain.Transaction
	for i := 0; i < FulizaOveruseMax; i++ {
		tx := mkTx("TX"+string(rune('A'+i)), domain.TypeFuliza, int64(100+i), "FULIZA M-PESA")
		window = append(window, tx)
	}
	findings := d.Detect(window, quietProfile(), SensitivityMedium)
	assert.Empty(t, findings, "at the limit is not overuse")

	window = append(window, mkTx("TXZ", domain.TypeFuliza, 900, "FULIZA M-PESA"))
	findings = d.Detect(window, quietProfile(), SensitivityMedium)
	require.Len(t, findings, len(window))
	for _, f := range findings {
		assert.Contains(t, f.Checks, CheckFulizaOveruse)
	}
}

func TestDetect_DilutionLowersRisk(t *testing.T) {
	d := newDetector()

	alone := mkTx("TX1", domain.TypeReceived, 500, "MPESA REVERSAL DESK")
	findings := d.Detect([]domain.Transaction{alone}, quietProfile(), SensitivityMedium)
	require.Len(t, findings, 1)
	assert.InDelta(t, 0.9, findings[0].RiskScore, 1e-9)

	profile := quietProfile()
	profile.PeakHours = []domain.HourRange{{Start: 8, End: 18}}
	diluted := mkTx("TX2", domain.TypeReceived, 500, "MPESA REVERSAL DESK")
	diluted.Time = "02:00"
	findings = d.Detect([]domain.Transaction{diluted}, profile, SensitivityMedium)
	require.Len(t, findings, 1)
	assert.InDelta(t, 0.65, findings[0].RiskScore, 1e-9)
	assert.Equal(t, []string{CheckFraudNamePattern, CheckUnusualTime}, findings[0].Checks)
}

func TestDetect_RecommendationFollowsSeverityOrder(t *testing.T) {
	d := newDetector()

	profile := quietProfile()
	profile.PeakHours = []domain.HourRange{{Start: 8, End: 18}}
	tx := mkTx("TX1", domain.TypeReceived, 500, "MPESA REVERSAL DESK")
	tx.Time = "02:00"

	findings := d.Detect([]domain.Transaction{tx}, profile, SensitivityMedium)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Recommendation, "Block the counterparty")
}

func TestDetect_SortedByDescendingRisk(t *testing.T) {
	d := newDetector()

	fraud := mkTx("TX1", domain.TypeReceived, 500, "MPESA REVERSAL DESK") // 0.9
	round := mkTx("TX2", domain.TypeSent, 5_000, "JOHN DOE")              // 0.5

	findings := d.Detect([]domain.Transaction{round, fraud}, quietProfile(), SensitivityMedium)
	require.Len(t, findings, 2)
	assert.Equal(t, "TX1", findings[0].TransactionID)
	assert.Equal(t, "TX2", findings[1].TransactionID)
}

func TestDetectBatch_RiskLevels(t *testing.T) {
	d := newDetector()
	profile := &domain.BusinessProfile{AverageTransaction: decimal.NewFromInt(2_000)}

	t.Run("empty batch is low", func(t *testing.T) {
		report := d.DetectBatch(nil, profile, SensitivityMedium)
		assert.Equal(t, domain.RiskLevelLow, report.RiskLevel)
		assert.Zero(t, report.FlaggedCount)
	})

	t.Run("single high finding is medium", func(t *testing.T) {
		// One unusual_amount finding (risk 0.8 > 0.7) and nothing else.
		tx := mkTx("TX1", domain.TypeReceived, 50_000, "MARY ATIENO")
		report := d.DetectBatch([]domain.Transaction{tx}, profile, SensitivityHigh)
		require.Equal(t, 1, report.FlaggedCount)
		assert.Greater(t, report.Findings[0].RiskScore, 0.7)
		assert.Equal(t, domain.RiskLevelMedium, report.RiskLevel)
	})

	t.Run("only low findings is low", func(t *testing.T) {
		tx := mkTx("TX1", domain.TypeSent, 5_000, "JOHN DOE") // round_number only, 0.5
		report := d.DetectBatch([]domain.Transaction{tx}, quietProfile(), SensitivityMedium)
		require.Equal(t, 1, report.FlaggedCount)
		assert.Equal(t, domain.RiskLevelLow, report.RiskLevel)
	})

	t.Run("majority high is high", func(t *testing.T) {
		a := mkTx("TX1", domain.TypeReceived, 50_000, "MARY ATIENO")
		b := mkTx("TX2", domain.TypeReceived, 61_000, "JOHN DOE")
		report := d.DetectBatch([]domain.Transaction{a, b}, profile, SensitivityHigh)
		require.Equal(t, 2, report.FlaggedCount)
		assert.Equal(t, domain.RiskLevelHigh, report.RiskLevel)
	})
}

func TestSensitivity_Multiplier(t *testing.T) {
	assert.Equal(t, int64(3), SensitivityHigh.Multiplier())
	assert.Equal(t, int64(5), SensitivityMedium.Multiplier())
	assert.Equal(t, int64(10), SensitivityLow.Multiplier())
	assert.Equal(t, int64(5), Sensitivity("bogus").Multiplier())
}
