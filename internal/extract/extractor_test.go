package extract

import (
	"context"
	"testing"

	"github.com/jumahq/pesaflow/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const receivedMsg = "QCK1234567 Confirmed. You have received Ksh500.00 from JOHN DOE 254712345678 " +
	"on 15/1/25 at 2:30 PM. New M-PESA balance is Ksh15,500.00. Transaction cost, Ksh0.00."

func TestPatternExtractor_Received(t *testing.T) {
	e := NewPatternExtractor()

	got := e.Extract(context.Background(), receivedMsg)
	require.Len(t, got, 1)

	tx := got[0]
	assert.Equal(t, "QCK1234567", tx.TransactionID)
	assert.Equal(t, domain.TypeReceived, tx.Type)
	assert.True(t, tx.Amount.Equal(decimal.NewFromFloat(500.00)), "amount = %s", tx.Amount)
	assert.Equal(t, "JOHN DOE", tx.Counterparty)
	assert.Equal(t, "254712345678", tx.CounterpartyPhone)
	assert.Equal(t, "2025-01-15", tx.Date.Format("2006-01-02"))
	assert.Equal(t, "14:30", tx.Time)
	assert.True(t, tx.BalanceAfter.Equal(decimal.NewFromFloat(15500.00)), "balance = %s", tx.BalanceAfter)
	assert.True(t, tx.TransactionCost.IsZero(), "cost = %s", tx.TransactionCost)
	assert.Equal(t, PatternConfidence, tx.ConfidenceScore)
	assert.Equal(t, receivedMsg, tx.RawText)
}

func TestPatternExtractor_Sent(t *testing.T) {
	e := NewPatternExtractor()
	text := "RBA7612KQT Confirmed. Ksh1,200.00 sent to JANE WANJIKU 0722000111 on 16/1/25 at 9:45 AM. " +
		"New M-PESA balance is Ksh14,300.00. Transaction cost, Ksh23.00."

	got := e.Extract(context.Background(), text)
	require.Len(t, got, 1)

	tx := got[0]
	assert.Equal(t, domain.TypeSent, tx.Type)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, "JANE WANJIKU", tx.Counterparty)
	assert.Equal(t, "254722000111", tx.CounterpartyPhone)
	assert.True(t, tx.TransactionCost.Equal(decimal.NewFromInt(23)))
}

func TestPatternExtractor_Paybill(t *testing.T) {
	e := NewPatternExtractor()
	text := "RBB8812KQU Confirmed. Ksh2,300.00 sent to KPLC PREPAID for account 54401234567 " +
		"on 16/1/25 at 9:00 AM New M-PESA balance is Ksh12,000.00. Transaction cost, Ksh33.00."

	got := e.Extract(context.Background(), text)
	require.Len(t, got, 1)

	tx := got[0]
	assert.Equal(t, domain.TypePaybill, tx.Type)
	assert.Equal(t, "KPLC PREPAID", tx.Counterparty)
	assert.Equal(t, "54401234567", tx.AccountNumber)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(2300)))
}

func TestPatternExtractor_BuyGoods(t *testing.T) {
	e := NewPatternExtractor()
	text := "RBC9913KQV Confirmed. Ksh300.00 paid to NAIVAS SUPERMARKET. on 16/1/25 at 10:15 AM. " +
		"New M-PESA balance is Ksh11,700.00. Transaction cost, Ksh0.00."

	got := e.Extract(context.Background(), text)
	require.Len(t, got, 1)

	tx := got[0]
	assert.Equal(t, domain.TypeBuyGoods, tx.Type)
	assert.Equal(t, "NAIVAS SUPERMARKET", tx.Counterparty)
}

func TestPatternExtractor_Withdraw(t *testing.T) {
	e := NewPatternExtractor()
	text := "RBD1014KQW Confirmed. on 17/1/25 at 5:01 PM Withdraw Ksh5,000.00 from 004562 - EQUITY AGENT KAREN. " +
		"New M-PESA balance is Ksh6,700.00. Transaction cost, Ksh69.00."

	got := e.Extract(context.Background(), text)
	require.Len(t, got, 1)

	tx := got[0]
	assert.Equal(t, domain.TypeWithdraw, tx.Type)
	assert.Equal(t, "EQUITY AGENT KAREN", tx.Counterparty)
	assert.Equal(t, "004562", tx.AccountNumber)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(5000)))
	assert.True(t, tx.TransactionCost.Equal(decimal.NewFromInt(69)))
}

func TestPatternExtractor_Airtime(t *testing.T) {
	e := NewPatternExtractor()
	text := "RBE1115KQX Confirmed. You bought Ksh100.00 of airtime on 17/1/25 at 8:00 AM. " +
		"New balance is Ksh6,600.00. Transaction cost, Ksh0.00."

	got := e.Extract(context.Background(), text)
	require.Len(t, got, 1)

	tx := got[0]
	assert.Equal(t, domain.TypeAirtime, tx.Type)
	assert.Equal(t, "SAFARICOM", tx.Counterparty)
	assert.Equal(t, "airtime purchase", tx.Reference)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(100)))
}

func TestPatternExtractor_Fuliza(t *testing.T) {
	e := NewPatternExtractor()
	text := "RBF1216KQY Confirmed. Fuliza M-PESA amount is Ksh850.00. Interest charged Ksh8.50. " +
		"Total Fuliza M-PESA outstanding amount is Ksh858.50 due on 24/1/25."

	got := e.Extract(context.Background(), text)
	require.Len(t, got, 1)

	tx := got[0]
	assert.Equal(t, domain.TypeFuliza, tx.Type)
	assert.Equal(t, "FULIZA M-PESA", tx.Counterparty)
	assert.True(t, tx.Amount.Equal(decimal.NewFromFloat(850.00)))
	assert.True(t, tx.TransactionCost.Equal(decimal.NewFromFloat(8.50)))
	assert.Equal(t, "2025-01-24", tx.Date.Format("2006-01-02"))
}

func TestPatternExtractor_MultipleMessages(t *testing.T) {
	e := NewPatternExtractor()
	text := receivedMsg + "\n" +
		"RBA7612KQT Confirmed. Ksh1,200.00 sent to JANE WANJIKU 0722000111 on 16/1/25 at 9:45 AM. " +
		"New M-PESA balance is Ksh14,300.00. Transaction cost, Ksh23.00.\n" +
		"some noise the recognizers cannot read\n" +
		"RBE1115KQX Confirmed. You bought Ksh100.00 of airtime on 17/1/25 at 8:00 AM. New balance is Ksh6,600.00."

	got := e.Extract(context.Background(), text)
	require.Len(t, got, 3)

	// Candidates come back in text order.
	assert.Equal(t, domain.TypeReceived, got[0].Type)
	assert.Equal(t, domain.TypeSent, got[1].Type)
	assert.Equal(t, domain.TypeAirtime, got[2].Type)
}

func TestPatternExtractor_Pure(t *testing.T) {
	e := NewPatternExtractor()
	text := receivedMsg + " RBC9913KQV Confirmed. Ksh300.00 paid to NAIVAS SUPERMARKET. on 16/1/25 at 10:15 AM."

	first := e.Extract(context.Background(), text)
	second := e.Extract(context.Background(), text)
	assert.Equal(t, first, second)
}

func TestPatternExtractor_UnparseableYieldsNothing(t *testing.T) {
	e := NewPatternExtractor()

	assert.Empty(t, e.Extract(context.Background(), ""))
	assert.Empty(t, e.Extract(context.Background(), "hello, is this the statement hotline?"))
	assert.Empty(t, e.Extract(context.Background(), "Confirmed. Ksh500.00")) // no code, no structure
}
