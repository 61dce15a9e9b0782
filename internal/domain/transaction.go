package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a mobile-wallet transaction by the message
// format it was extracted from.
type TransactionType string

const (
	TypeReceived TransactionType = "received"
	TypeSent     TransactionType = "sent"
	TypeWithdraw TransactionType = "withdraw"
	TypeDeposit  TransactionType = "deposit"
	TypePaybill  TransactionType = "paybill"
	TypeBuyGoods TransactionType = "buy_goods"
	TypeAirtime  TransactionType = "airtime"
	TypeFuliza   TransactionType = "fuliza"
)

// String returns the string representation of TransactionType.
func (t TransactionType) String() string {
	return string(t)
}

// IsValid checks if the transaction type is part of the fixed enumeration.
func (t TransactionType) IsValid() bool {
	switch t {
	case TypeReceived, TypeSent, TypeWithdraw, TypeDeposit,
		TypePaybill, TypeBuyGoods, TypeAirtime, TypeFuliza:
		return true
	}
	return false
}

// IsIncome reports whether the type represents money flowing into the wallet.
func (t TransactionType) IsIncome() bool {
	return t == TypeReceived || t == TypeDeposit
}

// IsExpense reports whether the type represents money flowing out of the wallet.
func (t TransactionType) IsExpense() bool {
	switch t {
	case TypeSent, TypePaybill, TypeBuyGoods, TypeWithdraw, TypeAirtime, TypeFuliza:
		return true
	}
	return false
}

// Network identifies which mobile money network a transaction moved over,
// relative to the business's own wallet.
type Network string

const (
	NetworkHome          Network = "home_wallet"
	NetworkOther         Network = "other_wallet"
	NetworkInternational Network = "international"
)

// Transaction is the central entity of the pipeline. It is created once by
// extraction, enriched in place by validation and categorization, and then
// handed to the caller for persistence. The pipeline never mutates it after
// handoff.
type Transaction struct {
	TransactionID     string          `json:"transaction_id"`
	Date              time.Time       `json:"date"`
	Time              string          `json:"time,omitempty"` // local time "HH:MM", optional
	Type              TransactionType `json:"type"`
	Amount            decimal.Decimal `json:"amount"`
	TransactionCost   decimal.Decimal `json:"transaction_cost"`
	Counterparty      string          `json:"counterparty"`
	CounterpartyPhone string          `json:"counterparty_phone,omitempty"`
	AccountNumber     string          `json:"account_number,omitempty"`
	Reference         string          `json:"reference,omitempty"`
	BalanceAfter      decimal.Decimal `json:"balance_after"`
	RawText           string          `json:"raw_text"`
	ConfidenceScore   float64         `json:"confidence_score"`
	Network           Network         `json:"network"`
	BusinessID        string          `json:"business_id,omitempty"`

	// Assigned by the categorizer.
	Category           string  `json:"category,omitempty"`
	VATApplicable      bool    `json:"vat_applicable"`
	CategoryConfidence float64 `json:"category_confidence"`
}

// Validate reports why a transaction would be rejected by the validator.
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.TransactionID) == "" {
		return fmt.Errorf("transaction ID cannot be empty")
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("transaction amount must be positive, got %s", t.Amount)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("transaction date cannot be zero")
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("invalid transaction type: %q", t.Type)
	}
	return nil
}

// DedupKey groups transactions that are treated as duplicates within a batch:
// same amount, same counterparty (falling back to reference), same calendar
// day. The transaction ID is deliberately not part of the key; two genuinely
// distinct transactions sharing the key on one day will collapse into one.
func (t *Transaction) DedupKey() string {
	party := t.Counterparty
	if party == "" {
		party = t.Reference
	}
	return t.Amount.StringFixed(2) + "|" + strings.ToUpper(strings.TrimSpace(party)) + "|" + t.Date.Format("2006-01-02")
}

// Timestamp combines Date and the optional Time field into a single instant.
// The boolean is false when the transaction carries no usable time of day.
func (t *Transaction) Timestamp() (time.Time, bool) {
	if t.Time == "" {
		return t.Date, false
	}
	clock, err := time.Parse("15:04", t.Time)
	if err != nil {
		return t.Date, false
	}
	return time.Date(t.Date.Year(), t.Date.Month(), t.Date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, t.Date.Location()), true
}

// String returns a compact representation used in logs.
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{ID: %s, Type: %s, Amount: %s, Date: %s}",
		t.TransactionID, t.Type, t.Amount.String(), t.Date.Format("2006-01-02"))
}
