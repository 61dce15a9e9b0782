package extract

import (
	"fmt"
	"strings"

	"github.com/jumahq/pesaflow/internal/domain"
	"github.com/jumahq/pesaflow/internal/normalize"
	"github.com/shopspring/decimal"
)

// coerceCandidates converts decoded model output into transaction candidates
// in the same shape the pattern extractor produces. Any schema violation is
// an error; the caller treats it as a failed model call and falls back.
func coerceCandidates(raw []interface{}) ([]domain.Transaction, error) {
	result := make([]domain.Transaction, 0, len(raw))

	for i, item := range raw {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("coerceCandidates: element %d is %T, want object", i, item)
		}

		tx, err := coerceCandidate(obj)
		if err != nil {
			return nil, fmt.Errorf("coerceCandidates: transaction %d: %w", i, err)
		}
		result = append(result, tx)
	}

	return result, nil
}

func coerceCandidate(obj map[string]interface{}) (domain.Transaction, error) {
	var tx domain.Transaction

	dateStr, err := getStringField(obj, "date", true)
	if err != nil {
		return tx, err
	}
	typeStr, err := getStringField(obj, "type", true)
	if err != nil {
		return tx, err
	}
	amount, err := getAmountField(obj, "amount", true)
	if err != nil {
		return tx, err
	}

	date, ok := normalize.Date(dateStr)
	if !ok {
		return tx, fmt.Errorf("invalid date %q", dateStr)
	}

	txType := domain.TransactionType(strings.ToLower(strings.TrimSpace(typeStr)))
	if !txType.IsValid() {
		return tx, fmt.Errorf("invalid transaction type %q", typeStr)
	}

	// Optional fields; absence is fine, wrong types are not.
	id, err := getStringField(obj, "transaction_id", false)
	if err != nil {
		return tx, err
	}
	clock, err := getStringField(obj, "time", false)
	if err != nil {
		return tx, err
	}
	counterparty, err := getStringField(obj, "counterparty", false)
	if err != nil {
		return tx, err
	}
	phone, err := getStringField(obj, "counterparty_phone", false)
	if err != nil {
		return tx, err
	}
	account, err := getStringField(obj, "account_number", false)
	if err != nil {
		return tx, err
	}
	reference, err := getStringField(obj, "reference", false)
	if err != nil {
		return tx, err
	}
	cost, err := getAmountField(obj, "transaction_cost", false)
	if err != nil {
		return tx, err
	}
	balance, err := getAmountField(obj, "balance_after", false)
	if err != nil {
		return tx, err
	}
	rawText, err := getStringField(obj, "raw_text", false)
	if err != nil {
		return tx, err
	}

	tx = domain.Transaction{
		TransactionID:     strings.TrimSpace(id),
		Date:              date,
		Time:              normalize.Clock(clock),
		Type:              txType,
		Amount:            amount,
		TransactionCost:   cost,
		Counterparty:      normalize.Name(counterparty),
		CounterpartyPhone: normalize.Phone(phone),
		AccountNumber:     strings.TrimSpace(account),
		Reference:         strings.TrimSpace(reference),
		BalanceAfter:      balance,
		RawText:           rawText,
		ConfidenceScore:   AIConfidence,
		Network:           domain.NetworkHome,
	}
	return tx, nil
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
	if required && strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("required field %q is empty", key)
	}
	return s, nil
}

// getAmountField accepts both JSON numbers and currency-formatted strings;
// the model is inconsistent about which it emits.
func getAmountField(m map[string]interface{}, key string, required bool) (decimal.Decimal, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return decimal.Zero, fmt.Errorf("missing required field %q", key)
		}
		return decimal.Zero, nil
	}
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val), nil
	case string:
		return normalize.Amount(val), nil
	default:
		return decimal.Zero, fmt.Errorf("field %q has type %T, want number or string", key, v)
	}
}
