package extract

import (
	"regexp"

	"github.com/jumahq/pesaflow/internal/domain"
	"github.com/jumahq/pesaflow/internal/normalize"
)

// Shared regexp fragments. Counterparty names in wallet messages are
// uppercase, which is what keeps the sent recognizer from swallowing the
// lowercase "for account" connective in paybill messages.
const (
	reCode   = `(?P<code>[A-Z][A-Z0-9]{9})`
	reAmount = `(?P<amount>[0-9][0-9,]*(?:\.[0-9]{1,2})?)`
	reName   = `(?P<name>[A-Z][A-Z0-9.'\- ]*?)`
	reDate   = `(?P<date>\d{1,2}/\d{1,2}/\d{2,4})`
	reClock  = `(?P<time>\d{1,2}:\d{2}\s?(?:AM|PM)?)`
	rePhone  = `(?P<phone>\d{9,12})`

	// Trailing balance and cost sentences, both optional.
	reTail = `(?:\s*New (?:M-PESA\s+)?balance is Ksh(?P<balance>[0-9][0-9,]*(?:\.[0-9]{1,2})?)\.?)?` +
		`(?:\s*Transaction cost,?\s*Ksh(?P<cost>[0-9][0-9,]*(?:\.[0-9]{1,2})?)\.?)?`
)

// Recognizer is a structural template for one wallet message format. Each
// value scans the whole text for every non-overlapping occurrence of its
// format and converts raw matches into transaction candidates.
type Recognizer struct {
	Name string
	Type domain.TransactionType
	re   *regexp.Regexp

	// Formats that name no counterparty (airtime, fuliza) carry a fixed one.
	counterparty string
	reference    string
}

// Match is one recognized occurrence, with its span in the scanned text so
// the extractor can enforce first-registered-wins on overlaps.
type Match struct {
	Start     int
	End       int
	Candidate domain.Transaction
}

// Recognize scans text for all non-overlapping occurrences of this format.
// It never fails; fragments that do not parse simply yield no match.
func (r Recognizer) Recognize(text string) []Match {
	var matches []Match
	for _, idx := range r.re.FindAllStringSubmatchIndex(text, -1) {
		candidate := r.buildCandidate(text, idx)
		matches = append(matches, Match{Start: idx[0], End: idx[1], Candidate: candidate})
	}
	return matches
}

// buildCandidate maps the named capture groups of one raw match onto a
// candidate, running every field through the shared normalizers.
func (r Recognizer) buildCandidate(text string, idx []int) domain.Transaction {
	groups := r.groups(text, idx)

	tx := domain.Transaction{
		TransactionID:   groups["code"],
		Type:            r.Type,
		Amount:          normalize.Amount(groups["amount"]),
		TransactionCost: normalize.Amount(groups["cost"]),
		BalanceAfter:    normalize.Amount(groups["balance"]),
		Counterparty:    normalize.Name(groups["name"]),
		CounterpartyPhone: normalize.Phone(groups["phone"]),
		AccountNumber:   groups["account"],
		Time:            normalize.Clock(groups["time"]),
		RawText:         text[idx[0]:idx[1]],
		ConfidenceScore: PatternConfidence,
		Network:         domain.NetworkHome,
	}

	if date, ok := normalize.Date(groups["date"]); ok {
		tx.Date = date
	}
	if tx.Counterparty == "" {
		tx.Counterparty = r.counterparty
	}
	if r.reference != "" {
		tx.Reference = r.reference
	}
	return tx
}

func (r Recognizer) groups(text string, idx []int) map[string]string {
	out := make(map[string]string)
	for i, name := range r.re.SubexpNames() {
		if name == "" || 2*i+1 >= len(idx) || idx[2*i] < 0 {
			continue
		}
		out[name] = text[idx[2*i]:idx[2*i+1]]
	}
	return out
}

// defaultRecognizers returns the fixed, ordered recognizer set. Registration
// order is the tie-break: when two formats could claim the same span, the
// earlier one wins.
func defaultRecognizers() []Recognizer {
	return []Recognizer{
		{
			Name: "received",
			Type: domain.TypeReceived,
			re: regexp.MustCompile(reCode + `\s+Confirmed\.?\s*You have received Ksh` + reAmount +
				` from ` + reName + `\s+` + rePhone + ` on ` + reDate + ` at ` + reClock + `\.?` + reTail),
		},
		{
			Name: "sent",
			Type: domain.TypeSent,
			re: regexp.MustCompile(reCode + `\s+Confirmed\.?\s*Ksh` + reAmount +
				` sent to ` + reName + `(?:\s+` + rePhone + `)? on ` + reDate + ` at ` + reClock + `\.?` + reTail),
		},
		{
			Name: "paybill",
			Type: domain.TypePaybill,
			re: regexp.MustCompile(reCode + `\s+Confirmed\.?\s*Ksh` + reAmount +
				` sent to ` + reName + ` for account (?P<account>\S+) on ` + reDate + ` at ` + reClock + `\.?` + reTail),
		},
		{
			Name: "buy_goods",
			Type: domain.TypeBuyGoods,
			re: regexp.MustCompile(reCode + `\s+Confirmed\.?\s*Ksh` + reAmount +
				` paid to ` + reName + `[.,]? on ` + reDate + ` at ` + reClock + `\.?` + reTail),
		},
		{
			Name: "withdraw",
			Type: domain.TypeWithdraw,
			re: regexp.MustCompile(reCode + `\s+Confirmed\.?\s*on ` + reDate + ` at ` + reClock +
				`\s*Withdraw Ksh` + reAmount + ` from (?:(?P<account>\d+)\s*-\s*)?` + reName + `\.?` + reTail),
		},
		{
			Name: "airtime",
			Type: domain.TypeAirtime,
			re: regexp.MustCompile(reCode + `\s+Confirmed\.?\s*You bought Ksh` + reAmount +
				` of airtime(?: for ` + rePhone + `)? on ` + reDate + ` at ` + reClock + `\.?` + reTail),
			counterparty: "SAFARICOM",
			reference:    "airtime purchase",
		},
		{
			Name: "deposit",
			Type: domain.TypeDeposit,
			re: regexp.MustCompile(reCode + `\s+Confirmed\.?\s*Give Ksh` + reAmount +
				` cash to ` + reName + ` on ` + reDate + ` at ` + reClock + `\.?` + reTail),
			reference: "agent deposit",
		},
		{
			Name: "fuliza",
			Type: domain.TypeFuliza,
			re: regexp.MustCompile(reCode + `\s+Confirmed\.?\s*Fuliza M-PESA amount is Ksh` + reAmount +
				`\.?(?:\s*Interest charged,? Ksh(?P<cost>[0-9][0-9,]*(?:\.[0-9]{1,2})?)\.?)?` +
				`\s*Total Fuliza M-PESA outstanding amount is Ksh(?P<balance>[0-9][0-9,]*(?:\.[0-9]{1,2})?)\.?` +
				`\s*due on ` + reDate),
			counterparty: "FULIZA M-PESA",
			reference:    "fuliza overdraft",
		},
	}
}
