// Package normalize holds the shared field normalizers used by extraction
// and validation. Every function is pure and idempotent: feeding an already
// normalized value back in returns it unchanged.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// CountryCode is the canonical leading country code for normalized
	// phone numbers.
	CountryCode = "254"

	// DateLayout is the canonical wire form for dates.
	DateLayout = "2006-01-02"
)

var (
	nonDigits      = regexp.MustCompile(`[^0-9]`)
	multiSpace     = regexp.MustCompile(`\s+`)
	namePunct      = regexp.MustCompile(`[^A-Z0-9 .'\-]`)
	slashDate      = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)
	amountStripper = strings.NewReplacer("KSH", "", "KES", "", ",", "", " ", "")
)

// Amount parses a currency amount as it appears in statement text, stripping
// thousands separators and currency symbols. It returns zero on anything it
// cannot parse rather than an error; per-fragment parse failures are not
// fatal anywhere in the pipeline.
func Amount(s string) decimal.Decimal {
	cleaned := amountStripper.Replace(strings.ToUpper(strings.TrimSpace(s)))
	cleaned = strings.TrimPrefix(cleaned, "+")
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Date parses a statement date into a UTC calendar date. It accepts the
// day/month/year forms found in wallet messages ("15/1/25", "15/01/2025")
// as well as the canonical YYYY-MM-DD form, which makes it idempotent over
// its own output. Two-digit years pivot at 50: above goes to the 1900s,
// at or below to the 2000s.
func Date(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), true
	}

	m := slashDate.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	day := atoi(m[1])
	month := atoi(m[2])
	year := atoi(m[3])
	if len(m[3]) <= 2 {
		if year > 50 {
			year += 1900
		} else {
			year += 2000
		}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// Clock normalizes a time of day to 24-hour "HH:MM". Both "2:30 PM" and
// "14:30" inputs are accepted; unparseable input yields "".
func Clock(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range []string{"3:04 PM", "3:04PM", "15:04"} {
		if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
			return t.Format("15:04")
		}
	}
	return ""
}

// Phone canonicalizes a phone number to a bare leading-country-code form,
// e.g. "254712345678". It accepts a leading zero ("0712345678"), a bare
// subscriber number ("712345678"), an international prefix ("+254712345678"),
// and the canonical form itself. Anything else comes back as its bare digits,
// and empty input stays empty.
func Phone(s string) string {
	digits := nonDigits.ReplaceAllString(s, "")
	if digits == "" {
		return ""
	}

	switch {
	case strings.HasPrefix(digits, CountryCode) && len(digits) == 12:
		return digits
	case strings.HasPrefix(digits, "0") && len(digits) == 10:
		return CountryCode + digits[1:]
	case len(digits) == 9 && (digits[0] == '7' || digits[0] == '1'):
		return CountryCode + digits
	}
	return digits
}

// Name cleans a counterparty display name: whitespace collapsed, punctuation
// other than hyphen, apostrophe and period stripped, uppercased.
func Name(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = namePunct.ReplaceAllString(s, " ")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
