package normalize

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Ksh500.00", "500"},
		{"Ksh15,500.00", "15500"},
		{"KES 1,234,567.89", "1234567.89"},
		{"500", "500"},
		{"0.00", "0"},
		{"", "0"},
		{"garbage", "0"},
		{"Ksh", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Amount(tt.input)
			want, err := decimal.NewFromString(tt.want)
			assert.NoError(t, err)
			assert.True(t, got.Equal(want), "Amount(%q) = %s, want %s", tt.input, got, want)
		})
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{"15/1/25", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"15/01/2025", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"2025-01-15", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"1/12/99", time.Date(1999, 12, 1, 0, 0, 0, 0, time.UTC), true}, // pivot: >50 is 1900s
		{"1/12/50", time.Date(2050, 12, 1, 0, 0, 0, 0, time.UTC), true},
		{"32/1/25", time.Time{}, false},
		{"15/13/25", time.Time{}, false},
		{"not a date", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Date(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDate_Idempotent(t *testing.T) {
	first, ok := Date("15/1/25")
	assert.True(t, ok)

	again, ok := Date(first.Format(DateLayout))
	assert.True(t, ok)
	assert.Equal(t, first, again)
}

func TestClock(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2:30 PM", "14:30"},
		{"2:30PM", "14:30"},
		{"9:05 AM", "09:05"},
		{"12:00 AM", "00:00"},
		{"14:30", "14:30"},
		{"", ""},
		{"half past two", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Clock(tt.input))
		})
	}
}

func TestClock_Idempotent(t *testing.T) {
	once := Clock("2:30 PM")
	assert.Equal(t, once, Clock(once))
}

func TestPhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"254712345678", "254712345678"},
		{"0712345678", "254712345678"},
		{"712345678", "254712345678"},
		{"+254712345678", "254712345678"},
		{"0110000222", "254110000222"},
		{"", ""},
		{"   ", ""},
		{"12345", "12345"}, // unrecognized shape passes through as bare digits
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Phone(tt.input))
		})
	}
}

func TestPhone_Idempotent(t *testing.T) {
	once := Phone("0712345678")
	assert.Equal(t, once, Phone(once))
}

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"JOHN DOE", "JOHN DOE"},
		{"john   doe", "JOHN DOE"},
		{"  Mary   Wanjiku  ", "MARY WANJIKU"},
		{"O'BRIEN-SMITH JR.", "O'BRIEN-SMITH JR."},
		{"ACME* LTD#", "ACME LTD"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Name(tt.input))
		})
	}
}

func TestName_Idempotent(t *testing.T) {
	once := Name("  Mary,Wanjiku  ")
	assert.Equal(t, once, Name(once))
}
