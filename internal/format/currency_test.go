package format

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewCurrencyRejectsBadInput(t *testing.T) {
	if _, err := NewCurrency("NOPE", "en-US"); err == nil {
		t.Error("NewCurrency(NOPE) returned nil error")
	}
	if _, err := NewCurrency("USD", "!!"); err == nil {
		t.Error("NewCurrency(USD, !!) returned nil error")
	}
}

func TestFormatCurrency(t *testing.T) {
	f, err := NewCurrency("USD", "en-US")
	if err != nil {
		t.Fatalf("NewCurrency() error = %v", err)
	}

	if got := f.CurrencySymbol(); got != "$" {
		t.Errorf("CurrencySymbol() = %q, want $", got)
	}
	if got := f.Code(); got != "USD" {
		t.Errorf("Code() = %q, want USD", got)
	}

	tests := []struct {
		amount   string
		contains []string
		negative bool
	}{
		{amount: "1234.5", contains: []string{"$", "1,234.50"}},
		{amount: "15", contains: []string{"$", "15.00"}},
		{amount: "0.005", contains: []string{"0.01"}},
		{amount: "-20", contains: []string{"$", "20.00"}, negative: true},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got := f.FormatCurrency(decimal.RequireFromString(tt.amount))
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("FormatCurrency(%s) = %q, want it to contain %q", tt.amount, got, want)
				}
			}
			if strings.HasPrefix(got, "-") != tt.negative {
				t.Errorf("FormatCurrency(%s) = %q, negative sign mismatch", tt.amount, got)
			}
		})
	}
}

func TestFormatCurrencyZeroDecimalCurrency(t *testing.T) {
	f, err := NewCurrency("JPY", "en-US")
	if err != nil {
		t.Fatalf("NewCurrency() error = %v", err)
	}
	got := f.FormatCurrency(decimal.RequireFromString("1500"))
	if strings.Contains(got, ".") {
		t.Errorf("FormatCurrency() = %q, want no decimals for JPY", got)
	}
	if !strings.Contains(got, "1,500") {
		t.Errorf("FormatCurrency() = %q, want grouping", got)
	}
}
