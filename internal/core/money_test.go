package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.01", true}, // half away from zero
		{" 2.50 ", "2.5", true},
		{"99999999.99", "99999999.99", true},
		{"100000000", "", false},
		{"-1", "", false},
		{"+1", "", false},
		{"0", "", false},
		{"0.001", "", false},
		{"1e3", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{".", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestSignedAmount(t *testing.T) {
	in := Transaction{Amount: decimal.NewFromInt(10), Type: Income}
	out := Transaction{Amount: decimal.NewFromInt(10), Type: Expense}
	if !in.SignedAmount().Equal(decimal.NewFromInt(10)) {
		t.Fatalf("income signed amount = %s", in.SignedAmount())
	}
	if !out.SignedAmount().Equal(decimal.NewFromInt(-10)) {
		t.Fatalf("expense signed amount = %s", out.SignedAmount())
	}
}
