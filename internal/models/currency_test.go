package models

import "testing"

func TestCurrencyFromCode(t *testing.T) {
	cases := []struct {
		code string
		want Currency
		ok   bool
	}{
		{"SEK", SEK, true},
		{"sek", SEK, true},
		{" usd ", USD, true},
		{"EUR", EUR, true},
		{"XXX", Currency("XXX"), false},
		{"", Currency(""), false},
	}

	for _, tc := range cases {
		got, ok := CurrencyFromCode(tc.code)
		if ok != tc.ok {
			t.Errorf("CurrencyFromCode(%q): expected ok=%v, got %v", tc.code, tc.ok, ok)
		}
		if ok && got != tc.want {
			t.Errorf("CurrencyFromCode(%q): expected %s, got %s", tc.code, tc.want, got)
		}
	}
}

func TestCurrencyIsKnown(t *testing.T) {
	for _, c := range []Currency{SEK, USD, EUR, GBP, JPY, CAD, AUD, CHF, CNY} {
		if !c.IsKnown() {
			t.Errorf("expected %s to be known", c)
		}
	}
	if Currency("BTC").IsKnown() {
		t.Error("expected BTC to be unknown")
	}
}

func TestCurrencySymbol(t *testing.T) {
	if SEK.Symbol() != "kr" {
		t.Errorf("expected kr, got %s", SEK.Symbol())
	}
	if got := Currency("XXX").Symbol(); got != "XXX" {
		t.Errorf("expected unknown currency to fall back to its code, got %s", got)
	}
}
