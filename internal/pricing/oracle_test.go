package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestStaticOracle_TablePrices(t *testing.T) {
	o := NewStaticOracle()

	tests := map[string]string{
		"BTC":  "42580",
		"ETH":  "2150",
		"XRP":  "0.62",
		"DOGE": "0.15",
		"FIL":  "5.8",
	}
	for symbol, want := range tests {
		if got := o.CurrentPrice(symbol); !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("CurrentPrice(%s) = %s, want %s", symbol, got, want)
		}
	}
}

func TestStaticOracle_Fallback(t *testing.T) {
	o := NewStaticOracle()
	if got := o.CurrentPrice("UNKNOWN"); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("fallback price = %s, want 100", got)
	}
}

func TestStaticOracle_SetPrice(t *testing.T) {
	o := NewStaticOracle()
	o.SetPrice("BTC", decimal.NewFromInt(50000))
	if got := o.CurrentPrice("BTC"); !got.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("CurrentPrice after SetPrice = %s, want 50000", got)
	}
}
