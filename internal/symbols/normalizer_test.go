package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avidela/folio/internal/contracts"
)

func TestNormalize_Rules(t *testing.T) {
	n := New(nil)

	tests := []struct {
		name   string
		raw    string
		want   string
		source contracts.SymbolSource
	}{
		{"known crypto pair", "BTCUSD", "BTC-USD", contracts.SourceKnownMap},
		{"known frankfurt listing", "NVD.F", "NVDA", contracts.SourceKnownMap},
		{"known share class", "BRK.B", "BRK-B", contracts.SourceKnownMap},
		{"crypto pattern", "LINKUSD", "LINK-USD", contracts.SourcePatternRule},
		{"crypto usdt pattern", "AVAXUSDT", "AVAX-USDT", contracts.SourcePatternRule},
		{"invalid suffix stripped", "SAP.DE", "SAP", contracts.SourceSuffixStrip},
		{"share class dot to hyphen", "PBR.A", "PBR-A", contracts.SourcePatternRule},
		{"plain us symbol", "AAPL", "AAPL", contracts.SourceUnchanged},
		{"lowercase trimmed", "  aapl ", "AAPL", contracts.SourceUnchanged},
		{"london suffix preserved", "VOD.L", "VOD.L", contracts.SourceUnchanged},
		{"tokyo suffix preserved", "7203.T", "7203.T", contracts.SourceUnchanged},
		{"hong kong suffix preserved", "0700.HK", "0700.HK", contracts.SourceUnchanged},
		{"index ticker preserved", "^SPX", "^SPX", contracts.SourceUnchanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.raw)
			assert.Equal(t, tt.want, got.Normalized)
			assert.Equal(t, tt.source, got.Source)
			assert.Equal(t, tt.raw, got.Raw)
			assert.True(t, got.Valid)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := New(nil)

	symbols := []string{
		"BTCUSD", "ETHUSD", "NVD.F", "BRK.B", "AAPL", "SAP.DE",
		"PBR.A", "VOD.L", "^SPX", "LINKUSD", "0700.HK", "A.B.C",
	}

	for _, s := range symbols {
		once := n.Normalize(s).Normalized
		twice := n.Normalize(once).Normalized
		assert.Equal(t, once, twice, "normalize(%q) not idempotent", s)
	}
}

func TestNormalize_IndexTickers(t *testing.T) {
	n := New(nil)

	for _, s := range []string{"^SPX", "^GSPC", "^DJI", "^IXIC", "^VIX", "^RUT"} {
		got := n.Normalize(s)
		assert.Equal(t, s, got.Normalized)
		assert.True(t, got.Valid)
	}
}

func TestNormalize_Overrides(t *testing.T) {
	n := New(map[string]string{
		"FOO":    "BAR",
		"btcusd": "BTCX-USD", // overrides win over the base table
	})

	got := n.Normalize("FOO")
	assert.Equal(t, "BAR", got.Normalized)
	assert.Equal(t, contracts.SourceKnownMap, got.Source)

	assert.Equal(t, "BTCX-USD", n.Normalize("BTCUSD").Normalized)

	// The base table itself is untouched
	assert.Equal(t, "BTC-USD", New(nil).Normalize("BTCUSD").Normalized)
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		symbol string
		want   bool
	}{
		{"AAPL", true},
		{"BRK-B", true},
		{"VOD.L", true},
		{"^SPX", true},
		{"7203.T", true},
		{"", false},
		{"-AAPL", false},
		{"AAPL-", false},
		{".AAPL", false},
		{"AAPL.", false},
		{"AA PL", false},
		{"aapl", false},
		{"AAPL$", false},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.symbol))
		})
	}
}
