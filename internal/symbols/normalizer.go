// Package symbols rewrites raw portfolio tickers into provider-valid form.
// Normalization is pure and deterministic: no I/O, no global state.
package symbols

import (
	"regexp"
	"strings"

	"github.com/avidela/folio/internal/contracts"
)

// baseCorrections maps raw tickers that appear in stored portfolios to the
// form the provider accepts. Never mutated after init; per-instance
// overrides are merged at construction.
var baseCorrections = map[string]string{
	// Crypto pairs stored without the hyphen
	"BTCUSD":  "BTC-USD",
	"ETHUSD":  "ETH-USD",
	"USDTUSD": "USDT-USD",
	"BNBUSD":  "BNB-USD",
	"XRPUSD":  "XRP-USD",
	"ADAUSD":  "ADA-USD",
	"SOLUSD":  "SOL-USD",
	"DOGEUSD": "DOGE-USD",

	// Frankfurt listings of US names, quoted on the US exchange instead
	"NVD.F":   "NVDA",
	"AAPL.F":  "AAPL",
	"MSFT.F":  "MSFT",
	"AMZN.F":  "AMZN",
	"TSLA.F":  "TSLA",
	"GOOGL.F": "GOOGL",
	"META.F":  "META",

	// Share classes stored with dots
	"BRK.B": "BRK-B",
	"BRK.A": "BRK-A",
}

// exchangeSuffixes are legitimate international listing suffixes that must
// survive normalization untouched.
var exchangeSuffixes = map[string]struct{}{
	".L":  {}, // London
	".F":  {}, // Frankfurt
	".PA": {}, // Paris
	".MI": {}, // Milan
	".AS": {}, // Amsterdam
	".SW": {}, // Switzerland
	".T":  {}, // Tokyo
	".HK": {}, // Hong Kong
	".SS": {}, // Shanghai
	".SZ": {}, // Shenzhen
	".SA": {}, // Sao Paulo
	".MX": {}, // Mexico
	".TO": {}, // Toronto
	".AX": {}, // Australia
}

var (
	cryptoPairRe = regexp.MustCompile(`^([A-Z]{3,5})(USDT?)$`)

	// Leading ^ is allowed: index tickers (^SPX, ^VIX) are first-class.
	validSymbolRe = regexp.MustCompile(`^[\^A-Z0-9.\-]+$`)
)

// Normalizer rewrites raw tickers using a fixed rule chain.
type Normalizer struct {
	corrections map[string]string
}

// New builds a Normalizer from the base corrections table merged with the
// given overrides. Overrides win on conflict.
func New(overrides map[string]string) *Normalizer {
	merged := make(map[string]string, len(baseCorrections)+len(overrides))
	for k, v := range baseCorrections {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[strings.ToUpper(strings.TrimSpace(k))] = strings.ToUpper(strings.TrimSpace(v))
	}
	return &Normalizer{corrections: merged}
}

// Normalize maps a raw holding symbol to a provider-valid symbol. First
// matching rule wins: known correction, crypto-pair hyphenation, invalid
// exchange suffix strip, share-class dot to hyphen, otherwise uppercase and
// trim only.
func (n *Normalizer) Normalize(raw string) contracts.NormalizedSymbol {
	symbol := strings.ToUpper(strings.TrimSpace(raw))

	result := func(normalized string, source contracts.SymbolSource) contracts.NormalizedSymbol {
		return contracts.NormalizedSymbol{
			Raw:        raw,
			Normalized: normalized,
			Source:     source,
			Valid:      IsValid(normalized),
		}
	}

	// 1. Known corrections table
	if corrected, ok := n.corrections[symbol]; ok {
		return result(corrected, contracts.SourceKnownMap)
	}

	// 2. Crypto pair without separator: ABCUSD -> ABC-USD
	if m := cryptoPairRe.FindStringSubmatch(symbol); m != nil {
		return result(m[1]+"-"+m[2], contracts.SourcePatternRule)
	}

	if idx := strings.LastIndex(symbol, "."); idx > 0 {
		suffix := symbol[idx:]
		base := symbol[:idx]

		if _, legitimate := exchangeSuffixes[suffix]; !legitimate {
			// 3. Unknown two/three-letter exchange suffix: strip it when
			// the base stands on its own.
			if len(suffix) >= 3 && len(suffix) <= 4 && allLetters(suffix[1:]) && IsValid(base) {
				return result(base, contracts.SourceSuffixStrip)
			}

			// 4. Share-class notation: single trailing letter after a dot
			// becomes a hyphen (BRK.B -> BRK-B).
			if len(suffix) == 2 && suffix[1] >= 'A' && suffix[1] <= 'Z' {
				return result(base+"-"+suffix[1:], contracts.SourcePatternRule)
			}
		}
	}

	// 5. Uppercase and trim only
	return result(symbol, contracts.SourceUnchanged)
}

func allLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// IsValid reports whether a symbol is syntactically acceptable to the
// provider: the allowed charset (leading ^ included), non-empty, and no
// leading or trailing '-' or '.'.
func IsValid(symbol string) bool {
	if symbol == "" || !validSymbolRe.MatchString(symbol) {
		return false
	}
	first, last := symbol[0], symbol[len(symbol)-1]
	if first == '-' || first == '.' || last == '-' || last == '.' {
		return false
	}
	return true
}
