package sentiment

import (
	"strings"
	"unicode"
)

// assetKeywords maps text mentions to the tradable asset they refer to.
// First match wins in the order below.
var assetKeywords = []struct {
	token string
	asset string
}{
	{"bitcoin", "BTC/USDT"},
	{"btc", "BTC/USDT"},
	{"ethereum", "ETH/USDT"},
	{"eth", "ETH/USDT"},
	{"solana", "SOL/USDT"},
	{"sol", "SOL/USDT"},
}

// AssetOf maps free text to the asset it talks about. Matching is on whole
// words so short tickers never fire inside longer words ("sol" in
// "solution"). Text mentioning no known asset returns false and is skipped
// by the scoring loop.
func AssetOf(text string) (string, bool) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	present := make(map[string]struct{}, len(words))
	for _, w := range words {
		present[w] = struct{}{}
	}
	for _, kw := range assetKeywords {
		if _, ok := present[kw.token]; ok {
			return kw.asset, true
		}
	}
	return "", false
}
