package advisor

import (
	"strings"
)

// ExtractSymbols finds tickers in free text: $cashtags always count, bare
// words only when they are in universe. Returns deduplicated uppercase
// symbols in order of appearance.
func ExtractSymbols(text string, universe []string) []string {
	known := make(map[string]bool, len(universe))
	for _, s := range universe {
		known[strings.ToUpper(s)] = true
	}

	words := strings.FieldsFunc(text, func(r rune) bool {
		return !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '$' || r == '^' || r == '.')
	})

	seen := make(map[string]bool)
	var result []string
	for _, w := range words {
		w = strings.TrimRight(w, ".")
		cashtag := strings.HasPrefix(w, "$")
		sym := strings.ToUpper(strings.TrimLeft(w, "$"))
		if sym == "" || len(sym) > 10 {
			continue
		}
		if (cashtag || known[sym]) && !seen[sym] {
			seen[sym] = true
			result = append(result, sym)
		}
	}
	return result
}
