package ranking

import (
	"math"
	"sort"

	"investor-livedata/internal/domain"
)

// MinVolume is the liquidity floor; a quote must trade strictly more.
const MinVolume int64 = 1_000_000

// Trending keeps liquid quotes with a known change and orders them by
// |change%| × volume, highest first, ties by symbol.
func Trending(quotes []domain.Quote, limit int) []domain.Quote {
	if limit <= 0 {
		return []domain.Quote{}
	}

	type ranked struct {
		quote domain.Quote
		score float64
	}
	candidates := make([]ranked, 0, len(quotes))
	for _, q := range quotes {
		if q.Volume == nil || *q.Volume <= MinVolume || q.ChangePercent == nil {
			continue
		}
		candidates = append(candidates, ranked{
			quote: q,
			score: math.Abs(*q.ChangePercent) * float64(*q.Volume),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].quote.Symbol < candidates[j].quote.Symbol
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]domain.Quote, len(candidates))
	for i, c := range candidates {
		out[i] = c.quote
	}
	return out
}
