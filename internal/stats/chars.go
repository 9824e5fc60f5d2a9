package stats

import (
	"sort"

	"github.com/verte-zerg/keyflash/internal/model"
)

// charScore ranks a character by how well it is typed.
type charScore struct {
	ch       string
	attempts int
	accuracy float64
	latency  float64
}

func scoreChars(aggs []model.CharAggregate) []charScore {
	out := make([]charScore, 0, len(aggs))
	for _, agg := range aggs {
		attempts := agg.Correct + agg.Incorrect
		if attempts == 0 || agg.Char == "" {
			continue
		}
		s := charScore{
			ch:       agg.Char,
			attempts: attempts,
			accuracy: accuracy(agg),
		}
		if agg.LatencyCount > 0 {
			s.latency = float64(agg.LatencySumMs) / float64(agg.LatencyCount)
		}
		out = append(out, s)
	}
	return out
}

// SelectWeakChars returns up to top characters with the lowest accuracy; ties
// go to the slower mean latency. top <= 0 selects every typed character.
func SelectWeakChars(aggs []model.CharAggregate, top int) map[rune]struct{} {
	scores := scoreChars(aggs)
	sort.Slice(scores, func(i, j int) bool {
		a, b := scores[i], scores[j]
		switch {
		case a.accuracy != b.accuracy:
			return a.accuracy < b.accuracy
		case a.latency != b.latency:
			return a.latency > b.latency
		default:
			return a.ch < b.ch
		}
	})
	if top <= 0 || top > len(scores) {
		top = len(scores)
	}
	weak := make(map[rune]struct{}, top)
	for _, s := range scores[:top] {
		weak[[]rune(s.ch)[0]] = struct{}{}
	}
	return weak
}

// TopCharsByFrequency returns the n most typed characters.
func TopCharsByFrequency(aggs []model.CharAggregate, n int) []string {
	if n <= 0 {
		return nil
	}
	scores := scoreChars(aggs)
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].attempts == scores[j].attempts {
			return scores[i].ch < scores[j].ch
		}
		return scores[i].attempts > scores[j].attempts
	})
	out := make([]string, 0, min(n, len(scores)))
	for _, s := range scores[:min(n, len(scores))] {
		out = append(out, s.ch)
	}
	return out
}

// accuracy is the share of correct attempts; untyped characters count as
// perfect.
func accuracy(agg model.CharAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}
