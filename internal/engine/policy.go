package engine

// CountingPolicy decides how typed characters are scored.
type CountingPolicy int

const (
	// StrictPrefix counts correct characters only up to the first mismatch;
	// everything typed after it is incorrect.
	StrictPrefix CountingPolicy = iota
	// FullScan scores every typed position independently.
	FullScan
)

func (p CountingPolicy) String() string {
	if p == FullScan {
		return "full-scan"
	}
	return "strict-prefix"
}

// Counts are character tallies for one input.
type Counts struct {
	Correct   int
	Incorrect int
	Typed     int
}

// Count scores input against target. Runes typed past the target are incorrect.
func (p CountingPolicy) Count(target, input []rune) Counts {
	c := Counts{Typed: len(input)}
	overlap := min(len(input), len(target))
	switch p {
	case FullScan:
		for i := 0; i < overlap; i++ {
			if input[i] == target[i] {
				c.Correct++
			}
		}
	default:
		for c.Correct < overlap && input[c.Correct] == target[c.Correct] {
			c.Correct++
		}
	}
	c.Incorrect = len(input) - c.Correct
	return c
}
