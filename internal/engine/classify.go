package engine

// Status is the evaluation state of one target character.
type Status int

const (
	StatusUntyped Status = iota
	StatusCorrect
	StatusIncorrect
)

func (s Status) String() string {
	switch s {
	case StatusCorrect:
		return "correct"
	case StatusIncorrect:
		return "incorrect"
	default:
		return "untyped"
	}
}

// CharClass describes one target character.
type CharClass struct {
	Index    int
	Expected rune
	Typed    rune
	Status   Status
	IsCursor bool
}

// Classification is the per-character view of a (target, input) pair.
type Classification struct {
	Classes []CharClass
	Cursor  int
	// Extra counts typed runes past the end of the target.
	Extra int
}

// Classify compares input to target position by position. A mismatch stays a
// mismatch until the input is shortened past it; there is no realignment.
func Classify(target, input []rune) Classification {
	out := Classification{
		Classes: make([]CharClass, len(target)),
		Cursor:  len(input),
	}
	for i, expected := range target {
		class := CharClass{Index: i, Expected: expected, IsCursor: i == len(input)}
		if i < len(input) {
			class.Typed = input[i]
			if input[i] == expected {
				class.Status = StatusCorrect
			} else {
				class.Status = StatusIncorrect
			}
		}
		out.Classes[i] = class
	}
	if len(input) > len(target) {
		out.Extra = len(input) - len(target)
	}
	return out
}
