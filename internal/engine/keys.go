package engine

// KeyCode identifies keys the engine intercepts.
type KeyCode int

const (
	KeyOther KeyCode = iota
	KeyBackspace
	KeyTab
	KeyEnter
)

// Key is a key press with modifiers. Meta is Cmd on macOS.
type Key struct {
	Code KeyCode
	Ctrl bool
	Meta bool
}

// KeyHandler intercepts special keys for a mode.
type KeyHandler int

const (
	PlainKeys KeyHandler = iota
	CodeKeys
)

// Apply returns the input after key. handled reports that the caller must
// swallow the key, even when the input is unchanged.
func (h KeyHandler) Apply(key Key, target Text, input []rune) ([]rune, bool) {
	switch key.Code {
	case KeyBackspace:
		if key.Ctrl || key.Meta {
			return DeleteWord(input), true
		}
		return input, false
	case KeyTab:
		if h != CodeKeys {
			return input, false
		}
		return appendSpaces(input, target.SpaceRunAt(len(input))), true
	case KeyEnter:
		if h != CodeKeys {
			return input, false
		}
		cursor := len(input)
		if r, ok := target.At(cursor); ok && r != '\n' {
			return input, true
		}
		line, _ := target.Position(cursor)
		out := append(cloneRunes(input), '\n')
		return appendSpaces(out, target.SpaceRunAt(target.Index(line+1, 0))), true
	default:
		return input, false
	}
}

// DeleteWord truncates input back to the last space before the cursor's
// word: the scan starts one rune before the cursor and stops after a space.
func DeleteWord(input []rune) []rune {
	deleteTo := len(input) - 1
	for deleteTo > 0 && input[deleteTo-1] != ' ' {
		deleteTo--
	}
	return cloneRunes(input[:max(deleteTo, 0)])
}

func appendSpaces(input []rune, n int) []rune {
	out := cloneRunes(input)
	for i := 0; i < n; i++ {
		out = append(out, ' ')
	}
	return out
}

func cloneRunes(r []rune) []rune {
	out := make([]rune, len(r), len(r)+8)
	copy(out, r)
	return out
}
