package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeleteWord(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"hello", ""},
		{"hello ", ""},
		{"the quick fox", "the quick "},
		{"hello world ", "hello "},
		{"one two three", "one two "},
		{"   ", "  "},
		{"a b c", "a b "},
		{"ab  ", "ab "},
		{"hello world  ", "hello world "},
		{"x\n    ", "x\n   "},
		{"x\n", ""},
		{"foo\nbar", ""},
		{"x", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := string(DeleteWord([]rune(tt.input)))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCtrlBackspaceInPlainMode(t *testing.T) {
	out, handled := PlainKeys.Apply(Key{Code: KeyBackspace, Ctrl: true}, NewText("the quick fox"), []rune("the quick fox"))
	assert.True(t, handled)
	assert.Equal(t, "the quick ", string(out))

	out, handled = PlainKeys.Apply(Key{Code: KeyBackspace, Meta: true}, NewText("ab"), []rune("ab"))
	assert.True(t, handled)
	assert.Equal(t, "", string(out))

	_, handled = PlainKeys.Apply(Key{Code: KeyBackspace}, NewText("ab"), []rune("ab"))
	assert.False(t, handled)
}

func TestTabFillsIndentation(t *testing.T) {
	target := NewText("if (x) {\n    y();\n}")
	out, handled := CodeKeys.Apply(Key{Code: KeyTab}, target, []rune("if (x) {\n"))
	assert.True(t, handled)
	assert.Equal(t, "if (x) {\n    ", string(out))

	out, handled = CodeKeys.Apply(Key{Code: KeyTab}, target, []rune("if"))
	assert.True(t, handled)
	assert.Equal(t, "if ", string(out), "a single space under the cursor is filled")

	out, handled = CodeKeys.Apply(Key{Code: KeyTab}, target, []rune("i"))
	assert.True(t, handled, "tab is swallowed even when nothing is inserted")
	assert.Equal(t, "i", string(out))

	_, handled = PlainKeys.Apply(Key{Code: KeyTab}, target, []rune("if"))
	assert.False(t, handled)
}

func TestEnterAdvancesOnlyAtNewline(t *testing.T) {
	target := NewText("if (x) {\n    y();\n}")

	out, handled := CodeKeys.Apply(Key{Code: KeyEnter}, target, []rune("if (x"))
	assert.True(t, handled)
	assert.Equal(t, "if (x", string(out))

	out, handled = CodeKeys.Apply(Key{Code: KeyEnter}, target, []rune("if (x) {"))
	assert.True(t, handled)
	assert.Equal(t, "if (x) {\n    ", string(out))

	out, handled = CodeKeys.Apply(Key{Code: KeyEnter}, target, []rune("if (x) {\n    y();"))
	assert.True(t, handled)
	assert.Equal(t, "if (x) {\n    y();\n", string(out))
}

func TestEnterIndentsFromNextLineStart(t *testing.T) {
	target := NewText("a\n\n  b")
	out, handled := CodeKeys.Apply(Key{Code: KeyEnter}, target, []rune("a"))
	assert.True(t, handled)
	assert.Equal(t, "a\n", string(out), "an empty next line has no indentation")

	out, _ = CodeKeys.Apply(Key{Code: KeyEnter}, target, []rune("a\n"))
	assert.Equal(t, "a\n\n  ", string(out))

	out, handled = CodeKeys.Apply(Key{Code: KeyEnter}, target, []rune("a\n\n  b"))
	assert.True(t, handled)
	assert.Equal(t, "a\n\n  b\n", string(out), "enter past the last line adds no indentation")
}

func TestApplyDoesNotAliasInput(t *testing.T) {
	input := []rune("if (x) {")
	out, _ := CodeKeys.Apply(Key{Code: KeyEnter}, NewText("if (x) {\n  z"), input)
	out[0] = 'X'
	assert.Equal(t, "if (x) {", string(input))
}
