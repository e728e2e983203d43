package args

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/kballard/go-shellquote"
	"github.com/stretchr/testify/require"
)

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"spaces", "    ", nil},
		{"mixed whitespace", " \t \n ", nil},
		{"words", "color set ff0000", []string{"color", "set", "ff0000"}},
		{"leading and trailing space", "  color  set  ", []string{"color", "set"}},
		{"quoted", `say "hello world"`, []string{"say", "hello world"}},
		{"escaped quotes", `say "he said \"hi\""`, []string{"say", `he said "hi"`}},
		{"escaped backslash", `"a\\b"`, []string{`a\b`}},
		{"other escapes kept", `"a\nb\tc"`, []string{`a\nb\tc`}},
		{"trailing backslash", `"abc\`, []string{`abc\`}},
		{"unterminated", `say "unterminated`, []string{"say", "unterminated"}},
		{"unterminated with spaces", `say "two words`, []string{"say", "two words"}},
		{"lone quote", `"`, []string{""}},
		{"lone quote after word", `say "`, []string{"say", ""}},
		{"empty quotes", `"" x`, []string{"", "x"}},
		{"consecutive quoted", `"a b"   "c d"`, []string{"a b", "c d"}},
		{"quote mid word", `ab"cd ef`, []string{`ab"cd`, "ef"}},
		{"text after closing quote", `"a"b`, []string{"a", "b"}},
		{"tab is not a separator", "a\tb c", []string{"a\tb", "c"}},
		{"presence", `presence streaming "Live coding" https://example.com/live`,
			[]string{"presence", "streaming", "Live coding", "https://example.com/live"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, New(tt.in).All())
		})
	}
}

func TestArgsNext(t *testing.T) {
	a := New(`color set "ff 00 00"`)

	s, ok := a.Next()
	require.True(t, ok)
	require.Equal(t, "color", s)
	require.Equal(t, `set "ff 00 00"`, a.Rest())

	s, ok = a.Next()
	require.True(t, ok)
	require.Equal(t, "set", s)

	s, ok = a.Next()
	require.True(t, ok)
	require.Equal(t, "ff 00 00", s)
	require.True(t, a.Empty())

	for i := 0; i < 3; i++ {
		s, ok = a.Next()
		require.False(t, ok)
		require.Equal(t, "", s)
	}
}

func TestArgsNotRestartable(t *testing.T) {
	a := New("a b")
	require.Equal(t, []string{"a", "b"}, a.All())
	require.Nil(t, a.All())
}

func TestQuotedWithoutEscapesSharesInput(t *testing.T) {
	in := `"hello world" tail`
	s, ok := New(in).Next()
	require.True(t, ok)
	require.Equal(t, "hello world", s)
	require.True(t, strings.Contains(in, s))
}

// For words and quoted segments that start and end on argument boundaries, the quoting rules
// agree with POSIX shell double quotes.
func TestArgsAgreeWithShellQuoting(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	const letters = "abcdef0123456789"

	word := func() string {
		var b strings.Builder
		for n := 1 + r.Intn(8); n > 0; n-- {
			b.WriteByte(letters[r.Intn(len(letters))])
		}
		return b.String()
	}
	quoted := func() string {
		var b strings.Builder
		b.WriteByte('"')
		for n := 1 + r.Intn(5); n > 0; n-- {
			switch r.Intn(5) {
			case 0:
				b.WriteString(`\"`)
			case 1:
				b.WriteString(`\\`)
			case 2:
				b.WriteByte(' ')
			default:
				b.WriteString(word())
			}
		}
		b.WriteByte('"')
		return b.String()
	}

	for i := 0; i < 500; i++ {
		var parts []string
		for n := r.Intn(6); n > 0; n-- {
			if r.Intn(3) == 0 {
				parts = append(parts, quoted())
			} else {
				parts = append(parts, word())
			}
		}
		line := strings.Repeat(" ", r.Intn(2)) + strings.Join(parts, strings.Repeat(" ", 1+r.Intn(2)))

		want, err := shellquote.Split(line)
		require.NoError(t, err, line)
		if len(want) == 0 {
			want = nil
		}
		require.Equal(t, want, New(line).All(), line)
	}
}
