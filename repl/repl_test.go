package repl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, lines ...string) string {
	t.Helper()
	var out strings.Builder
	s := NewSession(&out)
	for _, line := range lines {
		s.Eval(line)
	}
	return out.String()
}

func TestImportAndPrint(t *testing.T) {
	out := run(t,
		"d = ([x <= 0] ([2]) ([1]))",
		":print d",
	)
	assert.Contains(t, out, "if x <= 0:")
	assert.Contains(t, out, "([x <= 0] ([2]) ([1]))")
}

func TestApplyAndEval(t *testing.T) {
	out := run(t,
		"a = ([x])",
		"b = ([y])",
		":apply add a b sum",
		":eval sum x=2 y=3",
	)
	assert.Contains(t, out, "5")
}

func TestEvalBooleanAssignment(t *testing.T) {
	out := run(t,
		"d = (b ([1]) ([2]))",
		":eval d b=true",
	)
	// The first-written branch is taken when the decision holds.
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "1", lines[len(lines)-1])
}

func TestUnknownNameReported(t *testing.T) {
	out := run(t, ":print nope")
	assert.Contains(t, out, "nope")
}

func TestParseErrorReported(t *testing.T) {
	out := run(t, "([x + ] ([0]) ([1]))")
	assert.Contains(t, out, "error")
}

func TestLastResultUnderscore(t *testing.T) {
	out := run(t,
		"([x <= 0] ([2]) ([1]))",
		":vars _",
	)
	assert.Contains(t, out, "x")
}
