package runner

import (
	"fmt"
	"strings"

	"github.com/joulebench/joulebench/internal/models"
)

// validate compares captured output against the spec's oracle and
// returns a diagnostic naming the first differing line, or "" on a
// match. In warmup mode the oracle is the expected output repeated once
// per internal iteration.
func validate(spec models.WorkloadSpec, captured string) string {
	expected := spec.ExpectedStdout
	if spec.Warmup && spec.Iterations > 1 {
		expected = strings.Repeat(expected, spec.Iterations)
	}

	expected = NormalizeOutput(expected)
	captured = NormalizeOutput(captured)
	if expected == captured {
		return ""
	}
	return firstDiff(expected, captured)
}

// NormalizeOutput applies the fixed whitespace rule used on both sides
// of every oracle comparison: CRLF becomes LF, trailing spaces and tabs
// are stripped from each line, and trailing newlines are stripped.
func NormalizeOutput(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t\r")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// firstDiff reports the first line where expected and got diverge.
func firstDiff(expected, got string) string {
	elines := strings.Split(expected, "\n")
	glines := strings.Split(got, "\n")

	n := len(elines)
	if len(glines) > n {
		n = len(glines)
	}

	for i := 0; i < n; i++ {
		var e, g string
		eOK, gOK := i < len(elines), i < len(glines)
		if eOK {
			e = elines[i]
		}
		if gOK {
			g = glines[i]
		}

		switch {
		case !eOK:
			return fmt.Sprintf("line %d: unexpected extra output %q", i+1, g)
		case !gOK:
			return fmt.Sprintf("line %d: missing expected output %q", i+1, e)
		case e != g:
			return fmt.Sprintf("line %d: expected %q, got %q", i+1, e, g)
		}
	}
	return "outputs differ"
}
