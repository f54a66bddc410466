// Package golden implements file-based golden testing for diagnostic
// streams and element-graph dumps: write what the compiler actually
// produced, compare it against a checked-in expectation, and show a
// readable diff on mismatch.
//
// Adapted from the teacher's internal/golden package (a Corpus that
// walks a test-data directory, invokes a test function per case, and
// compares each declared Output against a sibling expectation file),
// narrowed to the two-function shape this repo's tests actually need:
// Discover (doublestar-glob fixture enumeration) and Compare
// (difflib-rendered comparison), rather than the teacher's full
// Corpus/Output/Refresh framework, since this repo's golden tests are a
// handful of fixed-shape comparisons (diagnostic streams, graph dumps)
// rather than a large growing corpus needing a refresh workflow.
package golden

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
)

// Discover returns every file under root matching pattern (a doublestar
// glob, e.g. "*.bc"), sorted for deterministic test iteration order.
// Grounded on the teacher's internal/golden and internal/corpora, both of
// which use doublestar for the same "enumerate fixture files" role.
func Discover(root, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("golden: invalid pattern %q", pattern)
	}
	fsys := os.DirFS(root)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("golden: globbing %q under %q: %w", pattern, root, err)
	}
	return matches, nil
}

// Compare returns "" if got matches the contents of wantPath, or a
// unified diff otherwise. A missing wantPath is treated as an empty
// expectation, so a new fixture's first run reports a diff against "".
func Compare(got, wantPath string) (string, error) {
	want, err := os.ReadFile(wantPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("golden: reading %s: %w", wantPath, err)
		}
		want = nil
	}
	return CompareStrings(got, string(want)), nil
}

// CompareStrings is Compare's in-memory core: "" if got == want,
// otherwise a unified diff rendered with github.com/pmezard/go-difflib,
// matching the teacher's internal/golden.CompareAndDiff.
func CompareStrings(got, want string) string {
	if got == want {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return strings.TrimRight(diff, "\n")
}

// Refresh writes got to wantPath, creating or overwriting it. Intended
// for manual use when updating a fixture deliberately — no test in this
// repo calls it automatically, unlike the teacher's environment-variable-
// driven Corpus.Refresh, since this package does not (yet) have a corpus
// large enough to warrant that workflow.
func Refresh(got, wantPath string) error {
	return os.WriteFile(wantPath, []byte(got), 0o644)
}
