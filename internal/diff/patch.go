package diff

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Patch renders a plain unified patch from live to target, for output
// that is piped or saved rather than read in the terminal.
func Patch(live, target, name string) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(live),
		B:        difflib.SplitLines(target),
		FromFile: "live/" + name,
		ToFile:   "target/" + name,
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(ud)
}
