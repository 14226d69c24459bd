package diag

import (
	"sort"
	"strings"

	"github.com/xtgo/set"
)

// RenderText renders a report as one line per diagnostic, sorted and
// deduplicated so that output is stable regardless of check order.
func RenderText(r *Report) string {
	diags := r.Diagnostics()
	if len(diags) == 0 {
		return ""
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = d.String()
	}
	sort.Strings(lines)
	n := set.Uniq(sort.StringSlice(lines))
	lines = lines[:n]
	return strings.Join(lines, "\n") + "\n"
}
