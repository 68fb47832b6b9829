package playlist

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"tubeplus/internal/domain/regex"
)

// SelectEntries picks entries by 1-based position. expr is "all" (or empty)
// or a comma separated list of positions and ranges, e.g. "1,3-5".
// The result keeps playlist order and contains no duplicates.
func SelectEntries(entries []Entry, expr string) ([]Entry, error) {
	expr = strings.TrimSpace(strings.ToLower(expr))
	if expr == "" || expr == "all" || expr == "*" {
		return entries, nil
	}

	picked := make(map[int]struct{})
	for _, part := range strings.Split(expr, ",") {
		part = strings.ReplaceAll(strings.TrimSpace(part), " ", "")
		if part == "" {
			continue
		}
		m := regex.SelectRange().FindStringSubmatch(part)
		if m == nil {
			return nil, fmt.Errorf("invalid selection %q", part)
		}
		lo, _ := strconv.Atoi(m[1])
		hi := lo
		if m[2] != "" {
			hi, _ = strconv.Atoi(m[2])
		}
		if lo > hi {
			return nil, fmt.Errorf("invalid range %q: start after end", part)
		}
		if lo < 1 || hi > len(entries) {
			return nil, fmt.Errorf("selection %q out of range (playlist has %d entries)", part, len(entries))
		}
		for i := lo; i <= hi; i++ {
			picked[i] = struct{}{}
		}
	}
	if len(picked) == 0 {
		return nil, fmt.Errorf("selection %q matched no entries", expr)
	}

	idx := make([]int, 0, len(picked))
	for i := range picked {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	out := make([]Entry, 0, len(idx))
	for _, i := range idx {
		out = append(out, entries[i-1])
	}
	return out, nil
}
