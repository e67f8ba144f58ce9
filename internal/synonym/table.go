package synonym

import "strings"

// Table maps a surface word to the canonical action word it stands for.
type Table map[string]string

// DefaultTable returns the built-in phrasing table. The caller owns the
// returned map.
func DefaultTable() Table {
	return Table{
		"adjust": "edit",
		"alter":  "edit",
		"change": "edit",
		"modify": "edit",

		"begin":  "new",
		"create": "new",
		"start":  "new",
		"add":    "new",

		"remove":  "delete",
		"destroy": "delete",
		"dump":    "delete",

		"list":  "display",
		"show":  "display",
		"print": "display",

		"ye":   "yes",
		"ya":   "yes",
		"yeah": "yes",
		"yep":  "yes",
		"sure": "yes",
		"ok":   "yes",
		"okay": "yes",
		"nope": "no",
		"nah":  "no",
	}
}

// Merge returns a copy of t overlaid with extra. Keys and values are
// lowercased and trimmed; entries with an empty side are dropped.
func (t Table) Merge(extra Table) Table {
	out := make(Table, len(t)+len(extra))
	for k, v := range t {
		out.set(k, v)
	}
	for k, v := range extra {
		out.set(k, v)
	}
	return out
}

func (t Table) set(k, v string) {
	k = strings.ToLower(strings.TrimSpace(k))
	v = strings.ToLower(strings.TrimSpace(v))
	if k == "" || v == "" {
		return
	}
	t[k] = v
}
