package census

import "strings"

// ProjectFields intersects a caller's comma-separated field selection
// with the operation's allow-list. The result follows the allow-list's
// declared order, not the caller's, so responses stay self-consistent.
// An empty intersection fails validation before any query is issued.
func ProjectFields(requested string, allowed []string) ([]string, error) {
	want := make(map[string]bool)
	for _, f := range strings.Split(requested, ",") {
		if n := Normalize(f); n != "" {
			want[n] = true
		}
	}
	var out []string
	for _, f := range allowed {
		if want[f] {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, Validationf("no valid fields selected")
	}
	return out, nil
}

// ApplyProjection copies only the selected keys onto a fresh object,
// keeping their selection order. Keys absent from the source are
// skipped.
func ApplyProjection(obj *Object, fields []string) *Object {
	out := NewObject()
	for _, f := range fields {
		if v, ok := obj.Get(f); ok {
			out.Set(f, v)
		}
	}
	return out
}
