package census

// Row is one fetched fact row: its dimension key, identity fields and
// the metric block the operation selected. Metrics is opaque to the
// engine; handlers decide its shape per endpoint.
type Row struct {
	Key     DimensionKey
	Level   Level
	Name    string
	TRU     string // normalized label
	Metrics interface{}
}

// KeyFunc projects the grouping key for one row. Operations choose the
// key shape (state-only, state+district, deeper) instead of the engine
// hard-coding one.
type KeyFunc func(Row) DimensionKey

// KeyOfRow is the identity projection: group by the row's own key.
func KeyOfRow(r Row) DimensionKey { return r.Key }

// Group is one aggregated unit. Exactly one of Flat and ByTRU is
// populated: Flat when the request fixed a TRU, ByTRU otherwise.
type Group struct {
	Key   DimensionKey
	Name  string
	Level Level
	Flat  interface{}
	ByTRU map[string]interface{}
}

// Metric returns the value a response emits for the group: the flat
// block when TRU was fixed, otherwise the blocks nested under exactly
// the TRU labels present, in total/rural/urban order.
func (g *Group) Metric() interface{} {
	if g.ByTRU == nil {
		return g.Flat
	}
	nested := NewObject()
	for _, t := range truOrder {
		if m, ok := g.ByTRU[t]; ok {
			nested.Set(t, m)
		}
	}
	return nested
}

// Aggregate maps DimensionKey to its Group, preserving the order in
// which keys were first seen. It is built once per request and
// discarded after the response is composed.
type Aggregate struct {
	truFixed bool
	order    []DimensionKey
	groups   map[DimensionKey]*Group
}

// GroupRows builds an Aggregate from an unordered row sequence. The
// first row establishing a key seeds the group's identity; each row's
// metric block is then merged by TRU label, or written flat when the
// request fixed a TRU. Merge is last write wins per (key, TRU); the
// store holds at most one row per pair.
func GroupRows(rows []Row, keyOf KeyFunc, truFixed bool) *Aggregate {
	a := &Aggregate{
		truFixed: truFixed,
		groups:   make(map[DimensionKey]*Group),
	}
	for _, r := range rows {
		k := keyOf(r)
		g, ok := a.groups[k]
		if !ok {
			g = &Group{Key: k, Name: r.Name, Level: r.Level}
			if !truFixed {
				g.ByTRU = make(map[string]interface{})
			}
			a.groups[k] = g
			a.order = append(a.order, k)
		}
		if truFixed {
			g.Flat = r.Metrics
		} else {
			g.ByTRU[r.TRU] = r.Metrics
		}
	}
	return a
}

// Len reports the number of distinct keys.
func (a *Aggregate) Len() int { return len(a.order) }

// Get looks up the group for a key.
func (a *Aggregate) Get(k DimensionKey) (*Group, bool) {
	g, ok := a.groups[k]
	return g, ok
}

// Groups returns the groups in first-seen-key order.
func (a *Aggregate) Groups() []*Group {
	out := make([]*Group, 0, len(a.order))
	for _, k := range a.order {
		out = append(out, a.groups[k])
	}
	return out
}
