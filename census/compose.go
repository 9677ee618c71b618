package census

import orderedmap "github.com/wk8/go-ordered-map/v2"

// Object is an insertion-ordered JSON object. Responses must serialize
// fields and groups in a stable order, which plain maps cannot give.
type Object = orderedmap.OrderedMap[string, interface{}]

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return orderedmap.New[string, interface{}]()
}

// IdentityFunc writes a group's identifying fields (name, codes) onto
// an outgoing object before its metric block.
type IdentityFunc func(*Group, *Object)

// Compose converts an Aggregate into transport-ready objects in group
// order. metricField carries the group's metric block, flat when the
// request fixed a TRU and nested by TRU label otherwise. The policy is
// the same for every operation sharing the engine.
func Compose(a *Aggregate, metricField string, identify IdentityFunc) []*Object {
	out := make([]*Object, 0, a.Len())
	for _, g := range a.Groups() {
		obj := NewObject()
		identify(g, obj)
		obj.Set(metricField, g.Metric())
		out = append(out, obj)
	}
	return out
}
