package svgnode

import (
	"github.com/goccy/go-json"
)

// refreshData recomputes the snapshot of the data slots.
func (n *Node) refreshData() {
	data := make(map[string]interface{})
	for i, def := range n.kind.slots {
		if def.Meta.Data {
			data[def.Name] = cloneValue(n.values[i])
		}
	}
	n.data = data
}

// Data returns a copy of the values of the data slots.
func (n *Node) Data() map[string]interface{} {
	out := make(map[string]interface{}, len(n.data))
	for k, v := range n.data {
		out[k] = cloneValue(v)
	}
	return out
}

// SetData writes several data slots at once, like Declare.
// Other slots are rejected.
func (n *Node) SetData(values map[string]interface{}) error {
	if n.released {
		return ErrReleased
	}
	indices, normalized, err := n.validateAll(values, func(def SlotDef) bool { return def.Meta.Data })
	if err != nil {
		return err
	}
	return n.commit(indices, normalized)
}

// DataJSON encodes the data snapshot of n.
func (n *Node) DataJSON() ([]byte, error) { return json.Marshal(n.Data()) }
