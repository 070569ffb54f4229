// internal/results/disclosure.go
package results

// GroupKey identifies one group's disclosure flag: the turn it belongs to
// and the group's index within that turn's answer.
type GroupKey struct {
	Turn  int
	Group int
}

// Disclosure tracks the collapsed/expanded flag per group. It is transient
// UI state owned by the rendering layer: flags for a turn are reset whenever
// that turn's answer is replaced, and nothing here is persisted.
type Disclosure struct {
	collapsed map[GroupKey]bool
}

// NewDisclosure creates an empty disclosure map.
func NewDisclosure() *Disclosure {
	return &Disclosure{collapsed: make(map[GroupKey]bool)}
}

// ResetTurn discards any existing flags for the turn and applies the
// defaults for a fresh answer with groupCount groups: the first group
// expanded, all subsequent groups collapsed.
func (d *Disclosure) ResetTurn(turn, groupCount int) {
	for key := range d.collapsed {
		if key.Turn == turn {
			delete(d.collapsed, key)
		}
	}
	for i := 0; i < groupCount; i++ {
		d.collapsed[GroupKey{Turn: turn, Group: i}] = i != 0
	}
}

// Toggle flips the flag for exactly one group. Sibling groups are untouched.
func (d *Disclosure) Toggle(turn, group int) {
	key := GroupKey{Turn: turn, Group: group}
	d.collapsed[key] = !d.collapsed[key]
}

// Collapsed reports whether the given group is collapsed. Unknown keys
// report expanded so a missing reset never hides data.
func (d *Disclosure) Collapsed(turn, group int) bool {
	return d.collapsed[GroupKey{Turn: turn, Group: group}]
}
