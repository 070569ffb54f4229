package tui

// focusKind distinguishes the two focusable row types in the results area.
type focusKind int

const (
	focusHeader focusKind = iota
	focusQuery
)

// focusItem identifies one focusable row: a group header, or one query
// entry within an expanded group.
type focusItem struct {
	kind  focusKind
	turn  int
	group int
	query int // index within the group; valid when kind == focusQuery
}

// queryKey identifies one query entry for the copied indicator.
type queryKey struct {
	turn  int
	group int
	query int
}

// focusItems flattens the conversation into the navigable row list:
// every group header, plus each query of every expanded group. Collapsed
// groups contribute only their header, so navigation matches what is
// visible.
func (m *Model) focusItems() []focusItem {
	var items []focusItem
	for ti, turn := range m.turns {
		for gi, group := range turn.groups {
			items = append(items, focusItem{kind: focusHeader, turn: ti, group: gi})
			if m.disclosure.Collapsed(ti, gi) {
				continue
			}
			for qi := range group.Queries {
				items = append(items, focusItem{kind: focusQuery, turn: ti, group: gi, query: qi})
			}
		}
	}
	return items
}

// clampFocus keeps the focus index inside the current item list.
func (m *Model) clampFocus() {
	n := len(m.focusItems())
	if n == 0 {
		m.focusIdx = 0
		return
	}
	if m.focusIdx >= n {
		m.focusIdx = n - 1
	}
	if m.focusIdx < 0 {
		m.focusIdx = 0
	}
}
