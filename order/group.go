package order

// Group is one display row: either a standalone order or a TWAP parent with
// its child slices attached.
type Group struct {
	Parent   Order
	Children []Order
}

// ChildQtyFilled sums fills across child slices. For non-algorithmic rows it
// falls back to the parent's own fill.
func (g Group) ChildQtyFilled() float64 {
	if len(g.Children) == 0 {
		return g.Parent.QtyFilled
	}
	var total float64
	for _, c := range g.Children {
		total += c.QtyFilled
	}
	return total
}

// Settled reports whether the row and all of its slices are terminal.
func (g Group) Settled() bool {
	if !g.Parent.Status.Terminal() {
		return false
	}
	for _, c := range g.Children {
		if !c.Status.Terminal() {
			return false
		}
	}
	return true
}

// GroupByParent derives the display grouping from a flat record slice. It is
// a pure projection: child records attach to a parent present in the same
// slice, everything else becomes its own row. Input order is preserved for
// parents and standalone records, and for children within a parent.
func GroupByParent(orders []Order) []Group {
	parentPresent := make(map[string]bool, len(orders))
	for _, o := range orders {
		parentPresent[o.ID] = true
	}

	groups := make([]Group, 0, len(orders))
	index := make(map[string]int, len(orders))
	for _, o := range orders {
		if o.ParentOrderID != "" && parentPresent[o.ParentOrderID] {
			continue
		}
		index[o.ID] = len(groups)
		groups = append(groups, Group{Parent: o})
	}
	for _, o := range orders {
		if o.ParentOrderID == "" || !parentPresent[o.ParentOrderID] {
			continue
		}
		i := index[o.ParentOrderID]
		groups[i].Children = append(groups[i].Children, o)
	}
	return groups
}
