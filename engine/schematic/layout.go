package schematic

// Default layout: positionless components are placed left to right on a
// single row.
const (
	LayoutOriginX = 50
	LayoutStepX   = 160
	LayoutRowY    = 150
)

// ApplyDefaultLayout returns a copy of g in which the i-th positionless
// component (counting only positionless ones, in order) sits at
// (50 + i*160, 150). Supplied positions are kept as they are.
func ApplyDefaultLayout(g Graph) Graph {
	out := g.Clone()
	i := 0
	for idx := range out.Components {
		if out.Components[idx].Position != nil {
			continue
		}
		out.Components[idx].Position = &Position{
			X: float64(LayoutOriginX + i*LayoutStepX),
			Y: LayoutRowY,
		}
		i++
	}
	return out
}
