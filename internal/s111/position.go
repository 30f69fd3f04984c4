package s111

import "math"

// PositionTable holds node coordinates in source order: X[i], Y[i] is the
// location of every i-th Speed and Direction value.
type PositionTable struct {
	X      []float64
	Y      []float64
	Extent Extent
}

// Extent is a geographic bounding box. Valid is false for an empty table.
type Extent struct {
	MinX, MinY, MaxX, MaxY float64
	Valid                  bool
}

// EncodePositions copies longitudes into X and latitudes into Y and computes
// their bounding box in a single pass. lat and lon must have the same length.
func EncodePositions(lat, lon []float64) PositionTable {
	p := PositionTable{
		X: make([]float64, len(lon)),
		Y: make([]float64, len(lat)),
	}
	for i := range lat {
		x, y := lon[i], lat[i]
		p.X[i], p.Y[i] = x, y
		if !p.Extent.Valid {
			p.Extent = Extent{MinX: x, MinY: y, MaxX: x, MaxY: y, Valid: true}
			continue
		}
		p.Extent.MinX = math.Min(p.Extent.MinX, x)
		p.Extent.MaxX = math.Max(p.Extent.MaxX, x)
		p.Extent.MinY = math.Min(p.Extent.MinY, y)
		p.Extent.MaxY = math.Max(p.Extent.MaxY, y)
	}
	return p
}

// WritePositions stores the table as the X and Y datasets of the position
// group.
func WritePositions(c Container, p PositionTable) error {
	if err := c.CreateGroup(PositionGroup); err != nil {
		return err
	}
	if err := c.WriteDataset(PositionGroup, "X", p.X); err != nil {
		return err
	}
	return c.WriteDataset(PositionGroup, "Y", p.Y)
}
