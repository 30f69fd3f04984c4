package grid

// Grid is an irregular-grid current dataset loaded from a source file.
//
// Positions are flattened in storage order and every Field row is aligned
// with them: column j of U and V refers to the node at Lat[j], Lon[j].
type Grid struct {
	// Times holds offsets in days from the dataset epoch.
	Times []float64
	Lat   []float64
	Lon   []float64

	// Eastward and northward velocity components.
	U Field
	V Field
}

// Field is a time by node matrix stored in row-major order.
type Field struct {
	Name   string
	Units  string
	Rows   int
	Cols   int
	Values []float64
}

// Row returns the values of the i-th timestamp. The returned slice aliases
// the field storage.
func (f Field) Row(i int) []float64 {
	return f.Values[i*f.Cols : (i+1)*f.Cols]
}

// Summary returns the summary information about the dataset suitable for
// logging.
func (g *Grid) Summary() []any {
	return []any{
		"timeCnt", len(g.Times),
		"latCnt", len(g.Lat),
		"lonCnt", len(g.Lon),
		"uShape", []int{g.U.Rows, g.U.Cols},
		"vShape", []int{g.V.Rows, g.V.Cols},
		"uUnits", g.U.Units,
		"vUnits", g.V.Units,
	}
}
