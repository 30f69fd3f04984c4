package grid

import (
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
	fscalar "gonum.org/v1/gonum/floats/scalar"
)

type fixtureVar struct {
	name  string
	vals  any
	dims  []string
	attrs map[string]any
}

func writeFixture(t *testing.T, vars []fixtureVar) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grid.nc")
	cw, err := cdf.OpenWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range vars {
		keys := make([]string, 0, len(v.attrs))
		for k := range v.attrs {
			keys = append(keys, k)
		}
		attrs, err := util.NewOrderedMap(keys, v.attrs)
		if err != nil {
			t.Fatal(err)
		}
		if err := cw.AddVar(v.name, api.Variable{Values: v.vals, Dimensions: v.dims, Attributes: attrs}); err != nil {
			t.Fatalf("adding %s: %v", v.name, err)
		}
	}
	if err := cw.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func franceFixture() []fixtureVar {
	return []fixtureVar{
		{name: VarTime, vals: []float64{24555, 24555.041666666668}, dims: []string{"time"}, attrs: map[string]any{"units": "days since 1950-01-01 00:00:00"}},
		{name: VarLat, vals: [][]float64{{43.1, 43.2}, {43.3, 43.4}}, dims: []string{"y", "x"}},
		{name: VarLon, vals: [][]float64{{-1.6, -1.5}, {-1.4, -1.3}}, dims: []string{"y", "x"}},
		{
			name: VarU,
			vals: [][][][]int16{
				{{{100, -200}, {-32767, 50}}},
				{{{0, 10}, {20, 30}}},
			},
			dims: []string{"time", "depth", "y", "x"},
			attrs: map[string]any{
				"units":        "m s-1",
				"scale_factor": 0.01,
				"_FillValue":   int16(-32767),
			},
		},
		{
			name: VarV,
			vals: [][][][]float64{
				{{{0.1, 0.2}, {0.3, 0.4}}},
				{{{-0.1, -0.2}, {-0.3, -0.4}}},
			},
			dims:  []string{"time", "depth", "y", "x"},
			attrs: map[string]any{"units": "metres s-1"},
		},
	}
}

func TestRead(t *testing.T) {
	g, err := Read(writeFixture(t, franceFixture()))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(g.Times, []float64{24555, 24555.041666666668}) {
		t.Errorf("times = %v", g.Times)
	}
	if !reflect.DeepEqual(g.Lat, []float64{43.1, 43.2, 43.3, 43.4}) {
		t.Errorf("lat = %v", g.Lat)
	}
	if !reflect.DeepEqual(g.Lon, []float64{-1.6, -1.5, -1.4, -1.3}) {
		t.Errorf("lon = %v", g.Lon)
	}
	if g.U.Rows != 2 || g.U.Cols != 4 || g.V.Rows != 2 || g.V.Cols != 4 {
		t.Errorf("shapes u=%dx%d v=%dx%d, want 2x4", g.U.Rows, g.U.Cols, g.V.Rows, g.V.Cols)
	}
	if g.U.Units != "m s-1" || g.V.Units != "metres s-1" {
		t.Errorf("units u=%q v=%q", g.U.Units, g.V.Units)
	}

	wantU := []float64{1, -2, math.NaN(), 0.5}
	for i, got := range g.U.Row(0) {
		want := wantU[i]
		if math.IsNaN(want) {
			if !math.IsNaN(got) {
				t.Errorf("u[0][%d] = %v, want NaN for fill value", i, got)
			}
			continue
		}
		if !fscalar.EqualWithinAbs(got, want, 1e-12) {
			t.Errorf("u[0][%d] = %v, want %v", i, got, want)
		}
	}
	if got := g.V.Row(1); !reflect.DeepEqual(got, []float64{-0.1, -0.2, -0.3, -0.4}) {
		t.Errorf("v[1] = %v", got)
	}
	if err := Validate(g); err != nil {
		t.Errorf("fixture does not validate: %v", err)
	}
}

func TestReadMissingVariable(t *testing.T) {
	vars := franceFixture()
	path := writeFixture(t, vars[:len(vars)-1])
	_, err := Read(path)
	var sfe *SourceFormatError
	if !errors.As(err, &sfe) {
		t.Fatalf("got %v, want SourceFormatError", err)
	}
	if sfe.Variable != VarV {
		t.Errorf("variable = %q, want %q", sfe.Variable, VarV)
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.nc"))
	var sie *SourceIOError
	if !errors.As(err, &sie) {
		t.Fatalf("got %v, want SourceIOError", err)
	}
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		vals  []float64
		shape []int
	}{
		{"scalar", float32(2.5), []float64{2.5}, nil},
		{"1d", []int32{1, 2, 3}, []float64{1, 2, 3}, []int{3}},
		{"2d", [][]uint8{{1, 2}, {3, 4}, {5, 6}}, []float64{1, 2, 3, 4, 5, 6}, []int{3, 2}},
		{"empty leading", [][]float64{}, []float64{}, []int{0, 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			vals, shape, err := flatten(tc.in)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(vals, tc.vals) || !reflect.DeepEqual(shape, tc.shape) {
				t.Errorf("got %v %v, want %v %v", vals, shape, tc.vals, tc.shape)
			}
		})
	}

	if _, _, err := flatten([][]float64{{1, 2}, {3}}); err == nil {
		t.Error("ragged input accepted")
	}
	if _, _, err := flatten([]string{"a"}); err == nil {
		t.Error("string input accepted")
	}
}

// countingGroup serves a single variable and counts lookups of it.
type countingGroup struct {
	api.Group
	vg      api.VarGetter
	lookups int
}

func (g *countingGroup) GetVarGetter(name string) (api.VarGetter, error) {
	g.lookups++
	return g.vg, nil
}

type memVar struct {
	api.VarGetter
	vals  any
	attrs api.AttributeMap
}

func (v memVar) Values() (interface{}, error) { return v.vals, nil }
func (v memVar) Attributes() api.AttributeMap { return v.attrs }

func TestFieldLooksUpVariableOnce(t *testing.T) {
	attrs, err := util.NewOrderedMap([]string{"units"}, map[string]any{"units": "m s-1"})
	if err != nil {
		t.Fatal(err)
	}
	nc := &countingGroup{vg: memVar{vals: [][]float64{{1, 2}, {3, 4}}, attrs: attrs}}
	f, err := field(nc, VarU)
	if err != nil {
		t.Fatal(err)
	}
	if nc.lookups != 1 {
		t.Errorf("variable looked up %d times", nc.lookups)
	}
	if f.Units != "m s-1" || f.Rows != 2 || f.Cols != 2 {
		t.Errorf("field = %+v", f)
	}
}
