package grid

import (
	"fmt"
	"math"
	"reflect"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/spf13/cast"
)

// Names of the variables an irregular-grid current file must provide.
const (
	VarTime = "time"
	VarLat  = "lat"
	VarLon  = "lon"
	VarU    = "u"
	VarV    = "v"
)

// Read loads an irregular-grid current dataset from a NetCDF file, CDF or
// HDF5 flavoured. The file handle is released before Read returns.
//
// Packed variables are unpacked with their scale_factor and add_offset
// attributes, and values equal to _FillValue or missing_value become NaN.
func Read(filePath string) (*Grid, error) {
	nc, err := netcdf.Open(filePath)
	if err != nil {
		return nil, &SourceIOError{Path: filePath, Err: err}
	}
	defer nc.Close()

	g := &Grid{}
	if g.Times, _, _, err = values(nc, VarTime); err != nil {
		return nil, err
	}
	if g.Lat, _, _, err = values(nc, VarLat); err != nil {
		return nil, err
	}
	if g.Lon, _, _, err = values(nc, VarLon); err != nil {
		return nil, err
	}
	if g.U, err = field(nc, VarU); err != nil {
		return nil, err
	}
	if g.V, err = field(nc, VarV); err != nil {
		return nil, err
	}
	return g, nil
}

// field reads a velocity variable whose leading dimension is time. All
// trailing dimensions are folded into the node axis.
func field(nc api.Group, name string) (Field, error) {
	vals, shape, vg, err := values(nc, name)
	if err != nil {
		return Field{}, err
	}
	if len(shape) < 2 {
		return Field{}, &SourceFormatError{Variable: name, Reason: fmt.Sprintf("expected at least 2 dimensions, got %d", len(shape))}
	}
	f := Field{Name: name, Rows: shape[0], Cols: 1, Values: vals}
	for _, n := range shape[1:] {
		f.Cols *= n
	}
	attrs := vg.Attributes()
	if attrs == nil {
		return f, nil
	}
	if u, ok := attrs.Get("units"); ok {
		f.Units, err = cast.ToStringE(u)
		if err != nil {
			return Field{}, &SourceFormatError{Variable: name, Reason: "unreadable units attribute", Err: err}
		}
	}
	return f, nil
}

// values returns the unpacked values of a variable flattened in row-major
// order together with the variable shape and its getter.
func values(nc api.Group, name string) ([]float64, []int, api.VarGetter, error) {
	vg, err := nc.GetVarGetter(name)
	if err != nil {
		return nil, nil, nil, &SourceFormatError{Variable: name, Reason: "variable not found", Err: err}
	}
	raw, err := vg.Values()
	if err != nil {
		return nil, nil, nil, &SourceFormatError{Variable: name, Reason: "cannot read values", Err: err}
	}
	vals, shape, err := flatten(raw)
	if err != nil {
		return nil, nil, nil, &SourceFormatError{Variable: name, Reason: "unsupported value layout", Err: err}
	}
	p, err := packingOf(vg.Attributes())
	if err != nil {
		return nil, nil, nil, &SourceFormatError{Variable: name, Reason: "unreadable packing attributes", Err: err}
	}
	p.unpack(vals)
	return vals, shape, vg, nil
}

// flatten converts nested numeric slices of any depth into a flat float64
// slice. Ragged input is rejected since node alignment depends on every row
// having the same length.
func flatten(v any) ([]float64, []int, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, nil, fmt.Errorf("no values")
	}
	var shape []int
	for t, cur := rv.Type(), rv; t.Kind() == reflect.Slice; t = t.Elem() {
		n := 0
		if cur.IsValid() {
			n = cur.Len()
		}
		shape = append(shape, n)
		if n > 0 {
			cur = cur.Index(0)
		} else {
			cur = reflect.Value{}
		}
	}
	size := 1
	for _, n := range shape {
		size *= n
	}
	out := make([]float64, 0, size)
	var walk func(v reflect.Value, depth int) error
	walk = func(v reflect.Value, depth int) error {
		if depth == len(shape) {
			f, err := number(v)
			if err != nil {
				return err
			}
			out = append(out, f)
			return nil
		}
		if v.Len() != shape[depth] {
			return fmt.Errorf("ragged array: dimension %d has lengths %d and %d", depth, shape[depth], v.Len())
		}
		for i := 0; i < v.Len(); i++ {
			if err := walk(v.Index(i), depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(rv, 0); err != nil {
		return nil, nil, err
	}
	return out, shape, nil
}

func number(v reflect.Value) (float64, error) {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	}
	return 0, fmt.Errorf("non-numeric element of type %s", v.Type())
}

type packing struct {
	scale  float64
	offset float64
	fill   []float64
}

func packingOf(attrs api.AttributeMap) (packing, error) {
	p := packing{scale: 1}
	if attrs == nil {
		return p, nil
	}
	var err error
	if v, ok := attrs.Get("scale_factor"); ok {
		if p.scale, err = scalar(v); err != nil {
			return p, err
		}
	}
	if v, ok := attrs.Get("add_offset"); ok {
		if p.offset, err = scalar(v); err != nil {
			return p, err
		}
	}
	for _, key := range []string{"_FillValue", "missing_value"} {
		v, ok := attrs.Get(key)
		if !ok {
			continue
		}
		f, err := scalar(v)
		if err != nil {
			return p, err
		}
		p.fill = append(p.fill, f)
	}
	return p, nil
}

func (p packing) unpack(vals []float64) {
	if p.scale == 1 && p.offset == 0 && len(p.fill) == 0 {
		return
	}
	for i, v := range vals {
		if p.isFill(v) {
			vals[i] = math.NaN()
			continue
		}
		vals[i] = v*p.scale + p.offset
	}
}

func (p packing) isFill(v float64) bool {
	for _, f := range p.fill {
		if v == f {
			return true
		}
	}
	return false
}

// scalar reads a numeric attribute that may be stored either as a single
// value or as a one-element array.
func scalar(v any) (float64, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		if rv.Len() == 0 {
			return 0, fmt.Errorf("empty attribute")
		}
		v = rv.Index(0).Interface()
	}
	return cast.ToFloat64E(v)
}
