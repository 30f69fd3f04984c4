package s111

import (
	"errors"
	"fmt"
	"os"

	nchdf5 "github.com/batchatco/go-native-netcdf/netcdf/hdf5"
	"github.com/batchatco/go-thrower"
	"gonum.org/v1/hdf5"
)

// h5Container is a Container over an existing HDF5 file.
//
// The file is first read through the NetCDF-4 HDF5 reader to learn its root
// attributes and groups; it is only opened for writing on the first
// mutation.
type h5Container struct {
	path string

	groups []string
	attrs  map[string]map[string]any

	f       *hdf5.File
	handles map[string]*hdf5.Group
	closed  bool
}

// OpenContainer opens the S-111 file at path for update.
func OpenContainer(path string) (Container, error) {
	c := &h5Container{
		path:    path,
		attrs:   map[string]map[string]any{Root: {}},
		handles: map[string]*hdf5.Group{},
	}
	if err := c.probe(); err != nil {
		return nil, &DestinationIOError{Op: "open", Path: path, Err: err}
	}
	return c, nil
}

// probe loads the group names and root attributes without write access.
func (c *h5Container) probe() (err error) {
	defer thrower.RecoverError(&err)
	g, err := nchdf5.Open(c.path)
	if err != nil {
		return err
	}
	defer g.Close()

	c.groups = g.ListSubgroups()
	if am := g.Attributes(); am != nil {
		for _, k := range am.Keys() {
			v, _ := am.Get(k)
			c.attrs[Root][k] = v
		}
	}
	return nil
}

func (c *h5Container) Groups() []string {
	return c.groups
}

func (c *h5Container) Attr(group, name string) (any, bool) {
	v, ok := c.attrs[group][name]
	return v, ok
}

func (c *h5Container) file() (*hdf5.File, error) {
	if c.f != nil {
		return c.f, nil
	}
	f, err := hdf5.OpenFile(c.path, hdf5.F_ACC_RDWR)
	if err != nil {
		return nil, &DestinationIOError{Op: "open for write", Path: c.path, Err: err}
	}
	c.f = f
	return f, nil
}

func (c *h5Container) group(name string) (*hdf5.Group, error) {
	if g, ok := c.handles[name]; ok {
		return g, nil
	}
	f, err := c.file()
	if err != nil {
		return nil, err
	}
	g, err := f.OpenGroup(objectPath(name))
	if err != nil {
		return nil, &DestinationIOError{Op: "open group " + objectPath(name), Path: c.path, Err: err}
	}
	c.handles[name] = g
	return g, nil
}

func (c *h5Container) CreateGroup(name string) error {
	f, err := c.file()
	if err != nil {
		return err
	}
	g, err := f.CreateGroup(objectPath(name))
	if err != nil {
		return &DestinationIOError{Op: "create group " + objectPath(name), Path: c.path, Err: err}
	}
	c.handles[name] = g
	c.groups = append(c.groups, name)
	c.attrs[name] = map[string]any{}
	return nil
}

func (c *h5Container) WriteDataset(group, name string, values []float64) error {
	g, err := c.group(group)
	if err != nil {
		return err
	}
	op := "write dataset " + objectPath(group) + "/" + name
	space, err := hdf5.CreateSimpleDataspace([]uint{1, uint(len(values))}, nil)
	if err != nil {
		return &DestinationIOError{Op: op, Path: c.path, Err: err}
	}
	defer space.Close()

	ds, err := g.CreateDataset(name, hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		return &DestinationIOError{Op: op, Path: c.path, Err: err}
	}
	if len(values) > 0 {
		err = ds.Write(&values)
	}
	if cerr := ds.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return &DestinationIOError{Op: op, Path: c.path, Err: err}
	}
	return nil
}

// SetAttr writes a scalar int64, float64 or string attribute, replacing any
// attribute of the same name.
func (c *h5Container) SetAttr(group, name string, value any) error {
	switch value.(type) {
	case int64, float64, string:
	default:
		return &DestinationIOError{Op: "write attribute " + name, Path: c.path, Err: fmt.Errorf("unsupported value type %T", value)}
	}
	g, err := c.group(group)
	if err != nil {
		return err
	}
	if err := c.dropAttr(g, name); err != nil {
		return &DestinationIOError{Op: "replace attribute " + name, Path: c.path, Err: err}
	}
	if err := writeAttr(g, name, value); err != nil {
		return &DestinationIOError{Op: "write attribute " + name, Path: c.path, Err: err}
	}
	if c.attrs[group] == nil {
		c.attrs[group] = map[string]any{}
	}
	c.attrs[group][name] = value
	return nil
}

func (c *h5Container) DeleteAttr(group, name string) error {
	if _, ok := c.attrs[group][name]; !ok {
		return nil
	}
	g, err := c.group(group)
	if err != nil {
		return err
	}
	if err := c.dropAttr(g, name); err != nil {
		return &DestinationIOError{Op: "delete attribute " + name, Path: c.path, Err: err}
	}
	delete(c.attrs[group], name)
	return nil
}

func (c *h5Container) dropAttr(g *hdf5.Group, name string) error {
	ok, err := attrExists(g.ID(), name)
	if err != nil || !ok {
		return err
	}
	return deleteAttr(g.ID(), name)
}

func writeAttr(g *hdf5.Group, name string, value any) (err error) {
	dtype, err := hdf5.NewDatatypeFromValue(value)
	if err != nil {
		return err
	}
	defer dtype.Close()
	space, err := hdf5.CreateDataspace(hdf5.S_SCALAR)
	if err != nil {
		return err
	}
	defer space.Close()

	attr, err := g.CreateAttribute(name, dtype, space)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := attr.Close(); err == nil {
			err = cerr
		}
	}()
	switch v := value.(type) {
	case int64:
		return attr.Write(&v, dtype)
	case float64:
		return attr.Write(&v, dtype)
	case string:
		return attr.Write(&v, dtype)
	}
	return fmt.Errorf("unsupported value type %T", value)
}

// Close releases the open groups, flushes the file and syncs it to stable
// storage. A container that was never written to is left as it was.
func (c *h5Container) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.f == nil {
		return nil
	}
	var errs []error
	for _, g := range c.handles {
		errs = append(errs, g.Close())
	}
	errs = append(errs, c.f.Flush(hdf5.F_SCOPE_GLOBAL), c.f.Close())
	if err := errors.Join(errs...); err != nil {
		return &DestinationIOError{Op: "close", Path: c.path, Err: err}
	}

	f, err := os.OpenFile(c.path, os.O_RDWR, 0)
	if err != nil {
		return &DestinationIOError{Op: "sync", Path: c.path, Err: err}
	}
	defer f.Close()
	if err := f.Sync(); err != nil {
		return &DestinationIOError{Op: "sync", Path: c.path, Err: err}
	}
	return nil
}

func objectPath(group string) string {
	if group == Root {
		return "/"
	}
	return "/" + group
}
