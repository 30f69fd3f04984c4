// Package s111 writes irregular-grid surface current data into S-111 HDF5
// containers.
package s111

import (
	"fmt"
	"strconv"
	"strings"
)

// Root addresses the container root when used as a group name.
const Root = ""

// PositionGroup is the group holding the node coordinates.
const PositionGroup = "Group XY"

// TimeGroupName returns the name of the group for the i-th timestamp.
// Groups are numbered from 1.
func TimeGroupName(i int) string {
	return "Group " + strconv.Itoa(i+1)
}

// Container is an S-111 file opened for update.
//
// Implementations must not modify the underlying file before the first call
// to a mutating method (CreateGroup, WriteDataset, SetAttr, DeleteAttr), so
// that a run which fails before writing leaves the file untouched.
type Container interface {
	// Groups lists the groups directly below the root.
	Groups() []string
	// Attr returns the value of an attribute of a group, or of the root
	// when group is Root.
	Attr(group, name string) (any, bool)

	CreateGroup(name string) error
	// WriteDataset writes values as a 1×len(values) float64 dataset.
	WriteDataset(group, name string, values []float64) error
	SetAttr(group, name string, value any) error
	// DeleteAttr removes an attribute. Deleting an absent attribute is not
	// an error.
	DeleteAttr(group, name string) error

	// Close releases the container and makes every write durable.
	// Calling Close more than once is a no-op.
	Close() error
}

// DestinationIOError is returned when the destination container cannot be
// opened, read or written.
type DestinationIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *DestinationIOError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *DestinationIOError) Unwrap() error { return e.Err }

// GroupExistsError is returned when the destination already contains a
// group a run would create.
type GroupExistsError struct {
	Groups []string
}

func (e *GroupExistsError) Error() string {
	return fmt.Sprintf("destination already contains group(s) %s", strings.Join(e.Groups, ", "))
}

// checkFresh verifies that none of the groups a run over n timestamps would
// create exist yet.
func checkFresh(c Container, n int) error {
	want := map[string]bool{PositionGroup: true}
	for i := 0; i < n; i++ {
		want[TimeGroupName(i)] = true
	}
	var clash []string
	for _, g := range c.Groups() {
		if want[strings.TrimPrefix(g, "/")] {
			clash = append(clash, g)
		}
	}
	if len(clash) > 0 {
		return &GroupExistsError{Groups: clash}
	}
	return nil
}
