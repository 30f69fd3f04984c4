package s111

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/spf13/cast"
)

// DataCodingFormatIrregular identifies ungeorectified gridded arrays stored
// as one group per timestamp.
const DataCodingFormatIrregular = 3

// Root attribute names.
const (
	AttrDataCodingFormat      = "dataCodingFormat"
	AttrNumberOfTimes         = "numberOfTimes"
	AttrNumberOfNodes         = "numberOfNodes"
	AttrTimeRecordInterval    = "timeRecordInterval"
	AttrDateTimeOfFirstRecord = "dateTimeOfFirstRecord"
	AttrDateTimeOfLastRecord  = "dateTimeOfLastRecord"
	AttrMinSurfCurrentSpeed   = "minSurfCurrentSpeed"
	AttrMaxSurfCurrentSpeed   = "maxSurfCurrentSpeed"
)

// Metadata is the aggregate description of a conversion run.
type Metadata struct {
	NumberOfTimes int
	NumberOfNodes int

	// Interval is the spacing of the first two records. It is only set for
	// runs with two or more timestamps.
	Interval    time.Duration
	HasInterval bool

	Times TimeExtent
	Speed SpeedExtent
}

// Finalize writes m to the root of c.
//
// Counts, coding format and temporal attributes replace whatever c held;
// temporal attributes this run cannot provide are removed. The speed range
// is merged with the range already stored in c, if any, keeping the wider
// bound on each side.
func Finalize(c Container, m Metadata) error {
	if err := c.SetAttr(Root, AttrDataCodingFormat, int64(DataCodingFormatIrregular)); err != nil {
		return err
	}
	if err := c.SetAttr(Root, AttrNumberOfTimes, int64(m.NumberOfTimes)); err != nil {
		return err
	}
	if err := c.SetAttr(Root, AttrNumberOfNodes, int64(m.NumberOfNodes)); err != nil {
		return err
	}

	var err error
	if m.HasInterval {
		err = c.SetAttr(Root, AttrTimeRecordInterval, int64(m.Interval/time.Second))
	} else {
		err = c.DeleteAttr(Root, AttrTimeRecordInterval)
	}
	if err != nil {
		return err
	}

	if m.Times.Valid {
		if err := c.SetAttr(Root, AttrDateTimeOfFirstRecord, m.Times.First.UTC().Format(DateTimeLayout)); err != nil {
			return err
		}
		if err := c.SetAttr(Root, AttrDateTimeOfLastRecord, m.Times.Last.UTC().Format(DateTimeLayout)); err != nil {
			return err
		}
	} else {
		if err := c.DeleteAttr(Root, AttrDateTimeOfFirstRecord); err != nil {
			return err
		}
		if err := c.DeleteAttr(Root, AttrDateTimeOfLastRecord); err != nil {
			return err
		}
	}

	if !m.Speed.Valid {
		return nil
	}
	lo, hi := m.Speed.Min, m.Speed.Max
	if v, ok := c.Attr(Root, AttrMinSurfCurrentSpeed); ok {
		prev, err := floatAttr(v)
		if err != nil {
			return fmt.Errorf("existing %s: %w", AttrMinSurfCurrentSpeed, err)
		}
		lo = math.Min(lo, prev)
	}
	if v, ok := c.Attr(Root, AttrMaxSurfCurrentSpeed); ok {
		prev, err := floatAttr(v)
		if err != nil {
			return fmt.Errorf("existing %s: %w", AttrMaxSurfCurrentSpeed, err)
		}
		hi = math.Max(hi, prev)
	}
	if err := c.SetAttr(Root, AttrMinSurfCurrentSpeed, lo); err != nil {
		return err
	}
	return c.SetAttr(Root, AttrMaxSurfCurrentSpeed, hi)
}

// floatAttr reads a numeric attribute stored either as a scalar or as a
// one-element array.
func floatAttr(v any) (float64, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		if rv.Len() != 1 {
			return 0, fmt.Errorf("expected a single value, got %d", rv.Len())
		}
		v = rv.Index(0).Interface()
	}
	return cast.ToFloat64E(v)
}
