package s111

import (
	"math"
	"strconv"
	"time"
)

// DateTimeLayout is the compact UTC timestamp format used by S-111 attributes.
const DateTimeLayout = "20060102T150405Z"

// Time group attribute and dataset names.
const (
	AttrTitle        = "Title"
	AttrDateTime     = "DateTime"
	DatasetSpeed     = "Speed"
	DatasetDirection = "Direction"
)

// Options are the constants of a conversion run.
type Options struct {
	// Epoch is the instant the source time offsets count days from.
	Epoch time.Time
	// KnotsPerMS converts the source velocities to knots.
	KnotsPerMS float64
}

// DefaultOptions returns the options matching CF current datasets counting
// days since 1950-01-01.
func DefaultOptions() Options {
	return Options{
		Epoch:      time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC),
		KnotsPerMS: KnotsPerMetreSecond,
	}
}

// Absolute returns the UTC instant days after the epoch, rounded to the
// microsecond.
func (o Options) Absolute(days float64) time.Time {
	us := math.Round(days * 86400e6)
	sec := math.Floor(us / 1e6)
	nsec := (us - sec*1e6) * 1e3
	return time.Unix(o.Epoch.Unix()+int64(sec), int64(o.Epoch.Nanosecond())+int64(nsec)).UTC()
}

// TimeExtent tracks the earliest and latest record time.
type TimeExtent struct {
	First, Last time.Time
	Valid       bool
}

// Add widens the extent to include t.
func (e *TimeExtent) Add(t time.Time) {
	if !e.Valid {
		e.First, e.Last, e.Valid = t, t, true
		return
	}
	if t.Before(e.First) {
		e.First = t
	}
	if t.After(e.Last) {
		e.Last = t
	}
}

// GroupBuilder writes one group per timestamp and accumulates the run
// metadata. Timestamps must be added in source order.
type GroupBuilder struct {
	c     Container
	opts  Options
	conv  Converter
	nodes int

	n        int
	first    time.Time
	interval time.Duration
	times    TimeExtent
	speeds   SpeedExtent

	speedBuf   []float64
	bearingBuf []float64
}

// NewGroupBuilder returns a builder writing groups of nodes values into c.
func NewGroupBuilder(c Container, opts Options, nodes int) *GroupBuilder {
	return &GroupBuilder{
		c:          c,
		opts:       opts,
		conv:       Converter{KnotsPerMS: opts.KnotsPerMS},
		nodes:      nodes,
		speedBuf:   make([]float64, nodes),
		bearingBuf: make([]float64, nodes),
	}
}

// Add writes the group for the next timestamp, days after the epoch, with
// the velocity components of every node. It returns the group name.
func (b *GroupBuilder) Add(days float64, u, v []float64) (string, error) {
	at := b.opts.Absolute(days)
	name := TimeGroupName(b.n)
	if err := b.c.CreateGroup(name); err != nil {
		return name, err
	}
	if err := b.c.SetAttr(name, AttrTitle, "Irregular Grid at DateTime "+strconv.Itoa(b.n+1)); err != nil {
		return name, err
	}
	if err := b.c.SetAttr(name, AttrDateTime, at.Format(DateTimeLayout)); err != nil {
		return name, err
	}

	b.conv.Convert(u[:b.nodes], v[:b.nodes], b.speedBuf, b.bearingBuf, &b.speeds)
	if err := b.c.WriteDataset(name, DatasetDirection, b.bearingBuf); err != nil {
		return name, err
	}
	if err := b.c.WriteDataset(name, DatasetSpeed, b.speedBuf); err != nil {
		return name, err
	}

	b.times.Add(at)
	switch b.n {
	case 0:
		b.first = at
	case 1:
		b.interval = at.Sub(b.first)
	}
	b.n++
	return name, nil
}

// Metadata returns the aggregate metadata of the groups written so far.
func (b *GroupBuilder) Metadata() Metadata {
	m := Metadata{
		NumberOfTimes: b.n,
		NumberOfNodes: b.nodes,
		Times:         b.times,
		Speed:         b.speeds,
	}
	if b.n > 1 {
		m.Interval = b.interval
		m.HasInterval = true
	}
	return m
}
