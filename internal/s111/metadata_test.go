package s111

import (
	"testing"
	"time"
)

func metadataFor(t *testing.T, n int) Metadata {
	t.Helper()
	b := NewGroupBuilder(newMemContainer(), DefaultOptions(), 1)
	for i := 0; i < n; i++ {
		if _, err := b.Add(24555+float64(i)/24, []float64{1}, []float64{0}); err != nil {
			t.Fatal(err)
		}
	}
	return b.Metadata()
}

func TestFinalizeNoTimestamps(t *testing.T) {
	c := newMemContainer()
	c.attrs[Root][AttrTimeRecordInterval] = int64(3600)
	c.attrs[Root][AttrDateTimeOfFirstRecord] = "20170101T000000Z"
	c.attrs[Root][AttrDateTimeOfLastRecord] = "20170102T000000Z"
	c.attrs[Root][AttrMinSurfCurrentSpeed] = 0.5

	if err := Finalize(c, metadataFor(t, 0)); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{AttrTimeRecordInterval, AttrDateTimeOfFirstRecord, AttrDateTimeOfLastRecord} {
		if v, ok := c.Attr(Root, name); ok {
			t.Errorf("%s = %v, want absent", name, v)
		}
	}
	if got := c.attrs[Root][AttrNumberOfTimes]; got != int64(0) {
		t.Errorf("numberOfTimes = %v", got)
	}
	if got := c.attrs[Root][AttrDataCodingFormat]; got != int64(3) {
		t.Errorf("dataCodingFormat = %v", got)
	}
	if got := c.attrs[Root][AttrMinSurfCurrentSpeed]; got != 0.5 {
		t.Errorf("existing speed extent changed to %v", got)
	}
	if _, ok := c.Attr(Root, AttrMaxSurfCurrentSpeed); ok {
		t.Error("max speed written without data")
	}
}

func TestFinalizeOneTimestamp(t *testing.T) {
	c := newMemContainer()
	c.attrs[Root][AttrTimeRecordInterval] = int64(900)
	if err := Finalize(c, metadataFor(t, 1)); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Attr(Root, AttrTimeRecordInterval); ok {
		t.Error("timeRecordInterval present for one timestamp")
	}
	first, _ := c.Attr(Root, AttrDateTimeOfFirstRecord)
	last, _ := c.Attr(Root, AttrDateTimeOfLastRecord)
	if first != "20170325T000000Z" || first != last {
		t.Errorf("first=%v last=%v", first, last)
	}
}

func TestFinalizeInterval(t *testing.T) {
	c := newMemContainer()
	if err := Finalize(c, metadataFor(t, 3)); err != nil {
		t.Fatal(err)
	}
	if got := c.attrs[Root][AttrTimeRecordInterval]; got != int64(3600) {
		t.Errorf("timeRecordInterval = %v, want 3600", got)
	}
	if got := c.attrs[Root][AttrDateTimeOfLastRecord]; got != "20170325T020000Z" {
		t.Errorf("last record = %v", got)
	}
	if got := c.attrs[Root][AttrNumberOfNodes]; got != int64(1) {
		t.Errorf("numberOfNodes = %v", got)
	}
}

func TestFinalizeMergesSpeedExtents(t *testing.T) {
	ranges := [][2]float64{{2, 3}, {1, 2.5}, {2.2, 7}}
	c := newMemContainer()
	lo, hi := ranges[0][0], ranges[0][1]
	for _, r := range ranges {
		lo, hi = min(lo, r[0]), max(hi, r[1])
		m := Metadata{Speed: SpeedExtent{Min: r[0], Max: r[1], Valid: true}}
		if err := Finalize(c, m); err != nil {
			t.Fatal(err)
		}
		if got := c.attrs[Root][AttrMinSurfCurrentSpeed]; got != lo {
			t.Errorf("after %v min = %v, want %v", r, got, lo)
		}
		if got := c.attrs[Root][AttrMaxSurfCurrentSpeed]; got != hi {
			t.Errorf("after %v max = %v, want %v", r, got, hi)
		}
	}
}

func TestFinalizeReadsArrayAttributes(t *testing.T) {
	c := newMemContainer()
	c.attrs[Root][AttrMinSurfCurrentSpeed] = []float32{0.25}
	c.attrs[Root][AttrMaxSurfCurrentSpeed] = []float64{12}
	m := Metadata{Speed: SpeedExtent{Min: 1, Max: 2, Valid: true}}
	if err := Finalize(c, m); err != nil {
		t.Fatal(err)
	}
	if got := c.attrs[Root][AttrMinSurfCurrentSpeed]; got != 0.25 {
		t.Errorf("min = %v", got)
	}
	if got := c.attrs[Root][AttrMaxSurfCurrentSpeed]; got != 12.0 {
		t.Errorf("max = %v", got)
	}

	c.attrs[Root][AttrMaxSurfCurrentSpeed] = "fast"
	if err := Finalize(c, m); err == nil {
		t.Error("non-numeric existing extent accepted")
	}
}

func TestFinalizeOverwritesCounts(t *testing.T) {
	c := newMemContainer()
	c.attrs[Root][AttrNumberOfTimes] = int64(99)
	c.attrs[Root][AttrDataCodingFormat] = int64(2)
	m := Metadata{NumberOfTimes: 4, NumberOfNodes: 10, Interval: 90 * time.Minute, HasInterval: true}
	if err := Finalize(c, m); err != nil {
		t.Fatal(err)
	}
	if c.attrs[Root][AttrNumberOfTimes] != int64(4) || c.attrs[Root][AttrDataCodingFormat] != int64(3) {
		t.Errorf("root attrs = %v", c.attrs[Root])
	}
	if c.attrs[Root][AttrTimeRecordInterval] != int64(5400) {
		t.Errorf("interval = %v", c.attrs[Root][AttrTimeRecordInterval])
	}
}
