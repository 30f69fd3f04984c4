package s111

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/rtm0/s111/internal/grid"
)

// State is a stage of a conversion run.
type State int

const (
	Opened State = iota
	Validated
	PositionsBuilt
	PerTimestamp
	MetadataWritten
	Flushed
)

func (s State) String() string {
	switch s {
	case Opened:
		return "opened"
	case Validated:
		return "validated"
	case PositionsBuilt:
		return "positions built"
	case PerTimestamp:
		return "per timestamp"
	case MetadataWritten:
		return "metadata written"
	case Flushed:
		return "flushed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Transcoder adds an irregular-grid dataset to an S-111 container.
type Transcoder struct {
	Options Options
	Logger  *slog.Logger

	// ReadSource and OpenDestination default to grid.Read and
	// OpenContainer.
	ReadSource      func(path string) (*grid.Grid, error)
	OpenDestination func(path string) (Container, error)
}

// NewTranscoder creates a transcoder reading NetCDF sources and writing HDF5
// containers.
func NewTranscoder(logger *slog.Logger, opts Options) *Transcoder {
	return &Transcoder{
		Options:         opts,
		Logger:          logger,
		ReadSource:      grid.Read,
		OpenDestination: OpenContainer,
	}
}

// Run converts the grid file at src and writes it into the container at dst.
//
// Errors reaching the open or validation stage leave dst untouched. Errors
// raised while writing are not rolled back: groups written before the
// failure stay in the container. Returned errors are wrapped with the stage
// that could not be reached. A container that also fails to close after an
// error has both errors joined.
func (t *Transcoder) Run(src, dst string) (err error) {
	c, err := t.OpenDestination(dst)
	if err != nil {
		return fmt.Errorf("%s: %w", Opened, err)
	}
	defer func() {
		if cerr := c.Close(); cerr != nil && err != nil {
			err = errors.Join(err, fmt.Errorf("%s: %w", Flushed, cerr))
		}
	}()

	g, err := t.ReadSource(src)
	if err != nil {
		return fmt.Errorf("%s: %w", Opened, err)
	}
	t.Logger.Info("Source grid summary", g.Summary()...)
	t.Logger.Debug("State", "state", Opened)

	if err := grid.Validate(g); err != nil {
		return fmt.Errorf("%s: %w", Validated, err)
	}
	if err := checkFresh(c, len(g.Times)); err != nil {
		return fmt.Errorf("%s: %w", Validated, err)
	}
	t.Logger.Info("Adding irregular grid dataset", "timestamps", len(g.Times), "nodesPerTimestamp", len(g.Lat))
	t.Logger.Debug("State", "state", Validated)

	pos := EncodePositions(g.Lat, g.Lon)
	if err := WritePositions(c, pos); err != nil {
		return fmt.Errorf("%s: %w", PositionsBuilt, err)
	}
	t.Logger.Info("Created position group", "group", PositionGroup,
		"minX", pos.Extent.MinX, "minY", pos.Extent.MinY, "maxX", pos.Extent.MaxX, "maxY", pos.Extent.MaxY)
	t.Logger.Debug("State", "state", PositionsBuilt)

	b := NewGroupBuilder(c, t.Options, len(pos.X))
	for i, days := range g.Times {
		name, err := b.Add(days, g.U.Row(i), g.V.Row(i))
		if err != nil {
			return fmt.Errorf("%s %q: %w", PerTimestamp, name, err)
		}
		t.Logger.Info("Created time group", "group", name, "progress", fmt.Sprintf("%d/%d", i+1, len(g.Times)))
	}

	md := b.Metadata()
	if err := Finalize(c, md); err != nil {
		return fmt.Errorf("%s: %w", MetadataWritten, err)
	}
	t.Logger.Debug("State", "state", MetadataWritten)

	if err := c.Close(); err != nil {
		return fmt.Errorf("%s: %w", Flushed, err)
	}
	t.Logger.Info("Dataset successfully added", "times", md.NumberOfTimes, "nodes", md.NumberOfNodes)
	t.Logger.Debug("State", "state", Flushed)
	return nil
}
