package grid

import "fmt"

// SourceIOError is returned when the source file cannot be opened.
type SourceIOError struct {
	Path string
	Err  error
}

func (e *SourceIOError) Error() string {
	return fmt.Sprintf("cannot open source %q: %v", e.Path, e.Err)
}

func (e *SourceIOError) Unwrap() error { return e.Err }

// SourceFormatError is returned when a required variable is absent or holds
// values that cannot be used.
type SourceFormatError struct {
	Variable string
	Reason   string
	Err      error
}

func (e *SourceFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("variable %q: %s: %v", e.Variable, e.Reason, e.Err)
	}
	return fmt.Sprintf("variable %q: %s", e.Variable, e.Reason)
}

func (e *SourceFormatError) Unwrap() error { return e.Err }

// StructuralMismatchError names the pair of counts that disagree.
type StructuralMismatchError struct {
	Left     string
	LeftLen  int
	Right    string
	RightLen int
}

func (e *StructuralMismatchError) Error() string {
	return fmt.Sprintf("structural mismatch: %s (%d) != %s (%d)", e.Left, e.LeftLen, e.Right, e.RightLen)
}

// UnsupportedUnitError is returned when a velocity variable is stored in a
// unit other than metres per second.
type UnsupportedUnitError struct {
	Variable string
	Unit     string
}

func (e *UnsupportedUnitError) Error() string {
	return fmt.Sprintf("variable %q is stored in unsupported unit %q", e.Variable, e.Unit)
}
