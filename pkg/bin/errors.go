package bin

import (
	"errors"
	"fmt"

	"github.com/samcharles93/savekit/pkg/format"
)

var (
	ErrOutOfData          = errors.New("bin: out of data")
	ErrBufferFull         = errors.New("bin: buffer full")
	ErrEntitySizeMismatch = errors.New("bin: entity size mismatch")
	ErrNegativeLength     = errors.New("bin: negative length")
)

// SizeMismatchError reports an entity whose declared size disagrees with the
// number of bytes its read or write actually moved.
type SizeMismatchError struct {
	Entity   string
	Op       string
	Format   format.Format
	Declared int
	Actual   int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("bin: %s %s (%s): declared %d bytes, moved %d",
		e.Op, e.Entity, e.Format, e.Declared, e.Actual)
}

func (e *SizeMismatchError) Unwrap() error {
	return ErrEntitySizeMismatch
}
