package bin

import (
	"fmt"

	"github.com/samcharles93/savekit/pkg/format"
)

// Entity is implemented by every value that has a binary layout.
//
// Size reports the bytes ReadData consumes and WriteData produces for f,
// excluding the alignment the buffer adds after the entity. For entities
// whose length depends on their contents, Size describes the current
// contents, so it is checked after a read completes.
type Entity interface {
	ReadData(b *Buffer, f format.Format) error
	WriteData(b *Buffer, f format.Format) error
	Size(f format.Format) int
}

// EntityPtr constrains generic helpers to pointer types implementing Entity.
type EntityPtr[T any] interface {
	*T
	Entity
}

// ReadEntity reads e and checks that it consumed exactly e.Size(f) bytes,
// then aligns the cursor to four bytes. The mark register is saved and
// restored around the call so an outer measurement is not disturbed.
// It returns the bytes consumed, excluding alignment.
func (b *Buffer) ReadEntity(e Entity, f format.Format) int {
	if b.err != nil {
		return 0
	}
	prev := b.mark
	b.mark = b.pos
	b.Fail(e.ReadData(b, f))
	n := b.Offset()
	b.mark = prev
	if b.err == nil {
		b.checkSize(e, f, "read", n)
	}
	b.ReadAlign4()
	return n
}

// WriteEntity writes e, checks the produced byte count against e.Size(f),
// then pads to four bytes. It returns the bytes produced, excluding padding.
func (b *Buffer) WriteEntity(e Entity, f format.Format) int {
	if b.err != nil {
		return 0
	}
	prev := b.mark
	b.mark = b.pos
	b.Fail(e.WriteData(b, f))
	n := b.Offset()
	b.mark = prev
	if b.err == nil {
		b.checkSize(e, f, "write", n)
	}
	b.WriteAlign4()
	return n
}

func (b *Buffer) checkSize(e Entity, f format.Format, op string, n int) {
	want := e.Size(f)
	if n == want {
		return
	}
	err := &SizeMismatchError{
		Entity:   fmt.Sprintf("%T", e),
		Op:       op,
		Format:   f,
		Declared: want,
		Actual:   n,
	}
	if b.strict {
		b.Fail(err)
		return
	}
	b.log.Warn("entity size mismatch",
		"entity", err.Entity,
		"op", op,
		"format", f.String(),
		"declared", want,
		"actual", n,
	)
}

// Read decodes a T from b.
func Read[T any, P EntityPtr[T]](b *Buffer, f format.Format) T {
	var v T
	b.ReadEntity(P(&v), f)
	return v
}

// Write encodes v into b.
func Write[T any, P EntityPtr[T]](b *Buffer, v *T, f format.Format) {
	if v == nil {
		var zero T
		v = &zero
	}
	b.WriteEntity(P(v), f)
}

// ReadArray decodes count consecutive entities.
func ReadArray[T any, P EntityPtr[T]](b *Buffer, count int, f format.Format) []T {
	if count < 0 {
		b.Fail(fmt.Errorf("%w: negative element count %d at offset %d", ErrOutOfData, count, b.pos))
		return nil
	}
	if b.err != nil {
		return nil
	}
	if sz := SizeOf[T, P](f); sz > 0 && count > b.Remaining()/sz {
		b.Fail(fmt.Errorf("%w: %d elements of %d bytes at offset %d, have %d bytes", ErrOutOfData, count, sz, b.pos, b.Remaining()))
		return nil
	}
	out := make([]T, count)
	for i := range out {
		b.ReadEntity(P(&out[i]), f)
		if b.err != nil {
			return out[:i]
		}
	}
	return out
}

// WriteArray encodes exactly count entities. Items past count are dropped;
// when items is short, zero values fill the remaining slots so the array
// always occupies its declared slot count.
func WriteArray[T any, P EntityPtr[T]](b *Buffer, items []T, count int, f format.Format) {
	for i := 0; i < count && b.err == nil; i++ {
		if i < len(items) {
			b.WriteEntity(P(&items[i]), f)
			continue
		}
		var filler T
		b.WriteEntity(P(&filler), f)
	}
}

// SizeOf returns the aligned size of one T on format f. It is only
// meaningful for types whose size does not depend on their contents.
func SizeOf[T any, P EntityPtr[T]](f format.Format) int {
	var v T
	return Align4(P(&v).Size(f))
}
