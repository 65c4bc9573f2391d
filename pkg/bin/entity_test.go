package bin

import (
	"bytes"
	"encoding/binary"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/samcharles93/savekit/internal/logger"
	"github.com/samcharles93/savekit/pkg/format"
)

var testPC = format.Format{ID: "pc", Platforms: format.PC}

// triple is three bytes wide, so every instance is followed by one byte of
// alignment.
type triple struct {
	A uint16
	B uint8
}

func (t *triple) ReadData(b *Buffer, _ format.Format) error {
	t.A = b.ReadU16()
	t.B = b.ReadU8()
	return b.Err()
}

func (t *triple) WriteData(b *Buffer, _ format.Format) error {
	b.WriteU16(t.A)
	b.WriteU8(t.B)
	return b.Err()
}

func (t *triple) Size(format.Format) int { return 3 }

// nested embeds a triple and measures its own extent around it.
type nested struct {
	Inner triple
	Tail  uint32
}

func (n *nested) ReadData(b *Buffer, f format.Format) error {
	b.ReadEntity(&n.Inner, f)
	n.Tail = b.ReadU32()
	return b.Err()
}

func (n *nested) WriteData(b *Buffer, f format.Format) error {
	b.WriteEntity(&n.Inner, f)
	b.WriteU32(n.Tail)
	return b.Err()
}

func (n *nested) Size(f format.Format) int { return SizeOf[triple](f) + 4 }

// liar declares eight bytes but moves four.
type liar struct{ V uint32 }

func (l *liar) ReadData(b *Buffer, _ format.Format) error {
	l.V = b.ReadU32()
	return b.Err()
}

func (l *liar) WriteData(b *Buffer, _ format.Format) error {
	b.WriteU32(l.V)
	return b.Err()
}

func (l *liar) Size(format.Format) int { return 8 }

func TestEntityAlignment(t *testing.T) {
	t.Parallel()

	w := NewWriter(binary.LittleEndian, Options{})
	n := w.WriteEntity(&triple{A: 0x0102, B: 3}, testPC)
	if n != 3 {
		t.Fatalf("bytes produced got %d want 3", n)
	}
	if w.Pos()%4 != 0 {
		t.Fatalf("cursor not aligned after entity: %d", w.Pos())
	}
	if !bytes.Equal(w.Bytes(), []byte{0x02, 0x01, 3, 0}) {
		t.Fatalf("bytes got %x", w.Bytes())
	}

	r := NewReader(w.Bytes(), binary.LittleEndian, Options{Strict: true})
	got := Read[triple](r, testPC)
	if r.Err() != nil || got.A != 0x0102 || got.B != 3 || r.Pos() != 4 {
		t.Fatalf("read got %+v pos=%d err=%v", got, r.Pos(), r.Err())
	}
}

func TestNestedEntityKeepsOuterMark(t *testing.T) {
	t.Parallel()

	w := NewWriter(binary.LittleEndian, Options{Strict: true})
	w.WriteU32(0xFFFFFFFF)
	w.Mark()
	Write(w, &nested{Inner: triple{A: 7, B: 8}, Tail: 9}, testPC)
	if w.Err() != nil {
		t.Fatalf("write: %v", w.Err())
	}
	if w.Offset() != 8 {
		t.Fatalf("outer offset got %d want 8", w.Offset())
	}

	r := NewReader(w.Bytes(), binary.LittleEndian, Options{Strict: true})
	r.Skip(4)
	got := Read[nested](r, testPC)
	if r.Err() != nil {
		t.Fatalf("read: %v", r.Err())
	}
	if got.Inner.A != 7 || got.Inner.B != 8 || got.Tail != 9 {
		t.Fatalf("read got %+v", got)
	}
}

func TestArrayFillsDeclaredCount(t *testing.T) {
	t.Parallel()

	w := NewWriter(binary.LittleEndian, Options{Strict: true})
	WriteArray(w, []triple{{A: 1, B: 1}, {A: 2, B: 2}}, 5, testPC)
	if w.Len() != 5*SizeOf[triple](testPC) {
		t.Fatalf("array length got %d want %d", w.Len(), 5*SizeOf[triple](testPC))
	}

	r := NewReader(w.Bytes(), binary.LittleEndian, Options{Strict: true})
	got := ReadArray[triple](r, 5, testPC)
	if r.Err() != nil || len(got) != 5 {
		t.Fatalf("read %d elements, err=%v", len(got), r.Err())
	}
	if got[1].A != 2 {
		t.Fatalf("element 1 got %+v", got[1])
	}
	for i := 2; i < 5; i++ {
		if got[i] != (triple{}) {
			t.Fatalf("element %d should be the default value, got %+v", i, got[i])
		}
	}

	trunc := NewWriter(binary.LittleEndian, Options{})
	WriteArray(trunc, make([]triple, 9), 2, testPC)
	if trunc.Len() != 8 {
		t.Fatalf("extra items must be dropped, len=%d", trunc.Len())
	}
}

func TestReadArrayRejectsNegativeCount(t *testing.T) {
	t.Parallel()

	r := NewReader(nil, binary.LittleEndian, Options{})
	if got := ReadArray[triple](r, -1, testPC); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	if !errors.Is(r.Err(), ErrOutOfData) {
		t.Fatalf("expected ErrOutOfData, got %v", r.Err())
	}
}

func TestSizeMismatchStrict(t *testing.T) {
	t.Parallel()

	w := NewWriter(binary.LittleEndian, Options{Strict: true})
	Write(w, &liar{V: 1}, testPC)
	if !errors.Is(w.Err(), ErrEntitySizeMismatch) {
		t.Fatalf("expected ErrEntitySizeMismatch, got %v", w.Err())
	}
	var sm *SizeMismatchError
	if !errors.As(w.Err(), &sm) {
		t.Fatalf("expected *SizeMismatchError, got %T", w.Err())
	}
	if sm.Declared != 8 || sm.Actual != 4 || sm.Op != "write" {
		t.Fatalf("mismatch details got %+v", sm)
	}
}

func TestSizeMismatchLenientWarns(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	r := NewReader(make([]byte, 8), binary.LittleEndian, Options{Log: logger.JSON(&logs, slog.LevelDebug)})
	Read[liar](r, testPC)
	if r.Err() != nil {
		t.Fatalf("lenient mode must not fail: %v", r.Err())
	}
	if r.Pos() != 4 {
		t.Fatalf("cursor got %d want 4", r.Pos())
	}
	out := logs.String()
	if !strings.Contains(out, "entity size mismatch") || !strings.Contains(out, `"declared":8`) {
		t.Fatalf("warning not logged: %s", out)
	}
}

func TestEntityReadPastEnd(t *testing.T) {
	t.Parallel()

	r := NewReader([]byte{1, 2}, binary.LittleEndian, Options{Strict: true})
	Read[triple](r, testPC)
	if !errors.Is(r.Err(), ErrOutOfData) {
		t.Fatalf("expected ErrOutOfData, got %v", r.Err())
	}
}
