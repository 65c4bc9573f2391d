package bin

import (
	"bytes"
	"encoding/binary"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/samcharles93/savekit/internal/logger"
	"github.com/samcharles93/savekit/pkg/padding"
)

func TestPrimitiveRoundTrip(t *testing.T) {
	t.Parallel()

	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		w := NewWriter(order, Options{})
		w.WriteU8(0xAB)
		w.WriteI8(-2)
		w.WriteU16(0x1234)
		w.WriteI16(-300)
		w.WriteU32(0xDEADBEEF)
		w.WriteI32(-70000)
		w.WriteU64(0x0102030405060708)
		w.WriteI64(math.MinInt64)
		w.WriteF32(1.5)
		w.WriteF64(-0.25)
		if err := w.Err(); err != nil {
			t.Fatalf("%v: write: %v", order, err)
		}
		if w.Len() != 1+1+2+2+4+4+8+8+4+8 {
			t.Fatalf("%v: length got %d", order, w.Len())
		}

		r := NewReader(w.Bytes(), order, Options{})
		if v := r.ReadU8(); v != 0xAB {
			t.Fatalf("%v: u8 got %x", order, v)
		}
		if v := r.ReadI8(); v != -2 {
			t.Fatalf("%v: i8 got %d", order, v)
		}
		if v := r.ReadU16(); v != 0x1234 {
			t.Fatalf("%v: u16 got %x", order, v)
		}
		if v := r.ReadI16(); v != -300 {
			t.Fatalf("%v: i16 got %d", order, v)
		}
		if v := r.ReadU32(); v != 0xDEADBEEF {
			t.Fatalf("%v: u32 got %x", order, v)
		}
		if v := r.ReadI32(); v != -70000 {
			t.Fatalf("%v: i32 got %d", order, v)
		}
		if v := r.ReadU64(); v != 0x0102030405060708 {
			t.Fatalf("%v: u64 got %x", order, v)
		}
		if v := r.ReadI64(); v != math.MinInt64 {
			t.Fatalf("%v: i64 got %d", order, v)
		}
		if v := r.ReadF32(); v != 1.5 {
			t.Fatalf("%v: f32 got %v", order, v)
		}
		if v := r.ReadF64(); v != -0.25 {
			t.Fatalf("%v: f64 got %v", order, v)
		}
		if err := r.Err(); err != nil {
			t.Fatalf("%v: read: %v", order, err)
		}
		if r.Remaining() != 0 {
			t.Fatalf("%v: %d bytes left over", order, r.Remaining())
		}
	}
}

func TestEndiannessOnTheWire(t *testing.T) {
	t.Parallel()

	le := NewWriter(binary.LittleEndian, Options{})
	le.WriteU32(0x11223344)
	if !bytes.Equal(le.Bytes(), []byte{0x44, 0x33, 0x22, 0x11}) {
		t.Fatalf("little-endian layout: %x", le.Bytes())
	}
	be := NewWriter(binary.BigEndian, Options{})
	be.WriteU32(0x11223344)
	if !bytes.Equal(be.Bytes(), []byte{0x11, 0x22, 0x33, 0x44}) {
		t.Fatalf("big-endian layout: %x", be.Bytes())
	}
}

func TestReadBoolChecksEveryByte(t *testing.T) {
	t.Parallel()

	r := NewReader([]byte{0, 0, 0, 1, 0, 0, 0, 0, 2}, binary.LittleEndian, Options{})
	if !r.ReadBool(4) {
		t.Fatalf("bit in the last byte of a 4-byte bool should read true")
	}
	if r.ReadBool(4) {
		t.Fatalf("all-zero bool should read false")
	}
	if !r.ReadBool(1) {
		t.Fatalf("non-one value should read true")
	}

	w := NewWriter(binary.BigEndian, Options{})
	w.WriteBool(true, 4)
	w.WriteBool(true, 3)
	if !bytes.Equal(w.Bytes(), []byte{0, 0, 0, 1, 0, 0, 1}) {
		t.Fatalf("big-endian bool layout: %x", w.Bytes())
	}
}

func TestFixedBufferBounds(t *testing.T) {
	t.Parallel()

	r := NewReader([]byte{1, 2, 3}, binary.LittleEndian, Options{})
	_ = r.ReadU16()
	if v := r.ReadU16(); v != 0 {
		t.Fatalf("failed read should yield zero, got %d", v)
	}
	if !errors.Is(r.Err(), ErrOutOfData) {
		t.Fatalf("expected ErrOutOfData, got %v", r.Err())
	}
	if v := r.ReadU8(); v != 0 || r.Pos() != 2 {
		t.Fatalf("reads after an error must be no-ops: v=%d pos=%d", v, r.Pos())
	}

	w := NewFixed(6, binary.LittleEndian, Options{})
	w.WriteU32(1)
	w.WriteU32(2)
	if !errors.Is(w.Err(), ErrBufferFull) {
		t.Fatalf("expected ErrBufferFull, got %v", w.Err())
	}
	if w.Len() != 4 {
		t.Fatalf("failed write must not extend the buffer, len=%d", w.Len())
	}

	g := NewWriter(binary.LittleEndian, Options{})
	for i := 0; i < 100000; i++ {
		g.WriteU32(uint32(i))
	}
	if g.Err() != nil || g.Len() != 400000 {
		t.Fatalf("growable buffer: err=%v len=%d", g.Err(), g.Len())
	}
}

func TestSeekAndMark(t *testing.T) {
	t.Parallel()

	r := NewReader(make([]byte, 16), binary.LittleEndian, Options{})
	r.Seek(4)
	r.Mark()
	r.Skip(6)
	if r.Offset() != 6 {
		t.Fatalf("offset got %d want 6", r.Offset())
	}
	r.Seek(17)
	if !errors.Is(r.Err(), ErrOutOfData) {
		t.Fatalf("seek past end should fail, got %v", r.Err())
	}
}

func TestAlignUsesPaddingPolicy(t *testing.T) {
	t.Parallel()

	w := NewWriter(binary.LittleEndian, Options{Padding: padding.Pattern{0xEE}})
	w.WriteU8(1)
	w.WriteAlign4()
	if !bytes.Equal(w.Bytes(), []byte{1, 0xEE, 0xEE, 0xEE}) {
		t.Fatalf("aligned bytes: %x", w.Bytes())
	}
	w.WriteAlign4()
	if w.Len() != 4 {
		t.Fatalf("aligning an aligned cursor must not write, len=%d", w.Len())
	}

	r := NewReader([]byte{1, 9, 9, 9, 2}, binary.LittleEndian, Options{})
	r.ReadU8()
	r.ReadAlign4()
	if v := r.ReadU8(); v != 2 {
		t.Fatalf("read after align got %d", v)
	}
}

func TestEchoPaddingReusesScratch(t *testing.T) {
	t.Parallel()

	w := NewFixed(8, binary.LittleEndian, Options{Padding: padding.Echo})
	w.WriteBytes([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	w.Reset()
	w.WriteU8(0xAA)
	w.Pad(3)
	if !bytes.Equal(w.Bytes(), []byte{0xAA, 2, 3, 4}) {
		t.Fatalf("echo padding should keep stale bytes, got %x", w.Bytes())
	}
}

func TestStrings(t *testing.T) {
	t.Parallel()

	t.Run("fixed utf16", func(t *testing.T) {
		w := NewWriter(binary.LittleEndian, Options{})
		w.WriteString("TEST", 24, UTF16)
		if w.Len() != 48 {
			t.Fatalf("length got %d want 48", w.Len())
		}
		want := append([]byte{'T', 0, 'E', 0, 'S', 0, 'T', 0}, make([]byte, 40)...)
		if !bytes.Equal(w.Bytes(), want) {
			t.Fatalf("bytes got %x", w.Bytes())
		}
		r := NewReader(w.Bytes(), binary.LittleEndian, Options{})
		if s := r.ReadString(24, UTF16); s != "TEST" {
			t.Fatalf("read got %q", s)
		}
		if r.Pos() != 48 {
			t.Fatalf("cursor got %d want 48", r.Pos())
		}
	})

	t.Run("big-endian utf16", func(t *testing.T) {
		w := NewWriter(binary.BigEndian, Options{})
		w.WriteString("Hi", 3, UTF16)
		if !bytes.Equal(w.Bytes(), []byte{0, 'H', 0, 'i', 0, 0}) {
			t.Fatalf("bytes got %x", w.Bytes())
		}
	})

	t.Run("truncation keeps terminator", func(t *testing.T) {
		w := NewWriter(binary.LittleEndian, Options{})
		w.WriteString("ABCDEFGH", 4, ASCII)
		if !bytes.Equal(w.Bytes(), []byte{'A', 'B', 'C', 0}) {
			t.Fatalf("bytes got %q", w.Bytes())
		}
	})

	t.Run("early terminator still advances maxLen", func(t *testing.T) {
		r := NewReader([]byte{'a', 'b', 0, 'z', 'z', 'z', 7}, binary.LittleEndian, Options{})
		if s := r.ReadString(6, ASCII); s != "ab" {
			t.Fatalf("got %q", s)
		}
		if r.Pos() != 6 {
			t.Fatalf("cursor got %d want 6", r.Pos())
		}
	})

	t.Run("null terminated", func(t *testing.T) {
		r := NewReader([]byte{'g', 'o', 0, 'x'}, binary.LittleEndian, Options{})
		if s := r.ReadString(0, ASCII); s != "go" {
			t.Fatalf("got %q", s)
		}
		if r.Pos() != 3 {
			t.Fatalf("cursor got %d want 3", r.Pos())
		}
		w := NewWriter(binary.LittleEndian, Options{})
		w.WriteString("go", 0, UTF16)
		if w.Len() != 6 {
			t.Fatalf("utf16 null-terminated length got %d", w.Len())
		}
	})

	t.Run("missing terminator", func(t *testing.T) {
		r := NewReader([]byte{'a', 'b'}, binary.LittleEndian, Options{})
		r.ReadString(0, ASCII)
		if !errors.Is(r.Err(), ErrOutOfData) {
			t.Fatalf("expected ErrOutOfData, got %v", r.Err())
		}
	})

	t.Run("truncation keeps surrogate pairs whole", func(t *testing.T) {
		w := NewWriter(binary.LittleEndian, Options{})
		// The emoji's high surrogate would be the last unit before the
		// terminator.
		w.WriteString("ab\U0001F600", 4, UTF16)
		if !bytes.Equal(w.Bytes(), []byte{'a', 0, 'b', 0, 0, 0, 0, 0}) {
			t.Fatalf("bytes got %x", w.Bytes())
		}
		r := NewReader(w.Bytes(), binary.LittleEndian, Options{})
		if s := r.ReadString(4, UTF16); s != "ab" {
			t.Fatalf("read got %q", s)
		}

		w = NewWriter(binary.BigEndian, Options{})
		w.WriteString("a\U0001F600z", 4, UTF16)
		r = NewReader(w.Bytes(), binary.BigEndian, Options{})
		if s := r.ReadString(4, UTF16); s != "a\U0001F600" {
			t.Fatalf("a pair that fits should survive, got %q", s)
		}
	})

	t.Run("negative length", func(t *testing.T) {
		w := NewWriter(binary.LittleEndian, Options{})
		w.WriteString("x", -1, ASCII)
		if !errors.Is(w.Err(), ErrNegativeLength) || w.Len() != 0 {
			t.Fatalf("write: err %v len %d", w.Err(), w.Len())
		}
		w.WriteU8(1)
		if w.Len() != 0 {
			t.Fatalf("error should be sticky, wrote %d bytes", w.Len())
		}

		r := NewReader([]byte{'a', 0}, binary.LittleEndian, Options{})
		if s := r.ReadString(-2, UTF16); s != "" || !errors.Is(r.Err(), ErrNegativeLength) {
			t.Fatalf("read: got %q err %v", s, r.Err())
		}
		if r.Pos() != 0 {
			t.Fatalf("cursor moved to %d", r.Pos())
		}
	})

	t.Run("windows-1252", func(t *testing.T) {
		w := NewWriter(binary.LittleEndian, Options{})
		w.WriteString("café", 8, ASCII)
		if w.Bytes()[3] != 0xE9 {
			t.Fatalf("é should encode as 0xE9, got %x", w.Bytes())
		}
		r := NewReader(w.Bytes(), binary.LittleEndian, Options{})
		if s := r.ReadString(8, ASCII); s != "café" {
			t.Fatalf("got %q", s)
		}
	})
}

func TestPrimitiveArrays(t *testing.T) {
	t.Parallel()

	w := NewWriter(binary.LittleEndian, Options{})
	w.WriteInt32s([]int32{-1, 2}, 3)
	w.WriteFloat32s([]float32{0.5, 1, 2, 3}, 2)
	w.WriteFixedBytes([]byte{1, 2, 3}, 2)
	if w.Len() != 12+8+2 {
		t.Fatalf("length got %d", w.Len())
	}
	r := NewReader(w.Bytes(), binary.LittleEndian, Options{})
	ints := r.ReadInt32s(3)
	if ints[0] != -1 || ints[1] != 2 || ints[2] != 0 {
		t.Fatalf("ints got %v", ints)
	}
	floats := r.ReadFloat32s(2)
	if floats[0] != 0.5 || floats[1] != 1 {
		t.Fatalf("floats got %v", floats)
	}
	if got := r.ReadBytes(2); !bytes.Equal(got, []byte{1, 2}) {
		t.Fatalf("bytes got %v", got)
	}
}

func TestStickyErrorKeepsFirst(t *testing.T) {
	t.Parallel()

	w := NewFixed(2, binary.LittleEndian, Options{})
	w.WriteU32(1)
	first := w.Err()
	w.Fail(errors.New("later"))
	if w.Err() != first {
		t.Fatalf("first error was replaced: %v", w.Err())
	}
	w.Reset()
	if w.Err() != nil {
		t.Fatalf("Reset should clear the error")
	}
	if !strings.Contains(first.Error(), "capacity 2") {
		t.Fatalf("error should name the capacity: %v", first)
	}
}

func TestOptionsDefaults(t *testing.T) {
	t.Parallel()

	b := NewWriter(nil, Options{Log: logger.JSON(&bytes.Buffer{}, slog.LevelInfo)})
	if b.Order() != binary.LittleEndian {
		t.Fatalf("nil order should default to little-endian")
	}
	if b.Options().Padding != padding.Zero {
		t.Fatalf("nil padding should default to zero")
	}
}

func TestScratchAndPatch(t *testing.T) {
	t.Parallel()

	backing := []byte{9, 9, 9, 9, 9, 9, 9, 9}
	b := NewScratch(backing, binary.LittleEndian, Options{Padding: padding.Echo})
	b.WriteU32(0)
	b.Pad(2)
	b.PutU32At(0, 0x01020304)
	if !bytes.Equal(b.Bytes(), []byte{4, 3, 2, 1, 9, 9}) {
		t.Fatalf("bytes got %x", b.Bytes())
	}
	if b.Pos() != 6 {
		t.Fatalf("patch moved the cursor to %d", b.Pos())
	}
	b.WriteU32(0)
	if !errors.Is(b.Err(), ErrBufferFull) {
		t.Fatalf("scratch capacity should bound writes, got %v", b.Err())
	}
}
