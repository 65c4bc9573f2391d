// Package bin implements the cursor-addressed byte buffer every save layout
// is read from and written to.
//
// A Buffer has a fixed byte order chosen at construction. Reads and writes
// never return errors individually: the first failure is recorded and every
// later operation becomes a no-op that yields zero values. Callers check Err
// once at the end of a unit of work.
package bin

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/samcharles93/savekit/internal/logger"
	"github.com/samcharles93/savekit/pkg/padding"
)

const alignment = 4

// Align4 rounds n up to the next multiple of four.
func Align4(n int) int {
	return (n + alignment - 1) &^ (alignment - 1)
}

// Options carries the collaborators a Buffer consults while working.
type Options struct {
	// Padding produces filler for alignment gaps on write. Nil means padding.Zero.
	Padding padding.Policy
	// Strict turns entity size mismatches into errors instead of warnings.
	Strict bool
	// Log receives lenient-mode warnings. Nil means logger.Discard().
	Log logger.Logger
}

// Buffer is a cursor over a byte slice.
//
// Fixed buffers (NewReader, NewFixed) never grow: reading past the logical
// length fails with ErrOutOfData and writing past the capacity fails with
// ErrBufferFull. Growable buffers (NewWriter) extend on write.
type Buffer struct {
	data     []byte
	pos      int
	mark     int
	limit    int
	growable bool
	order    binary.ByteOrder

	pad    padding.Policy
	strict bool
	log    logger.Logger

	err error
}

// NewReader wraps data for reading. The buffer is fixed at len(data); writes
// overwrite data in place.
func NewReader(data []byte, order binary.ByteOrder, opts Options) *Buffer {
	b := newBuffer(order, opts)
	b.data = data
	b.limit = len(data)
	return b
}

// NewFixed returns an empty buffer that accepts at most capacity bytes.
func NewFixed(capacity int, order binary.ByteOrder, opts Options) *Buffer {
	b := newBuffer(order, opts)
	b.data = make([]byte, 0, capacity)
	b.limit = capacity
	return b
}

// NewScratch returns an empty fixed buffer over backing's full capacity.
// The bytes already in backing stay visible to padding policies as the
// buffer is written.
func NewScratch(backing []byte, order binary.ByteOrder, opts Options) *Buffer {
	b := newBuffer(order, opts)
	b.data = backing[:0]
	b.limit = cap(backing)
	return b
}

// NewWriter returns an empty growable buffer.
func NewWriter(order binary.ByteOrder, opts Options) *Buffer {
	b := newBuffer(order, opts)
	b.growable = true
	b.limit = -1
	return b
}

func newBuffer(order binary.ByteOrder, opts Options) *Buffer {
	if order == nil {
		order = binary.LittleEndian
	}
	b := &Buffer{
		order:  order,
		pad:    opts.Padding,
		strict: opts.Strict,
		log:    opts.Log,
	}
	if b.pad == nil {
		b.pad = padding.Zero
	}
	if b.log == nil {
		b.log = logger.Discard()
	}
	return b
}

// Options returns the options the buffer was built with, for creating
// sub-buffers that behave the same way.
func (b *Buffer) Options() Options {
	return Options{Padding: b.pad, Strict: b.strict, Log: b.log}
}

func (b *Buffer) Order() binary.ByteOrder { return b.order }

// Err returns the first error recorded by the buffer.
func (b *Buffer) Err() error { return b.err }

// Fail records err unless an earlier error is already recorded.
func (b *Buffer) Fail(err error) {
	if b.err == nil && err != nil {
		b.err = err
	}
}

// Pos returns the cursor position relative to the buffer start.
func (b *Buffer) Pos() int { return b.pos }

// Len returns the logical length.
func (b *Buffer) Len() int { return len(b.data) }

// Remaining returns the number of bytes between the cursor and the logical end.
func (b *Buffer) Remaining() int { return len(b.data) - b.pos }

// Bytes returns the logical contents. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte { return b.data }

// Seek moves the cursor to an absolute position within the logical length.
func (b *Buffer) Seek(pos int) {
	if b.err != nil {
		return
	}
	if pos < 0 || pos > len(b.data) {
		b.Fail(fmt.Errorf("%w: seek to %d outside [0,%d]", ErrOutOfData, pos, len(b.data)))
		return
	}
	b.pos = pos
}

// Reset empties the buffer and clears its error, keeping the backing array.
// Bytes from earlier use remain in the spare capacity, which the Echo padding
// policy relies on.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
	b.pos = 0
	b.mark = 0
	b.err = nil
}

// Mark sets the mark register to the cursor.
func (b *Buffer) Mark() { b.mark = b.pos }

// Offset returns the distance from the mark to the cursor.
func (b *Buffer) Offset() int { return b.pos - b.mark }

// next returns the n bytes under the cursor for reading and advances.
func (b *Buffer) next(n int) []byte {
	if b.err != nil {
		return nil
	}
	if n < 0 || b.pos+n > len(b.data) {
		b.Fail(fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrOutOfData, n, b.pos, len(b.data)-b.pos))
		return nil
	}
	p := b.data[b.pos : b.pos+n]
	b.pos += n
	return p
}

// reserve returns n writable bytes under the cursor and advances. Bytes that
// extend the logical length keep whatever the backing array held.
func (b *Buffer) reserve(n int) []byte {
	if b.err != nil {
		return nil
	}
	end := b.pos + n
	if n < 0 {
		b.Fail(fmt.Errorf("%w: negative write of %d bytes", ErrBufferFull, n))
		return nil
	}
	if !b.growable && end > b.limit {
		b.Fail(fmt.Errorf("%w: need %d bytes at offset %d, capacity %d", ErrBufferFull, n, b.pos, b.limit))
		return nil
	}
	if end > len(b.data) {
		if end > cap(b.data) {
			b.data = slices.Grow(b.data, end-len(b.data))
		}
		b.data = b.data[:end]
	}
	p := b.data[b.pos:end]
	b.pos = end
	return p
}

// Skip advances the read cursor by n bytes without inspecting them.
func (b *Buffer) Skip(n int) {
	b.next(n)
}

// Pad writes n filler bytes produced by the padding policy.
func (b *Buffer) Pad(n int) {
	if p := b.reserve(n); p != nil {
		b.pad.Fill(p)
	}
}

// ReadAlign4 skips to the next multiple of four.
func (b *Buffer) ReadAlign4() {
	b.Skip(Align4(b.pos) - b.pos)
}

// WriteAlign4 pads to the next multiple of four.
func (b *Buffer) WriteAlign4() {
	b.Pad(Align4(b.pos) - b.pos)
}

func (b *Buffer) ReadU8() uint8 {
	p := b.next(1)
	if p == nil {
		return 0
	}
	return p[0]
}

func (b *Buffer) ReadI8() int8 { return int8(b.ReadU8()) }

func (b *Buffer) ReadU16() uint16 {
	p := b.next(2)
	if p == nil {
		return 0
	}
	return b.order.Uint16(p)
}

func (b *Buffer) ReadI16() int16 { return int16(b.ReadU16()) }

func (b *Buffer) ReadU32() uint32 {
	p := b.next(4)
	if p == nil {
		return 0
	}
	return b.order.Uint32(p)
}

func (b *Buffer) ReadI32() int32 { return int32(b.ReadU32()) }

func (b *Buffer) ReadU64() uint64 {
	p := b.next(8)
	if p == nil {
		return 0
	}
	return b.order.Uint64(p)
}

func (b *Buffer) ReadI64() int64 { return int64(b.ReadU64()) }

func (b *Buffer) ReadF32() float32 { return math.Float32frombits(b.ReadU32()) }

func (b *Buffer) ReadF64() float64 { return math.Float64frombits(b.ReadU64()) }

// ReadBool reads a width-byte boolean, true when any bit of any byte is set.
func (b *Buffer) ReadBool(width int) bool {
	for _, c := range b.next(width) {
		if c != 0 {
			return true
		}
	}
	return false
}

// ReadBytes returns a copy of the next n bytes.
func (b *Buffer) ReadBytes(n int) []byte {
	p := b.next(n)
	if p == nil {
		return nil
	}
	return slices.Clone(p)
}

func (b *Buffer) WriteU8(v uint8) {
	if p := b.reserve(1); p != nil {
		p[0] = v
	}
}

func (b *Buffer) WriteI8(v int8) { b.WriteU8(uint8(v)) }

func (b *Buffer) WriteU16(v uint16) {
	if p := b.reserve(2); p != nil {
		b.order.PutUint16(p, v)
	}
}

func (b *Buffer) WriteI16(v int16) { b.WriteU16(uint16(v)) }

func (b *Buffer) WriteU32(v uint32) {
	if p := b.reserve(4); p != nil {
		b.order.PutUint32(p, v)
	}
}

func (b *Buffer) WriteI32(v int32) { b.WriteU32(uint32(v)) }

func (b *Buffer) WriteU64(v uint64) {
	if p := b.reserve(8); p != nil {
		b.order.PutUint64(p, v)
	}
}

func (b *Buffer) WriteI64(v int64) { b.WriteU64(uint64(v)) }

func (b *Buffer) WriteF32(v float32) { b.WriteU32(math.Float32bits(v)) }

func (b *Buffer) WriteF64(v float64) { b.WriteU64(math.Float64bits(v)) }

// WriteBool writes v as an integer 0 or 1 spanning width bytes.
func (b *Buffer) WriteBool(v bool, width int) {
	var n uint64
	if v {
		n = 1
	}
	switch width {
	case 1:
		b.WriteU8(uint8(n))
	case 2:
		b.WriteU16(uint16(n))
	case 4:
		b.WriteU32(uint32(n))
	case 8:
		b.WriteU64(n)
	default:
		p := b.reserve(width)
		if p == nil {
			return
		}
		clear(p)
		if v {
			if b.order == binary.BigEndian {
				p[len(p)-1] = 1
			} else {
				p[0] = 1
			}
		}
	}
}

// PutU32At overwrites four bytes at pos without moving the cursor. pos must
// lie within the logical length.
func (b *Buffer) PutU32At(pos int, v uint32) {
	if b.err != nil {
		return
	}
	if pos < 0 || pos+4 > len(b.data) {
		b.Fail(fmt.Errorf("%w: patch at %d outside [0,%d]", ErrOutOfData, pos, len(b.data)))
		return
	}
	b.order.PutUint32(b.data[pos:], v)
}

// WriteBytes copies p under the cursor.
func (b *Buffer) WriteBytes(p []byte) {
	if dst := b.reserve(len(p)); dst != nil {
		copy(dst, p)
	}
}

// fits checks that count elements of width bytes remain before allocating
// room for them.
func (b *Buffer) fits(count, width int) bool {
	if b.err != nil {
		return false
	}
	if count < 0 || count > b.Remaining()/width {
		b.Fail(fmt.Errorf("%w: %d elements of %d bytes at offset %d, have %d bytes", ErrOutOfData, count, width, b.pos, b.Remaining()))
		return false
	}
	return true
}

// ReadInt32s reads count 32-bit signed integers.
func (b *Buffer) ReadInt32s(count int) []int32 {
	if !b.fits(count, 4) {
		return nil
	}
	out := make([]int32, count)
	for i := range out {
		out[i] = b.ReadI32()
	}
	return out
}

// WriteInt32s writes exactly count values, zero-filling past len(v).
func (b *Buffer) WriteInt32s(v []int32, count int) {
	for i := 0; i < count; i++ {
		var x int32
		if i < len(v) {
			x = v[i]
		}
		b.WriteI32(x)
	}
}

func (b *Buffer) ReadUint32s(count int) []uint32 {
	if !b.fits(count, 4) {
		return nil
	}
	out := make([]uint32, count)
	for i := range out {
		out[i] = b.ReadU32()
	}
	return out
}

func (b *Buffer) WriteUint32s(v []uint32, count int) {
	for i := 0; i < count; i++ {
		var x uint32
		if i < len(v) {
			x = v[i]
		}
		b.WriteU32(x)
	}
}

func (b *Buffer) ReadFloat32s(count int) []float32 {
	if !b.fits(count, 4) {
		return nil
	}
	out := make([]float32, count)
	for i := range out {
		out[i] = b.ReadF32()
	}
	return out
}

func (b *Buffer) WriteFloat32s(v []float32, count int) {
	for i := 0; i < count; i++ {
		var x float32
		if i < len(v) {
			x = v[i]
		}
		b.WriteF32(x)
	}
}

func (b *Buffer) ReadInt16s(count int) []int16 {
	if !b.fits(count, 2) {
		return nil
	}
	out := make([]int16, count)
	for i := range out {
		out[i] = b.ReadI16()
	}
	return out
}

func (b *Buffer) WriteInt16s(v []int16, count int) {
	for i := 0; i < count; i++ {
		var x int16
		if i < len(v) {
			x = v[i]
		}
		b.WriteI16(x)
	}
}

// WriteFixedBytes writes exactly n bytes from p, zero-filling or truncating.
func (b *Buffer) WriteFixedBytes(p []byte, n int) {
	dst := b.reserve(n)
	if dst == nil {
		return
	}
	c := copy(dst, p)
	clear(dst[c:])
}
