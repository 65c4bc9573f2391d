// Package save assembles registered data buckets into a complete save file and
// takes one apart again.
//
// A file is a sequence of outer blocks followed by a 32-bit checksum. Each
// registered bucket starts a new outer block unless it is nested, in which
// case it is appended to the previous bucket's block as a tagged sub-block.
// After the buckets come up to Layout.PaddingBlocks padding blocks that bring
// the summed payload lengths to the format's fixed total.
package save

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync/atomic"

	"github.com/samcharles93/savekit/internal/logger"
	"github.com/samcharles93/savekit/pkg/bin"
	"github.com/samcharles93/savekit/pkg/block"
	"github.com/samcharles93/savekit/pkg/format"
	"github.com/samcharles93/savekit/pkg/padding"
	"github.com/samcharles93/savekit/pkg/sniff"
)

const checksumSize = 4

const defaultWorkSize = 1 << 16

// Options configures Load and Save.
type Options struct {
	// Strict makes size mismatches between a bucket's declared size and the
	// bytes it moved fatal. Otherwise they are logged and tolerated.
	Strict bool
	// StrictChecksum makes a bad trailing checksum fatal on load. Otherwise
	// it is logged.
	StrictChecksum bool
	// Padding fills alignment gaps and padding blocks. Nil means padding.Echo.
	Padding padding.Policy
	// Logger receives lenient-mode warnings and debug traces. Nil discards.
	Logger logger.Logger
}

// Layout is the static description of one game's file structure.
type Layout struct {
	Name      string
	Catalogue format.Catalogue
	Sniffer   *sniff.Sniffer
	// PayloadTotal returns the sum of every outer block's length prefix that
	// a file in format f must reach.
	PayloadTotal func(f format.Format) int
	// PaddingBlocks is the number of padding blocks written on save and the
	// most accepted on load.
	PaddingBlocks int
	// WorkSize bounds the payload of a single outer block.
	WorkSize int
}

// Bucket binds a named entity to its place in the file.
type Bucket struct {
	Name string
	// Tag, when set, frames the bucket's block with a four-byte tag.
	Tag string
	// Nested places the bucket inside the previous bucket's outer block as a
	// tag and inner length with no outer length prefix. Nested buckets need a
	// Tag.
	Nested bool
	Entity bin.Entity
}

// File is the save-file aggregate: the registered buckets, the active format
// and the scratch state reused across saves. A File must not be loaded or
// saved from more than one goroutine at a time; overlapping calls fail with
// ErrBusy.
type File struct {
	layout *Layout
	opts   Options
	log    logger.Logger

	busy    atomic.Bool
	buckets []Bucket
	format  format.Format
	sum     *block.Checksum
	scratch []byte
}

func New(layout *Layout, opts Options) *File {
	if opts.Padding == nil {
		opts.Padding = padding.Echo
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	work := layout.WorkSize
	if work <= 0 {
		work = defaultWorkSize
	}
	return &File{
		layout:  layout,
		opts:    opts,
		log:     opts.Logger,
		sum:     block.NewChecksum(),
		scratch: make([]byte, 0, work),
	}
}

func (f *File) Layout() *Layout { return f.layout }

func (f *File) Options() Options { return f.opts }

// Format returns the format of the last successful load, or the zero Format.
func (f *File) Format() format.Format { return f.format }

// SetFormat sets the format Save falls back to when given the zero Format.
func (f *File) SetFormat(fm format.Format) { f.format = fm }

// Register appends buckets in file order.
func (f *File) Register(buckets ...Bucket) error {
	if !f.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer f.busy.Store(false)

	for _, b := range buckets {
		switch {
		case b.Entity == nil:
			return fmt.Errorf("save: bucket %q has no entity", b.Name)
		case b.Nested && b.Tag == "":
			return fmt.Errorf("save: nested bucket %q needs a tag", b.Name)
		case b.Nested && len(f.buckets) == 0:
			return fmt.Errorf("save: nested bucket %q has no enclosing block", b.Name)
		case len(b.Tag) > block.TagSize:
			return fmt.Errorf("save: bucket %q tag %q is longer than %d bytes", b.Name, b.Tag, block.TagSize)
		}
		f.buckets = append(f.buckets, b)
	}
	return nil
}

// Buckets returns a snapshot of the registered buckets.
func (f *File) Buckets() []Bucket {
	return slices.Clone(f.buckets)
}

// Entity returns the entity registered under name.
func (f *File) Entity(name string) (bin.Entity, bool) {
	for _, b := range f.buckets {
		if b.Name == name {
			return b.Entity, true
		}
	}
	return nil, false
}

// OuterBlocks returns the number of outer blocks the buckets occupy,
// excluding padding.
func (f *File) OuterBlocks() int {
	return len(groups(f.buckets))
}

func (f *File) bufferOptions() bin.Options {
	return bin.Options{Padding: f.opts.Padding, Strict: f.opts.Strict, Log: f.log}
}

func (f *File) sniffer() *sniff.Sniffer {
	s := *f.layout.Sniffer
	s.Log = f.log
	return &s
}

// resolve maps fm to its catalogue entry so IDs and labels survive.
func (f *File) resolve(fm format.Format) (format.Format, error) {
	if fm.IsZero() {
		return fm, fmt.Errorf("%w: no format given", ErrUnsupported)
	}
	if len(f.layout.Catalogue) == 0 {
		return fm, nil
	}
	entry, ok := f.layout.Catalogue.Lookup(fm)
	if !ok {
		return fm, fmt.Errorf("%w: %s is not a %s format", ErrUnsupported, fm, f.layout.Name)
	}
	return entry, nil
}

// groups splits buckets into outer blocks.
func groups(buckets []Bucket) [][]Bucket {
	var out [][]Bucket
	for _, b := range buckets {
		if b.Nested && len(out) > 0 {
			out[len(out)-1] = append(out[len(out)-1], b)
			continue
		}
		out = append(out, []Bucket{b})
	}
	return out
}

// Detect sniffs the format of data without decoding it.
func (f *File) Detect(data []byte) (sniff.Result, error) {
	if f.layout.Sniffer == nil {
		return sniff.Result{}, failure(PhaseSniff, fmt.Errorf("%w: %s has no sniffer", sniff.ErrUnrecognizedFormat, f.layout.Name))
	}
	res, err := f.sniffer().Sniff(data)
	if err != nil {
		return res, failure(PhaseSniff, err)
	}
	if entry, ok := f.layout.Catalogue.Lookup(res.Format); ok {
		res.Format = entry
	}
	return res, nil
}

// Load detects the format of data and decodes every bucket from it.
// Entities are decoded in place and must replace all of their state.
func (f *File) Load(data []byte) error {
	return f.load(data, format.Format{}, true)
}

// LoadAs decodes data as format fm without sniffing.
func (f *File) LoadAs(data []byte, fm format.Format) error {
	return f.load(data, fm, false)
}

func (f *File) load(data []byte, fm format.Format, detect bool) error {
	if !f.busy.CompareAndSwap(false, true) {
		return failure(PhaseDecode, ErrBusy)
	}
	defer f.busy.Store(false)

	if len(data) < block.HeaderSize+checksumSize {
		return failure(PhaseFraming, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data)))
	}
	if detect {
		res, err := f.Detect(data)
		if err != nil {
			return err
		}
		fm = res.Format
	}
	fm, err := f.resolve(fm)
	if err != nil {
		return failure(PhaseDecode, err)
	}

	order := fm.ByteOrder()
	body := data[:len(data)-checksumSize]
	stored := order.Uint32(data[len(body):])
	if computed := block.Sum32(body); computed != stored {
		err := fmt.Errorf("%w: stored %#08x, computed %#08x", ErrChecksumMismatch, stored, computed)
		if f.opts.StrictChecksum {
			return &Error{Phase: PhaseChecksum, Block: -1, Offset: len(body), Err: err}
		}
		f.log.Warn("checksum mismatch", "format", fm.String(), "stored", stored, "computed", computed)
	}

	// Buckets decode into fresh values and replace the registered state
	// only once the whole file has been accepted.
	staged := slices.Clone(f.buckets)
	commits := make([]func(), len(staged))
	for i := range staged {
		staged[i].Entity, commits[i] = stage(staged[i].Entity)
	}

	r := bin.NewReader(body, order, f.bufferOptions())
	gs := groups(staged)
	for i, g := range gs {
		if err := f.readGroup(r, i, g, fm); err != nil {
			return err
		}
	}

	pads := 0
	var seed []byte
	for r.Remaining() > 0 {
		index, at := len(gs)+pads, r.Pos()
		if pads == f.layout.PaddingBlocks {
			return &Error{Phase: PhaseFraming, Block: index, Offset: at,
				Err: fmt.Errorf("%w: more than %d padding blocks", block.ErrMalformedBlock, f.layout.PaddingBlocks)}
		}
		payload, err := block.Read(r, "")
		if err != nil {
			return framingError(index, "", at, err)
		}
		if pads == 0 {
			seed = payload
		}
		pads++
	}

	for _, commit := range commits {
		commit()
	}
	if pads > 0 {
		f.scratch = f.scratch[:0]
		copy(f.scratch[:cap(f.scratch)], seed)
	}
	f.format = fm
	f.log.Debug("loaded save", "format", fm.String(), "blocks", len(gs), "padding_blocks", pads)
	return nil
}

func (f *File) readGroup(r *bin.Buffer, index int, g []Bucket, fm format.Format) error {
	at := r.Pos()
	head := g[0]
	payload, err := block.Read(r, head.Tag)
	if err != nil {
		return framingError(index, head.Name, at, err)
	}
	base := at + block.HeaderSize
	if head.Tag != "" {
		base += block.TagOverhead
	}

	sub := bin.NewReader(payload, r.Order(), f.bufferOptions())
	for _, b := range g {
		start := sub.Pos()
		if !b.Nested {
			sub.ReadEntity(b.Entity, fm)
			if err := sub.Err(); err != nil {
				return &Error{Phase: PhaseDecode, Block: index, Bucket: b.Name, Offset: base + start, Err: err}
			}
			continue
		}

		n, err := block.ReadTag(sub, b.Tag)
		if err != nil {
			return framingError(index, b.Name, base+start, err)
		}
		start = sub.Pos()
		sub.ReadEntity(b.Entity, fm)
		if err := sub.Err(); err != nil {
			return &Error{Phase: PhaseDecode, Block: index, Bucket: b.Name, Offset: base + start, Err: err}
		}
		if got := sub.Pos() - start; got != n {
			if err := f.mismatch(b.Name, fm, n, got); err != nil {
				return &Error{Phase: PhaseDecode, Block: index, Bucket: b.Name, Offset: base + start, Err: err}
			}
			sub.Seek(start + n)
		}
	}

	if sub.Remaining() > 0 {
		last := g[len(g)-1]
		if err := f.mismatch(last.Name, fm, len(payload), sub.Pos()); err != nil {
			return &Error{Phase: PhaseDecode, Block: index, Bucket: last.Name, Offset: base + sub.Pos(), Err: err}
		}
	}
	return nil
}

// stage returns a zero value of e's concrete type to decode into and a
// commit that copies it over e. Entities that are not pointers decode in
// place.
func stage(e bin.Entity) (bin.Entity, func()) {
	v := reflect.ValueOf(e)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return e, func() {}
	}
	fresh := reflect.New(v.Type().Elem())
	return fresh.Interface().(bin.Entity), func() { v.Elem().Set(fresh.Elem()) }
}

// mismatch reports a block whose declared length disagrees with the bytes
// its buckets consumed.
func (f *File) mismatch(bucket string, fm format.Format, declared, actual int) error {
	err := &bin.SizeMismatchError{Entity: bucket, Op: "read", Format: fm, Declared: declared, Actual: actual}
	if f.opts.Strict {
		return err
	}
	f.log.Warn("block size mismatch",
		"bucket", bucket,
		"format", fm.String(),
		"declared", declared,
		"actual", actual,
	)
	return nil
}

func framingError(index int, bucket string, at int, err error) *Error {
	if errors.Is(err, bin.ErrOutOfData) {
		err = fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	return &Error{Phase: PhaseFraming, Block: index, Bucket: bucket, Offset: at, Err: err}
}

// Save encodes every bucket in format fm. The zero Format means the format
// of the last load or SetFormat. The checksum and work buffer are reset on
// every call; the work buffer keeps its old contents, which the Echo policy
// writes back out as padding.
func (f *File) Save(fm format.Format) ([]byte, error) {
	if !f.busy.CompareAndSwap(false, true) {
		return nil, failure(PhaseEncode, ErrBusy)
	}
	defer f.busy.Store(false)

	if fm.IsZero() {
		fm = f.format
	}
	fm, err := f.resolve(fm)
	if err != nil {
		return nil, failure(PhaseEncode, err)
	}

	order := fm.ByteOrder()
	opts := f.bufferOptions()
	f.sum.Reset()
	work := bin.NewScratch(f.scratch, order, opts)
	out := bin.NewWriter(order, opts)

	used := 0
	gs := groups(slices.Clone(f.buckets))
	for i, g := range gs {
		work.Reset()
		header := block.HeaderSize
		if g[0].Tag != "" {
			header += block.TagOverhead
		}
		for _, b := range g {
			start := work.Pos()
			if b.Nested {
				block.WriteTag(work, b.Tag, 0)
				start = work.Pos()
				work.WriteEntity(b.Entity, fm)
				work.PutU32At(start-4, uint32(work.Pos()-start))
			} else {
				work.WriteEntity(b.Entity, fm)
			}
			if err := work.Err(); err != nil {
				if errors.Is(err, bin.ErrBufferFull) {
					err = fmt.Errorf("%w: %w", ErrSizeOverflow, err)
				}
				return nil, &Error{Phase: PhaseEncode, Block: i, Bucket: b.Name, Offset: out.Pos() + header + start, Err: err}
			}
		}
		used += f.emit(out, g[0].Tag, work.Bytes())
	}

	total := f.layout.PayloadTotal(fm)
	remaining := total - used
	if remaining < 0 {
		return nil, &Error{Phase: PhasePadding, Block: len(gs), Offset: out.Pos(),
			Err: fmt.Errorf("%w: payload of %d bytes exceeds the %d-byte total", ErrSizeOverflow, used, total)}
	}
	f.log.Debug("padding save",
		"format", fm.String(),
		"payload", used,
		"padding", remaining,
		"blocks", f.layout.PaddingBlocks,
		"policy", f.opts.Padding.Name(),
	)
	for i := 0; i < f.layout.PaddingBlocks; i++ {
		n := min(remaining, cap(f.scratch))
		remaining -= n
		work.Reset()
		work.Pad(n)
		f.emit(out, "", work.Bytes())
	}
	if remaining > 0 {
		return nil, &Error{Phase: PhasePadding, Block: len(gs), Offset: out.Pos(),
			Err: fmt.Errorf("%w: %d padding bytes do not fit in %d blocks", ErrSizeOverflow, remaining, f.layout.PaddingBlocks)}
	}

	out.WriteU32(f.sum.Sum32())
	if err := out.Err(); err != nil {
		return nil, failure(PhaseEncode, err)
	}
	f.log.Debug("saved", "format", fm.String(), "bytes", out.Len())
	return out.Bytes(), nil
}

// emit frames payload as an outer block, feeds it to the checksum and
// returns the value of its length prefix.
func (f *File) emit(out *bin.Buffer, tag string, payload []byte) int {
	at := out.Pos()
	block.Write(out, tag, payload)
	f.sum.Write(out.Bytes()[at:])
	return block.PayloadLen(tag, payload)
}

// Verification is the outcome of Verify.
type Verification struct {
	Format   format.Format
	Method   sniff.Method
	Stored   uint32
	Computed uint32
	Blocks   []block.Info
	// Payload is the sum of every outer block's length prefix.
	Payload int
}

func (v Verification) OK() bool { return v.Stored == v.Computed }

// Verify detects the format of data, walks its outer blocks and recomputes
// the checksum without decoding any bucket. A checksum mismatch is always
// reported as an error here, whatever StrictChecksum says.
func (f *File) Verify(data []byte) (Verification, error) {
	var v Verification
	if len(data) < block.HeaderSize+checksumSize {
		return v, failure(PhaseFraming, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data)))
	}
	res, err := f.Detect(data)
	if err != nil {
		return v, err
	}
	v.Format, v.Method = res.Format, res.Method

	order := v.Format.ByteOrder()
	body := data[:len(data)-checksumSize]
	v.Blocks, err = block.Walk(data, order, checksumSize)
	if err != nil {
		return v, failure(PhaseFraming, err)
	}
	for _, b := range v.Blocks {
		v.Payload += b.Length
	}
	v.Stored = order.Uint32(data[len(body):])
	v.Computed = block.Sum32(body)
	if !v.OK() {
		return v, &Error{Phase: PhaseChecksum, Block: -1, Offset: len(body),
			Err: fmt.Errorf("%w: stored %#08x, computed %#08x", ErrChecksumMismatch, v.Stored, v.Computed)}
	}
	return v, nil
}
