package save

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/samcharles93/savekit/internal/logger"
	"github.com/samcharles93/savekit/pkg/bin"
	"github.com/samcharles93/savekit/pkg/block"
	"github.com/samcharles93/savekit/pkg/format"
	"github.com/samcharles93/savekit/pkg/padding"
	"github.com/samcharles93/savekit/pkg/sniff"
)

const testSize = 0x0BADF00D

var (
	fmtPC  = format.Format{ID: "pc", Label: "PC", Platforms: format.PC}
	fmtPS2 = format.Format{ID: "ps2", Label: "PS2", Platforms: format.PS2}
)

// globals places the size constant after the counter on PC and before it
// elsewhere, so the two formats fingerprint differently.
type globals struct{ Counter uint32 }

func (g *globals) ReadData(b *bin.Buffer, f format.Format) error {
	if f.IsPC() {
		g.Counter = b.ReadU32()
		b.ReadU32()
	} else {
		b.ReadU32()
		g.Counter = b.ReadU32()
	}
	return b.Err()
}

func (g *globals) WriteData(b *bin.Buffer, f format.Format) error {
	if f.IsPC() {
		b.WriteU32(g.Counter)
		b.WriteU32(testSize)
	} else {
		b.WriteU32(testSize)
		b.WriteU32(g.Counter)
	}
	return b.Err()
}

func (g *globals) Size(format.Format) int { return 8 }

type script struct{ Code []byte }

func (s *script) ReadData(b *bin.Buffer, _ format.Format) error {
	n := b.ReadU32()
	s.Code = b.ReadBytes(int(n))
	return b.Err()
}

func (s *script) WriteData(b *bin.Buffer, _ format.Format) error {
	b.WriteU32(uint32(len(s.Code)))
	b.WriteBytes(s.Code)
	return b.Err()
}

func (s *script) Size(format.Format) int { return 4 + len(s.Code) }

type list struct{ Items []uint32 }

func (l *list) ReadData(b *bin.Buffer, _ format.Format) error {
	l.Items = b.ReadUint32s(int(b.ReadU32()))
	return b.Err()
}

func (l *list) WriteData(b *bin.Buffer, _ format.Format) error {
	b.WriteU32(uint32(len(l.Items)))
	b.WriteUint32s(l.Items, len(l.Items))
	return b.Err()
}

func (l *list) Size(format.Format) int { return 4 + 4*len(l.Items) }

type stats struct {
	Distance float32
	Time     float32
	Kills    int32
}

func (s *stats) ReadData(b *bin.Buffer, _ format.Format) error {
	s.Distance = b.ReadF32()
	s.Time = b.ReadF32()
	s.Kills = b.ReadI32()
	return b.Err()
}

func (s *stats) WriteData(b *bin.Buffer, _ format.Format) error {
	b.WriteF32(s.Distance)
	b.WriteF32(s.Time)
	b.WriteI32(s.Kills)
	return b.Err()
}

func (s *stats) Size(format.Format) int { return 12 }

func testLayout() *Layout {
	return &Layout{
		Name:      "test",
		Catalogue: format.Catalogue{fmtPC, fmtPS2},
		Sniffer: &sniff.Sniffer{
			Probes: []sniff.Probe{
				{Format: fmtPC, SizeConst: testSize, SizeOffset: 8, TagOffset: 12},
				{Format: fmtPS2, SizeConst: testSize, SizeOffset: 4, TagOffset: 12},
			},
			Tag:          "SCR",
			ElementBlock: 1,
			Trailer:      4,
		},
		PayloadTotal:  func(format.Format) int { return 0x400 },
		PaddingBlocks: 2,
		WorkSize:      512,
	}
}

type fixture struct {
	file    *File
	globals *globals
	script  *script
	list    *list
	stats   *stats
}

func newFixture(t *testing.T, layout *Layout, opts Options) *fixture {
	t.Helper()
	fx := &fixture{
		globals: &globals{},
		script:  &script{},
		list:    &list{},
		stats:   &stats{},
	}
	fx.file = New(layout, opts)
	err := fx.file.Register(
		Bucket{Name: "Globals", Entity: fx.globals},
		Bucket{Name: "Script", Tag: "SCR", Nested: true, Entity: fx.script},
		Bucket{Name: "List", Tag: "LST", Entity: fx.list},
		Bucket{Name: "Stats", Entity: fx.stats},
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return fx
}

func (fx *fixture) populate() {
	fx.globals.Counter = 42
	fx.script.Code = []byte{1, 2, 3, 4, 5, 6, 7, 8}
	fx.list.Items = []uint32{10, 20, 30}
	*fx.stats = stats{Distance: 1.5, Time: 300, Kills: 7}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	for _, fm := range []format.Format{fmtPC, fmtPS2} {
		t.Run(fm.ID, func(t *testing.T) {
			src := newFixture(t, testLayout(), Options{Strict: true})
			src.populate()
			data, err := src.file.Save(fm)
			if err != nil {
				t.Fatalf("save: %v", err)
			}
			if want := 0x400 + 4*(3+2) + 4; len(data) != want {
				t.Fatalf("file size: got %d want %d", len(data), want)
			}

			dst := newFixture(t, testLayout(), Options{Strict: true, StrictChecksum: true})
			if err := dst.file.Load(data); err != nil {
				t.Fatalf("load: %v", err)
			}
			if !dst.file.Format().Equal(fm) {
				t.Fatalf("detected format: got %s want %s", dst.file.Format(), fm)
			}
			if dst.globals.Counter != 42 {
				t.Fatalf("globals: got %+v", dst.globals)
			}
			if !bytes.Equal(dst.script.Code, src.script.Code) {
				t.Fatalf("script: got %v", dst.script.Code)
			}
			if !slices.Equal(dst.list.Items, src.list.Items) {
				t.Fatalf("list: got %v", dst.list.Items)
			}
			if *dst.stats != *src.stats {
				t.Fatalf("stats: got %+v want %+v", *dst.stats, *src.stats)
			}
		})
	}
}

func TestFixedSizeRegardlessOfContent(t *testing.T) {
	t.Parallel()

	var sizes []int
	for _, n := range []int{0, 1, 50, 100} {
		fx := newFixture(t, testLayout(), Options{})
		fx.populate()
		fx.list.Items = make([]uint32, n)
		data, err := fx.file.Save(fmtPC)
		if err != nil {
			t.Fatalf("save with %d items: %v", n, err)
		}
		sizes = append(sizes, len(data))

		v, err := fx.file.Verify(data)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if v.Payload != 0x400 {
			t.Fatalf("payload total with %d items: got %#x want 0x400", n, v.Payload)
		}
	}
	for _, s := range sizes[1:] {
		if s != sizes[0] {
			t.Fatalf("file sizes differ: %v", sizes)
		}
	}
}

func TestNestedBlockLayout(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, testLayout(), Options{})
	fx.populate()
	data, err := fx.file.Save(fmtPC)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	le := binary.LittleEndian
	if got := le.Uint32(data[0:]); got != 8+8+12 {
		t.Fatalf("block 0 length: got %d want 28", got)
	}
	if got := le.Uint32(data[8:]); got != testSize {
		t.Fatalf("size constant: got %#x", got)
	}
	if !bytes.Equal(data[12:16], []byte{'S', 'C', 'R', 0}) {
		t.Fatalf("nested tag: got %q", data[12:16])
	}
	if got := le.Uint32(data[16:]); got != 12 {
		t.Fatalf("nested inner length: got %d want 12", got)
	}

	blocks, err := block.Walk(data, le, 4)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if len(blocks) != 5 || blocks[1].Tag != "LST" {
		t.Fatalf("blocks: %+v", blocks)
	}
	if blocks[3].Length != 512 || blocks[4].Length != 0x400-28-24-12-512 {
		t.Fatalf("padding lengths: %d %d", blocks[3].Length, blocks[4].Length)
	}
}

func TestChecksumMismatch(t *testing.T) {
	t.Parallel()

	src := newFixture(t, testLayout(), Options{})
	src.populate()
	data, err := src.file.Save(fmtPC)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	data[len(data)-20] ^= 0xFF

	var logs bytes.Buffer
	lenient := newFixture(t, testLayout(), Options{Logger: logger.JSON(&logs, slog.LevelDebug)})
	if err := lenient.file.Load(data); err != nil {
		t.Fatalf("lenient load: %v", err)
	}
	if !strings.Contains(logs.String(), "checksum mismatch") {
		t.Fatalf("mismatch not logged: %s", logs.String())
	}

	strict := newFixture(t, testLayout(), Options{StrictChecksum: true})
	err = strict.file.Load(data)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
	if PhaseOf(err) != PhaseChecksum {
		t.Fatalf("phase: got %q", PhaseOf(err))
	}

	if _, err := strict.file.Verify(data); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("verify: expected ErrChecksumMismatch, got %v", err)
	}
}

func TestLoadTruncated(t *testing.T) {
	t.Parallel()

	src := newFixture(t, testLayout(), Options{})
	src.populate()
	data, err := src.file.Save(fmtPC)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	for _, n := range []int{0, 6, 100} {
		fx := newFixture(t, testLayout(), Options{})
		err := fx.file.Load(data[:n])
		if !errors.Is(err, ErrTruncated) {
			t.Fatalf("%d bytes: expected ErrTruncated, got %v", n, err)
		}
		if PhaseOf(err) != PhaseFraming {
			t.Fatalf("%d bytes: phase %q", n, PhaseOf(err))
		}
	}
}

func TestLoadUnrecognized(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, testLayout(), Options{})
	err := fx.file.Load(make([]byte, 64))
	if !errors.Is(err, sniff.ErrUnrecognizedFormat) {
		t.Fatalf("expected ErrUnrecognizedFormat, got %v", err)
	}
	if PhaseOf(err) != PhaseSniff {
		t.Fatalf("phase: got %q", PhaseOf(err))
	}
}

func TestLoadRejectsExtraPadding(t *testing.T) {
	t.Parallel()

	src := newFixture(t, testLayout(), Options{})
	src.populate()
	data, err := src.file.Save(fmtPC)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	body := slices.Clone(data[:len(data)-4])
	body = append(body, 0, 0, 0, 0)
	body = binary.LittleEndian.AppendUint32(body, block.Sum32(body))

	fx := newFixture(t, testLayout(), Options{})
	err = fx.file.Load(body)
	if !errors.Is(err, block.ErrMalformedBlock) {
		t.Fatalf("expected ErrMalformedBlock, got %v", err)
	}
	var se *Error
	if !errors.As(err, &se) || se.Block != 5 {
		t.Fatalf("error should name block 5: %v", err)
	}
}

func TestSizeOverflow(t *testing.T) {
	t.Parallel()

	t.Run("block exceeds work buffer", func(t *testing.T) {
		fx := newFixture(t, testLayout(), Options{})
		fx.populate()
		fx.list.Items = make([]uint32, 200)
		_, err := fx.file.Save(fmtPC)
		if !errors.Is(err, ErrSizeOverflow) || PhaseOf(err) != PhaseEncode {
			t.Fatalf("expected encode ErrSizeOverflow, got %v", err)
		}
		var se *Error
		if !errors.As(err, &se) || se.Bucket != "List" {
			t.Fatalf("error should name the bucket: %v", err)
		}
	})

	t.Run("payload exceeds total", func(t *testing.T) {
		layout := testLayout()
		layout.PayloadTotal = func(format.Format) int { return 32 }
		fx := newFixture(t, layout, Options{})
		fx.populate()
		_, err := fx.file.Save(fmtPC)
		if !errors.Is(err, ErrSizeOverflow) || PhaseOf(err) != PhasePadding {
			t.Fatalf("expected padding ErrSizeOverflow, got %v", err)
		}
	})

	t.Run("padding does not fit", func(t *testing.T) {
		layout := testLayout()
		layout.PaddingBlocks = 1
		fx := newFixture(t, layout, Options{})
		fx.populate()
		_, err := fx.file.Save(fmtPC)
		if !errors.Is(err, ErrSizeOverflow) || PhaseOf(err) != PhasePadding {
			t.Fatalf("expected padding ErrSizeOverflow, got %v", err)
		}
	})
}

// skewed declares more bytes than it writes.
type skewed struct{ V uint32 }

func (s *skewed) ReadData(b *bin.Buffer, _ format.Format) error {
	s.V = b.ReadU32()
	return b.Err()
}

func (s *skewed) WriteData(b *bin.Buffer, _ format.Format) error {
	b.WriteU32(s.V)
	return b.Err()
}

func (s *skewed) Size(format.Format) int { return 8 }

func TestEntitySizeMismatch(t *testing.T) {
	t.Parallel()

	build := func(opts Options) *File {
		f := New(testLayout(), opts)
		err := f.Register(
			Bucket{Name: "Globals", Entity: &globals{}},
			Bucket{Name: "Script", Tag: "SCR", Nested: true, Entity: &script{}},
			Bucket{Name: "Skewed", Entity: &skewed{V: 3}},
		)
		if err != nil {
			t.Fatalf("register: %v", err)
		}
		return f
	}

	_, err := build(Options{Strict: true}).Save(fmtPC)
	if !errors.Is(err, bin.ErrEntitySizeMismatch) {
		t.Fatalf("strict: expected ErrEntitySizeMismatch, got %v", err)
	}
	// Block 0 is 24 bytes framed; Skewed's payload starts after block 1's
	// length prefix.
	var se *Error
	if !errors.As(err, &se) || se.Block != 1 || se.Offset != 28 {
		t.Fatalf("strict: got %+v want block 1 at offset 28", se)
	}

	var logs bytes.Buffer
	lenient := build(Options{Logger: logger.JSON(&logs, slog.LevelDebug)})
	data, err := lenient.Save(fmtPC)
	if err != nil {
		t.Fatalf("lenient save: %v", err)
	}
	if !strings.Contains(logs.String(), "entity size mismatch") {
		t.Fatalf("mismatch not logged: %s", logs.String())
	}
	if err := build(Options{}).Load(data); err != nil {
		t.Fatalf("lenient load: %v", err)
	}
}

func TestLeftoverBlockBytes(t *testing.T) {
	t.Parallel()

	src := newFixture(t, testLayout(), Options{})
	src.populate()
	data, err := src.file.Save(fmtPC)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	// Re-read the list block with a reader that only understands the count.
	short := New(testLayout(), Options{Strict: true})
	err = short.Register(
		Bucket{Name: "Globals", Entity: &globals{}},
		Bucket{Name: "Script", Tag: "SCR", Nested: true, Entity: &script{}},
		Bucket{Name: "List", Tag: "LST", Entity: &skewed{}},
		Bucket{Name: "Stats", Entity: &stats{}},
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	err = short.LoadAs(data, fmtPC)
	if !errors.Is(err, bin.ErrEntitySizeMismatch) || PhaseOf(err) != PhaseDecode {
		t.Fatalf("expected decode ErrEntitySizeMismatch, got %v", err)
	}
}

func TestEchoResaveIsBitExact(t *testing.T) {
	t.Parallel()

	src := newFixture(t, testLayout(), Options{Padding: padding.Echo})
	src.populate()
	src.list.Items = make([]uint32, 100)
	for i := range src.list.Items {
		src.list.Items[i] = 0xA5A5A5A5
	}
	if _, err := src.file.Save(fmtPC); err != nil {
		t.Fatalf("warm-up save: %v", err)
	}
	src.list.Items = src.list.Items[:2]
	original, err := src.file.Save(fmtPC)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !bytes.Contains(original[0x60:], []byte{0xA5, 0xA5, 0xA5, 0xA5}) {
		t.Fatalf("padding should echo stale work-buffer bytes")
	}

	dst := newFixture(t, testLayout(), Options{Padding: padding.Echo})
	if err := dst.file.Load(original); err != nil {
		t.Fatalf("load: %v", err)
	}
	again, err := dst.file.Save(format.Format{})
	if err != nil {
		t.Fatalf("re-save: %v", err)
	}
	if !bytes.Equal(again, original) {
		t.Fatalf("re-save differs from the loaded file")
	}
}

func TestPatternPadding(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, testLayout(), Options{Padding: padding.Pattern{0xDE, 0xAD}})
	fx.populate()
	data, err := fx.file.Save(fmtPS2)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	blocks, err := block.Walk(data, binary.LittleEndian, 4)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	pad := blocks[3]
	payload := data[pad.PayloadOffset() : pad.PayloadOffset()+pad.Length]
	for i, c := range payload {
		if want := []byte{0xDE, 0xAD}[i%2]; c != want {
			t.Fatalf("padding byte %d: got %#x want %#x", i, c, want)
		}
	}
}

// reentrant tries to mutate and re-save its own file mid-save.
type reentrant struct {
	file    *File
	regErr  error
	saveErr error
}

func (r *reentrant) ReadData(b *bin.Buffer, _ format.Format) error {
	b.ReadU32()
	return b.Err()
}

func (r *reentrant) WriteData(b *bin.Buffer, f format.Format) error {
	r.regErr = r.file.Register(Bucket{Name: "Late", Entity: &stats{}})
	_, r.saveErr = r.file.Save(f)
	b.WriteU32(0)
	return b.Err()
}

func (r *reentrant) Size(format.Format) int { return 4 }

func TestReentrantMutationIsRejected(t *testing.T) {
	t.Parallel()

	f := New(testLayout(), Options{})
	re := &reentrant{file: f}
	err := f.Register(
		Bucket{Name: "Globals", Entity: &globals{}},
		Bucket{Name: "Script", Tag: "SCR", Nested: true, Entity: &script{}},
		Bucket{Name: "Reentrant", Entity: re},
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := f.Save(fmtPC); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !errors.Is(re.regErr, ErrBusy) {
		t.Fatalf("register during save: got %v", re.regErr)
	}
	if !errors.Is(re.saveErr, ErrBusy) {
		t.Fatalf("save during save: got %v", re.saveErr)
	}
	if len(f.Buckets()) != 3 {
		t.Fatalf("bucket list changed: %d buckets", len(f.Buckets()))
	}
}

func TestSaveFormatChecks(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, testLayout(), Options{})
	if _, err := fx.file.Save(format.Format{}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("zero format: expected ErrUnsupported, got %v", err)
	}
	xbox := format.Format{ID: "xbox", Platforms: format.Xbox}
	if _, err := fx.file.Save(xbox); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("foreign format: expected ErrUnsupported, got %v", err)
	}

	data, err := fx.file.Save(format.Format{Platforms: format.PS2})
	if err != nil {
		t.Fatalf("save by platform: %v", err)
	}
	if err := fx.file.LoadAs(data, fmtPS2); err != nil {
		t.Fatalf("load as: %v", err)
	}
	if fx.file.Format().Label != "PS2" {
		t.Fatalf("format should resolve to the catalogue entry, got %+v", fx.file.Format())
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		b    Bucket
	}{
		{"no entity", Bucket{Name: "A"}},
		{"nested without tag", Bucket{Name: "A", Nested: true, Entity: &stats{}}},
		{"nested first", Bucket{Name: "A", Tag: "SCR", Nested: true, Entity: &stats{}}},
		{"long tag", Bucket{Name: "A", Tag: "TOOLONG", Entity: &stats{}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := New(testLayout(), Options{}).Register(tc.b); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	t.Parallel()

	err := &Error{Phase: PhaseDecode, Block: 3, Bucket: "Vehicles", Offset: 0x1a0, Err: bin.ErrOutOfData}
	want := "save: decode block 3 (Vehicles) at offset 0x1a0: bin: out of data"
	if err.Error() != want {
		t.Fatalf("got %q want %q", err.Error(), want)
	}
	if got := failure(PhaseSniff, ErrTruncated).Error(); got != "save: sniff: truncated file" {
		t.Fatalf("got %q", got)
	}
	unknown := failure(PhaseSniff, fmt.Errorf("%w: no match", sniff.ErrUnrecognizedFormat))
	if got := unknown.Error(); got != "save: sniff: unrecognized format: no match" {
		t.Fatalf("got %q", got)
	}
	if !errors.Is(unknown, sniff.ErrUnrecognizedFormat) {
		t.Fatalf("unwrap lost the sentinel")
	}
}

func TestFailedLoadKeepsState(t *testing.T) {
	t.Parallel()

	src := newFixture(t, testLayout(), Options{})
	src.populate()
	data, err := src.file.Save(fmtPC)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	blocks, err := block.Walk(data, binary.LittleEndian, 4)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	corrupt := slices.Clone(data)
	binary.LittleEndian.PutUint32(corrupt[blocks[2].Offset:], 0xFFFF)

	dst := newFixture(t, testLayout(), Options{})
	dst.globals.Counter = 99
	dst.list.Items = []uint32{1}
	err = dst.file.Load(corrupt)
	if PhaseOf(err) != PhaseFraming {
		t.Fatalf("expected a framing error, got %v", err)
	}
	if dst.globals.Counter != 99 || !slices.Equal(dst.list.Items, []uint32{1}) {
		t.Fatalf("rejected file leaked into state: globals %+v list %v", dst.globals, dst.list.Items)
	}
	if !dst.file.Format().IsZero() {
		t.Fatalf("format changed to %s", dst.file.Format())
	}

	if err := dst.file.Load(data); err != nil {
		t.Fatalf("load: %v", err)
	}
	if dst.globals.Counter != 42 || !slices.Equal(dst.list.Items, src.list.Items) {
		t.Fatalf("state after good load: globals %+v list %v", dst.globals, dst.list.Items)
	}
}
