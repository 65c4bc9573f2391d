package padding

import (
	"bytes"
	"testing"
)

func TestEchoKeepsRegion(t *testing.T) {
	t.Parallel()

	region := []byte{1, 2, 3, 4}
	Echo.Fill(region)
	if !bytes.Equal(region, []byte{1, 2, 3, 4}) {
		t.Fatalf("echo modified region: %v", region)
	}
}

func TestZeroClears(t *testing.T) {
	t.Parallel()

	region := []byte{9, 9, 9}
	Zero.Fill(region)
	if !bytes.Equal(region, []byte{0, 0, 0}) {
		t.Fatalf("zero left bytes behind: %v", region)
	}
}

func TestPatternCycles(t *testing.T) {
	t.Parallel()

	got := Generate(Pattern{0xAA, 0xBB, 0xCC}, 7)
	want := []byte{0xAA, 0xBB, 0xCC, 0xAA, 0xBB, 0xCC, 0xAA}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x want %x", got, want)
	}
}

func TestRandomIsSeeded(t *testing.T) {
	t.Parallel()

	a := Generate(NewRandom(42), 37)
	b := Generate(NewRandom(42), 37)
	if !bytes.Equal(a, b) {
		t.Fatalf("same seed produced different bytes")
	}
	if bytes.Equal(a, make([]byte, 37)) {
		t.Fatalf("random policy produced all zeros")
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, pattern, want string
		wantErr             bool
	}{
		{name: "", want: "echo"},
		{name: "ECHO", want: "echo"},
		{name: "zero", want: "zero"},
		{name: "pattern", pattern: "de ad be ef", want: "pattern"},
		{name: "pattern", pattern: "", wantErr: true},
		{name: "pattern", pattern: "zz", wantErr: true},
		{name: "random", want: "random"},
		{name: "bogus", wantErr: true},
	}
	for _, tc := range tests {
		p, err := Parse(tc.name, tc.pattern)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("Parse(%q, %q): expected error", tc.name, tc.pattern)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Parse(%q, %q): %v", tc.name, tc.pattern, err)
		}
		if p.Name() != tc.want {
			t.Fatalf("Parse(%q): got %s want %s", tc.name, p.Name(), tc.want)
		}
	}

	p, _ := Parse("pattern", "0102")
	if got := Generate(p, 3); !bytes.Equal(got, []byte{1, 2, 1}) {
		t.Fatalf("parsed pattern fill: %x", got)
	}
}
