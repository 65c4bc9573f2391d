package save

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTruncated        = errors.New("save: truncated file")
	ErrChecksumMismatch = errors.New("save: checksum mismatch")
	ErrSizeOverflow     = errors.New("save: size overflow")
	ErrBusy             = errors.New("save: file is already being loaded or saved")
	ErrUnsupported      = errors.New("save: unsupported format")
)

// Phase names the stage of Load or Save that failed.
type Phase string

const (
	PhaseSniff    Phase = "sniff"
	PhaseChecksum Phase = "checksum"
	PhaseFraming  Phase = "framing"
	PhaseDecode   Phase = "decode"
	PhaseEncode   Phase = "encode"
	PhasePadding  Phase = "padding"
)

// Error is the structured error returned by Load, Save and Verify.
// Block and Offset are -1 and Bucket is empty when they do not apply.
type Error struct {
	Phase  Phase
	Block  int
	Bucket string
	Offset int
	Err    error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("save: ")
	sb.WriteString(string(e.Phase))
	if e.Block >= 0 {
		fmt.Fprintf(&sb, " block %d", e.Block)
	}
	if e.Bucket != "" {
		fmt.Fprintf(&sb, " (%s)", e.Bucket)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&sb, " at offset %#x", e.Offset)
	}
	if e.Err == nil {
		return sb.String()
	}
	msg := strings.TrimPrefix(e.Err.Error(), "save: ")
	// Sentinels from other packages may already lead with the phase name.
	if sb.Len() == len("save: ")+len(e.Phase) && strings.HasPrefix(msg, string(e.Phase)+": ") {
		return "save: " + msg
	}
	sb.WriteString(": ")
	sb.WriteString(msg)
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

func failure(phase Phase, err error) *Error {
	return &Error{Phase: phase, Block: -1, Offset: -1, Err: err}
}

// PhaseOf returns the phase of a structured error, or "" for other errors.
func PhaseOf(err error) Phase {
	var se *Error
	if errors.As(err, &se) {
		return se.Phase
	}
	return ""
}
