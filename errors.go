package mediacore

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by command outcomes and renderer construction,
// following this package's style of package-level Err* values.
var (
	ErrNoVideo         = errors.New("media contains no video stream")
	ErrNoAudio         = errors.New("media contains no audio stream")
	ErrNilAudioContext = errors.New("media has audio stream but audio.Context is not initialized")
	ErrBadSampleRate   = errors.New("media audio stream and audio context sample rates don't match")

	// Cancelled names the outcome of a priority or seek command superseded
	// by a higher-priority command before it ran. Engine commands do not
	// return it: their Future resolves to ResultCancelled instead.
	Cancelled = errors.New("command cancelled")
	// Disposed names the condition of a call made on a disposed engine.
	// Engine commands do not return it: Open and Close resolve their
	// Future to ResultCancelled instead.
	Disposed = errors.New("engine disposed")
)

// OpenErrorKind classifies why MediaContainer.Open failed.
type OpenErrorKind uint8

const (
	OpenErrIo OpenErrorKind = iota
	OpenErrFormat
	OpenErrNoStreams
	OpenErrAborted
)

// OpenError is fatal for the Open command: the container is torn down and
// the engine transitions to StateFailed.
type OpenError struct {
	Kind  OpenErrorKind
	Cause error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open failed (%d): %v", e.Kind, e.Cause)
}

func (e *OpenError) Unwrap() error { return e.Cause }

// ReadError is transient: the reader logs it and continues.
type ReadError struct{ Cause error }

func (e *ReadError) Error() string { return fmt.Sprintf("read error: %v", e.Cause) }
func (e *ReadError) Unwrap() error { return e.Cause }

// SeekError is recovered by clamping to the valid range, or as a last
// resort by restoring the pre-seek position; it is logged as a warning,
// never surfaced as a failure.
type SeekError struct{ Cause error }

func (e *SeekError) Error() string { return fmt.Sprintf("seek error: %v", e.Cause) }
func (e *SeekError) Unwrap() error { return e.Cause }

// DecodeErrorKind classifies a per-packet decode failure.
type DecodeErrorKind uint8

const (
	DecodeErrPacket DecodeErrorKind = iota
	DecodeErrStarvation
)

// DecodeError is per-packet and never fatal on its own; the decoder logs
// it and continues.
type DecodeError struct {
	Kind  DecodeErrorKind
	Cause error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode error: %v", e.Cause) }
func (e *DecodeError) Unwrap() error { return e.Cause }

// ChangeError reverts change_media back to StatePaused and dispatches
// MediaFailed; the container is left open.
type ChangeError struct{ Cause error }

func (e *ChangeError) Error() string { return fmt.Sprintf("change media error: %v", e.Cause) }
func (e *ChangeError) Unwrap() error { return e.Cause }
