// Package history implements the local run-history spool.
//
// Every completed run appends its result record to the spool as a 4-byte
// big-endian length-prefixed msgpack frame. The framing makes the spool
// append-only and safely truncation-detectable: a partial trailing frame is
// reported, never silently skipped.
package history

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pithecene-io/assay/types"
)

// Frame size constants.
const (
	// MaxFrameSize is the maximum frame size (1 MiB), including length prefix.
	MaxFrameSize = 1024 * 1024
	// MaxPayloadSize is the maximum payload size (MaxFrameSize - 4 bytes).
	MaxPayloadSize = MaxFrameSize - LengthPrefixSize
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4
)

// EntryType is the type discriminant for result entries.
const EntryType = "result"

// Entry is one spooled run result with its envelope.
type Entry struct {
	// Type is always "result" for result entries.
	Type string `msgpack:"type" json:"type"`
	// RunID identifies the run that produced the record.
	RunID string `msgpack:"run_id" json:"run_id"`
	// RecordedAt is the spool-append time, RFC 3339 UTC.
	RecordedAt string `msgpack:"recorded_at" json:"recorded_at"`
	// Record is the run's result record.
	Record types.ResultRecord `msgpack:"record" json:"record"`
}

// FrameErrorKind classifies frame decoding errors.
type FrameErrorKind int

const (
	// FrameErrorPartial indicates a truncated or incomplete frame.
	FrameErrorPartial FrameErrorKind = iota
	// FrameErrorTooLarge indicates a frame exceeding MaxFrameSize.
	FrameErrorTooLarge
	// FrameErrorDecode indicates a msgpack decoding error.
	FrameErrorDecode
)

// FrameError represents a frame encoding or decoding error.
type FrameError struct {
	Kind FrameErrorKind
	Msg  string
	Err  error
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// IsFrameError returns the FrameError in err's chain, if any.
func IsFrameError(err error) (*FrameError, bool) {
	var frameErr *FrameError
	if errors.As(err, &frameErr) {
		return frameErr, true
	}
	return nil, false
}

// EncodeFrame encodes an entry as a length-prefixed msgpack frame.
func EncodeFrame(entry *Entry) ([]byte, error) {
	payload, err := msgpack.Marshal(entry)
	if err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to encode entry",
			Err:  err,
		}
	}
	if len(payload) > MaxPayloadSize {
		return nil, &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", len(payload), MaxPayloadSize),
		}
	}

	frame := make([]byte, LengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(frame[:LengthPrefixSize], uint32(len(payload)))
	copy(frame[LengthPrefixSize:], payload)
	return frame, nil
}

// FrameDecoder decodes length-prefixed msgpack frames from a stream.
type FrameDecoder struct {
	reader io.Reader
}

// NewFrameDecoder creates a new frame decoder.
func NewFrameDecoder(r io.Reader) *FrameDecoder {
	return &FrameDecoder{reader: r}
}

// ReadFrame reads a single frame from the stream.
// Returns the raw payload bytes (msgpack-encoded).
//
// Errors:
//   - io.EOF: stream ended cleanly (no more frames)
//   - *FrameError with Kind=FrameErrorPartial: incomplete frame
//   - *FrameError with Kind=FrameErrorTooLarge: frame exceeds limit
func (d *FrameDecoder) ReadFrame() ([]byte, error) {
	var lengthBuf [LengthPrefixSize]byte
	_, err := io.ReadFull(d.reader, lengthBuf[:])
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to read length prefix",
			Err:  err,
		}
	}

	payloadSize := binary.BigEndian.Uint32(lengthBuf[:])

	if payloadSize > MaxPayloadSize {
		return nil, &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", payloadSize, MaxPayloadSize),
		}
	}

	payload := make([]byte, payloadSize)
	_, err = io.ReadFull(d.reader, payload)
	if err != nil {
		return nil, &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to read payload",
			Err:  err,
		}
	}

	return payload, nil
}

// DecodeEntry decodes a payload as an Entry.
func DecodeEntry(payload []byte) (*Entry, error) {
	var entry Entry
	if err := msgpack.Unmarshal(payload, &entry); err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to decode history entry",
			Err:  err,
		}
	}
	if entry.Type != EntryType {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  fmt.Sprintf("unexpected entry type %q", entry.Type),
		}
	}
	return &entry, nil
}
