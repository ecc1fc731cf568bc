package history

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pithecene-io/assay/types"
)

func testEntry() *Entry {
	return &Entry{
		Type:       EntryType,
		RunID:      "run-1",
		RecordedAt: "2026-03-14T15:09:26Z",
		Record:     *types.SuccessRecord("1.0", 9996, "signal_rate", 0.4991, 153, 42),
	}
}

func TestEncodeFrame_RoundTrip(t *testing.T) {
	frame, err := EncodeFrame(testEntry())
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	// Length prefix must match payload size
	payloadSize := binary.BigEndian.Uint32(frame[:LengthPrefixSize])
	if int(payloadSize) != len(frame)-LengthPrefixSize {
		t.Errorf("length prefix = %d, payload is %d bytes", payloadSize, len(frame)-LengthPrefixSize)
	}

	decoder := NewFrameDecoder(bytes.NewReader(frame))
	payload, err := decoder.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}

	entry, err := DecodeEntry(payload)
	if err != nil {
		t.Fatalf("DecodeEntry failed: %v", err)
	}
	if entry.RunID != "run-1" {
		t.Errorf("RunID = %q, want run-1", entry.RunID)
	}
	if entry.Record.Metric == nil || *entry.Record.Metric != "signal_rate" {
		t.Errorf("Record.Metric = %v, want signal_rate", entry.Record.Metric)
	}
	if entry.Record.Value == nil || *entry.Record.Value != 0.4991 {
		t.Errorf("Record.Value = %v, want 0.4991", entry.Record.Value)
	}
}

func TestReadFrame_CleanEOF(t *testing.T) {
	decoder := NewFrameDecoder(bytes.NewReader(nil))
	_, err := decoder.ReadFrame()
	if err != io.EOF {
		t.Errorf("ReadFrame on empty stream = %v, want io.EOF", err)
	}
}

func TestReadFrame_PartialPrefix(t *testing.T) {
	decoder := NewFrameDecoder(bytes.NewReader([]byte{0x00, 0x01}))
	_, err := decoder.ReadFrame()

	frameErr, ok := IsFrameError(err)
	if !ok {
		t.Fatalf("error = %v, want *FrameError", err)
	}
	if frameErr.Kind != FrameErrorPartial {
		t.Errorf("Kind = %v, want FrameErrorPartial", frameErr.Kind)
	}
}

func TestReadFrame_TruncatedPayload(t *testing.T) {
	frame, err := EncodeFrame(testEntry())
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	decoder := NewFrameDecoder(bytes.NewReader(frame[:len(frame)-3]))
	_, err = decoder.ReadFrame()

	frameErr, ok := IsFrameError(err)
	if !ok {
		t.Fatalf("error = %v, want *FrameError", err)
	}
	if frameErr.Kind != FrameErrorPartial {
		t.Errorf("Kind = %v, want FrameErrorPartial", frameErr.Kind)
	}
}

func TestReadFrame_OversizedLength(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(MaxPayloadSize+1))

	decoder := NewFrameDecoder(&buf)
	_, err := decoder.ReadFrame()

	frameErr, ok := IsFrameError(err)
	if !ok {
		t.Fatalf("error = %v, want *FrameError", err)
	}
	if frameErr.Kind != FrameErrorTooLarge {
		t.Errorf("Kind = %v, want FrameErrorTooLarge", frameErr.Kind)
	}
}

func TestDecodeEntry_WrongType(t *testing.T) {
	payload, err := msgpack.Marshal(&Entry{Type: "bogus", RunID: "r"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	_, err = DecodeEntry(payload)
	frameErr, ok := IsFrameError(err)
	if !ok {
		t.Fatalf("error = %v, want *FrameError", err)
	}
	if frameErr.Kind != FrameErrorDecode {
		t.Errorf("Kind = %v, want FrameErrorDecode", frameErr.Kind)
	}
}

func TestDecodeEntry_Garbage(t *testing.T) {
	_, err := DecodeEntry([]byte{0xc1, 0xff, 0x00})
	if _, ok := IsFrameError(err); !ok {
		t.Errorf("error = %v, want *FrameError", err)
	}
}
