package history

import (
	"io"
	"os"
	"time"

	"github.com/pithecene-io/assay/iox"
	"github.com/pithecene-io/assay/types"
)

// Spool appends and reads run results in a local frame-formatted file.
// Appends open and close the file per call: the job is single-shot, and
// scoped acquisition guarantees release on every exit path.
type Spool struct {
	path string
}

// NewSpool creates a spool over the given path.
// The file is created on first append.
func NewSpool(path string) *Spool {
	return &Spool{path: path}
}

// Path returns the spool file path.
func (s *Spool) Path() string {
	return s.path
}

// Append writes one result record to the end of the spool.
func (s *Spool) Append(runMeta *types.RunMeta, record *types.ResultRecord) error {
	entry := &Entry{
		Type:       EntryType,
		RunID:      runMeta.RunID,
		RecordedAt: time.Now().UTC().Format(time.RFC3339),
		Record:     *record,
	}

	frame, err := EncodeFrame(entry)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(f)

	_, err = f.Write(frame)
	return err
}

// ReadAll reads every entry in the spool, oldest first.
// A missing spool file yields an empty slice. A truncated or undecodable
// trailing frame surfaces as a *FrameError; prior entries are not returned
// so callers never mistake a damaged spool for a shorter one.
func (s *Spool) ReadAll() ([]*Entry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer iox.DiscardClose(f)

	decoder := NewFrameDecoder(f)
	var entries []*Entry
	for {
		payload, err := decoder.ReadFrame()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}

		entry, err := DecodeEntry(payload)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
}
