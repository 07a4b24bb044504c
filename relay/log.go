package relay

import (
	"encoding/json"
	"os"

	"github.com/choomlang/choom/errors"
)

// TranscriptLog is an append-only JSONL sink. Every record is written and
// flushed individually, so a crash mid-run leaves a valid prefix of
// well-formed lines. A nil *TranscriptLog is a no-op sink.
type TranscriptLog struct {
	f *os.File
}

// OpenTranscriptLog opens (creating if needed) the JSONL file at path for
// appending. An empty path returns a nil log, which discards records.
func OpenTranscriptLog(path string) (*TranscriptLog, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open transcript log %s", path)
	}
	return &TranscriptLog{f: f}, nil
}

// Append writes one record as a single JSON line and flushes it to disk.
func (l *TranscriptLog) Append(rec *TranscriptRecord) error {
	if l == nil {
		return nil
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrapf(err, "encode transcript record")
	}
	line = append(line, '\n')
	if _, err := l.f.Write(line); err != nil {
		return errors.Wrapf(err, "append transcript record")
	}
	return errors.Wrapf(l.f.Sync(), "flush transcript record")
}

// Close closes the underlying file.
func (l *TranscriptLog) Close() error {
	if l == nil {
		return nil
	}
	return l.f.Close()
}
