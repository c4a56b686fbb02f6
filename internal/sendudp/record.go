package sendudp

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Record is one sent datagram in the collector's capture shape, so a
// recording can be replayed through the collector's file input.
type Record struct {
	Remote  string `json:"remote"`
	Version string `json:"version"`
	Data    string `json:"data"` // base64 of the full datagram
}

// Recorder appends one JSON line per sent datagram. Safe for concurrent
// use by destination streams.
type Recorder struct {
	mu      sync.Mutex
	w       io.Writer
	version string
}

func NewRecorder(w io.Writer, version string) *Recorder {
	return &Recorder{w: w, version: version}
}

func (r *Recorder) Record(remote string, datagram []byte) error {
	line, err := json.Marshal(Record{
		Remote:  remote,
		Version: r.version,
		Data:    base64.StdEncoding.EncodeToString(datagram),
	})
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	line = append(line, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.w.Write(line); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}
