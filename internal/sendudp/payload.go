package sendudp

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/opensciencegrid/xrootd-monitoring-shoveler/pkg/xrdmon"
)

// Spec describes the payload sequence of a run: either Count repetitions
// of Text, or Text with the decimal loop index appended.
type Spec struct {
	Text          string
	AppendCounter bool
	Count         int
}

func (s Spec) Validate() error {
	if s.Count <= 0 {
		return errors.New("count must be greater than 0")
	}
	maxLen := len(s.Text)
	if s.AppendCounter {
		maxLen += len(strconv.Itoa(s.Count - 1))
	}
	if maxLen > xrdmon.MaxPayloadSize {
		return fmt.Errorf("payload would be %d bytes, max %d", maxLen, xrdmon.MaxPayloadSize)
	}
	return nil
}

// Source yields the successive payloads of one destination stream. Sources
// are lazy and finite, and Reset rewinds to the start of the sequence. Not
// safe for concurrent use; every stream takes its own.
type Source interface {
	Next() ([]byte, bool)
	Reset()
	Len() int
}

// Source returns a fresh source positioned at the start of the sequence.
func (s Spec) Source() Source {
	if s.AppendCounter {
		return &counterSource{text: s.Text, count: s.Count}
	}
	return &fixedSource{data: []byte(s.Text), count: s.Count}
}

// fixedSource repeats the same bytes Count times.
type fixedSource struct {
	data  []byte
	count int
	next  int
}

func (f *fixedSource) Next() ([]byte, bool) {
	if f.next >= f.count {
		return nil, false
	}
	f.next++
	return f.data, true
}

func (f *fixedSource) Reset()   { f.next = 0 }
func (f *fixedSource) Len() int { return f.count }

// counterSource yields text+"0" through text+decimal(count-1).
type counterSource struct {
	text  string
	count int
	next  int
}

func (c *counterSource) Next() ([]byte, bool) {
	if c.next >= c.count {
		return nil, false
	}
	payload := []byte(c.text + strconv.Itoa(c.next))
	c.next++
	return payload, true
}

func (c *counterSource) Reset()   { c.next = 0 }
func (c *counterSource) Len() int { return c.count }
