// Package svgsink provides display sinks for svgnode scenes: they
// receive the markup of a root each time the scene changes.
package svgsink

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/benoitkugler/svgscene/svgnode"
	"github.com/goccy/go-json"
)

var (
	_ svgnode.Sink = (*Memory)(nil) // assert interface conformance
	_ svgnode.Sink = (*Stream)(nil)
	_ svgnode.Sink = (*File)(nil)
	_ svgnode.Sink = (*Raster)(nil)
	_ svgnode.Sink = Multi{}
)

// Memory records the notified markups.
type Memory struct {
	mu      sync.Mutex
	root    *svgnode.Node
	history []string

	// Limit is the number of markups kept, 0 meaning all.
	Limit int
}

// Attach implements svgnode.Sink
func (m *Memory) Attach(root *svgnode.Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.root = root
	return nil
}

// Notify implements svgnode.Sink
func (m *Memory) Notify(markup string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, markup)
	if m.Limit > 0 && len(m.history) > m.Limit {
		m.history = append([]string(nil), m.history[len(m.history)-m.Limit:]...)
	}
	return nil
}

// Root returns the attached root.
func (m *Memory) Root() *svgnode.Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.root
}

// Last returns the latest markup, or an empty string.
func (m *Memory) Last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.history) == 0 {
		return ""
	}
	return m.history[len(m.history)-1]
}

// History returns a copy of the kept markups, oldest first.
func (m *Memory) History() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.history...)
}

// Count returns the number of kept markups.
func (m *Memory) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.history)
}

// Record is one line written by a Stream.
type Record struct {
	Seq int    `json:"seq"`
	SVG string `json:"svg"`
}

// Stream writes each markup as a JSON line.
type Stream struct {
	mu  sync.Mutex
	enc *json.Encoder
	seq int
}

// NewStream returns a sink writing to w.
func NewStream(w io.Writer) *Stream {
	return &Stream{enc: json.NewEncoder(w)}
}

// Attach implements svgnode.Sink
func (s *Stream) Attach(*svgnode.Node) error { return nil }

// Notify implements svgnode.Sink
func (s *Stream) Notify(markup string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if err := s.enc.Encode(Record{Seq: s.seq, SVG: markup}); err != nil {
		return fmt.Errorf("stream markup %d: %w", s.seq, err)
	}
	return nil
}

// ReadRecords decodes the lines written by a Stream.
func ReadRecords(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	var out []Record
	for {
		var rec Record
		err := dec.Decode(&rec)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

// File rewrites a file with the latest markup.
type File struct {
	Path string
}

// Attach implements svgnode.Sink, checking the directory exists.
func (f *File) Attach(*svgnode.Node) error {
	info, err := os.Stat(filepath.Dir(f.Path))
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(f.Path))
	}
	return nil
}

// Notify implements svgnode.Sink. The markup is written to a temporary
// file then renamed, so readers never see a partial scene.
func (f *File) Notify(markup string) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.Path), filepath.Base(f.Path)+".*")
	if err != nil {
		return err
	}
	_, err = io.WriteString(tmp, markup)
	if errClose := tmp.Close(); err == nil {
		err = errClose
	}
	if err == nil {
		err = os.Rename(tmp.Name(), f.Path)
	}
	if err != nil {
		if errRm := os.Remove(tmp.Name()); errRm != nil && !errors.Is(errRm, os.ErrNotExist) {
			log.Printf("svgsink: removing %s: %s", tmp.Name(), errRm)
		}
		return fmt.Errorf("write %s: %w", f.Path, err)
	}
	return nil
}

// Multi fans out to several sinks. Every sink is notified, even when
// one of them fails.
type Multi []svgnode.Sink

// Attach implements svgnode.Sink
func (m Multi) Attach(root *svgnode.Node) error {
	for _, s := range m {
		if err := s.Attach(root); err != nil {
			return err
		}
	}
	return nil
}

// Notify implements svgnode.Sink
func (m Multi) Notify(markup string) error {
	var errs []error
	for _, s := range m {
		if err := s.Notify(markup); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
