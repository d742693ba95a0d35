package communication

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// Message kinds written to a trace.
const (
	KindVar      = "var"
	KindClose    = "close"
	KindInstance = "instance"
)

// Message is one line of a trace.
type Message struct {
	Kind     string     `json:"kind"`
	Var      *VarBinder `json:"var,omitempty"`
	Instance Instance   `json:"instance,omitempty"`
}

// Trace records bus messages as JSON lines, optionally zstd-compressed.
// Write errors do not stop the search: the first one is logged and kept.
type Trace struct {
	file io.Closer
	zw   *zstd.Encoder
	bw   *bufio.Writer
	enc  *json.Encoder
	err  error
}

// CreateTrace creates a trace file at path. Paths ending in ".zst" are
// compressed.
func CreateTrace(path string) (*Trace, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	t, err := NewTraceWriter(f, strings.HasSuffix(path, ".zst"))
	if err != nil {
		f.Close()
		return nil, err
	}
	t.file = f
	return t, nil
}

// NewTraceWriter writes a trace to w. Close flushes it but does not close w.
func NewTraceWriter(w io.Writer, compress bool) (*Trace, error) {
	t := &Trace{}
	if compress {
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		t.zw = zw
		w = zw
	}
	t.bw = bufio.NewWriter(w)
	t.enc = json.NewEncoder(t.bw)
	return t, nil
}

func (t *Trace) write(m Message) {
	if t.err != nil {
		return
	}
	if err := t.enc.Encode(m); err != nil {
		t.err = fmt.Errorf("failed to write trace: %w", err)
		log.Warn().Err(err).Msg("trace disabled")
	}
}

func (t *Trace) Var(v VarBinder) { t.write(Message{Kind: KindVar, Var: &v}) }

func (t *Trace) CloseModeling() { t.write(Message{Kind: KindClose}) }

func (t *Trace) Instance(in Instance) { t.write(Message{Kind: KindInstance, Instance: in}) }

// Err returns the first write error.
func (t *Trace) Err() error { return t.err }

// Close flushes the trace and closes the file it was created on.
func (t *Trace) Close() error {
	errs := []error{t.err}
	if err := t.bw.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush trace: %w", err))
	}
	if t.zw != nil {
		if err := t.zw.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close zstd encoder: %w", err))
		}
	}
	if t.file != nil {
		if err := t.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close trace file: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ReadTrace decodes a trace written by Trace.
func ReadTrace(r io.Reader, compressed bool) ([]Message, error) {
	if compressed {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	dec := json.NewDecoder(r)
	var msgs []Message
	for {
		var m Message
		err := dec.Decode(&m)
		if errors.Is(err, io.EOF) {
			return msgs, nil
		}
		if err != nil {
			return msgs, fmt.Errorf("failed to read trace: %w", err)
		}
		msgs = append(msgs, m)
	}
}
