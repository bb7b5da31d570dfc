// Package wire implements the device-to-server framing: one JSON object per
// line, validated against a fixed schema before it becomes a domain.Reading.
package wire

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"patient-monitor/internal/domain"
)

// DefaultMaxFrameBytes bounds a single frame when no limit is configured.
const DefaultMaxFrameBytes = 64 * 1024

type frame struct {
	Version int `json:"version"`
	domain.Reading
}

// Decode validates a single frame and converts it into a Reading. Every
// failure is a *domain.DecodeError.
func Decode(data []byte) (domain.Reading, error) {
	s, err := compiledSchema()
	if err != nil {
		return domain.Reading{}, &domain.DecodeError{Reason: "schema unavailable", Err: err}
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return domain.Reading{}, &domain.DecodeError{Reason: "malformed json", Err: err}
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return domain.Reading{}, &domain.DecodeError{Reason: strings.Join(problems, "; ")}
	}

	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return domain.Reading{}, &domain.DecodeError{Reason: "unmarshal", Err: err}
	}

	return f.Reading, nil
}

// Decoder reads successive newline-delimited frames from a stream.
type Decoder struct {
	scanner  *bufio.Scanner
	maxFrame int
}

// NewDecoder wraps r. Frames longer than maxFrameBytes are rejected.
func NewDecoder(r io.Reader, maxFrameBytes int) *Decoder {
	if maxFrameBytes <= 0 {
		maxFrameBytes = DefaultMaxFrameBytes
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxFrameBytes)

	return &Decoder{scanner: scanner, maxFrame: maxFrameBytes}
}

// Next returns the next reading. It returns io.EOF once the peer closed the
// stream, a *domain.DecodeError for a bad frame and an error wrapping
// domain.ErrConnection for read failures.
func (d *Decoder) Next() (domain.Reading, error) {
	for d.scanner.Scan() {
		line := bytes.TrimSpace(d.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		return Decode(line)
	}

	err := d.scanner.Err()
	switch {
	case err == nil:
		return domain.Reading{}, io.EOF
	case errors.Is(err, bufio.ErrTooLong):
		return domain.Reading{}, &domain.DecodeError{Reason: fmt.Sprintf("frame exceeds %d bytes", d.maxFrame)}
	default:
		return domain.Reading{}, fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}
}

// Encoder writes readings as newline-delimited frames.
type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one frame, stamped with the current Version.
func (e *Encoder) Encode(reading domain.Reading) error {
	data, err := json.Marshal(frame{Version: Version, Reading: reading})
	if err != nil {
		return fmt.Errorf("encode reading %d: %w", reading.DeviceID, err)
	}
	if _, err := e.w.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}
