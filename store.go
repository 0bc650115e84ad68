package main

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// sample is one recorded scope: a name, a start offset and a duration, all
// times in microseconds.
type sample struct {
	name     string
	start    int64
	duration int64
}

func (s sample) end() int64 { return s.start + s.duration }

// trace is the decoded input: the flat sample list in file order plus the
// externally measured total duration. Read-only once built.
type trace struct {
	samples       []sample
	totalDuration int64
}

var (
	errSchema     = errors.New("schema violation")
	errEmptyTrace = errors.New("trace contains no samples")
)

// ---------------------------------------------------------------------------
// JSON → trace
// ---------------------------------------------------------------------------

// Pointer fields distinguish a missing key from a zero value.
type rawTrace struct {
	TotalDuration *int64       `json:"totalDuration"`
	Profiles      *[]rawSample `json:"profiles"`
}

type rawSample struct {
	Name      *string `json:"name"`
	Timestamp *int64  `json:"timestamp"`
	Duration  *int64  `json:"duration"`
}

func parseTrace(r io.Reader) (*trace, error) {
	var raw rawTrace
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode trace: trailing data after the trace object")
	}
	if raw.TotalDuration == nil {
		return nil, fmt.Errorf("%w: missing \"totalDuration\"", errSchema)
	}
	if *raw.TotalDuration < 0 {
		return nil, fmt.Errorf("%w: negative totalDuration %d", errSchema, *raw.TotalDuration)
	}
	if raw.Profiles == nil {
		return nil, fmt.Errorf("%w: missing \"profiles\"", errSchema)
	}
	if len(*raw.Profiles) == 0 {
		return nil, errEmptyTrace
	}

	tr := &trace{
		samples:       make([]sample, 0, len(*raw.Profiles)),
		totalDuration: *raw.TotalDuration,
	}
	for i, rs := range *raw.Profiles {
		switch {
		case rs.Name == nil:
			return nil, fmt.Errorf("%w: profiles[%d]: missing \"name\"", errSchema, i)
		case rs.Timestamp == nil:
			return nil, fmt.Errorf("%w: profiles[%d] (%s): missing \"timestamp\"", errSchema, i, *rs.Name)
		case rs.Duration == nil:
			return nil, fmt.Errorf("%w: profiles[%d] (%s): missing \"duration\"", errSchema, i, *rs.Name)
		case *rs.Duration < 0:
			return nil, fmt.Errorf("%w: profiles[%d] (%s): negative duration %d", errSchema, i, *rs.Name, *rs.Duration)
		}
		tr.samples = append(tr.samples, sample{
			name:     *rs.Name,
			start:    *rs.Timestamp,
			duration: *rs.Duration,
		})
	}
	return tr, nil
}

// ---------------------------------------------------------------------------
// Input files
// ---------------------------------------------------------------------------

// openReader opens a file for reading, handling gzip and stdin ("-").
func openReader(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return &gzipReadCloser{gz: gr, f: f}, nil
	}
	return f, nil
}

type gzipReadCloser struct {
	gz *gzip.Reader
	f  *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }
func (g *gzipReadCloser) Close() error {
	g.gz.Close()
	return g.f.Close()
}

func openTrace(path string) (*trace, error) {
	rc, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	tr, err := parseTrace(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.WithFields(logrus.Fields{
		"path":          path,
		"samples":       len(tr.samples),
		"totalDuration": tr.totalDuration,
	}).Debug("trace loaded")
	return tr, nil
}
