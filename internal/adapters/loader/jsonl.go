// Package loader reads pre-linked person entity graphs from
// newline-delimited JSON files. It stands in for the warehouse hydration
// collaborator; the calculation core itself never performs I/O.
package loader

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/mbvera/pulse-data/internal/domain/model"
	"github.com/mbvera/pulse-data/pkg/logger"
	"github.com/mbvera/pulse-data/pkg/metrics"
)

// maxLineBytes bounds a single person graph line.
const maxLineBytes = 16 * 1024 * 1024

// JSONLSource streams person graphs from a JSONL file, one graph per line,
// with an optional county-of-residence lookup file alongside.
type JSONLSource struct {
	path       string
	countyPath string

	logger logger.Logger
}

// Option applies a configuration option to the JSONLSource.
type Option func(*JSONLSource)

// WithCountyPath sets the optional person-to-county lookup file, a JSON
// object mapping person id to county name.
func WithCountyPath(path string) Option {
	return func(s *JSONLSource) {
		s.countyPath = path
	}
}

// NewJSONLSource creates a source reading from path.
func NewJSONLSource(path string, opts ...Option) *JSONLSource {
	s := &JSONLSource{
		path:   path,
		logger: logger.Get().Named("loader"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Records streams every person graph in the file. Malformed lines are
// data-quality warnings: logged, skipped, never fatal. The channel closes
// when the file is exhausted or ctx is done.
func (s *JSONLSource) Records(ctx context.Context) (<-chan model.PersonRecords, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}

	out := make(chan model.PersonRecords)
	go func() {
		defer close(out)
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		line := 0
		for scanner.Scan() {
			line++
			if len(scanner.Bytes()) == 0 {
				continue
			}
			var rec model.PersonRecords
			if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
				s.logger.Warn(ctx, "skipping malformed person graph",
					logger.Int("line", line),
					logger.Error(err),
				)
				metrics.RecordDataQualityWarning()
				continue
			}
			select {
			case out <- rec:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			s.logger.Error(ctx, "input read failed", logger.Error(err))
		}
	}()
	return out, nil
}

// CountyOfResidence loads the person-to-county lookup table. A missing
// path yields an empty table.
func (s *JSONLSource) CountyOfResidence(_ context.Context) (map[int64]string, error) {
	if s.countyPath == "" {
		return map[int64]string{}, nil
	}
	data, err := os.ReadFile(s.countyPath)
	if err != nil {
		return nil, fmt.Errorf("reading county lookup: %w", err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing county lookup: %w", err)
	}
	counties := make(map[int64]string, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing county lookup person id %q: %w", k, err)
		}
		counties[id] = v
	}
	return counties, nil
}
