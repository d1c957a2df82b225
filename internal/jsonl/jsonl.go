// Package jsonl reads loosely keyed feedback records from JSONL or JSON array
// files and writes results back as JSONL.
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// maxLine bounds a single JSONL record.
const maxLine = 4 << 20

// LineError describes a line that could not be decoded.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// LoadFile reads records from path. See Read.
func LoadFile(path string) ([]map[string]any, []LineError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read file %s: %w", path, err)
	}
	defer f.Close()

	recs, skipped, err := Read(f)
	if err != nil {
		return nil, skipped, fmt.Errorf("%s: %w", path, err)
	}
	return recs, skipped, nil
}

// Read decodes one JSON object per line, or a single JSON array of objects
// when the input starts with '['. Malformed lines are skipped and reported;
// an input without any valid record is an error.
func Read(r io.Reader) ([]map[string]any, []LineError, error) {
	br := bufio.NewReader(r)
	if first, err := peekNonSpace(br); err == nil && first == '[' {
		var recs []map[string]any
		if err := json.NewDecoder(br).Decode(&recs); err != nil {
			return nil, nil, fmt.Errorf("decode array: %w", err)
		}
		if len(recs) == 0 {
			return nil, nil, fmt.Errorf("no valid items found")
		}
		return recs, nil, nil
	}

	var recs []map[string]any
	var skipped []LineError
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			skipped = append(skipped, LineError{Line: line, Err: err})
			continue
		}
		recs = append(recs, m)
	}
	if err := sc.Err(); err != nil {
		return nil, skipped, err
	}
	if len(recs) == 0 {
		return nil, skipped, fmt.Errorf("no valid items found")
	}
	return recs, skipped, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			if _, err := br.ReadByte(); err != nil {
				return 0, err
			}
		default:
			return b[0], nil
		}
	}
}

// Write encodes each value on its own line.
func Write[T any](w io.Writer, values []T) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}
