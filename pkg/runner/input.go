package runner

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// ReadSubmissions decodes submissions from r. The input is either
// a JSON array or JSON Lines, one submission per line; blank
// lines are skipped.
func ReadSubmissions(r io.Reader) ([]Submission, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read submissions: %w", err)
	}

	if first == '[' {
		var subs []Submission
		if err := json.NewDecoder(br).Decode(&subs); err != nil {
			return nil, fmt.Errorf("decode submissions: %w", err)
		}
		return subs, nil
	}

	var subs []Submission
	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var s Submission
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode submissions line %d: %w", line, err)
		}
		subs = append(subs, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read submissions: %w", err)
	}
	return subs, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			_, _ = br.ReadByte()
		default:
			return b[0], nil
		}
	}
}
