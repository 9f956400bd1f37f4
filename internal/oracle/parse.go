package oracle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// parseRecords turns reply content into the raw record list. The oracle
// does not guarantee whether the list arrives bare or wrapped in an
// object, so both shapes are accepted: a top-level array is used as is,
// otherwise the first array among the object's immediate child values
// (in sorted-key order, for determinism) is used.
func parseRecords(content string) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(stripFence(content))
	if trimmed == "" {
		return nil, ErrEmptyReply
	}

	data := []byte(trimmed)
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %.80s", ErrMalformedReply, trimmed)
	}

	switch data[0] {
	case '[':
		var records []json.RawMessage
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
		}
		return records, nil

	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
		}

		keys := make([]string, 0, len(wrapper))
		for k := range wrapper {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			child := bytes.TrimSpace(wrapper[k])
			if len(child) == 0 || child[0] != '[' {
				continue
			}
			var records []json.RawMessage
			if err := json.Unmarshal(child, &records); err != nil {
				continue
			}
			return records, nil
		}
		return nil, ErrUnexpectedShape

	default:
		// Valid JSON, but a scalar holds no records.
		return nil, ErrUnexpectedShape
	}
}

// stripFence removes a surrounding markdown code fence if the oracle
// ignored the no-fences instruction.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	nl := strings.Index(s, "\n")
	if nl < 0 {
		return s
	}
	s = s[nl+1:]

	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}
