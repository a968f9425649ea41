package curseforge

import (
	"encoding/json"
	"fmt"
	"time"
)

// LenientTime is an RFC3339 timestamp that also accepts a value missing its
// zone designator, which is then read as UTC. The placeholder category the
// API serves reports "0001-01-01T00:00:00".
type LenientTime struct {
	time.Time
}

// ParseLenientTime parses s as RFC3339, retrying with a "Z" suffix. The retry
// is a full RFC3339 parse, so malformed input still fails.
func ParseLenientTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t.UTC(), nil
	}
	t, retryErr := time.Parse(time.RFC3339, s+"Z")
	if retryErr != nil {
		return time.Time{}, &DecodeError{Text: s, Err: fmt.Errorf("parse timestamp: %w", retryErr)}
	}
	return t.UTC(), nil
}

func (t *LenientTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &DecodeError{Text: string(data), Err: fmt.Errorf("timestamp must be a string: %w", err)}
	}
	parsed, err := ParseLenientTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t LenientTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
