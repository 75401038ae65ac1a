package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ChatSummary is one row of the user's conversation list.
type ChatSummary struct {
	ID        int64       `json:"id"`
	Title     string      `json:"title"`
	Type      Tags        `json:"type"`
	UpdatedAt BackendTime `json:"updated_at"`
}

// Tags is the canonical form of the backend "type" field, which arrives
// either as a JSON array or as a comma-joined string.
type Tags []string

func (t *Tags) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}
	switch data[0] {
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("decode tag list: %w", err)
		}
		*t = ParseTags(list...)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode tag string: %w", err)
		}
		*t = ParseTags(strings.Split(s, ",")...)
		return nil
	}
	return fmt.Errorf("unsupported tag value %s", data)
}

// ParseTags trims every value and drops the empty ones.
func ParseTags(values ...string) Tags {
	var out Tags
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// BackendTime accepts the backend's zone-less timestamps, which are UTC.
type BackendTime struct {
	time.Time
}

var backendLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (bt *BackendTime) UnmarshalJSON(data []byte) error {
	var s string
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		bt.Time = time.Time{}
		return nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode timestamp: %w", err)
	}
	if s == "" {
		bt.Time = time.Time{}
		return nil
	}
	for _, layout := range backendLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			bt.Time = t
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (bt BackendTime) MarshalJSON() ([]byte, error) {
	if bt.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(bt.UTC().Format(time.RFC3339))
}
