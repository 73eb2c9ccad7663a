// Package progress holds the per-enrollment completion state and the rules that
// derive sub-topic unlock state and level/module percentages from it.
package progress

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SchemaVersion is written on every marshal. Records without it are either the
// legacy bare array (0) or the untagged object shape (1).
const SchemaVersion = 2

type ContentEntry struct {
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Snapshot is the typed form of an enrollment's completedSubTopics column.
type Snapshot struct {
	Version         int                     `json:"version"`
	SubTopics       []string                `json:"subtopics"`
	ContentProgress map[string]ContentEntry `json:"contentProgress"`
}

// Entry is one flattened row of ContentProgress.
type Entry struct {
	ContentID   string     `json:"content_id"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

func New() Snapshot {
	return Snapshot{
		Version:         SchemaVersion,
		SubTopics:       []string{},
		ContentProgress: map[string]ContentEntry{},
	}
}

// Key formats a numeric row id the way it is stored in the blob.
func Key(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// Parse decodes either persisted shape. Unknown or malformed entries inside a
// well-formed container are skipped rather than failing the whole record.
func Parse(raw []byte) (Snapshot, error) {
	snap := New()
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return snap, nil
	}

	switch trimmed[0] {
	case '[':
		var ids []interface{}
		if err := json.Unmarshal(trimmed, &ids); err != nil {
			return snap, fmt.Errorf("progress: decode legacy list: %w", err)
		}
		snap.Version = 0
		snap.SubTopics = dedupIDs(ids)
		return snap, nil

	case '{':
		var obj struct {
			Version         int                        `json:"version"`
			SubTopics       []interface{}              `json:"subtopics"`
			ContentProgress map[string]json.RawMessage `json:"contentProgress"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return snap, fmt.Errorf("progress: decode snapshot: %w", err)
		}
		snap.Version = obj.Version
		if snap.Version == 0 {
			snap.Version = 1
		}
		snap.SubTopics = dedupIDs(obj.SubTopics)
		for id, rawEntry := range obj.ContentProgress {
			if entry, ok := parseEntry(rawEntry); ok {
				snap.ContentProgress[id] = entry
			}
		}
		return snap, nil
	}

	return snap, fmt.Errorf("progress: unsupported snapshot shape %q", string(trimmed[:1]))
}

func parseEntry(raw json.RawMessage) (ContentEntry, bool) {
	var e struct {
		Completed   interface{} `json:"completed"`
		CompletedAt *string     `json:"completedAt"`
		UpdatedAt   *string     `json:"updatedAt"`
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return ContentEntry{}, false
	}
	entry := ContentEntry{}
	switch v := e.Completed.(type) {
	case bool:
		entry.Completed = v
	case string:
		entry.Completed = strings.EqualFold(v, "true")
	}
	entry.CompletedAt = parseTime(e.CompletedAt)
	entry.UpdatedAt = parseTime(e.UpdatedAt)
	return entry, true
}

func parseTime(s *string) *time.Time {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(*s))
	if err != nil {
		return nil
	}
	return &t
}

func dedupIDs(in []interface{}) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		var id string
		switch t := v.(type) {
		case string:
			id = strings.TrimSpace(t)
		case float64:
			id = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			continue
		}
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Marshal always emits the current, version-tagged object shape.
func (s Snapshot) Marshal() ([]byte, error) {
	out := s
	out.Version = SchemaVersion
	if out.SubTopics == nil {
		out.SubTopics = []string{}
	}
	if out.ContentProgress == nil {
		out.ContentProgress = map[string]ContentEntry{}
	}
	return json.Marshal(out)
}

// Legacy reports whether the record was read from a pre-versioned shape.
func (s Snapshot) Legacy() bool {
	return s.Version < SchemaVersion
}

// MarkContent overwrites the entry for contentID. Repeating the call with the
// same value only refreshes timestamps.
func (s *Snapshot) MarkContent(contentID string, completed bool, now time.Time) ContentEntry {
	if s.ContentProgress == nil {
		s.ContentProgress = map[string]ContentEntry{}
	}
	ts := now.UTC()
	entry := ContentEntry{Completed: completed, UpdatedAt: &ts}
	if completed {
		entry.CompletedAt = &ts
	}
	s.ContentProgress[contentID] = entry
	return entry
}

func (s Snapshot) ContentCompleted(contentID string) bool {
	e, ok := s.ContentProgress[contentID]
	return ok && e.Completed
}

func (s Snapshot) HasSubTopic(id string) bool {
	for _, v := range s.SubTopics {
		if v == id {
			return true
		}
	}
	return false
}

// AddSubTopic appends id unless it is already present.
func (s *Snapshot) AddSubTopic(id string) bool {
	if s.HasSubTopic(id) {
		return false
	}
	s.SubTopics = append(s.SubTopics, id)
	return true
}

// RemoveSubTopic drops every occurrence of id, preserving the order of the rest.
func (s *Snapshot) RemoveSubTopic(id string) bool {
	kept := s.SubTopics[:0]
	removed := false
	for _, v := range s.SubTopics {
		if v == id {
			removed = true
			continue
		}
		kept = append(kept, v)
	}
	s.SubTopics = kept
	return removed
}

// Entries flattens ContentProgress ordered by content id.
func (s Snapshot) Entries() []Entry {
	out := make([]Entry, 0, len(s.ContentProgress))
	for id, e := range s.ContentProgress {
		out = append(out, Entry{ContentID: id, Completed: e.Completed, CompletedAt: e.CompletedAt})
	}
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].ContentID, out[j].ContentID) })
	return out
}

// lessID orders numeric ids numerically ahead of any non-numeric id, which
// sort by string.
func lessID(a, b string) bool {
	ai, aerr := strconv.ParseUint(a, 10, 64)
	bi, berr := strconv.ParseUint(b, 10, 64)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	}
	return a < b
}
