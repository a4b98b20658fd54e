// Package storage handles entry persistence in JSONL and SQLite formats.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"github.com/matsen/bibparse/internal/bibtex"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// Import actions reported by Merge.
const (
	ActionNew    = "new"
	ActionUpdate = "update"
	ActionSkip   = "skip"
)

// EntryWithAction pairs an incoming entry with what Merge did with it.
type EntryWithAction struct {
	Entry       *bibtex.Entry
	Action      string // new, update, skip
	ExistingIdx int    // Index in the merged list
}

// ReadAll reads all entries from a JSONL file.
func ReadAll(path string) ([]*bibtex.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Missing library is an empty library
		}
		return nil, fmt.Errorf("opening entries file: %w", err)
	}
	defer f.Close()

	var entries []*bibtex.Entry
	scanner := bufio.NewScanner(f)
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var e bibtex.Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		entries = append(entries, &e)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading entries file: %w", err)
	}

	return entries, nil
}

// Append adds an entry to the end of a JSONL file.
func Append(path string, e *bibtex.Entry) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening entries file for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding entry %s: %w", e.Key, err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing entry %s: %w", e.Key, err)
	}
	return nil
}

// WriteAll writes all entries to a JSONL file, replacing existing content.
func WriteAll(path string, entries []*bibtex.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating entries file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encoding entry %s: %w", e.Key, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("writing entry %s: %w", e.Key, err)
		}
	}
	return w.Flush()
}

// FindByKey searches for an entry by citation key.
func FindByKey(entries []*bibtex.Entry, key string) (int, bool) {
	for i, e := range entries {
		if e.Key == key {
			return i, true
		}
	}
	return -1, false
}

// Merge folds incoming entries into existing ones by citation key. A known
// key is replaced unless the entry is unchanged; unknown keys are appended.
// The existing slice is not modified.
func Merge(existing, incoming []*bibtex.Entry) ([]*bibtex.Entry, []EntryWithAction) {
	merged := append([]*bibtex.Entry(nil), existing...)
	actions := make([]EntryWithAction, 0, len(incoming))

	for _, e := range incoming {
		idx, found := FindByKey(merged, e.Key)
		switch {
		case !found:
			merged = append(merged, e)
			actions = append(actions, EntryWithAction{Entry: e, Action: ActionNew, ExistingIdx: len(merged) - 1})
		case reflect.DeepEqual(merged[idx], e):
			actions = append(actions, EntryWithAction{Entry: e, Action: ActionSkip, ExistingIdx: idx})
		default:
			merged[idx] = e
			actions = append(actions, EntryWithAction{Entry: e, Action: ActionUpdate, ExistingIdx: idx})
		}
	}
	return merged, actions
}
