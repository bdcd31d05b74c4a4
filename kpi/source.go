package kpi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Errors returned by Source.Load. The aggregator treats all of them the same:
// log and move on to the next source.
var (
	ErrNotFound = errors.New("source not found")
	ErrParse    = errors.New("source could not be parsed")
	ErrEmpty    = errors.New("source has no records")
)

// Source loads a Dashboard from one kind of input.
type Source interface {
	// Name identifies the source in logs and on Dashboard.Source.
	Name() string
	// Path is the file the source reads, or "" if none was found.
	Path() string
	Load(ctx context.Context) (Dashboard, error)
}

// readJSON decodes the file at path into v, mapping failures onto ErrNotFound
// and ErrParse.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	return nil
}

// toRows converts a decoded JSON array into rows. Elements that are not
// objects become empty rows, so they count toward a collection's length but
// every field on them coerces to 0. A value that is not an array yields no
// rows.
func toRows(v any) []Row {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	rows := make([]Row, len(items))
	for i, item := range items {
		if m, ok := item.(map[string]any); ok {
			rows[i] = Row(m)
		} else {
			rows[i] = Row{}
		}
	}
	return rows
}

// readRows decodes a JSON array file into rows. A top-level value that is not
// an array is a parse error.
func readRows(path string) ([]Row, error) {
	var doc any
	if err := readJSON(path, &doc); err != nil {
		return nil, err
	}
	if _, ok := doc.([]any); !ok {
		return nil, fmt.Errorf("%w: %s: want a JSON array", ErrParse, path)
	}
	return toRows(doc), nil
}
