// Package store archives comparison results: a summary record per session
// plus the rendered HTML report.
//
// Two backends implement Store: an embedded Badger database (the default)
// and PostgreSQL, selected when a database URL is configured. Reports are
// stored lz4-compressed in both.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fvbommel/sortorder"
	"github.com/pierrec/lz4/v4"
)

// ErrNotFound is returned when no record exists for a session id.
var ErrNotFound = errors.New("comparison not found")

// Record summarizes one comparison.
type Record struct {
	SessionID     string    `json:"session_id"`
	Kind          string    `json:"kind"`
	File1         string    `json:"file1"`
	File2         string    `json:"file2"`
	Version1      string    `json:"version1"`
	Version2      string    `json:"version2"`
	Sheet1        string    `json:"sheet1,omitempty"`
	Sheet2        string    `json:"sheet2,omitempty"`
	ResultURL     string    `json:"result"`
	Identical     bool      `json:"identical"`
	DifferingRows int       `json:"differing_rows,omitempty"`
	CellDiffs     int       `json:"cell_diffs,omitempty"`
	Regions       int       `json:"regions,omitempty"`
	ChangedPages  []int     `json:"changed_pages,omitempty"`
	ClientIP      string    `json:"client_ip,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store persists comparison records and their reports.
type Store interface {
	// Put inserts or replaces the record for rec.SessionID.
	Put(ctx context.Context, rec Record, report []byte) error
	Get(ctx context.Context, sessionID string) (Record, error)
	// Report returns the uncompressed HTML report.
	Report(ctx context.Context, sessionID string) ([]byte, error)
	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]Record, error)
	Delete(ctx context.Context, sessionID string) error
	Close() error
}

// compress lz4-frames data.
func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compress report: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress report: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("decompress report: %w", err)
	}
	return out, nil
}

// sortRecords orders newest first, then naturally by session id.
func sortRecords(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return sortorder.NaturalLess(recs[i].SessionID, recs[j].SessionID)
	})
}
