package eventmodels

import (
	"fmt"
	"sync"
)

// RowCounts are the per-file row outcomes. They only ever add up.
type RowCounts struct {
	Read             int64
	Accepted         int64
	Ignored          int64
	MalformedTicker  int64
	IncompleteRecord int64
	Unparseable      int64
}

func (c RowCounts) Skipped() int64 {
	return c.MalformedTicker + c.IncompleteRecord + c.Unparseable
}

func (c *RowCounts) Add(other RowCounts) {
	c.Read += other.Read
	c.Accepted += other.Accepted
	c.Ignored += other.Ignored
	c.MalformedTicker += other.MalformedTicker
	c.IncompleteRecord += other.IncompleteRecord
	c.Unparseable += other.Unparseable
}

type AggregationReport struct {
	mu              sync.Mutex
	FilesDiscovered int64
	FilesProcessed  int64
	FilesFailed     int64
	FailedFiles     []string
	Rows            RowCounts
}

func (r *AggregationReport) AddFile(counts RowCounts) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.FilesProcessed++
	r.Rows.Add(counts)
}

func (r *AggregationReport) AddFailedFile(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.FilesFailed++
	r.FailedFiles = append(r.FailedFiles, path)
}

func (r *AggregationReport) RowsSkipped() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.Rows.Skipped()
}

func (r *AggregationReport) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return fmt.Sprintf("files: %d discovered, %d processed, %d failed; rows: %d read, %d accepted, %d ignored, %d skipped (%d malformed ticker, %d incomplete, %d unparseable)",
		r.FilesDiscovered, r.FilesProcessed, r.FilesFailed,
		r.Rows.Read, r.Rows.Accepted, r.Rows.Ignored, r.Rows.Skipped(),
		r.Rows.MalformedTicker, r.Rows.IncompleteRecord, r.Rows.Unparseable)
}
