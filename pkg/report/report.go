// Package report defines validation reports and where they are kept.
//
// A [Report] records one merge-and-validate run: the graph it ran on, one
// [Step] per partition that was checked, and the final [Verdict]. Reports
// are written by the CLI (--save) and the HTTP server and read back by
// "qivalidate reports" and GET /v1/reports/{id}.
//
// Two [Store] backends exist:
//   - [FileStore]: one JSON file per report, for the CLI
//   - [MongoStore]: a MongoDB collection, for the server
package report

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/qivalidate/pkg/qi"
)

// Verdict is the outcome of a step or a whole run.
type Verdict string

const (
	// VerdictPass means qi reached the required value.
	VerdictPass Verdict = "PASS"
	// VerdictFail means qi is known to be below the required value.
	VerdictFail Verdict = "FAIL"
	// VerdictPartial means the engine could not decide.
	VerdictPartial Verdict = "PARTIAL"
)

// Graph summarizes the graph a report was computed on.
type Graph struct {
	Name      string `json:"name,omitempty" bson:"name,omitempty"`
	Vertices  int    `json:"vertices" bson:"vertices"`
	Edges     int    `json:"edges" bson:"edges"`
	CriticalK int    `json:"critical_k" bson:"critical_k"`
	// Hash is the SHA-256 of the graph's text form.
	Hash string `json:"hash" bson:"hash"`
}

// Step is one checked partition. Step 0 is the identity partition.
type Step struct {
	Index     int           `json:"index" bson:"index"`
	Blocks    int           `json:"blocks" bson:"blocks"`
	Qi        int           `json:"qi" bson:"qi"`
	Required  int           `json:"required" bson:"required"`
	Verdict   Verdict       `json:"verdict" bson:"verdict"`
	Method    qi.Method     `json:"method" bson:"method"`
	Partition string        `json:"partition" bson:"partition"`
	Operation string        `json:"operation,omitempty" bson:"operation,omitempty"`
	CacheHit  bool          `json:"cache_hit,omitempty" bson:"cache_hit,omitempty"`
	Duration  time.Duration `json:"duration_ns" bson:"duration_ns"`
}

// Report is the record of one run.
type Report struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Graph     Graph     `json:"graph" bson:"graph"`
	Seed      uint64    `json:"seed" bson:"seed"`
	Strategy  string    `json:"strategy" bson:"strategy"`
	Steps     []Step    `json:"steps" bson:"steps"`

	// Stalled is set when no connected block pair was left before the
	// partition reached the critical size.
	Stalled bool `json:"stalled,omitempty" bson:"stalled,omitempty"`
	// Truncated is set when the run hit its step limit.
	Truncated bool `json:"truncated,omitempty" bson:"truncated,omitempty"`

	FinalBlocks   int           `json:"final_blocks" bson:"final_blocks"`
	FinalQi       int           `json:"final_qi" bson:"final_qi"`
	FinalRequired int           `json:"final_required" bson:"final_required"`
	Outcome       Verdict       `json:"outcome" bson:"outcome"`
	Duration      time.Duration `json:"duration_ns" bson:"duration_ns"`
}

// New returns an empty report with a fresh ID and creation time.
func New() *Report {
	return &Report{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
}

// Failures counts the failed steps.
func (r *Report) Failures() int {
	return r.count(VerdictFail)
}

// Undetermined counts the steps the engine could not decide.
func (r *Report) Undetermined() int {
	return r.count(VerdictPartial)
}

func (r *Report) count(v Verdict) int {
	n := 0
	for _, s := range r.Steps {
		if s.Verdict == v {
			n++
		}
	}
	return n
}

// Store persists reports.
type Store interface {
	// Save inserts or replaces r.
	Save(ctx context.Context, r *Report) error

	// Get returns the report with id, or an error with code
	// REPORT_NOT_FOUND.
	Get(ctx context.Context, id string) (*Report, error)

	// List returns up to limit reports, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]*Report, error)

	// Delete removes the report with id. A missing report is not an error.
	Delete(ctx context.Context, id string) error

	Close() error
}
