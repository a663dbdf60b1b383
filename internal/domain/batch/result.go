// Package batch holds per-product outcomes of a vector ingest run.
package batch

// ItemStatus is the processing outcome of a single product.
type ItemStatus string

// Item status values. Skipped products were not embedded: they had no text,
// were unchanged, or their chunk was given up on.
const (
	StatusOK      ItemStatus = "ok"
	StatusSkipped ItemStatus = "skipped"
	StatusError   ItemStatus = "error"
)

// Result is the outcome of processing one product.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a stored result.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewSkipped creates a skipped result. err may be nil.
func NewSkipped(id string, err error) Result { return Result{id: id, status: StatusSkipped, err: err} }

// NewError creates a failed result.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the product uid.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Summary counts the outcomes of a run. Failed products count as skipped.
type Summary struct {
	TotalProcessed int
	TotalStored    int
	TotalSkipped   int
}

// Add folds results into the summary.
func (s *Summary) Add(results ...Result) {
	for _, r := range results {
		s.TotalProcessed++
		if r.status == StatusOK {
			s.TotalStored++
		} else {
			s.TotalSkipped++
		}
	}
}
