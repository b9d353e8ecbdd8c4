package trade

import "fmt"

// BulkResult reports the outcome of a bulk create. Skipped items are reported,
// never rolled back individually.
type BulkResult struct {
	SuccessCount int      `json:"success_count"`
	SkippedCount int      `json:"skipped_count"`
	Errors       []string `json:"errors,omitempty"`
	Replayed     bool     `json:"replayed,omitempty"`
}

// Succeeded counts one applied item
func (r *BulkResult) Succeeded() {
	r.SuccessCount++
}

// Skip counts one skipped item and records why
func (r *BulkResult) Skip(format string, args ...any) {
	r.SkippedCount++
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}
