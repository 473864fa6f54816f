package callback

import "strings"

// Status is the unified payment status derived from the many upstream
// spellings observed in gateway callbacks.
type Status string

const (
	StatusPaid      Status = "paid"
	StatusFailed    Status = "failed"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
	StatusUnknown   Status = "unknown"
)

// Classify maps a raw gateway status onto a Status. The gateway has
// been observed sending both words and the numeric flags 1/0.
func Classify(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "success", "completed", "paid", "1":
		return StatusPaid
	case "failed", "error", "declined", "0":
		return StatusFailed
	case "pending", "processing":
		return StatusPending
	case "cancelled", "canceled":
		return StatusCancelled
	default:
		return StatusUnknown
	}
}
