package callback_test

import (
	"testing"

	"github.com/museum-space/betlemi10-api/internal/callback"
)

func TestClassify(t *testing.T) {
	cases := map[string]callback.Status{
		"Success":    callback.StatusPaid,
		"SUCCESS":    callback.StatusPaid,
		"completed":  callback.StatusPaid,
		"paid":       callback.StatusPaid,
		"1":          callback.StatusPaid,
		"Failed":     callback.StatusFailed,
		"error":      callback.StatusFailed,
		"DECLINED":   callback.StatusFailed,
		"0":          callback.StatusFailed,
		"Pending":    callback.StatusPending,
		"processing": callback.StatusPending,
		"Cancelled":  callback.StatusCancelled,
		"canceled":   callback.StatusCancelled,
		"bogus":      callback.StatusUnknown,
		"":           callback.StatusUnknown,
		"  Paid  ":   callback.StatusPaid,
	}
	for raw, want := range cases {
		if got := callback.Classify(raw); got != want {
			t.Errorf("Classify(%q) = %s, want %s", raw, got, want)
		}
	}
}
