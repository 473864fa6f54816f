package booking

import (
	"crypto/rand"
	"fmt"
	"time"
)

const orderIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderID generates a locally-unique merchant order identifier of
// the form MS-<epoch-millis>-<random6>. Uniqueness is probabilistic
// only; identifiers are not reserved against any store.
func NewOrderID() string {
	return fmt.Sprintf("MS-%d-%s", time.Now().UnixMilli(), randomSuffix(6))
}

func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; fall back
		// to a time-derived suffix rather than aborting the order.
		nano := time.Now().UnixNano()
		for i := range buf {
			buf[i] = orderIDAlphabet[int(nano>>(uint(i)*6))%len(orderIDAlphabet)]
		}
		return string(buf)
	}
	for i := range buf {
		buf[i] = orderIDAlphabet[int(buf[i])%len(orderIDAlphabet)]
	}
	return string(buf)
}
