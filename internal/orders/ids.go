package orders

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const (
	base36Alphabet      = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	orderIDSuffixChars  = 6
	defaultTrackingSize = 9
)

// NewOrderID returns ORD-<unix millis>-<random base36>.
func NewOrderID(now time.Time) (string, error) {
	suffix, err := randomBase36(orderIDSuffixChars)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix), nil
}

// NewTrackingNumber returns TRK- followed by size uppercase base36 characters.
func NewTrackingNumber(size int) (string, error) {
	if size <= 0 {
		size = defaultTrackingSize
	}
	code, err := randomBase36(size)
	if err != nil {
		return "", err
	}
	return "TRK-" + code, nil
}

func randomBase36(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	max := big.NewInt(int64(len(base36Alphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("random id: %w", err)
		}
		b.WriteByte(base36Alphabet[idx.Int64()])
	}
	return b.String(), nil
}
