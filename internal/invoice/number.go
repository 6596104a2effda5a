package invoice

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"time"
)

const (
	numberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	suffixLength   = 5
)

var numberPattern = regexp.MustCompile(`^INV-\d{8}-[A-Z0-9]{5}$`)

// NewNumber returns an invoice number of the form INV-YYYYMMDD-XXXXX for
// the given day. The suffix is drawn from crypto/rand; uniqueness is
// enforced by the store, which rejects duplicates.
func NewNumber(t time.Time) string {
	suffix := make([]byte, suffixLength)
	max := big.NewInt(int64(len(numberAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		suffix[i] = numberAlphabet[n.Int64()]
	}
	return "INV-" + t.Format("20060102") + "-" + string(suffix)
}

func ValidNumber(s string) bool {
	return numberPattern.MatchString(s)
}
