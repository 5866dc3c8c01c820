package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber generates a human-readable order number of the form
// ORD-20250102150405-1A2B3C. Uniqueness is ultimately enforced by the
// database; the random suffix keeps collisions within the same second
// vanishingly unlikely.
func NewOrderNumber(at time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:6])
	return fmt.Sprintf("ORD-%s-%s", at.UTC().Format("20060102150405"), suffix)
}
