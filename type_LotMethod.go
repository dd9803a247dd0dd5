package folio

import "fmt"

// LotMethod defines the order in which open lots are consumed by a sale.
type LotMethod int

const (
	// FIFO (First-In, First-Out) consumes the oldest lots first.
	FIFO LotMethod = iota
	// LIFO (Last-In, First-Out) consumes the newest lots first.
	LIFO
	// Specific consumes lots in a caller-supplied order.
	Specific
)

func (m LotMethod) String() string {
	switch m {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	case Specific:
		return "specific"
	default:
		return "unknown"
	}
}

// ParseLotMethod parses a string into a LotMethod.
func ParseLotMethod(s string) (LotMethod, error) {
	switch s {
	case "fifo":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	case "specific":
		return Specific, nil
	default:
		return 0, fmt.Errorf("unknown lot method: %q", s)
	}
}
