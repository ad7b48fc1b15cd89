package orderbook

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownSide  = errors.New("unknown side")
	ErrUnknownClass = errors.New("unknown order class")
)

type Side int8

const (
	Buy  Side = 1
	Sell Side = -1
)

func (s Side) Opposite() Side { return -s }

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return fmt.Sprintf("Side(%d)", int8(s))
	}
}

func ParseSide(s string) (Side, error) {
	switch s {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSide, s)
}

// Class is the time-in-force of an order.
type Class uint8

const (
	// GFD orders rest until matched or canceled.
	GFD Class = iota + 1
	// IOC orders trade against what is in the book now; the rest is dropped.
	IOC
)

func (c Class) String() string {
	switch c {
	case GFD:
		return "GFD"
	case IOC:
		return "IOC"
	default:
		return fmt.Sprintf("Class(%d)", uint8(c))
	}
}

func ParseClass(s string) (Class, error) {
	switch s {
	case "GFD":
		return GFD, nil
	case "IOC":
		return IOC, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownClass, s)
}

// Order is a limit order. Everything except the remaining quantity is fixed
// at creation; remaining only goes down, and only through SideBook methods
// or the matcher.
type Order struct {
	ID       string
	Side     Side
	Class    Class
	Price    int64  // integer ticks, > 0
	Quantity int64  // original quantity, >= 0
	Seq      uint64 // arrival sequence, unique per accepted order

	remaining int64
}

func newOrder(id string, side Side, class Class, price, qty int64, seq uint64) *Order {
	return &Order{
		ID:        id,
		Side:      side,
		Class:     class,
		Price:     price,
		Quantity:  qty,
		Seq:       seq,
		remaining: qty,
	}
}

func (o *Order) Remaining() int64 { return o.remaining }

// Equal compares identity: same id and same arrival.
func (o *Order) Equal(other *Order) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.ID == other.ID && o.Seq == other.Seq
}

func (o *Order) String() string {
	return fmt.Sprintf("%s %s %s %d %d/%d seq=%d", o.ID, o.Side, o.Class, o.Price, o.remaining, o.Quantity, o.Seq)
}

func (o *Order) valid() bool {
	return o.Price > 0 && o.Quantity >= 0
}

// Leg is one side of a trade: the order and the price it was placed at.
type Leg struct {
	OrderID string
	Price   int64
}

// Trade reports a single fill. First is always the order that arrived earlier.
type Trade struct {
	First    Leg
	Second   Leg
	Quantity int64
}

func newTrade(a, b *Order, qty int64) Trade {
	if b.Seq < a.Seq {
		a, b = b, a
	}
	return Trade{
		First:    Leg{OrderID: a.ID, Price: a.Price},
		Second:   Leg{OrderID: b.ID, Price: b.Price},
		Quantity: qty,
	}
}

// Level is the aggregate resting quantity at one price on one side.
type Level struct {
	Price    int64
	Quantity int64
}

// Snapshot holds both sides' levels, each sorted by descending price.
type Snapshot struct {
	Sell []Level
	Buy  []Level
}
