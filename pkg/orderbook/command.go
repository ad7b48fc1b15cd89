package orderbook

// Command is one of NewOrder, Cancel, Modify or Query. The set is closed:
// only types in this package implement it.
type Command interface {
	command()
}

type NewOrder struct {
	ID       string
	Side     Side
	Class    Class
	Price    int64
	Quantity int64
}

type Cancel struct {
	ID string
}

// Modify replaces a resting order. The replacement keeps the id and class
// but queues behind everything already resting at its new price.
type Modify struct {
	ID       string
	Side     Side
	Price    int64
	Quantity int64
}

type Query struct{}

func (NewOrder) command() {}
func (Cancel) command()   {}
func (Modify) command()   {}
func (Query) command()    {}

type Status uint8

const (
	// Applied: the command took effect (an order may still have traded to zero).
	Applied Status = iota
	// Rejected: invalid price/quantity or an id that is already resting.
	Rejected
	// NotFound: cancel or modify named an id that is not resting.
	NotFound
)

func (s Status) String() string {
	switch s {
	case Applied:
		return "applied"
	case Rejected:
		return "rejected"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Result is what a single command produced. Snapshot is only set for Query.
type Result struct {
	Status   Status
	Trades   []Trade
	Snapshot *Snapshot
}
