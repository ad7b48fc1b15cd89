package orderbook

import (
	"errors"
	"fmt"

	"github.com/uhyunpark/matchbook/pkg/util"
)

// Book is the two-sided order book for one instrument. It is single-writer:
// callers must not use it from more than one goroutine at a time (see
// pkg/engine for a sequential executor around it).
type Book struct {
	bids *SideBook
	asks *SideBook
	seq  *util.Sequencer
}

// NewBook wires a book from its two sides and an arrival sequencer.
func NewBook(bids, asks *SideBook, seq *util.Sequencer) *Book {
	if bids.Side() != Buy || asks.Side() != Sell {
		panic(fmt.Sprintf("orderbook: NewBook sides are %s/%s, want BUY/SELL", bids.Side(), asks.Side()))
	}
	return &Book{bids: bids, asks: asks, seq: seq}
}

// New returns an empty book with a fresh sequencer.
func New() *Book {
	return NewBook(NewSideBook(Buy), NewSideBook(Sell), util.NewSequencer(0))
}

func (b *Book) side(s Side) *SideBook {
	if s == Buy {
		return b.bids
	}
	return b.asks
}

// Apply executes one command to completion.
func (b *Book) Apply(cmd Command) Result {
	switch c := cmd.(type) {
	case NewOrder:
		return b.Submit(c)
	case Cancel:
		return b.Cancel(c.ID)
	case Modify:
		return b.Modify(c)
	case Query:
		snap := b.Snapshot()
		return Result{Status: Applied, Snapshot: &snap}
	default:
		panic(fmt.Sprintf("orderbook: unhandled command %T", cmd))
	}
}

// Submit places a new limit order and matches it against the opposite side.
func (b *Book) Submit(no NewOrder) Result {
	if no.Price <= 0 || no.Quantity < 0 || (no.Side != Buy && no.Side != Sell) {
		return Result{Status: Rejected}
	}
	if no.Class != GFD && no.Class != IOC {
		return Result{Status: Rejected}
	}
	if _, _, ok := b.find(no.ID); ok {
		return Result{Status: Rejected}
	}

	o := newOrder(no.ID, no.Side, no.Class, no.Price, no.Quantity, b.seq.Next())
	trades := match(o, b.side(o.Side), b.side(o.Side.Opposite()))
	return Result{Status: Applied, Trades: trades}
}

// Cancel removes a resting order. Unknown ids are a no-op.
func (b *Book) Cancel(id string) Result {
	sb, o, ok := b.find(id)
	if !ok {
		return Result{Status: NotFound}
	}
	sb.Remove(o)
	return Result{Status: Applied}
}

// Modify cancels the resting order and re-enters it with the new side,
// price and quantity through the normal submission path, so it can trade
// immediately. IOC orders are only canceled.
func (b *Book) Modify(m Modify) Result {
	sb, o, ok := b.find(m.ID)
	if !ok {
		return Result{Status: NotFound}
	}
	sb.Remove(o)
	if o.Class == IOC {
		return Result{Status: Applied}
	}
	return b.Submit(NewOrder{
		ID:       m.ID,
		Side:     m.Side,
		Class:    o.Class,
		Price:    m.Price,
		Quantity: m.Quantity,
	})
}

func (b *Book) find(id string) (*SideBook, *Order, bool) {
	if o, ok := b.bids.FindByID(id); ok {
		return b.bids, o, true
	}
	if o, ok := b.asks.FindByID(id); ok {
		return b.asks, o, true
	}
	return nil, nil, false
}

// Snapshot returns the aggregate levels of both sides. It does not modify the book.
func (b *Book) Snapshot() Snapshot {
	return Snapshot{
		Sell: b.asks.PriceSnapshot(),
		Buy:  b.bids.PriceSnapshot(),
	}
}

// Lookup returns a copy of a resting order.
func (b *Book) Lookup(id string) (Order, bool) {
	_, o, ok := b.find(id)
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// BestBid returns the highest resting buy price, or 0 if there are no bids.
func (b *Book) BestBid() int64 {
	if o, ok := b.bids.Best(); ok {
		return o.Price
	}
	return 0
}

// BestAsk returns the lowest resting sell price, or 0 if there are no asks.
func (b *Book) BestAsk() int64 {
	if o, ok := b.asks.Best(); ok {
		return o.Price
	}
	return 0
}

// Len returns the number of resting orders on a side.
func (b *Book) Len(s Side) int {
	return b.side(s).Len()
}

// Verify checks both sides' price indexes against their resting orders.
func (b *Book) Verify() error {
	return errors.Join(b.bids.Verify(), b.asks.Verify())
}
