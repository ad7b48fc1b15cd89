package orderbook

import (
	"fmt"
	"iter"
	"sort"

	"github.com/google/btree"
)

const btreeDegree = 32

// SideBook holds the resting orders of one side in priority order, together
// with an id index and the aggregate remaining quantity per price.
//
// Every change to the order set goes through Insert, Remove or
// ReduceQuantity, which update the order set and the price index in the same
// step. Not safe for concurrent use.
type SideBook struct {
	side       Side
	orders     *btree.BTreeG[*Order]
	byID       map[string]*Order
	priceIndex map[int64]int64
}

func NewSideBook(side Side) *SideBook {
	return &SideBook{
		side:       side,
		orders:     btree.NewG(btreeDegree, priorityLess(side)),
		byID:       make(map[string]*Order),
		priceIndex: make(map[int64]int64),
	}
}

// priorityLess orders bids by price descending, asks by price ascending,
// and equal prices by arrival.
func priorityLess(side Side) btree.LessFunc[*Order] {
	if side == Buy {
		return func(a, b *Order) bool {
			if a.Price != b.Price {
				return a.Price > b.Price
			}
			return a.Seq < b.Seq
		}
	}
	return func(a, b *Order) bool {
		if a.Price != b.Price {
			return a.Price < b.Price
		}
		return a.Seq < b.Seq
	}
}

func (s *SideBook) Side() Side { return s.side }

func (s *SideBook) Len() int { return s.orders.Len() }

// Insert rests o. It reports false, leaving the book untouched, when o is
// invalid, belongs to the other side, or its id is already resting here.
func (s *SideBook) Insert(o *Order) bool {
	if o == nil || !o.valid() || o.Side != s.side {
		return false
	}
	if _, dup := s.byID[o.ID]; dup {
		return false
	}
	s.orders.ReplaceOrInsert(o)
	s.byID[o.ID] = o
	s.priceIndex[o.Price] += o.remaining
	return true
}

// Remove takes o out of the book. Orders that are not resting here are ignored.
func (s *SideBook) Remove(o *Order) bool {
	if o == nil || s.byID[o.ID] != o {
		return false
	}
	s.subtract(o.Price, o.remaining)
	s.orders.Delete(o)
	delete(s.byID, o.ID)
	return true
}

func (s *SideBook) FindByID(id string) (*Order, bool) {
	o, ok := s.byID[id]
	return o, ok
}

// ReduceQuantity fills delta of a resting order. An order that reaches zero
// leaves the book; its contribution to the price index is already gone.
func (s *SideBook) ReduceQuantity(o *Order, delta int64) bool {
	if o == nil || s.byID[o.ID] != o || delta <= 0 || delta > o.remaining {
		return false
	}
	o.remaining -= delta
	s.subtract(o.Price, delta)
	if o.remaining == 0 {
		s.orders.Delete(o)
		delete(s.byID, o.ID)
	}
	return true
}

func (s *SideBook) subtract(price, qty int64) {
	left := s.priceIndex[price] - qty
	if left == 0 {
		delete(s.priceIndex, price)
		return
	}
	s.priceIndex[price] = left
}

// Best returns the highest-priority resting order.
func (s *SideBook) Best() (*Order, bool) {
	return s.orders.Min()
}

// All yields resting orders in priority order. Each call starts a fresh
// walk over the current contents. The book must not be modified while the
// sequence is being consumed.
func (s *SideBook) All() iter.Seq[*Order] {
	return func(yield func(*Order) bool) {
		s.orders.Ascend(func(o *Order) bool {
			return yield(o)
		})
	}
}

// Depth returns the aggregate remaining quantity at price.
func (s *SideBook) Depth(price int64) int64 {
	return s.priceIndex[price]
}

// PriceSnapshot lists the non-empty levels, highest price first.
func (s *SideBook) PriceSnapshot() []Level {
	levels := make([]Level, 0, len(s.priceIndex))
	for price, qty := range s.priceIndex {
		if qty > 0 {
			levels = append(levels, Level{Price: price, Quantity: qty})
		}
	}
	sort.Slice(levels, func(i, j int) bool {
		return levels[i].Price > levels[j].Price
	})
	return levels
}

// Verify recomputes the price index from the resting orders and reports the
// first inconsistency it finds.
func (s *SideBook) Verify() error {
	if s.orders.Len() != len(s.byID) {
		return fmt.Errorf("%s book: %d ordered entries but %d indexed ids", s.side, s.orders.Len(), len(s.byID))
	}

	sums := make(map[int64]int64)
	var bad error
	s.orders.Ascend(func(o *Order) bool {
		switch {
		case o.Side != s.side:
			bad = fmt.Errorf("%s book: order %s has side %s", s.side, o.ID, o.Side)
		case o.remaining < 0 || o.remaining > o.Quantity:
			bad = fmt.Errorf("%s book: order %s remaining %d outside [0, %d]", s.side, o.ID, o.remaining, o.Quantity)
		case s.byID[o.ID] != o:
			bad = fmt.Errorf("%s book: order %s missing from id index", s.side, o.ID)
		}
		sums[o.Price] += o.remaining
		return bad == nil
	})
	if bad != nil {
		return bad
	}

	for price, want := range sums {
		if got := s.priceIndex[price]; got != want {
			return fmt.Errorf("%s book: price %d aggregate %d, resting orders sum to %d", s.side, price, got, want)
		}
	}
	for price, got := range s.priceIndex {
		if _, ok := sums[price]; !ok && got != 0 {
			return fmt.Errorf("%s book: price %d aggregate %d with no resting orders", s.side, price, got)
		}
	}
	return nil
}
