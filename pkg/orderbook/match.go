package orderbook

func crosses(incoming, resting *Order) bool {
	if incoming.Side == Buy {
		return incoming.Price >= resting.Price
	}
	return incoming.Price <= resting.Price
}

// match runs incoming against the opposite book in priority order until it
// is filled or the best resting order no longer crosses. A GFD remainder
// rests in own; an IOC remainder is dropped.
func match(incoming *Order, own, opposite *SideBook) []Trade {
	var trades []Trade

	for incoming.remaining > 0 {
		maker, ok := opposite.Best()
		if !ok || !crosses(incoming, maker) {
			break
		}
		if maker.remaining == 0 {
			// empty orders can be rested through SideBook.Insert directly; they never trade
			opposite.Remove(maker)
			continue
		}

		qty := min(incoming.remaining, maker.remaining)
		trades = append(trades, newTrade(incoming, maker, qty))

		// incoming is not resting yet, so it has no price index entry to keep in step
		incoming.remaining -= qty
		opposite.ReduceQuantity(maker, qty)
	}

	if incoming.remaining > 0 && incoming.Class == GFD {
		own.Insert(incoming)
	}
	return trades
}
