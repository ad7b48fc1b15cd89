package wire

import (
	"strconv"
	"strings"

	"github.com/uhyunpark/matchbook/pkg/orderbook"
)

// FormatTrade renders "TRADE <id1> <price1> <qty> <id2> <price2> <qty>",
// earlier order first.
func FormatTrade(t orderbook.Trade) string {
	var sb strings.Builder
	sb.WriteString("TRADE ")
	writeLeg(&sb, t.First, t.Quantity)
	sb.WriteByte(' ')
	writeLeg(&sb, t.Second, t.Quantity)
	return sb.String()
}

func writeLeg(sb *strings.Builder, l orderbook.Leg, qty int64) {
	sb.WriteString(l.OrderID)
	sb.WriteByte(' ')
	sb.WriteString(strconv.FormatInt(l.Price, 10))
	sb.WriteByte(' ')
	sb.WriteString(strconv.FormatInt(qty, 10))
}

// FormatSnapshot renders the PRINT output. Every line, headers included,
// ends in a newline.
func FormatSnapshot(s orderbook.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("SELL:\n")
	writeLevels(&sb, s.Sell)
	sb.WriteString("BUY:\n")
	writeLevels(&sb, s.Buy)
	return sb.String()
}

func writeLevels(sb *strings.Builder, levels []orderbook.Level) {
	for _, l := range levels {
		sb.WriteString(strconv.FormatInt(l.Price, 10))
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatInt(l.Quantity, 10))
		sb.WriteByte('\n')
	}
}
