package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhyunpark/matchbook/pkg/orderbook"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want orderbook.Command
	}{
		{"BUY GFD 1000 10 order1", orderbook.NewOrder{ID: "order1", Side: orderbook.Buy, Class: orderbook.GFD, Price: 1000, Quantity: 10}},
		{"SELL IOC 900 5 s-2", orderbook.NewOrder{ID: "s-2", Side: orderbook.Sell, Class: orderbook.IOC, Price: 900, Quantity: 5}},
		{"  BUY   GFD 7 0 z  ", orderbook.NewOrder{ID: "z", Side: orderbook.Buy, Class: orderbook.GFD, Price: 7, Quantity: 0}},
		// ranges are the book's business
		{"BUY GFD -5 -1 neg", orderbook.NewOrder{ID: "neg", Side: orderbook.Buy, Class: orderbook.GFD, Price: -5, Quantity: -1}},
		{"CANCEL order1", orderbook.Cancel{ID: "order1"}},
		{"MODIFY order1 SELL 1000 10", orderbook.Modify{ID: "order1", Side: orderbook.Sell, Price: 1000, Quantity: 10}},
		{"PRINT", orderbook.Query{}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		line string
		want error
	}{
		{"", ErrEmpty},
		{"   \t ", ErrEmpty},
		{"HOLD x", ErrUnknownCommand},
		{"buy GFD 1 1 x", ErrUnknownCommand},
		{"BUY GFD 10 5", ErrArity},
		{"BUY GFD 10 5 x extra", ErrArity},
		{"CANCEL", ErrArity},
		{"CANCEL a b", ErrArity},
		{"MODIFY a BUY 10", ErrArity},
		{"PRINT now", ErrArity},
		{"BUY FOK 10 5 x", orderbook.ErrUnknownClass},
		{"MODIFY a HOLD 10 5", orderbook.ErrUnknownSide},
		{"SELL GFD ten 5 x", ErrNumber},
		{"SELL GFD 10 5.5 x", ErrNumber},
		{"MODIFY a BUY 10 99999999999999999999", ErrNumber},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, err := Parse(tt.line)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, cmd)
		})
	}
}
