// Package wire speaks the line-oriented text protocol of the matchbook CLI:
//
//	BUY|SELL <GFD|IOC> <price> <qty> <id>
//	CANCEL <id>
//	MODIFY <id> <BUY|SELL> <price> <qty>
//	PRINT
//
// It turns lines into orderbook commands and renders results back to text.
package wire

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/uhyunpark/matchbook/pkg/orderbook"
)

var (
	ErrEmpty          = errors.New("empty line")
	ErrUnknownCommand = errors.New("unknown command")
	ErrArity          = errors.New("wrong number of fields")
	ErrNumber         = errors.New("not an integer")
)

// Parse reads one protocol line. Only the shape of the line is checked here;
// price and quantity ranges are left to the book.
func Parse(line string) (orderbook.Command, error) {
	f := strings.Fields(line)
	if len(f) == 0 {
		return nil, ErrEmpty
	}

	switch verb := f[0]; verb {
	case "BUY", "SELL":
		if len(f) != 5 {
			return nil, arity(verb, 5, len(f))
		}
		side, err := orderbook.ParseSide(verb)
		if err != nil {
			return nil, err
		}
		class, err := orderbook.ParseClass(f[1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", verb, err)
		}
		price, err := number(verb, "price", f[2])
		if err != nil {
			return nil, err
		}
		qty, err := number(verb, "quantity", f[3])
		if err != nil {
			return nil, err
		}
		return orderbook.NewOrder{ID: f[4], Side: side, Class: class, Price: price, Quantity: qty}, nil

	case "CANCEL":
		if len(f) != 2 {
			return nil, arity(verb, 2, len(f))
		}
		return orderbook.Cancel{ID: f[1]}, nil

	case "MODIFY":
		if len(f) != 5 {
			return nil, arity(verb, 5, len(f))
		}
		side, err := orderbook.ParseSide(f[2])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", verb, err)
		}
		price, err := number(verb, "price", f[3])
		if err != nil {
			return nil, err
		}
		qty, err := number(verb, "quantity", f[4])
		if err != nil {
			return nil, err
		}
		return orderbook.Modify{ID: f[1], Side: side, Price: price, Quantity: qty}, nil

	case "PRINT":
		if len(f) != 1 {
			return nil, arity(verb, 1, len(f))
		}
		return orderbook.Query{}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, verb)
	}
}

func arity(verb string, want, got int) error {
	return fmt.Errorf("%s: %w: want %d, got %d", verb, ErrArity, want, got)
}

func number(verb, field, s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %s %q: %w", verb, field, s, ErrNumber)
	}
	return n, nil
}
