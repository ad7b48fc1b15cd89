// Package engine runs an order book behind a single goroutine. Every command
// runs to completion before the next one is taken off the inbox, so callers
// on any number of goroutines observe the same totally ordered history.
package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/uhyunpark/matchbook/pkg/orderbook"
	"github.com/uhyunpark/matchbook/pkg/util"
)

var (
	ErrStopped        = errors.New("engine: stopped")
	ErrAlreadyRunning = errors.New("engine: already running")
)

type Config struct {
	QueueSize     int           // inbox capacity
	StatsInterval time.Duration // 0 disables periodic stats
	Verify        bool          // check book invariants after every command
}

type request struct {
	cmd   orderbook.Command
	read  func() // set instead of cmd for reads that must see a consistent book
	reply chan orderbook.Result
}

type Stats struct {
	Commands uint64
	Trades   uint64
	Rejected uint64
	NotFound uint64
	Bids     int
	Asks     int
	BestBid  int64
	BestAsk  int64
}

type Engine struct {
	cfg   Config
	book  *orderbook.Book
	inbox chan request
	done  chan struct{}

	Logger *zap.SugaredLogger
	Clock  util.Clock

	// OnTrade is called from the engine goroutine for every trade, in the
	// order the trades happened. It must not call Submit.
	OnTrade func(orderbook.Trade)

	running  atomic.Bool
	stopOnce sync.Once

	// owned by the Run goroutine
	stats Stats
}

func New(book *orderbook.Book, cfg Config) *Engine {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	return &Engine{
		cfg:    cfg,
		book:   book,
		inbox:  make(chan request, cfg.QueueSize),
		done:   make(chan struct{}),
		Logger: zap.NewNop().Sugar(),
		Clock:  util.RealClock{},
	}
}

// Submit hands cmd to the engine and waits for its result. An error returned
// after cmd was queued does not mean it was not applied: if ctx ends while
// waiting, the command still runs and its trades are only seen by OnTrade.
func (e *Engine) Submit(ctx context.Context, cmd orderbook.Command) (orderbook.Result, error) {
	return e.do(ctx, request{cmd: cmd, reply: make(chan orderbook.Result, 1)})
}

func (e *Engine) do(ctx context.Context, req request) (orderbook.Result, error) {
	select {
	case <-ctx.Done():
		return orderbook.Result{}, ctx.Err()
	case <-e.done:
		return orderbook.Result{}, ErrStopped
	case e.inbox <- req:
	}

	select {
	case <-ctx.Done():
		// already queued; it will still be applied
		return orderbook.Result{}, ctx.Err()
	case <-e.done:
		// Run may have taken the request just before stopping
		select {
		case res := <-req.reply:
			return res, nil
		default:
			return orderbook.Result{}, ErrStopped
		}
	case res := <-req.reply:
		return res, nil
	}
}

// Done is closed once Run has returned.
func (e *Engine) Done() <-chan struct{} { return e.done }

// Run processes commands until ctx is canceled. Commands still queued when
// ctx ends are dropped and their submitters get ErrStopped.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer e.stopOnce.Do(func() { close(e.done) })

	e.Logger.Infow("engine_started",
		"queue_size", cap(e.inbox),
		"stats_interval_ms", e.cfg.StatsInterval.Milliseconds(),
		"verify", e.cfg.Verify)

	var statsC <-chan time.Time
	if e.cfg.StatsInterval > 0 {
		statsC = e.Clock.After(e.cfg.StatsInterval)
	}

	for {
		select {
		case <-ctx.Done():
			e.Logger.Infow("engine_stopped", "commands", e.stats.Commands, "trades", e.stats.Trades)
			return ctx.Err()
		case req := <-e.inbox:
			if req.read != nil {
				req.read()
				req.reply <- orderbook.Result{}
				continue
			}
			req.reply <- e.apply(req.cmd)
		case <-statsC:
			e.logStats()
			statsC = e.Clock.After(e.cfg.StatsInterval)
		}
	}
}

func (e *Engine) apply(cmd orderbook.Command) orderbook.Result {
	res := e.book.Apply(cmd)

	e.stats.Commands++
	e.stats.Trades += uint64(len(res.Trades))
	switch res.Status {
	case orderbook.Rejected:
		e.stats.Rejected++
		e.Logger.Debugw("command_rejected", "cmd", cmd)
	case orderbook.NotFound:
		e.stats.NotFound++
		e.Logger.Debugw("order_not_found", "cmd", cmd)
	}

	for _, t := range res.Trades {
		e.Logger.Debugw("trade",
			"first", t.First.OrderID, "first_px", t.First.Price,
			"second", t.Second.OrderID, "second_px", t.Second.Price,
			"qty", t.Quantity)
		if e.OnTrade != nil {
			e.OnTrade(t)
		}
	}

	if e.cfg.Verify {
		if err := e.book.Verify(); err != nil {
			e.Logger.Errorw("book_invariant_violated", "cmd", cmd, "err", err)
		}
	}
	return res
}

func (e *Engine) snapshotStats() Stats {
	s := e.stats
	s.Bids = e.book.Len(orderbook.Buy)
	s.Asks = e.book.Len(orderbook.Sell)
	s.BestBid = e.book.BestBid()
	s.BestAsk = e.book.BestAsk()
	return s
}

func (e *Engine) logStats() {
	s := e.snapshotStats()
	e.Logger.Infow("engine_progress",
		"commands", s.Commands,
		"trades", s.Trades,
		"rejected", s.Rejected,
		"not_found", s.NotFound,
		"resting_bids", s.Bids,
		"resting_asks", s.Asks,
		"best_bid", s.BestBid,
		"best_ask", s.BestAsk)
}

// Stats reads counters and book depth through the engine goroutine.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	_, err := e.do(ctx, request{
		read:  func() { out = e.snapshotStats() },
		reply: make(chan orderbook.Result, 1),
	})
	if err != nil {
		return Stats{}, err
	}
	return out, nil
}
