package wire

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/uhyunpark/matchbook/pkg/engine"
	"github.com/uhyunpark/matchbook/pkg/orderbook"
)

// bookSubmitter applies commands straight to a book on the caller's goroutine.
type bookSubmitter struct{ b *orderbook.Book }

func (s bookSubmitter) Submit(_ context.Context, cmd orderbook.Command) (orderbook.Result, error) {
	return s.b.Apply(cmd), nil
}

func pump(t *testing.T, in string) (string, PumpStats) {
	t.Helper()
	var out bytes.Buffer
	st, err := Pump(context.Background(), strings.NewReader(in), &out,
		bookSubmitter{orderbook.New()}, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	return out.String(), st
}

func TestPump_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "exact match",
			in:   "SELL GFD 10 5 s1\nBUY GFD 10 5 b1\nPRINT\n",
			want: "TRADE s1 10 5 b1 10 5\nSELL:\nBUY:\n",
		},
		{
			name: "partial fill",
			in:   "SELL GFD 10 8 s1\nBUY GFD 10 5 b1\nPRINT\n",
			want: "TRADE s1 10 5 b1 10 5\nSELL:\n10 3\nBUY:\n",
		},
		{
			name: "ioc leftover dropped",
			in:   "BUY IOC 5 10 b1\nPRINT\n",
			want: "SELL:\nBUY:\n",
		},
		{
			name: "cancel",
			in:   "BUY GFD 10 5 b1\nCANCEL b1\nPRINT\n",
			want: "SELL:\nBUY:\n",
		},
		{
			name: "modify into cross",
			in:   "SELL GFD 20 5 s1\nBUY GFD 10 5 b1\nMODIFY b1 BUY 20 5\nPRINT\n",
			want: "TRADE s1 20 5 b1 20 5\nSELL:\nBUY:\n",
		},
		{
			name: "depth by level",
			in: "BUY GFD 1000 10 order1\nBUY GFD 1000 20 order2\nBUY GFD 1010 5 order3\n" +
				"SELL GFD 1100 7 order4\nPRINT\nSELL GFD 1000 15 order5\n",
			want: "SELL:\n1100 7\nBUY:\n1010 5\n1000 30\n" +
				"TRADE order3 1010 5 order5 1000 5\nTRADE order1 1000 10 order5 1000 10\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := pump(t, tt.in)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestPump_SkipsBadLines(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	in := "\nBUY GFD 10 5 b1\nBUY XXX 10 5 b2\nNOPE\n   \nSELL GFD 10 2 s1\n"

	var out bytes.Buffer
	st, err := Pump(context.Background(), strings.NewReader(in), &out,
		bookSubmitter{orderbook.New()}, zap.New(core).Sugar())
	require.NoError(t, err)

	assert.Equal(t, "TRADE b1 10 2 s1 10 2\n", out.String())
	assert.Equal(t, PumpStats{Lines: 6, Commands: 2, Malformed: 2, Trades: 1}, st)

	warned := logs.FilterMessage("malformed_line").All()
	require.Len(t, warned, 2)
	assert.EqualValues(t, 3, warned[0].ContextMap()["line"])
	assert.EqualValues(t, 4, warned[1].ContextMap()["line"])
}

type failingSubmitter struct{ err error }

func (f failingSubmitter) Submit(context.Context, orderbook.Command) (orderbook.Result, error) {
	return orderbook.Result{}, f.err
}

func TestPump_StopsOnSubmitError(t *testing.T) {
	var out bytes.Buffer
	st, err := Pump(context.Background(), strings.NewReader("PRINT\nPRINT\n"), &out,
		failingSubmitter{engine.ErrStopped}, zap.NewNop().Sugar())

	assert.ErrorIs(t, err, engine.ErrStopped)
	assert.Equal(t, 1, st.Lines)
	assert.Empty(t, out.String())
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestPump_WriteError(t *testing.T) {
	_, err := Pump(context.Background(), strings.NewReader("PRINT\n"), errWriter{},
		bookSubmitter{orderbook.New()}, zap.NewNop().Sugar())
	assert.EqualError(t, err, "closed pipe")
}

func TestPump_ThroughEngine(t *testing.T) {
	e := engine.New(orderbook.New(), engine.Config{QueueSize: 4, Verify: true})
	e.Logger = zaptest.NewLogger(t).Sugar()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- e.Run(ctx) }()
	defer func() {
		cancel()
		assert.ErrorIs(t, <-errc, context.Canceled)
	}()

	var out bytes.Buffer
	in := "SELL GFD 20 5 s1\nBUY GFD 10 5 b1\nMODIFY b1 BUY 20 5\nBUY GFD 9 1 b2\nPRINT\n"
	st, err := Pump(ctx, strings.NewReader(in), &out, e, e.Logger)
	require.NoError(t, err)

	assert.Equal(t, "TRADE s1 20 5 b1 20 5\nSELL:\nBUY:\n9 1\n", out.String())
	assert.Equal(t, 5, st.Commands)
}

func TestPump_OverlongLineIsSkipped(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	long := "CANCEL " + strings.Repeat("x", MaxLineSize+4000)
	in := "SELL GFD 10 5 s1\n" + long + "\nBUY GFD 10 5 b1\nPRINT\n"

	var out bytes.Buffer
	st, err := Pump(context.Background(), strings.NewReader(in), &out,
		bookSubmitter{orderbook.New()}, zap.New(core).Sugar())
	require.NoError(t, err)

	assert.Equal(t, "TRADE s1 10 5 b1 10 5\nSELL:\nBUY:\n", out.String())
	assert.Equal(t, PumpStats{Lines: 4, Commands: 3, Malformed: 1, Trades: 1}, st)

	warned := logs.FilterMessage("malformed_line").All()
	require.Len(t, warned, 1)
	assert.EqualValues(t, 2, warned[0].ContextMap()["line"])
}

func TestPump_OverlongLastLineWithoutNewline(t *testing.T) {
	in := "BUY GFD 10 5 b1\r\nPRINT\n" + strings.Repeat("y", 2*MaxLineSize)

	var out bytes.Buffer
	st, err := Pump(context.Background(), strings.NewReader(in), &out,
		bookSubmitter{orderbook.New()}, zap.NewNop().Sugar())
	require.NoError(t, err)

	assert.Equal(t, "SELL:\nBUY:\n10 5\n", out.String())
	assert.Equal(t, PumpStats{Lines: 3, Commands: 2, Malformed: 1}, st)
}
