package wire

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/uhyunpark/matchbook/pkg/orderbook"
)

// Submitter executes commands in arrival order. *engine.Engine satisfies it.
type Submitter interface {
	Submit(ctx context.Context, cmd orderbook.Command) (orderbook.Result, error)
}

// MaxLineSize bounds one protocol line. Longer lines are skipped as malformed.
const MaxLineSize = 64 * 1024

var ErrLineTooLong = errors.New("line too long")

// PumpStats counts what a Pump call saw.
type PumpStats struct {
	Lines     int
	Commands  int
	Malformed int
	Trades    int
}

// Pump reads protocol lines from r until EOF, submits each command and writes
// its trades or snapshot to w. Malformed lines are logged and skipped.
func Pump(ctx context.Context, r io.Reader, w io.Writer, s Submitter, log *zap.SugaredLogger) (PumpStats, error) {
	var st PumpStats
	br := bufio.NewReaderSize(r, MaxLineSize)
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	for {
		line, err := readLine(br)
		if err == io.EOF {
			break
		}
		if err != nil && !errors.Is(err, ErrLineTooLong) {
			return st, fmt.Errorf("read input: %w", err)
		}
		st.Lines++

		var cmd orderbook.Command
		if err == nil {
			cmd, err = Parse(line)
		}
		if errors.Is(err, ErrEmpty) {
			continue
		}
		if err != nil {
			st.Malformed++
			log.Warnw("malformed_line", "line", st.Lines, "err", err)
			continue
		}

		res, err := s.Submit(ctx, cmd)
		if err != nil {
			return st, fmt.Errorf("line %d: %w", st.Lines, err)
		}
		st.Commands++
		st.Trades += len(res.Trades)

		for _, t := range res.Trades {
			if _, err := fmt.Fprintln(bw, FormatTrade(t)); err != nil {
				return st, err
			}
		}
		if res.Snapshot != nil {
			if _, err := bw.WriteString(FormatSnapshot(*res.Snapshot)); err != nil {
				return st, err
			}
		}
		// stdin may be a terminal; don't hold output back until EOF
		if bw.Buffered() > 0 {
			if err := bw.Flush(); err != nil {
				return st, err
			}
		}
	}
	return st, bw.Flush()
}

// readLine returns the next line without its terminator. A line that does
// not fit in br's buffer is consumed up to its newline and reported as
// ErrLineTooLong. io.EOF is returned only once no input is left.
func readLine(br *bufio.Reader) (string, error) {
	b, err := br.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		for err == bufio.ErrBufferFull {
			_, err = br.ReadSlice('\n')
		}
		if err != nil && err != io.EOF {
			return "", err
		}
		return "", ErrLineTooLong
	}
	if err == io.EOF && len(b) > 0 {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}
