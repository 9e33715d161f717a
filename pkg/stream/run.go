package stream

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dkoosis/tapmonkey/pkg/statusline"
	"github.com/dkoosis/tapmonkey/pkg/tap"
)

// Exit codes returned by Run.
const (
	ExitOK          = 0
	ExitBailOut     = 1
	ExitError       = 2
	ExitInterrupted = 130
)

// Run reads TAP from r and renders it until the stream ends, the producer
// bails out, or ctx is cancelled. Failed assertions do not change the exit
// code; only a bail-out (1), a rendering or read error (2) or an interrupt
// (130) do.
func Run(ctx context.Context, r io.Reader, out, errOut io.Writer, line statusline.Line, opts Options) int {
	rd := NewRenderer(out, errOut, line, opts)
	defer rd.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var handleErr error
	err := tap.Stream(ctx, r, func(e tap.Event) {
		if handleErr != nil {
			return
		}
		if err := rd.Handle(e); err != nil {
			handleErr = err
			cancel()
		}
	})
	rd.Close()

	var bail *BailOutError
	switch {
	case errors.As(handleErr, &bail):
		return ExitBailOut
	case handleErr != nil:
		fmt.Fprintf(errOut, "tapmonkey: %v\n", handleErr)
		return ExitError
	case err != nil && ctx.Err() != nil:
		return ExitInterrupted
	case err != nil:
		fmt.Fprintf(errOut, "tapmonkey: %v\n", err)
		return ExitError
	}
	return ExitOK
}
