package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

const spinnerTick = 80 * time.Millisecond

// Spinner animates one status line on w while a pipeline stage runs, with
// the elapsed time after the message:
//
//	⠹ building graph 1.4s
//
// It stops by itself when ctx ends.
type Spinner struct {
	w       io.Writer
	message string
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stop    sync.Once
	width   int
}

func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &Spinner{w: w, message: message, ctx: ctx, cancel: cancel, done: make(chan struct{})}
}

// Start draws frames until Stop is called or the context ends.
func (s *Spinner) Start() {
	start := time.Now()
	go func() {
		defer close(s.done)
		tick := time.NewTicker(spinnerTick)
		defer tick.Stop()
		for frame := 0; ; frame++ {
			select {
			case <-s.ctx.Done():
				return
			case <-tick.C:
			}
			line := fmt.Sprintf("%s %s %s",
				styleIconSpinner.Render(string(spinnerFrames[frame%len(spinnerFrames)])),
				styleDim.Render(s.message),
				styleDim.Render(fmt.Sprintf("%.1fs", time.Since(start).Seconds())))
			s.width = max(s.width, lipgloss.Width(line))
			fmt.Fprint(s.w, "\r"+line)
		}
	}()
}

// Stop waits for the drawing goroutine and blanks the line. Later calls do
// nothing.
func (s *Spinner) Stop() {
	s.stop.Do(func() {
		s.cancel()
		<-s.done
		if s.width > 0 {
			fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.width)+"\r")
		}
	})
}
