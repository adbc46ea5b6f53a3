package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/joist/internal/logging"
	"github.com/aretw0/joist/internal/presentation/tui"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger configures the application logger. Terminals get the pretty
// handler, everything else gets plain text on stderr.
func NewLogger(level string, pretty bool) *slog.Logger {
	lvl := logging.ParseLevel(level)
	if pretty {
		return logging.NewPretty(os.Stderr, lvl)
	}
	return logging.New(lvl)
}

// IsInteractive reports whether stdout is a terminal.
func IsInteractive() bool {
	return tui.IsTerminal(os.Stdout)
}

// PrintSystemMessage prints a standardized system message to stdout.
func PrintSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

func isInterrupted(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, http.ErrServerClosed)
}

// HandleExecutionError turns interruptions into a clean exit.
func HandleExecutionError(err error) error {
	if isInterrupted(err) {
		return nil
	}
	return err
}

// LogShutdown prints why a long-running command stopped.
func LogShutdown(what string, sig os.Signal, quiet bool) {
	if quiet {
		return
	}
	switch sig {
	case nil:
		PrintSystemMessage("%s stopped.", what)
	case os.Interrupt:
		fmt.Printf("[CTRL+C]\n")
		PrintSystemMessage("%s interrupted.", what)
	default:
		fmt.Printf("\n")
		PrintSystemMessage("%s terminated.", what)
	}
}
