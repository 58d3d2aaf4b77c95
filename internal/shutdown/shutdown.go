// Package shutdown implements the ShutdownSignal abstraction of spec §9
// ("Unix-only signal handling: Graceful shutdown on SIGTERM/SIGINT, config
// reload on SIGHUP. Abstract behind a ShutdownSignal interface; platform
// implementations differ, the rest of the engine consumes a boolean
// flag."). Grounded on straga-Mimir_lite's cmd/nornicdb/main.go, which
// wires signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM) directly
// into main — generalized here into a reusable, testable component and
// one of spec §5's four permitted global singletons (the signal handler).
package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Signal is the boolean-flag abstraction the rest of the engine consumes
// (spec §9: "the rest of the engine consumes a boolean flag").
type Signal interface {
	// ShuttingDown reports whether a graceful shutdown has been requested.
	ShuttingDown() bool
	// Done returns a channel closed once shutdown is requested.
	Done() <-chan struct{}
	// ReloadRequested reports whether a config reload (SIGHUP) was
	// requested since the last call, clearing the flag.
	ReloadRequested() bool
}

// Handler listens for SIGINT/SIGTERM (graceful shutdown) and SIGHUP
// (config reload) and exposes them through the Signal interface.
type Handler struct {
	mu       sync.Mutex
	done     chan struct{}
	closed   bool
	reload   bool
	sigCh    chan os.Signal
	stopCh   chan struct{}
	stopOnce sync.Once
}

var (
	globalHandler   *Handler
	globalHandlerMu sync.Mutex
)

// Global returns the process-wide Handler, creating and starting it on
// first use.
func Global() *Handler {
	globalHandlerMu.Lock()
	defer globalHandlerMu.Unlock()
	if globalHandler == nil {
		globalHandler = NewHandler()
		globalHandler.Start()
	}
	return globalHandler
}

// NewHandler builds a Handler without starting signal delivery; call
// Start to begin listening.
func NewHandler() *Handler {
	return &Handler{
		done:   make(chan struct{}),
		sigCh:  make(chan os.Signal, 1),
		stopCh: make(chan struct{}),
	}
}

// Start registers for SIGINT/SIGTERM/SIGHUP and begins the dispatch loop.
func (h *Handler) Start() {
	signal.Notify(h.sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go h.run()
}

// Stop unregisters from signal delivery and terminates the dispatch loop.
// It does not itself trigger shutdown.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigCh)
		close(h.stopCh)
	})
}

func (h *Handler) run() {
	for {
		select {
		case sig, ok := <-h.sigCh:
			if !ok {
				return
			}
			switch sig {
			case syscall.SIGHUP:
				h.mu.Lock()
				h.reload = true
				h.mu.Unlock()
			case syscall.SIGINT, syscall.SIGTERM:
				h.triggerShutdown()
			}
		case <-h.stopCh:
			return
		}
	}
}

func (h *Handler) triggerShutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.closed = true
		close(h.done)
	}
}

// TriggerForTest forces a shutdown without waiting on a real signal,
// letting tests exercise the Done()/ShuttingDown() contract deterministically.
func (h *Handler) TriggerForTest() { h.triggerShutdown() }

// RequestReloadForTest simulates a SIGHUP for tests.
func (h *Handler) RequestReloadForTest() {
	h.mu.Lock()
	h.reload = true
	h.mu.Unlock()
}

func (h *Handler) ShuttingDown() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *Handler) Done() <-chan struct{} {
	return h.done
}

func (h *Handler) ReloadRequested() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.reload {
		h.reload = false
		return true
	}
	return false
}
