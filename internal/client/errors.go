package client

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/message"

	"github.com/gosuda/planner/internal/i18n"
	"github.com/gosuda/planner/internal/notify"
)

// Notifier is the part of notify.Center the error handler needs.
type Notifier interface {
	Show(message string, severity notify.Severity, duration time.Duration) *notify.Notification
}

// ErrorHandler is the process-wide catch-all for failures nobody else
// handled. It only logs and notifies; it never recovers state or rethrows.
type ErrorHandler struct {
	notifier Notifier
	printer  *message.Printer
	closed   atomic.Bool
}

// NewErrorHandler returns an installed handler.
func NewErrorHandler(notifier Notifier, printer *message.Printer) *ErrorHandler {
	return &ErrorHandler{notifier: notifier, printer: printer}
}

// Recover must be deferred directly. It swallows a panic in the current
// goroutine and reports it as an uncaught error.
func (h *ErrorHandler) Recover() {
	if r := recover(); r != nil {
		h.HandleError(fmt.Errorf("panic: %v", r), debug.Stack())
	}
}

// HandleError reports an uncaught error with danger severity.
func (h *ErrorHandler) HandleError(err error, stack []byte) {
	if h.closed.Load() {
		return
	}
	log.Error().Err(err).Bytes("stack", stack).Msg("uncaught error")
	h.notifier.Show(h.printer.Sprintf(i18n.UnexpectedError), notify.SeverityDanger, 0)
}

// HandleRejection reports an asynchronous failure nobody waited for, with
// warning severity.
func (h *ErrorHandler) HandleRejection(err error) {
	if h.closed.Load() {
		return
	}
	log.Error().Err(err).Msg("unhandled async failure")
	h.notifier.Show(h.printer.Sprintf(i18n.NetworkError), notify.SeverityWarning, 0)
}

// Go runs fn in its own goroutine. A returned error goes to HandleRejection
// and a panic to HandleError, since the caller is not waiting for either.
func (h *ErrorHandler) Go(ctx context.Context, fn func(ctx context.Context) error) {
	go func() {
		defer h.Recover()
		if err := fn(ctx); err != nil {
			h.HandleRejection(err)
		}
	}()
}

// Close unregisters the handler; later reports are dropped.
func (h *ErrorHandler) Close() {
	h.closed.Store(true)
}
