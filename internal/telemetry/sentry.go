// Package telemetry wraps sentry-go for the core engine process: a crash
// in the capture or encode pipeline should reach a dashboard even though
// this process has no HTTP surface of its own to instrument.
package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// Init configures the Sentry SDK for this process. dsn may be empty, in
// which case Sentry stays disabled and every capture call below is a
// no-op.
func Init(dsn, release string) error {
	if dsn == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          release,
		AttachStacktrace: true,
		Tags: map[string]string{
			"service": "windowpane-core",
		},
	})
	if err != nil {
		return fmt.Errorf("telemetry: sentry init: %w", err)
	}
	return nil
}

// Flush blocks until pending events are delivered or the timeout elapses.
// Call via defer right after Init in main.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}

// CaptureError reports err with the given component tag, e.g. "capture"
// or "encode", so dashboards can filter by subsystem.
func CaptureError(err error, component string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", component)
		sentry.CaptureException(err)
	})
}
