// Package ro adapts OS signal delivery into samber/ro observables. The
// serve command blocks on WaitForShutdown instead of wiring signal.Notify
// channels by hand.
package ro

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/ro"
)

// ShutdownSignals are the OS signals that trigger graceful shutdown.
var ShutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

// GracefulShutdown creates an Observable that emits the first shutdown
// signal received and then completes. Signal delivery is registered when
// the Observable is subscribed, not when it is created.
func GracefulShutdown() ro.Observable[os.Signal] {
	return GracefulShutdownWithSignals(ShutdownSignals...)
}

// GracefulShutdownWithSignals creates an Observable for a custom signal set.
//
// Example:
//
//	// Only handle SIGTERM
//	shutdown := GracefulShutdownWithSignals(syscall.SIGTERM)
func GracefulShutdownWithSignals(signals ...os.Signal) ro.Observable[os.Signal] {
	return ro.NewObservableWithContext(func(ctx context.Context, observer ro.Observer[os.Signal]) ro.Teardown {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, signals...)

		go func() {
			select {
			case sig := <-ch:
				observer.NextWithContext(ctx, sig)
				observer.CompleteWithContext(ctx)
			case <-ctx.Done():
				observer.ErrorWithContext(ctx, ctx.Err())
			}
		}()

		return func() {
			signal.Stop(ch)
		}
	})
}

// WaitForShutdown blocks until a shutdown signal is received or the context
// is canceled. Returns the received signal or the context error.
//
// Example:
//
//	sig, err := WaitForShutdown(ctx)
//	if err != nil {
//	    return err
//	}
//	log.Info().Msgf("received %v, shutting down", sig)
func WaitForShutdown(ctx context.Context) (os.Signal, error) {
	results, _, err := ro.CollectWithContext(ctx, GracefulShutdown())
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ctx.Err()
	}
	return results[0], nil
}
