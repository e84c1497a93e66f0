// Package batch dispatches many small jobs to the backend in fixed-size
// chunks, one completion per chunk, pacing between chunks so a long batch
// does not monopolize the backend.
//
// Chunks run strictly in input order. A rate-limit rejection aborts the
// rest of the batch and reports the items processed so far as a partial
// result; any other per-chunk failure is recorded in that chunk's output
// slot and the batch keeps going.
package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/omarluq/lm-sidekick/internal/gateway"
	"github.com/omarluq/lm-sidekick/internal/ratelimit"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// DefaultChunkSize is the number of items per chunk when the caller does
// not choose one.
const DefaultChunkSize = 5

// DefaultPacing is the wait between consecutive chunks.
const DefaultPacing = 500 * time.Millisecond

const (
	batchSystemPrompt = "You are a batch processing assistant. Process each item according to the specified operation. Be consistent across all items."
	batchTemperature  = 0.3
	batchMaxTokens    = 1024

	combineSeparator = "\n\n---\n\n"
)

// Completer is the slice of the completion gateway the dispatcher needs.
// Satisfied by *gateway.Gateway.
type Completer interface {
	Complete(ctx context.Context, req gateway.Request) (string, error)
}

// Result is the structured outcome of a batch run.
//
// ProcessedItems counts the items in chunks that were actually dispatched,
// whether the completion succeeded or failed; items cut off by a rate
// limit are not counted.
type Result struct {
	TotalItems     int      `json:"total_items"`
	ProcessedItems int      `json:"processed_items"`
	Results        []string `json:"results"`
}

// Combined joins the per-chunk outputs with a visible separator into one
// text block.
func (r Result) Combined() string {
	return strings.Join(r.Results, combineSeparator)
}

// Dispatcher chunks item lists and funnels them through the gateway.
type Dispatcher struct {
	gateway Completer
	pacing  time.Duration
	log     zerolog.Logger

	// pace waits between chunks; replaceable in tests.
	pace func(ctx context.Context) error
}

// New creates a dispatcher. pacing <= 0 uses DefaultPacing. logger may be
// nil for no logging.
func New(gw Completer, pacing time.Duration, logger *zerolog.Logger) *Dispatcher {
	if pacing <= 0 {
		pacing = DefaultPacing
	}

	log := zerolog.Nop()
	if logger != nil {
		log = logger.With().Str("component", "batch").Logger()
	}

	d := &Dispatcher{gateway: gw, pacing: pacing, log: log}
	d.pace = d.wait
	return d
}

// Process runs operation over items in chunks of batchSize (<= 0 uses
// DefaultChunkSize), one completion per chunk, in input order.
//
// A rate-limit rejection stops the batch: the partial result carries a
// warning note and a nil error. Context cancellation aborts with the
// partial result and the context's error. Any other completion failure
// only fails its own chunk.
func (d *Dispatcher) Process(ctx context.Context, items []string, operation string, batchSize int, clientID string) (Result, error) {
	if len(items) == 0 {
		return Result{}, ErrEmptyInput
	}
	if batchSize <= 0 {
		batchSize = DefaultChunkSize
	}

	chunks := lo.Chunk(items, batchSize)
	result := Result{TotalItems: len(items)}

	d.log.Info().
		Int("items", len(items)).
		Int("chunks", len(chunks)).
		Int("chunk_size", batchSize).
		Str("operation", operation).
		Msg("batch started")

	for i, chunk := range chunks {
		num := i + 1

		output, err := d.gateway.Complete(ctx, gateway.Request{
			ClientID:     clientID,
			Prompt:       chunkPrompt(chunk, operation),
			SystemPrompt: batchSystemPrompt,
			Temperature:  batchTemperature,
			MaxTokens:    batchMaxTokens,
		})

		if err != nil && ctx.Err() != nil {
			return result, ctx.Err()
		}

		switch {
		case errors.Is(err, ratelimit.ErrLimitExceeded):
			d.log.Warn().
				Int("batch", num).
				Int("processed", result.ProcessedItems).
				Msg("batch aborted by rate limit")
			result.Results = append(result.Results,
				fmt.Sprintf("⚠ Rate limit hit at batch %d. Processed %d items.", num, result.ProcessedItems))
			return result, nil
		case err != nil:
			d.log.Warn().Err(err).Int("batch", num).Msg("batch chunk failed")
			result.Results = append(result.Results,
				fmt.Sprintf("**Batch %d/%d:**\n⚠ %v", num, len(chunks), err))
			result.ProcessedItems += len(chunk)
		default:
			result.Results = append(result.Results,
				fmt.Sprintf("**Batch %d/%d:**\n%s", num, len(chunks), output))
			result.ProcessedItems += len(chunk)
		}

		if num < len(chunks) {
			if err := d.pace(ctx); err != nil {
				return result, err
			}
		}
	}

	d.log.Info().
		Int("processed", result.ProcessedItems).
		Int("chunks", len(chunks)).
		Msg("batch finished")
	return result, nil
}

// wait blocks for the pacing interval or until ctx is done.
func (d *Dispatcher) wait(ctx context.Context) error {
	timer := time.NewTimer(d.pacing)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// chunkPrompt enumerates a chunk's items, 1-indexed, under the requested
// operation.
func chunkPrompt(chunk []string, operation string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Process these %d items with operation: %s\n\n", len(chunk), operation)
	for i, item := range chunk {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return b.String()
}
