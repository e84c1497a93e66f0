package sidekick

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/omarluq/lm-sidekick/internal/batch"
	"github.com/omarluq/lm-sidekick/internal/gateway"
)

// BatchProcess runs operation over items in chunks. With combine set the
// per-chunk outputs are joined into one text block; otherwise the result
// is rendered as indented JSON with total, processed, and per-chunk
// entries. A rate-limit rejection mid-batch yields a partial result, not
// a failure.
func (s *Service) BatchProcess(ctx context.Context, items []string, operation string, batchSize int, combine bool) string {
	if batchSize <= 0 {
		batchSize = s.defaultBatchSize
	}
	result, err := s.dispatcher.Process(ctx, items, operation, batchSize, gateway.ClientIDFromContext(ctx))
	switch {
	case errors.Is(err, batch.ErrEmptyInput):
		return "✗ No items provided for batch processing."
	case err != nil:
		return fmt.Sprintf("✗ Error in batch processing: %v", err)
	}

	if combine {
		return result.Combined()
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Sprintf("✗ Error in batch processing: %v", err)
	}
	return string(out)
}
