package sidekick

import (
	"fmt"
	"strings"
	"time"

	"github.com/omarluq/lm-sidekick/internal/ratelimit"
)

// Stats reports uptime, admission counters, rate-limit configuration,
// circuit state, and context storage usage.
func (s *Service) Stats() string {
	totals := s.limiter.Totals()
	usage := s.limiter.Usage(ratelimit.DefaultClientID)
	storeStats := s.store.Stats()
	uptime := time.Since(s.started).Truncate(time.Second)

	var b strings.Builder
	b.WriteString("**LM Studio Sidekick Statistics**\n\n")
	fmt.Fprintf(&b, "**Connection**: %s\n", s.address)
	fmt.Fprintf(&b, "**Uptime**: %s\n\n", uptime)

	b.WriteString("**Usage Metrics**:\n")
	fmt.Fprintf(&b, "  • Total Requests: %d\n", totals.Admitted)
	fmt.Fprintf(&b, "  • Recent Requests (last %ds): %d\n", usage.WindowSeconds, totals.Recent)
	fmt.Fprintf(&b, "  • Rate Limit: %d per %ds\n", usage.Limit, usage.WindowSeconds)
	fmt.Fprintf(&b, "  • Circuit: %s\n\n", circuitLabel(s.gateway.CircuitState()))

	b.WriteString("**Context Storage**:\n")
	fmt.Fprintf(&b, "  • Stored Contexts: %d\n", storeStats.Entries)
	fmt.Fprintf(&b, "  • Total Tokens: %d\n", storeStats.TotalTokens)
	fmt.Fprintf(&b, "  • Max Context Size: %d tokens\n", s.store.MaxTokens())

	if len(storeStats.Recent) > 0 {
		b.WriteString("\n**Stored Contexts**:\n")
		for _, entry := range storeStats.Recent {
			fmt.Fprintf(&b, "  • %s: %d tokens (stored: %s)\n",
				entry.ID, entry.Tokens, entry.CreatedAt.Format(time.RFC3339))
		}
		if more := storeStats.Entries - len(storeStats.Recent); more > 0 {
			fmt.Fprintf(&b, "  • ... and %d more\n", more)
		}
	}
	return b.String()
}
