package sidekick

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/omarluq/lm-sidekick/internal/backend"
	"github.com/samber/lo"
)

// HealthCheck reports backend reachability, the model count, whether the
// recommended model is loaded, and the circuit breaker state.
func (s *Service) HealthCheck(ctx context.Context) string {
	list, err := s.gateway.Models(ctx)
	if err != nil {
		var statusErr *backend.BadStatusError
		switch {
		case errors.As(err, &statusErr):
			return fmt.Sprintf("⚠ LM Studio API at %s returned status code %d.", s.address, statusErr.StatusCode)
		case errors.Is(err, backend.ErrUnreachable):
			return fmt.Sprintf("✗ Cannot connect to LM Studio at %s. Make sure LM Studio is running and the server is started.", s.address)
		}
		return fmt.Sprintf("✗ Error connecting to LM Studio API at %s: %v", s.address, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✓ LM Studio API is running and accessible at %s\n", s.address)
	fmt.Fprintf(&b, "%d models available\n", len(list.Data))

	if s.hasRecommended(list) {
		fmt.Fprintf(&b, "✓ Recommended model '%s' is available!\n", s.recommendedModel)
	} else {
		fmt.Fprintf(&b, "Recommended model '%s' not found. Consider loading it for optimal performance.\n", s.recommendedModel)
	}
	fmt.Fprintf(&b, "Circuit breaker: %s", circuitLabel(s.gateway.CircuitState()))
	return b.String()
}

// ListModels returns the backend's models categorized for sidekick use,
// with the recommended model starred.
func (s *Service) ListModels(ctx context.Context) string {
	list, err := s.gateway.Models(ctx)
	if err != nil {
		var statusErr *backend.BadStatusError
		if errors.As(err, &statusErr) {
			return fmt.Sprintf("✗ Failed to fetch models from %s. Status code: %d", s.address, statusErr.StatusCode)
		}
		return fmt.Sprintf("✗ Error listing models from %s: %v", s.address, err)
	}
	if len(list.Data) == 0 {
		return fmt.Sprintf("No models found in LM Studio at %s.", s.address)
	}

	groups := categorizeModels(list.IDs())

	var b strings.Builder
	fmt.Fprintf(&b, "Available models in LM Studio (%s):\n\n", s.address)

	if len(groups.coding) > 0 {
		b.WriteString("**Coding Models** (Great for sidekick tasks):\n")
		for _, id := range groups.coding {
			if strings.Contains(id, s.recommendedModel) {
				fmt.Fprintf(&b, "  - %s ★ RECOMMENDED\n", id)
			} else {
				fmt.Fprintf(&b, "  - %s\n", id)
			}
		}
		b.WriteString("\n")
	}
	if len(groups.general) > 0 {
		b.WriteString("**General Models**:\n")
		for _, id := range groups.general {
			fmt.Fprintf(&b, "  - %s\n", id)
		}
		b.WriteString("\n")
	}
	if len(groups.specialized) > 0 {
		b.WriteString("**Specialized Models**:\n")
		for _, id := range groups.specialized {
			fmt.Fprintf(&b, "  - %s\n", id)
		}
	}
	return b.String()
}

// GetCurrentModel identifies the loaded model with a minimal probe
// completion and describes what it is good at.
func (s *Service) GetCurrentModel(ctx context.Context) string {
	model, err := s.gateway.CurrentModel(ctx)
	if err != nil {
		var statusErr *backend.BadStatusError
		if errors.As(err, &statusErr) {
			return fmt.Sprintf("✗ No model currently loaded at %s. Status code: %d", s.address, statusErr.StatusCode)
		}
		return fmt.Sprintf("✗ Error identifying current model at %s: %v", s.address, err)
	}
	if model == "" {
		model = "Unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Currently loaded model at %s: %s\n\n", s.address, model)

	lower := strings.ToLower(model)
	switch {
	case strings.Contains(lower, "coder"):
		b.WriteString("This is a coding model - perfect for:\n")
		b.WriteString("  • Code generation and refactoring\n")
		b.WriteString("  • Debugging and optimization\n")
		b.WriteString("  • Documentation tasks\n")
	case strings.Contains(lower, "instruct"):
		b.WriteString("This is an instruction-following model - great for:\n")
		b.WriteString("  • General Q&A and explanations\n")
		b.WriteString("  • Task automation\n")
		b.WriteString("  • Content generation\n")
	}
	return b.String()
}

// LoadModel asks the backend to load a model by name. Backends without
// the load endpoint get a graceful "unsupported" message.
func (s *Service) LoadModel(ctx context.Context, name string) string {
	err := s.gateway.LoadModel(ctx, name)
	if err == nil {
		return fmt.Sprintf("✓ Model '%s' loaded successfully at %s!", name, s.address)
	}
	if errors.Is(err, backend.ErrLoadUnsupported) {
		return fmt.Sprintf("⚠ Model loading not supported in this LM Studio version. Please load '%s' manually through the LM Studio UI.", name)
	}

	var statusErr *backend.BadStatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("✗ Failed to load model. Status: %d", statusErr.StatusCode)
	}
	return fmt.Sprintf("✗ Model loading failed: %v\n\nPlease load the model manually through LM Studio.", err)
}

func (s *Service) hasRecommended(list backend.ModelList) bool {
	return lo.SomeBy(list.Data, func(m backend.Model) bool {
		return strings.Contains(m.ID, s.recommendedModel)
	})
}

// modelGroups buckets model ids for the listing.
type modelGroups struct {
	coding      []string
	general     []string
	specialized []string
}

// categorizeModels buckets ids by name: anything mentioning code is a
// coding model, db/os/math/embedding names are specialized, the rest is
// general purpose.
func categorizeModels(ids []string) modelGroups {
	var groups modelGroups
	for _, id := range ids {
		lower := strings.ToLower(id)
		switch {
		case strings.Contains(lower, "code"):
			groups.coding = append(groups.coding, id)
		case containsAny(lower, "db", "os", "math", "embedding"):
			groups.specialized = append(groups.specialized, id)
		default:
			groups.general = append(groups.general, id)
		}
	}
	return groups
}

func containsAny(s string, subs ...string) bool {
	return lo.SomeBy(subs, func(sub string) bool { return strings.Contains(s, sub) })
}
