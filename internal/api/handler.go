package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/omarluq/lm-sidekick/internal/gateway"
	"github.com/omarluq/lm-sidekick/internal/sidekick"
)

// UnknownToolError reports a tool name with no registered handler.
type UnknownToolError struct {
	Tool string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("api: unknown tool %q", e.Tool)
}

// MissingArgError reports a required argument absent from the request body.
type MissingArgError struct {
	Arg string
}

func (e *MissingArgError) Error() string {
	return fmt.Sprintf("api: missing required argument %q", e.Arg)
}

// ToolHandler dispatches POST /v1/tools/{tool} invocations to the sidekick
// service. Arguments arrive as a JSON object; absent optional fields fall
// back to the service defaults. Results are plain text.
type ToolHandler struct {
	service *sidekick.Service
}

// NewToolHandler creates a handler backed by the given service.
func NewToolHandler(service *sidekick.Service) *ToolHandler {
	return &ToolHandler{service: service}
}

// ServeHTTP handles a tool invocation.
func (h *ToolHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		if IsBodyTooLargeError(err) {
			WriteBodyTooLargeError(w)
			return
		}
		WriteError(w, http.StatusBadRequest, "invalid_request_error", "could not read request body")
		return
	}

	// An empty body is fine for tools without arguments
	if len(body) > 0 && !gjson.ValidBytes(body) {
		WriteError(w, http.StatusBadRequest, "invalid_request_error", "request body is not valid JSON")
		return
	}

	ctx := r.Context()
	if clientID := r.Header.Get("X-Client-ID"); clientID != "" {
		ctx = gateway.WithClientID(ctx, clientID)
	}

	text, err := h.dispatch(ctx, r.PathValue("tool"), gjson.ParseBytes(body))
	if err != nil {
		writeDispatchError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(text)); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write tool response")
	}
}

func writeDispatchError(w http.ResponseWriter, err error) {
	var unknown *UnknownToolError
	var missing *MissingArgError

	switch {
	case errors.As(err, &unknown):
		WriteError(w, http.StatusNotFound, "not_found_error",
			fmt.Sprintf("unknown tool: %s", unknown.Tool))
	case errors.As(err, &missing):
		WriteError(w, http.StatusBadRequest, "invalid_request_error",
			fmt.Sprintf("missing required argument: %s", missing.Arg))
	default:
		WriteError(w, http.StatusInternalServerError, "api_error", "internal error")
	}
}

//nolint:cyclop // one case per tool keeps the surface in a single place
func (h *ToolHandler) dispatch(ctx context.Context, tool string, args gjson.Result) (string, error) {
	switch tool {
	case "health_check":
		return h.service.HealthCheck(ctx), nil

	case "list_models":
		return h.service.ListModels(ctx), nil

	case "get_current_model":
		return h.service.GetCurrentModel(ctx), nil

	case "load_model":
		name, err := requireString(args, "model_name")
		if err != nil {
			return "", err
		}
		return h.service.LoadModel(ctx, name), nil

	case "chat_completion":
		prompt, err := requireString(args, "prompt")
		if err != nil {
			return "", err
		}
		return h.service.ChatCompletion(ctx,
			prompt,
			args.Get("system_prompt").String(),
			args.Get("temperature").Float(),
			int(args.Get("max_tokens").Int()),
			args.Get("model_type").String(),
		), nil

	case "automate_menial_task":
		taskType, err := requireString(args, "task_type")
		if err != nil {
			return "", err
		}
		taskData, err := requireString(args, "task_data")
		if err != nil {
			return "", err
		}
		return h.service.AutomateMenialTask(ctx, taskType, taskData,
			args.Get("output_format").String()), nil

	case "offload_context":
		id, err := requireString(args, "context_id")
		if err != nil {
			return "", err
		}
		return h.service.OffloadContext(ctx, id,
			args.Get("context_data").String(),
			args.Get("operation").String(),
		), nil

	case "batch_process":
		items, err := requireStringSlice(args, "items")
		if err != nil {
			return "", err
		}
		operation, err := requireString(args, "operation")
		if err != nil {
			return "", err
		}
		combine := true
		if v := args.Get("combine_results"); v.Exists() {
			combine = v.Bool()
		}
		return h.service.BatchProcess(ctx, items, operation,
			int(args.Get("batch_size").Int()), combine), nil

	case "clear_contexts":
		return h.service.ClearContexts(args.Get("context_pattern").String()), nil

	case "get_sidekick_stats":
		return h.service.Stats(), nil

	default:
		return "", &UnknownToolError{Tool: tool}
	}
}

func requireString(args gjson.Result, name string) (string, error) {
	v := args.Get(name)
	if v.String() == "" {
		return "", &MissingArgError{Arg: name}
	}
	return v.String(), nil
}

func requireStringSlice(args gjson.Result, name string) ([]string, error) {
	v := args.Get(name)
	if !v.IsArray() {
		return nil, &MissingArgError{Arg: name}
	}
	return lo.Map(v.Array(), func(item gjson.Result, _ int) string {
		return item.String()
	}), nil
}
