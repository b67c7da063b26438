package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/AnEntrypoint/sandboxbox/internal/procrun"
	"github.com/AnEntrypoint/sandboxbox/internal/protocol"
)

// TemplateData defines the fields available in custom tool command templates.
type TemplateData struct {
	// Args are the operation arguments.
	Args map[string]any
	// ToolName is the tool name.
	ToolName string
}

// renderTemplate expands a command or argument template with access to the
// operation arguments via the arg helper.
func renderTemplate(value string, data TemplateData) (string, error) {
	tmpl, err := template.New("value").Funcs(template.FuncMap{
		"arg": func(name string) any {
			if data.Args == nil {
				return nil
			}
			return data.Args[name]
		},
	}).Parse(value)
	if err != nil {
		return "", fmt.Errorf("template parse: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template render: %w", err)
	}
	return buf.String(), nil
}

// ShellCommand is a handler backed by a YAML-declared shell command.
type ShellCommand struct {
	// Runner spawns the process.
	Runner *procrun.Runner
	// Name is the tool name, exposed to command templates.
	Name string
	// Command is the executable or shell command template.
	Command string
	// Args are command argument templates.
	Args []string
	// Env adds environment variables; values are templates.
	Env map[string]string
	// Timeout bounds execution when the operation sets none.
	Timeout time.Duration
}

// Handle renders the command line against the operation arguments and
// runs it. Unlike the built-in executebash, a failed command is a handler
// error: declared tools behave like single opaque operations.
func (t *ShellCommand) Handle(ctx context.Context, args map[string]any) (any, error) {
	data := TemplateData{Args: args, ToolName: t.Name}

	command, err := renderTemplate(t.Command, data)
	if err != nil {
		return nil, err
	}

	rendered := make([]string, 0, len(t.Args))
	for _, arg := range t.Args {
		value, err := renderTemplate(arg, data)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, value)
	}

	env := make(map[string]string, len(t.Env))
	for key, value := range t.Env {
		renderedValue, err := renderTemplate(value, data)
		if err != nil {
			return nil, err
		}
		env[key] = renderedValue
	}

	if len(rendered) == 0 {
		rendered = []string{"-c", command}
		command = "bash"
	}

	res := t.Runner.Run(ctx, command, rendered, procrun.Options{
		Timeout: timeoutArg(args, t.Timeout),
		Dir:     workdir(args),
		Env:     env,
	})
	if !res.Success {
		detail := strings.TrimSpace(res.Stderr)
		if detail == "" {
			detail = res.ErrorMessage
		}
		return nil, fmt.Errorf("%s failed: %s", t.Name, detail)
	}
	return processContent(res), nil
}

// HTTPCommand is a handler backed by a YAML-declared HTTP endpoint.
type HTTPCommand struct {
	// Name is the tool name sent to the executor.
	Name string
	// URL is the executor endpoint.
	URL string
	// Method overrides the HTTP method.
	Method string
	// Headers adds HTTP headers.
	Headers map[string]string
	// Timeout is the HTTP client timeout.
	Timeout time.Duration
}

// maxExecutorBody bounds how much of an executor response is read.
const maxExecutorBody = 1 << 20

// Handle posts the operation arguments to the endpoint and interprets the
// response as an ExecutorResponse when possible, raw text otherwise.
func (t *HTTPCommand) Handle(ctx context.Context, args map[string]any) (any, error) {
	payload := protocol.ExecutorRequest{
		Tool:      t.Name,
		Arguments: args,
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 {
			payload.TimeoutSec = max(int(remaining.Seconds()), 1)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	method := strings.ToUpper(strings.TrimSpace(t.Method))
	if method == "" {
		method = http.MethodPost
	}
	request, err := http.NewRequestWithContext(ctx, method, t.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	for key, value := range t.Headers {
		request.Header.Set(key, value)
	}

	clientTimeout := t.Timeout
	if clientTimeout <= 0 {
		clientTimeout = 10 * time.Second
	}
	client := &http.Client{Timeout: clientTimeout}

	resp, err := client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("executor request failed: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxExecutorBody))
	trimmed := strings.TrimSpace(string(data))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("executor status %d: %s", resp.StatusCode, trimmed)
	}

	var parsed protocol.ExecutorResponse
	if err := json.Unmarshal(data, &parsed); err == nil && strings.TrimSpace(parsed.Status) != "" {
		switch strings.ToLower(strings.TrimSpace(parsed.Status)) {
		case protocol.StatusSuccess:
			return parsed.Result, nil
		case protocol.StatusError:
			return nil, fmt.Errorf("%s", stringifyResult(parsed.Result, "executor error"))
		default:
			return nil, fmt.Errorf("unknown executor status: %s", parsed.Status)
		}
	}

	return trimmed, nil
}

func stringifyResult(value any, fallback string) string {
	switch typed := value.(type) {
	case nil:
		return fallback
	case string:
		if strings.TrimSpace(typed) == "" {
			return fallback
		}
		return strings.TrimSpace(typed)
	default:
		data, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprintf("%v", typed)
		}
		return strings.TrimSpace(string(data))
	}
}
