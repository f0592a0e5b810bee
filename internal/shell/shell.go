// Package shell runs line-oriented commands against the backend, the way a
// panel view would issue them.
package shell

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dtroode/painel-admin/internal/logger"
	"github.com/dtroode/painel-admin/internal/session"
	"github.com/dtroode/painel-admin/internal/service"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("wrong arguments")
	errQuit           = errors.New("quit")
)

const helpText = `Commands:
  GET <path>
  POST|PUT|PATCH <path> [json]
  DELETE <path>
  UPLOAD <path> <field> <file>
  LOGIN <email> <senha>
  LOGOUT
  WHOAMI
  TOKEN
  HELP
  EXIT
`

// Runner executes shell commands through a session client.
type Runner struct {
	client *session.Client
	auth   *service.Auth
	out    io.Writer
	prompt string
	logger *logger.Logger
}

func NewRunner(client *session.Client, auth *service.Auth, out io.Writer, logger *logger.Logger) *Runner {
	return &Runner{
		client: client,
		auth:   auth,
		out:    out,
		logger: logger,
	}
}

// WithPrompt makes Run print prompt before reading each line.
func (r *Runner) WithPrompt(prompt string) *Runner {
	r.prompt = prompt
	return r
}

// Run executes every line read from in until EOF, EXIT or ctx is done.
// Command errors are printed and do not stop the loop.
func (r *Runner) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.printf("%s", r.prompt)
		if !scanner.Scan() {
			break
		}

		err := r.Exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			r.printf("error: %v\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read commands: %w", err)
	}
	return nil
}

// Exec runs a single command line.
func (r *Runner) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	r.logger.Debug("Shell: executing command", "command", strings.ToUpper(name))

	switch strings.ToUpper(name) {
	case "GET":
		return r.get(ctx, rest)
	case "DELETE":
		return r.delete(ctx, rest)
	case "POST", "PUT", "PATCH":
		return r.send(ctx, strings.ToUpper(name), rest)
	case "UPLOAD":
		return r.upload(ctx, strings.Fields(rest))
	case "LOGIN":
		return r.login(ctx, strings.Fields(rest))
	case "LOGOUT":
		return r.logout(ctx)
	case "WHOAMI":
		return r.whoami(ctx)
	case "TOKEN":
		return r.token(ctx)
	case "HELP":
		r.printf("%s", helpText)
		return nil
	case "EXIT", "QUIT":
		return errQuit
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
}

func (r *Runner) get(ctx context.Context, path string) error {
	if path == "" || strings.Contains(path, " ") {
		return fmt.Errorf("%w: GET <path>", ErrUsage)
	}
	return r.printResult(r.client.Get(ctx, path))
}

func (r *Runner) delete(ctx context.Context, path string) error {
	if path == "" || strings.Contains(path, " ") {
		return fmt.Errorf("%w: DELETE <path>", ErrUsage)
	}
	return r.printResult(r.client.Delete(ctx, path))
}

func (r *Runner) send(ctx context.Context, method, rest string) error {
	path, raw, _ := strings.Cut(rest, " ")
	if path == "" {
		return fmt.Errorf("%w: %s <path> [json]", ErrUsage, method)
	}

	body, err := ParseBody(raw)
	if err != nil {
		return err
	}
	return r.printResult(r.client.Request(ctx, path, session.RequestOptions{
		Method: method,
		Body:   body,
	}))
}

func (r *Runner) upload(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: UPLOAD <path> <field> <file>", ErrUsage)
	}
	path, field, fileName := args[0], args[1], args[2]

	file, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	form := session.NewFormData().AppendFile(field, filepath.Base(fileName), file)
	return r.printResult(r.client.PostFormData(ctx, path, form))
}

func (r *Runner) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: LOGIN <email> <senha>", ErrUsage)
	}
	user, err := r.auth.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	return r.printJSON(user)
}

func (r *Runner) logout(ctx context.Context) error {
	if err := r.auth.Logout(ctx); err != nil {
		return err
	}
	r.printf("logged out\n")
	return nil
}

func (r *Runner) whoami(ctx context.Context) error {
	user, err := r.client.User(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		r.printf("not logged in\n")
		return nil
	}
	return r.printJSON(user)
}

func (r *Runner) token(ctx context.Context) error {
	token, err := r.client.CSRFToken(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		r.printf("no token\n")
		return nil
	}
	r.printf("%s\n", token)
	return nil
}

// ParseBody turns a command-line JSON argument into a request body. An
// empty argument means no body.
func ParseBody(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if !json.Valid([]byte(raw)) {
		return nil, fmt.Errorf("%w: body is not valid JSON", ErrUsage)
	}
	return json.RawMessage(raw), nil
}

type resultView struct {
	Kind   string `json:"kind"`
	Status int    `json:"status,omitempty"`
	Body   any    `json:"body,omitempty"`
	Error  string `json:"error,omitempty"`
}

// View renders a result for printing.
func View(res session.Result) any {
	v := resultView{
		Kind:   res.Kind.String(),
		Status: res.Status,
	}
	switch {
	case res.JSON && len(res.Body) > 0:
		v.Body = json.RawMessage(res.Body)
	case len(res.Body) > 0:
		v.Body = res.Text()
	}
	if res.Err != nil {
		v.Error = res.Err.Error()
	}
	return v
}

func (r *Runner) printResult(res session.Result) error {
	return r.printJSON(View(res))
}

func (r *Runner) printJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to print result: %w", err)
	}
	return nil
}

func (r *Runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}
