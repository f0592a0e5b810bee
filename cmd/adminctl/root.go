package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dtroode/painel-admin/internal/app"
	"github.com/dtroode/painel-admin/internal/config"
	"github.com/dtroode/painel-admin/internal/logger"
	"github.com/dtroode/painel-admin/internal/notify"
	"github.com/dtroode/painel-admin/internal/service"
	"github.com/dtroode/painel-admin/internal/session"
	"github.com/dtroode/painel-admin/internal/shell"
	"github.com/dtroode/painel-admin/internal/telemetry"
)

const passwordEnv = "ADMINCTL_SENHA"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "adminctl",
		Short:        "Admin panel API client",
		Long:         "adminctl talks to the admin panel backend with the same session, CSRF and error handling the panel views use.",
		SilenceUsage: true,
	}

	root.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	root.PersistentFlags().Bool("no-color", false, "Disable colored output")
	root.PersistentFlags().String("email", "", "Log in with this e-mail before running the command (password from "+passwordEnv+")")

	root.AddCommand(newShellCmd())
	for _, method := range []string{"GET", "POST", "PUT", "PATCH", "DELETE"} {
		root.AddCommand(newRequestCmd(method))
	}
	root.AddCommand(newPushCmd())
	root.AddCommand(newPullCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// withApp loads the configuration, wires the application and runs fn with
// it. When --email is set the session is opened first.
func withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = int(slog.LevelDebug)
	}
	log := logger.NewWithWriter(cmd.ErrOrStderr(), level)

	shutdown, err := telemetry.Setup(cmd.Context(), cfg.TraceEndpoint, buildVersion)
	if err != nil {
		log.Error("failed to set up tracing", "error", err.Error())
		return err
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(cmd.Context())); err != nil {
			log.Error("failed to flush traces", "error", err.Error())
		}
	}()

	noColor, _ := cmd.Flags().GetBool("no-color")
	notifier := notify.Multi{
		notify.NewConsole(cmd.ErrOrStderr(), noColor),
		notify.NewLog(log),
	}

	a, err := app.New(cmd.Context(), cfg, log, notifier)
	if err != nil {
		log.Error("failed to initialize application", "error", err.Error())
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("failed to close application", "error", err.Error())
		}
	}()

	if email, _ := cmd.Flags().GetString("email"); email != "" {
		if _, err := a.Auth.Login(cmd.Context(), email, os.Getenv(passwordEnv)); err != nil {
			return fmt.Errorf("failed to log in: %w", err)
		}
	}

	return fn(a)
}

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell [script]",
		Short: "Run commands interactively or from a script file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				runner := shell.NewRunner(a.Client, a.Auth, cmd.OutOrStdout(), a.Logger)
				if len(args) == 0 {
					return runner.WithPrompt("painel> ").Run(cmd.Context(), cmd.InOrStdin())
				}

				file, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open script: %w", err)
				}
				defer file.Close()
				return runner.Run(cmd.Context(), file)
			})
		},
	}
}

func newRequestCmd(method string) *cobra.Command {
	use := strings.ToLower(method) + " <path>"
	args := cobra.ExactArgs(1)
	if method != "GET" && method != "DELETE" {
		use += " [json]"
		args = cobra.RangeArgs(1, 2)
	}

	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Send a %s request", method),
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw string
			if len(args) > 1 {
				raw = args[1]
			}
			body, err := shell.ParseBody(raw)
			if err != nil {
				return err
			}

			return withApp(cmd, func(a *app.App) error {
				res := a.Client.Request(cmd.Context(), args[0], session.RequestOptions{
					Method: method,
					Body:   body,
				})
				if err := printJSON(cmd, shell.View(res)); err != nil {
					return err
				}
				if !res.OK() {
					return fmt.Errorf("request finished with %s", res)
				}
				return nil
			})
		},
	}
}

func newPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push <key> <path>",
		Short: "Upload an object from the bucket to the backend as a form file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, _ := cmd.Flags().GetString("field")
			pairs, _ := cmd.Flags().GetStringArray("form")
			fields, err := parseFormFields(pairs)
			if err != nil {
				return err
			}

			return withApp(cmd, func(a *app.App) error {
				files, err := a.Files(cmd.Context())
				if err != nil {
					return err
				}
				res, err := files.Push(cmd.Context(), args[0], args[1], field, fields)
				if errors.Is(err, service.ErrObjectUnavailable) {
					return err
				}
				if printErr := printJSON(cmd, shell.View(res)); printErr != nil {
					return printErr
				}
				return err
			})
		},
	}
	cmd.Flags().String("field", "arquivo", "Multipart field name for the file")
	cmd.Flags().StringArray("form", nil, "Extra form field as name=value (repeatable)")
	return cmd
}

func newPullCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull <path> <key>",
		Short: "Download a backend file into the bucket",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				files, err := a.Files(cmd.Context())
				if err != nil {
					return err
				}
				overwrite, _ := cmd.Flags().GetBool("overwrite")
				n, err := files.Pull(cmd.Context(), args[0], args[1], overwrite)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "stored %s (%d bytes)\n", args[1], n)
				return err
			})
		},
	}
	cmd.Flags().Bool("overwrite", false, "Replace an existing object")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tmpl := `Build version: %s
Build date: %s
Build commit: %s
`
			_, err := fmt.Fprintf(cmd.OutOrStdout(), tmpl, buildVersion, buildDate, buildCommit)
			return err
		},
	}
}

func parseFormFields(pairs []string) (map[string]string, error) {
	fields := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid form field %q, want name=value", pair)
		}
		fields[name] = value
	}
	return fields, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to print result: %w", err)
	}
	return nil
}
