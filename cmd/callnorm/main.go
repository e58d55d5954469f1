package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"callnorm/internal/config"
	"callnorm/internal/provider"
	"callnorm/internal/render"
	"callnorm/internal/schema"
	"callnorm/internal/stream"
	"callnorm/internal/toolcall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "callnorm",
		Short:         "callnorm - normalize model tool calls across provider conventions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newNormalizeCmd(), newReplayCmd())
	return cmd
}

func newNormalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Normalize a complete provider payload into canonical tool calls",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}
			logger := buildLogger(cfg.Verbose)
			defer func() { _ = logger.Sync() }()

			payload, err := readInput(args)
			if err != nil {
				return err
			}
			if len(payload) > cfg.MaxRawBytes {
				return fmt.Errorf("payload exceeds %d bytes", cfg.MaxRawBytes)
			}

			registry := provider.Default()
			calls, invalid, err := registry.Normalize(cfg.Format, payload)
			if err != nil {
				logger.Error("normalization failed", zap.Error(err))
				return err
			}

			if cfg.SchemaFile != "" {
				schemas, err := schema.LoadFile(cfg.SchemaFile)
				if err != nil {
					return err
				}
				calls, invalid = schemas.Apply(calls, invalid)
			}
			if cfg.AssignIDs {
				for i := range calls {
					if calls[i].ID == "" {
						calls[i].ID = uuid.NewString()
					}
				}
			}

			msg := toolcall.Message{ToolCalls: calls, InvalidCalls: invalid}
			return writeMessage(cmd.OutOrStdout(), msg, cfg)
		},
	}
	addCommonFlags(cmd)
	return cmd
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay [file]",
		Short: "Replay a recorded chunk stream and print the frozen tool-call set",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}
			logger := buildLogger(cfg.Verbose)
			defer func() { _ = logger.Sync() }()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()

			src, sourceName, err := openSource(ctx, cfg, args)
			if err != nil {
				return err
			}
			defer func() { _ = src.Close() }()

			var schemas *schema.Registry
			if cfg.SchemaFile != "" {
				schemas, err = schema.LoadFile(cfg.SchemaFile)
				if err != nil {
					return err
				}
			}

			writer := cmd.OutOrStdout()
			var logFile *os.File
			if cfg.LogFile != "" {
				logFile, err = os.Create(cfg.LogFile)
				if err != nil {
					return err
				}
				defer func() { _ = logFile.Close() }()
				writer = io.MultiWriter(writer, logFile)
			}
			var renderer render.Renderer
			if !cfg.JSON {
				renderer = render.NewStdoutRenderer(writer, cfg.Verbose, cfg.Quiet, true)
			}

			runner := stream.NewRunner(renderer, logger, schemas, cfg)
			result, runErr := runner.Run(ctx, src, sourceName)
			if renderer != nil {
				_ = renderer.Close()
			}
			if cfg.JSON {
				payload, _ := json.MarshalIndent(result, "", "  ")
				fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			}
			return runErr
		},
	}
	addCommonFlags(cmd)
	cmd.Flags().String("endpoint", "", "Stream from a live SSE endpoint instead of a file")
	return cmd
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", config.DefaultFormat, "Payload format (chat, blocks)")
	cmd.Flags().String("schema", "", "Tool parameter schema file for validation")
	cmd.Flags().String("timeout", config.DefaultTimeout.String(), "Timeout (e.g. 60s)")
	cmd.Flags().Bool("assign-ids", false, "Assign identifiers to calls the provider left unlabeled")
	cmd.Flags().Bool("quiet", false, "Only print the final result")
	cmd.Flags().Bool("json", false, "Output JSON only")
	cmd.Flags().Bool("verbose", false, "Enable verbose logging")
	cmd.Flags().String("log-file", "", "Write plain-text output to a file")
}

func openSource(ctx context.Context, cfg config.Config, args []string) (stream.Source, string, error) {
	if os.Getenv("CALLNORM_MOCK_STREAM") == "1" {
		return stream.NewMockSource(), "mock", nil
	}
	if cfg.Endpoint != "" {
		src, err := stream.OpenSSE(ctx, cfg.Endpoint, cfg.RetryMax, nil)
		if err != nil {
			return nil, "", err
		}
		return src, cfg.Endpoint, nil
	}
	if len(args) == 0 || args[0] == "-" {
		return stream.NewReplaySource(os.Stdin), "stdin", nil
	}
	file, err := os.Open(args[0])
	if err != nil {
		return nil, "", err
	}
	return stream.NewReplaySource(file), args[0], nil
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(args[0])
}

func writeMessage(w io.Writer, msg toolcall.Message, cfg config.Config) error {
	if cfg.JSON {
		payload, err := json.MarshalIndent(msg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(payload))
		return nil
	}
	for _, call := range msg.ToolCalls {
		args, _ := json.Marshal(call.Arguments)
		fmt.Fprintf(w, "call: %s", call.Name)
		if call.ID != "" {
			fmt.Fprintf(w, " id=%s", call.ID)
		}
		fmt.Fprintf(w, " args=%s\n", string(args))
	}
	for _, bad := range msg.InvalidCalls {
		fmt.Fprintf(w, "invalid:")
		if bad.Name != "" {
			fmt.Fprintf(w, " %s", bad.Name)
		}
		fmt.Fprintf(w, " error=%s raw=%s\n", bad.Error, bad.Args)
	}
	if len(msg.ToolCalls) == 0 && len(msg.InvalidCalls) == 0 {
		fmt.Fprintln(w, "no tool calls in payload")
	}
	return nil
}

func buildLogger(verbose bool) *zap.Logger {
	if verbose {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}
