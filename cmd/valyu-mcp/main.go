package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tiovikram/valyu-mcp/internal/config"
	"github.com/tiovikram/valyu-mcp/mcp"
	"github.com/tiovikram/valyu-mcp/tools"
	"github.com/tiovikram/valyu-mcp/valyu"
)

const serverName = "valyu-mcp-server"

var (
	version = "1.0.0"
	commit  = "none"
	date    = "unknown"
)

// lookupEnv is a variable that allows overriding the environment for testing
var lookupEnv = os.LookupEnv

type options struct {
	configPath string
	envFile    string
	baseURL    string
	timeout    time.Duration
	retries    int
	verbose    bool
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "valyu-mcp",
		Short: "An MCP server for the Valyu knowledge API",
		Long: `valyu-mcp provides an MCP stdio transport for the Valyu API.
It exposes two tools, "knowledge" and "feedback", processing JSON-RPC requests
from stdin, making the corresponding API calls and returning JSON-RPC responses to stdout.

The API key is read from the VALYU_API_KEY environment variable. It may be a
1Password secret reference (op://vault/item/field).`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}))
			if !opts.verbose {
				logger = slog.New(slog.NewTextHandler(io.Discard, nil))
			}

			server, err := newServer(ctx, cmd, opts, logger)
			if err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				transport := mcp.NewStdioTransport(server, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
				return transport.Run(ctx)
			})

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "Load environment variables (e.g. VALYU_API_KEY) from a dotenv file")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Override the Valyu API base URL")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "HTTP request timeout (0 for no timeout)")
	cmd.Flags().IntVar(&opts.retries, "retries", 0, "Maximum number of retries for failed requests")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging to stderr")

	cmd.Version = fmt.Sprintf("%s (commit: %s, built at: %s)", version, commit, date)

	return cmd
}

// newServer wires configuration, the API client and the tools into an MCP server
func newServer(ctx context.Context, cmd *cobra.Command, opts options, logger *slog.Logger) (*mcp.Server, error) {
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil {
			return nil, fmt.Errorf("error loading env file %s: %w", opts.envFile, err)
		}
	}

	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL = opts.baseURL
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if cmd.Flags().Changed("retries") {
		cfg.Retries = opts.retries
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	apiKey, err := config.APIKey(ctx, lookupEnv)
	if err != nil {
		return nil, err
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.Retries
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 30 * time.Second
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.Logger = logger
	// Hand the final response back so the client can report its status
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client, err := valyu.NewClient(apiKey,
		valyu.WithHTTPClient(retryClient.StandardClient()),
		valyu.WithBaseURL(cfg.BaseURL),
		valyu.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating API client: %w", err)
	}

	registry, err := tools.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("error creating tool registry: %w", err)
	}

	dispatcher, err := tools.NewDispatcher(registry, client, tools.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("error creating dispatcher: %w", err)
	}

	logger.Info("starting server", "version", version, "retries", cfg.Retries, "timeout", cfg.Timeout)

	return mcp.NewServer(dispatcher,
		mcp.WithServerInfo(serverName, version),
		mcp.WithLogger(logger),
	)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}
