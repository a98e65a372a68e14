package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"kappa-echo/internal/config"
	"kappa-echo/internal/echo"
	"kappa-echo/internal/server"
	"kappa-echo/pkg/handler"
	"kappa-echo/pkg/logger"
)

// setup loads configuration and installs the global logger.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	l := logger.Get()
	zap.ReplaceGlobals(l)
	return cfg, l, nil
}

func newService() *echo.Service {
	return echo.NewService(echo.OSEnv{})
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the standalone web server",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, l, err := setup()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Addr
			}

			srv := server.New(addr, newService(), server.WithLogger(l))

			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			l.Info("Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			l.Info("Server stopped")
			return nil
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from ENVECHO_ADDR or "+config.DefaultAddr+")")
	return cmd
}

func newLambdaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "run as an AWS Lambda function handler",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, l, err := setup()
			if err != nil {
				return err
			}
			svc := newService()
			lambda.Start(func(ctx context.Context, event json.RawMessage) (handler.Response, error) {
				resp, err := svc.HandleEvent(ctx, event)
				if err != nil {
					l.Error("Function invocation failed", zap.Error(err))
				}
				return resp, err
			})
			return nil
		},
	}
}

func newKappaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kappa",
		Short: "run under the Kappa function runtime",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if _, _, err := setup(); err != nil {
				return err
			}
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}

			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return handler.Start(ctx, ":"+port, newService().HandleKappa)
		},
	}
}

func newInvokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invoke",
		Short: "invoke the function once and print the response envelope",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if _, _, err := setup(); err != nil {
				return err
			}
			return invokeOnce(c.Context(), newService(), c.OutOrStdout())
		},
	}
}

func invokeOnce(ctx context.Context, svc *echo.Service, w io.Writer) error {
	resp, err := svc.HandleEvent(ctx, nil)
	if err != nil {
		return err
	}
	return json.NewEncoder(w).Encode(resp)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "envecho",
		Short:         "echo API_KEY and OTHER_VALUE back as JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	serve := newServeCmd()
	// serve is the default mode
	cmd.RunE = serve.RunE
	cmd.Flags().AddFlagSet(serve.Flags())
	cmd.AddCommand(serve, newLambdaCmd(), newKappaCmd(), newInvokeCmd())
	return cmd
}

func Run(argv []string) error {
	cmd := newRootCmd()
	cmd.SetArgs(argv)
	return cmd.ExecuteContext(context.Background())
}
