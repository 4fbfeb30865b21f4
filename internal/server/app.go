// Package server wires configuration, logging, the DynamoDB client, the
// repositories and the upgrade service into a handler, and runs it either
// under the Lambda runtime or behind the local HTTP adapter.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/boycottpro/users/internal/dynamox"
	"github.com/boycottpro/users/internal/logging"
	"github.com/boycottpro/users/internal/server/apigw"
	"github.com/boycottpro/users/internal/server/auth"
	"github.com/boycottpro/users/internal/server/config"
	"github.com/boycottpro/users/internal/server/httpapi"
	"github.com/boycottpro/users/internal/server/repositories/repomanager"
	"github.com/boycottpro/users/internal/server/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	handler *apigw.Handler
}

// NewApp builds an App on top of the real DynamoDB client.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	client, err := dynamox.NewClient(ctx, dynamox.ClientConfig{
		Region:          c.AWSRegion,
		Endpoint:        c.DynamoEndpoint,
		AccessKeyID:     c.AWSAccessKeyID,
		SecretAccessKey: c.AWSSecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb init error: %w", err)
	}

	return NewAppWithAPI(c, logger, client), nil
}

// NewAppWithAPI builds an App on top of any dynamox.API.
func NewAppWithAPI(c *config.Config, logger logging.Logger, api dynamox.API) *App {
	rm := repomanager.NewDynamoRepositoryManager(api,
		repomanager.Tables{Users: c.UsersTable, Boycotts: c.BoycottsTable, Causes: c.CausesTable},
		repomanager.BatchOptions{Size: c.BatchSize, MaxRetries: c.MaxUnprocessedRetries, BaseDelay: c.RetryBaseDelay},
	)
	us := services.NewUpgradeService(rm)
	h := apigw.NewHandler(auth.ClaimsResolver{}, us, logger, c.EchoUser)

	return &App{config: c, logger: logger, handler: h}
}

func (app *App) Handler() *apigw.Handler {
	return app.handler
}

// RunLambda hands the handler to the Lambda runtime. It does not return.
func (app *App) RunLambda() {
	app.logger.Info(context.Background(), "Starting lambda handler",
		"users_table", app.config.UsersTable,
		"batch_size", app.config.BatchSize)
	lambda.Start(app.handler.Handle)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// RunHTTP serves the local HTTP adapter until ctx is cancelled or a
// termination signal arrives.
func (app *App) RunHTTP(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           httpapi.NewRouter(app.handler.Handle, app.config.SecretKey, app.config.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
