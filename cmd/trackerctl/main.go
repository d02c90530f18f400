// Command trackerctl drives the academic tracker client core from a terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-tracker/internal/service"
	"github.com/noah-isme/academic-tracker/pkg/apiclient"
	"github.com/noah-isme/academic-tracker/pkg/config"
	appErrors "github.com/noah-isme/academic-tracker/pkg/errors"
	"github.com/noah-isme/academic-tracker/pkg/logger"
)

const usage = `usage: trackerctl <command> [flags]

commands:
  wait           block until the API answers its health check
  login          sign in and print the session token
  register       create a student account and print the session token
  profile        show the profile of the signed-in user
  feed           page through the announcement feed
  post-create    publish a post with an image file
  post-delete    delete a post
  stages         list evaluation stages and their panels
  stage-create   schedule an evaluation stage
  stage-delete   delete an evaluation stage
  export         write the evaluation schedule as csv or pdf

Authenticated commands read the token from -token or API_TOKEN.`

type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *service.MetricsService
	client  *apiclient.Client
}

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"wait":         cmdWait,
	"login":        cmdLogin,
	"register":     cmdRegister,
	"profile":      cmdProfile,
	"feed":         cmdFeed,
	"post-create":  cmdPostCreate,
	"post-delete":  cmdPostDelete,
	"stages":       cmdStages,
	"stage-create": cmdStageCreate,
	"stage-delete": cmdStageDelete,
	"export":       cmdExport,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", os.Args[1], usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logr, err := logger.New("trackerctl", cfg.Env, cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logr.Sync() //nolint:errcheck

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	a := &app{
		cfg:     cfg,
		logger:  logr,
		metrics: metrics,
		client:  apiclient.New(apiclient.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout}, nil, nil, logr, metrics),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err = cmd(ctx, a, os.Args[2:])
	if metrics != nil {
		snap := metrics.Snapshot()
		fmt.Fprintf(os.Stderr, "api calls: %d (failed %d), pages: %d, rejected forms: %d\n",
			snap.APICalls, snap.APIFailures, snap.PagesLoaded, snap.ValidationRejects)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", describe(err))
		os.Exit(1)
	}
}

// describe renders an error the way a user should read it.
func describe(err error) string {
	switch {
	case errors.Is(err, appErrors.ErrDuplicateStageName):
		return fmt.Sprintf("la etapa %q ya existe", appErrors.FromError(err).Subject)
	case apiclient.IsTransport(err):
		return "no se pudo conectar con el servidor: " + err.Error()
	case errors.Is(err, appErrors.ErrPanelLimitReached):
		return "solo puedes seleccionar hasta 3 jurados"
	default:
		var apiErr *appErrors.Error
		if errors.As(err, &apiErr) {
			return apiErr.Message
		}
		return err.Error()
	}
}
