/*
A node that protects in-cycle verifiers.
*/
package nyzo

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/logging"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/configuration"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/networking"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/sentinel_manager"
	"github.com/n-y-z-o/nyzoVerifier-sub001/pkg/identity"
)

const metricsNamespace = "nyzo"

// Prepare the data directory and load (or create) the sentinel's own identity.
func setup(settings *configuration.Settings) (*identity.Identity, error) {
	logging.SetTraceEnabled(settings.Trace)
	configuration.DataDirectory = settings.DataDirectory
	return configuration.EnsureSetup()
}

// RunSentinel runs a sentinel until ctx ends or the process gets an interrupt.
func RunSentinel(ctx context.Context, settings *configuration.Settings) error {
	id, err := setup(settings)
	if err != nil {
		return err
	}
	ctxt := NewSentinelContext(settings, id, sentinel_manager.PrometheusMetrics(metricsNamespace))
	if err := ContextInitialize(ctxt); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logging.InfoLog.Print("Got shutdown request.")
	}()
	return ContextStart(ctx, ctxt)
}

// QueryFrozenEdge asks all managed verifiers for their frozen edge and returns the most advanced one.
func QueryFrozenEdge(ctx context.Context, settings *configuration.Settings) (*networking.FrozenEdgeView, error) {
	id, err := setup(settings)
	if err != nil {
		return nil, err
	}
	verifiers, err := networking.LoadManagedVerifiers(filepath.Join(settings.DataDirectory, configuration.ManagedVerifiersFileName))
	if err != nil {
		return nil, err
	}
	return sentinel_manager.QueryFrozenEdgeView(ctx, networking.NewTransport(id), verifiers, sentinel_manager.StrategyThorough)
}
