/*
How a sentinel context works. See "interfaces" for a better understanding of the interfaces used.

1) Creation

NewSentinelContext allocates all components and saves a reference to the context in each of them. Nothing happens
yet. For tests, build a context from scratch with just the components needed.

2) Initialization

ContextInitialize calls the Initialize functions in sequence, so they provide a deterministic way to set up basic
stuff without having to worry about concurrency. The first error stops the process.

3) Start

ContextStart starts everything in parallel, so from here on we have to be threadsafe. Every Start function returns
when the context given to it ends, or with an error, which ends all the others.
*/
package nyzo

import (
	"context"
	"path/filepath"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/api"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/block_authority"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/configuration"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/data_store"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/interfaces"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/networking"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/router"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/sentinel_manager"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/transaction_manager"
	"github.com/n-y-z-o/nyzoVerifier-sub001/pkg/identity"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

func NewSentinelContext(settings *configuration.Settings, id *identity.Identity, metrics *sentinel_manager.Metrics) *interfaces.Context {
	ctxt := &interfaces.Context{Identity: id, Settings: settings, Router: router.New()}
	ctxt.ChainState = block_authority.NewBlockAuthority(ctxt)
	ctxt.TransactionManager = transaction_manager.NewTransactionManager(ctxt, settings.SeedTransactionSource, filepath.Join(settings.DataDirectory, configuration.SeedTransactionDirectory))
	ctxt.Transport = networking.NewTransport(id)
	ctxt.Sentinel = sentinel_manager.NewSentinelManager(ctxt, metrics)
	if settings.Sql.Enabled() {
		ctxt.DataStore = data_store.NewMysqlDataStore(ctxt)
	}
	if settings.ApiEnabled {
		ctxt.Api = api.NewApi(ctxt)
	}
	return ctxt
}

// The context's components in initialization order.
func components(ctxt *interfaces.Context) []interfaces.Component {
	var result []interfaces.Component
	if ctxt.DataStore != nil {
		result = append(result, ctxt.DataStore)
	}
	if ctxt.TransactionManager != nil {
		result = append(result, ctxt.TransactionManager)
	}
	if ctxt.Sentinel != nil {
		result = append(result, ctxt.Sentinel)
	}
	if ctxt.Api != nil {
		result = append(result, ctxt.Api)
	}
	return result
}

func ContextInitialize(ctxt *interfaces.Context) error {
	for _, component := range components(ctxt) {
		if err := component.Initialize(); err != nil {
			return errors.Wrap(err, "initialization failed")
		}
	}
	return nil
}

// Runs all components until ctx ends or one of them fails.
func ContextStart(ctx context.Context, ctxt *interfaces.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for _, component := range components(ctxt) {
		component := component
		group.Go(func() error {
			return component.Start(groupCtx)
		})
	}
	err := group.Wait()
	// let pending broadcasts finish
	if transport, ok := ctxt.Transport.(*networking.Transport); ok {
		transport.Wait()
	}
	return err
}
