/*
The sentinel manager shadows the managed verifiers: it bootstraps the chain state from them, keeps it in sync, and
steps in with a block of its own when the mesh stops producing blocks.

Everything happens on the goroutine running Start, one tick per second: mesh refresh, chain sync, block production,
each with its own interval. Only the status report is shared, as a snapshot.
*/
package sentinel_manager

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/logging"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/configuration"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/interfaces"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/networking"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/node"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/utilities"
	"github.com/pkg/errors"
)

const tickInterval = time.Second

type state struct {
	ctxt                   *interfaces.Context
	metrics                *Metrics
	now                    func() int64
	sleep                  func(ctx context.Context, d time.Duration) bool
	verifiers              []*networking.ManagedVerifier
	sync                   SyncState
	meshSnapshots          map[string][]*node.Node // by managed verifier id
	candidates             candidateBlockSet
	lastTransmissionHeight int64
	lowestScore            int64
	reportLock             sync.Mutex
	report                 Report
}

// Load the managed verifiers. Having none is not an error, the sentinel idles then.
func (s *state) Initialize() error {
	fileName := filepath.Join(s.ctxt.Settings.DataDirectory, configuration.ManagedVerifiersFileName)
	verifiers, err := networking.LoadManagedVerifiers(fileName)
	if err != nil {
		if errors.Is(err, networking.ErrNoManagedVerifiers) || utilities.FileDoesNotExists(fileName) {
			logging.ErrorLog.Printf("No managed verifiers in %s, the sentinel will not protect anything.", fileName)
			return nil
		}
		return err
	}
	s.verifiers = verifiers
	s.updateStatusReport()
	return nil
}

// Main loop.
func (s *state) Start(ctx context.Context) error {
	defer logging.InfoLog.Print("Main loop of sentinel exited gracefully.")
	if len(s.verifiers) == 0 {
		<-ctx.Done()
		return nil
	}
	logging.InfoLog.Printf("Starting main loop of sentinel, protecting %d verifiers.", len(s.verifiers))
	s.sync.LastBlockReceived = s.now()
	if !s.Bootstrap(ctx, StrategyFromString(s.ctxt.Settings.BootstrapStrategy)) {
		return nil
	}
	s.sync.LastBlockReceived = s.now()
	s.updateModeGauge()
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *state) tick(ctx context.Context) {
	s.refreshMeshIfDue(ctx)
	s.syncIfDue(ctx)
	s.maybeProduceAndSend(ctx)
	s.updateStatusReport()
}

// Create a sentinel manager.
func NewSentinelManager(ctxt *interfaces.Context, metrics *Metrics) interfaces.SentinelInterface {
	return newState(ctxt, metrics, utilities.Now)
}

func newState(ctxt *interfaces.Context, metrics *Metrics, now func() int64) *state {
	return &state{
		ctxt:          ctxt,
		metrics:       metrics,
		now:           now,
		sleep:         sleepWithContext,
		meshSnapshots: make(map[string][]*node.Node),
		lowestScore:   -1,
		report:        Report{ProtectingVerifiers: "no", FrozenEdge: -1, OpenEdge: -1, LowestScore: -1},
	}
}
