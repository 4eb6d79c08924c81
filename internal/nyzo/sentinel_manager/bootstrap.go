package sentinel_manager

import (
	"context"
	"time"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/logging"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/configuration"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/interfaces"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/networking"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type Strategy int

const (
	// Accept the first frozen edge view, all managed verifiers are trusted.
	StrategyFast Strategy = iota
	// Ask every managed verifier and go with the highest frozen edge.
	StrategyThorough
)

const (
	requestTimeout = 3 * time.Second
	// Blocks retained per cycle member before the frozen edge when bootstrapping.
	bootstrapCycleMultiple = 4
	// Larger gaps start the sync in fast fetch mode.
	fastFetchBootstrapGap = 20
	thoroughRetryDelay    = 5 * time.Second
	noViewRetryDelay      = time.Second
)

var ErrNoFrozenEdgeView = errors.New("no managed verifier reported its frozen edge")

func StrategyFromString(strategy string) Strategy {
	if strategy == configuration.BootstrapStrategyThorough {
		return StrategyThorough
	}
	return StrategyFast
}

// QueryFrozenEdgeView asks the given verifiers for their frozen edge view.
func QueryFrozenEdgeView(ctx context.Context, transport interfaces.TransportInterface, verifiers []*networking.ManagedVerifier, strategy Strategy) (*networking.FrozenEdgeView, error) {
	if len(verifiers) == 0 {
		return nil, networking.ErrNoManagedVerifiers
	}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	if strategy == StrategyThorough {
		return thoroughFrozenEdgeView(ctx, transport, verifiers)
	}
	// buffered, late answers must not block
	results := make(chan *networking.FrozenEdgeView, len(verifiers))
	for _, verifier := range verifiers {
		go func(verifier *networking.ManagedVerifier) {
			view, err := transport.RequestFrozenEdgeView(ctx, verifier)
			if err != nil {
				logging.TraceLog.Printf("No frozen edge view from %s: %s.", verifier.Identity.Nickname, err.Error())
				view = nil
			}
			results <- view
		}(verifier)
	}
	for range verifiers {
		if view := <-results; view != nil {
			return view, nil
		}
	}
	return nil, ErrNoFrozenEdgeView
}

func thoroughFrozenEdgeView(ctx context.Context, transport interfaces.TransportInterface, verifiers []*networking.ManagedVerifier) (*networking.FrozenEdgeView, error) {
	views := make([]*networking.FrozenEdgeView, len(verifiers))
	group := new(errgroup.Group)
	for i, verifier := range verifiers {
		i, verifier := i, verifier
		group.Go(func() error {
			view, err := transport.RequestFrozenEdgeView(ctx, verifier)
			if err != nil {
				logging.TraceLog.Printf("No frozen edge view from %s: %s.", verifier.Identity.Nickname, err.Error())
				return nil
			}
			views[i] = view
			return nil
		})
	}
	_ = group.Wait()
	var best *networking.FrozenEdgeView
	for _, view := range views {
		if view != nil && (best == nil || view.Height > best.Height) {
			best = view
		}
	}
	if best == nil {
		return nil, ErrNoFrozenEdgeView
	}
	return best, nil
}

// Bootstrap brings the local frozen edge close enough to the network's frozen edge for block by block syncing.
// It retries until it succeeds, false means ctx ended first.
func (s *state) Bootstrap(ctx context.Context, strategy Strategy) bool {
	for ctx.Err() == nil {
		view, err := QueryFrozenEdgeView(ctx, s.ctxt.Transport, s.verifiers, strategy)
		if err != nil {
			logging.WarningLog.Printf("Bootstrap: %s, retrying.", err.Error())
			if !s.sleep(ctx, noViewRetryDelay) {
				return false
			}
			continue
		}
		localHeight := s.ctxt.ChainState.FrozenEdgeHeight()
		if view.Height-localHeight > fastFetchBootstrapGap {
			s.sync.Mode = ModeFastFetch
			s.sync.ConsecutiveFailures = 0
		}
		cutoffHeight := view.Height - int64(len(view.CycleMembers))*bootstrapCycleMultiple
		if cutoffHeight < 0 {
			cutoffHeight = 0
		}
		// an empty chain is never close enough
		if localHeight >= 0 && localHeight >= cutoffHeight {
			logging.InfoLog.Printf("Bootstrap: local frozen edge %d is close to %d reported by %s.", localHeight, view.Height, view.Source.Identity.Nickname)
			return true
		}
		if s.importTrustedBlock(ctx, cutoffHeight, view.CycleMembers) {
			s.metrics.BootstrapImports.Add(1)
			return true
		}
		if strategy == StrategyThorough && !s.sleep(ctx, thoroughRetryDelay) {
			return false
		}
	}
	return false
}

// Fetches the block and balance list at height from the managed verifiers, in turn, and installs the first valid
// pair. The cycle of the frozen edge view is the cycle at height, the two heights are a whole number of cycles apart.
func (s *state) importTrustedBlock(ctx context.Context, height int64, cycle [][]byte) bool {
	for _, verifier := range s.verifiers {
		if ctx.Err() != nil {
			return false
		}
		requestCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		blocks, balanceList, err := s.ctxt.Transport.RequestBlocks(requestCtx, verifier, height, height, true)
		cancel()
		if err != nil {
			logging.TraceLog.Printf("Bootstrap: no block %d from %s: %s.", height, verifier.Identity.Nickname, err.Error())
			continue
		}
		if len(blocks) != 1 || blocks[0].Height != height || balanceList == nil || balanceList.BlockHeight != height {
			logging.TraceLog.Printf("Bootstrap: %s did not return block and balance list for height %d.", verifier.Identity.Nickname, height)
			continue
		}
		if err := s.ctxt.ChainState.TrustedImport(blocks[0], balanceList, cycle); err != nil {
			logging.WarningLog.Printf("Bootstrap: import of block %d from %s failed: %s.", height, verifier.Identity.Nickname, err.Error())
			continue
		}
		return true
	}
	return false
}

// False if ctx ended first.
func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
