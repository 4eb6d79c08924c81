package sentinel_manager

const (
	standardSyncInterval  = 2000 // milliseconds
	fastFetchSyncInterval = 1000
	fastFetchBatchSize    = 10
	// consecutive successes before switching to fast fetch
	fastFetchSuccessThreshold = 4
	// fast fetch only pays off with this many blocks still to cover
	fastFetchMinimumGap = 10
)

type Mode int

const (
	ModeStandard Mode = iota
	ModeFastFetch
)

func (m Mode) String() string {
	if m == ModeFastFetch {
		return "fast_fetch"
	}
	return "standard"
}

// SyncState is owned by the sentinel loop, nothing else touches it.
type SyncState struct {
	Mode                 Mode
	ConsecutiveSuccesses int
	ConsecutiveFailures  int
	LastBlockReceived    int64 // milliseconds
	LastMeshRefresh      int64
	LastSyncAttempt      int64
	meshIndex            int
	syncIndex            int
}

func (s *SyncState) syncInterval() int64 {
	if s.Mode == ModeFastFetch {
		return fastFetchSyncInterval
	}
	return standardSyncInterval
}

// Height range of the next block request.
func (s *SyncState) requestRange(frozenEdgeHeight int64) (int64, int64) {
	if s.Mode == ModeFastFetch {
		return frozenEdgeHeight + 1, frozenEdgeHeight + fastFetchBatchSize
	}
	return frozenEdgeHeight + 1, frozenEdgeHeight + 1
}

func (s *SyncState) recordSuccess(frozenEdgeHeight, openEdgeHeight int64) {
	s.ConsecutiveSuccesses++
	s.ConsecutiveFailures = 0
	if s.Mode == ModeStandard && s.ConsecutiveSuccesses >= fastFetchSuccessThreshold &&
		openEdgeHeight-frozenEdgeHeight > fastFetchMinimumGap {
		s.Mode = ModeFastFetch
	}
}

// Fast fetch is left at the first failure.
func (s *SyncState) recordFailure() {
	if s.ConsecutiveFailures == 0 && s.Mode == ModeFastFetch {
		s.Mode = ModeStandard
	}
	s.ConsecutiveFailures++
	s.ConsecutiveSuccesses = 0
}

func nextIndex(index *int, length int) int {
	i := *index % length
	*index = i + 1
	return i
}
