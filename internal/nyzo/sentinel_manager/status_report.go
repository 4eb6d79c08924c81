package sentinel_manager

// Without a fresh frozen edge we can't be sure our blocks would be accepted.
const protectionUncertainAge = 80000

type Report struct {
	ProtectingVerifiers    string `json:"protecting_verifiers"`
	ManagedVerifiers       int    `json:"managed_verifiers"`
	Mode                   string `json:"mode"`
	FrozenEdge             int64  `json:"frozen_edge"`
	OpenEdge               int64  `json:"open_edge"`
	CycleLength            int    `json:"cycle_length"`
	MeshSize               int    `json:"mesh_size"`
	LastBlockReceived      int64  `json:"last_block_received"`
	LastTransmissionHeight int64  `json:"last_transmission_height"`
	LowestScore            int64  `json:"lowest_score"` // -1 until a block was scored
}

// Get a status report for this component.
// Concurrency: returns the snapshot taken at the end of the last tick.
func (s *state) GetStatusReport() interface{} {
	s.reportLock.Lock()
	defer s.reportLock.Unlock()
	return s.report
}

// Called from the sentinel loop only.
func (s *state) updateStatusReport() {
	now := s.now()
	r := Report{
		ManagedVerifiers:       len(s.verifiers),
		Mode:                   s.sync.Mode.String(),
		FrozenEdge:             s.ctxt.ChainState.FrozenEdgeHeight(),
		OpenEdge:               s.ctxt.ChainState.OpenEdgeHeight(now),
		CycleLength:            s.ctxt.ChainState.CycleLength(),
		MeshSize:               len(s.combinedMesh()),
		LastBlockReceived:      s.sync.LastBlockReceived,
		LastTransmissionHeight: s.lastTransmissionHeight,
		LowestScore:            s.lowestScore,
	}
	frozenEdge := s.ctxt.ChainState.FrozenEdgeBlock()
	// blocks can only be built with the frozen edge balance list
	if len(s.verifiers) == 0 || frozenEdge == nil || s.ctxt.ChainState.FrozenEdgeBalanceList() == nil {
		r.ProtectingVerifiers = "no"
	} else if frozenEdge.VerificationTimestamp < now-protectionUncertainAge {
		r.ProtectingVerifiers = "uncertain"
	} else {
		r.ProtectingVerifiers = "yes"
	}
	s.metrics.MeshSize.Set(float64(r.MeshSize))
	s.reportLock.Lock()
	s.report = r
	s.reportLock.Unlock()
}
