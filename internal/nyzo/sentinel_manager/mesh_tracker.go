package sentinel_manager

import (
	"context"
	"sort"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/logging"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/node"
)

const meshRefreshInterval = 20000 // milliseconds

// Ask the next managed verifier for its mesh. An empty or failed answer keeps the old snapshot.
func (s *state) refreshMesh(ctx context.Context) {
	verifier := s.verifiers[nextIndex(&s.sync.meshIndex, len(s.verifiers))]
	requestCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	nodes, err := s.ctxt.Transport.RequestMesh(requestCtx, verifier)
	if err != nil {
		logging.TraceLog.Printf("No mesh from %s: %s.", verifier.Identity.Nickname, err.Error())
		return
	}
	if len(nodes) > 0 {
		s.meshSnapshots[verifier.Identity.PublicHex] = nodes
		logging.TraceLog.Printf("Got %d mesh nodes from %s.", len(nodes), verifier.Identity.Nickname)
	}
}

func (s *state) refreshMeshIfDue(ctx context.Context) {
	now := s.now()
	if now-s.sync.LastMeshRefresh < meshRefreshInterval {
		return
	}
	s.sync.LastMeshRefresh = now
	s.refreshMesh(ctx)
}

// All cycle verifiers from the stored snapshots, one per IP address.
func (s *state) combinedMesh() []*node.Node {
	byAddress := make(map[string]*node.Node)
	for _, snapshot := range s.meshSnapshots {
		for _, n := range snapshot {
			if s.ctxt.ChainState.VerifierInCurrentCycle(n.Identifier) {
				byAddress[n.IpString] = n
			}
		}
	}
	mesh := make([]*node.Node, 0, len(byAddress))
	for _, n := range byAddress {
		mesh = append(mesh, n)
	}
	sort.Slice(mesh, func(i, j int) bool {
		return mesh[i].IpString < mesh[j].IpString
	})
	return mesh
}
