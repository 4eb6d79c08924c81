/*
The cycle authority is the arbiter over the cycle at the current frozen edge height.

The cycle is kept as an ordered list, the verifier who produced least recently comes first. Every frozen block moves
its verifier to the end of the list. Verifiers that were passed over are no longer part of the cycle, a verifier
that was not in the list joins it.

Not safe for concurrent use, the owner has to serialize access.
*/
package cycle_authority

import (
	"bytes"
)

type Cycle struct {
	verifiers [][]byte
}

// NewCycle creates a cycle from identifiers ordered oldest first.
func NewCycle(verifiers [][]byte) *Cycle {
	c := &Cycle{}
	for _, id := range verifiers {
		if c.Index(id) < 0 {
			c.verifiers = append(c.verifiers, append([]byte(nil), id...))
		}
	}
	return c
}

// Position of the verifier in the cycle, -1 if it is not a cycle member.
func (c *Cycle) Index(id []byte) int {
	for i, v := range c.verifiers {
		if bytes.Equal(id, v) {
			return i
		}
	}
	return -1
}

// Is the given verifier currently in cycle?
func (c *Cycle) VerifierInCurrentCycle(id []byte) bool {
	return c.Index(id) >= 0
}

// Length of the current cycle.
func (c *Cycle) CycleLength() int {
	return len(c.verifiers)
}

// Last verifier to produce a block, nil for an empty cycle.
func (c *Cycle) Newest() []byte {
	if len(c.verifiers) == 0 {
		return nil
	}
	return c.verifiers[len(c.verifiers)-1]
}

// Advance records a block produced by verifier. Returns the number of verifiers that dropped out of the cycle
// and whether the verifier is new to the cycle.
func (c *Cycle) Advance(verifier []byte) (dropped int, isNew bool) {
	i := c.Index(verifier)
	if i < 0 {
		c.verifiers = append(c.verifiers, append([]byte(nil), verifier...))
		return 0, true
	}
	remaining := make([][]byte, 0, len(c.verifiers)-i)
	remaining = append(remaining, c.verifiers[i+1:]...)
	c.verifiers = append(remaining, c.verifiers[i])
	return i, false
}

// Verifiers returns a copy of the cycle, oldest first.
func (c *Cycle) Verifiers() [][]byte {
	return append([][]byte(nil), c.verifiers...)
}

func (c *Cycle) Copy() *Cycle {
	return &Cycle{verifiers: c.Verifiers()}
}
