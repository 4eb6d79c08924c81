/*
A simple in-process event router with multicasting, backed by an event bus.
This way, individual components like the transaction manager or the data store can register for the events they'd
like to receive without knowing who produces them.
*/
package router

import (
	"github.com/asaskevich/EventBus"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/logging"
)

const (
	// Published by the chain state whenever a new frozen edge block is installed.
	// Handler signature: func(block *blockchain_data.Block).
	TopicFrozenEdge = "frozen_edge"
	// Published by the sentinel after a failover block was broadcast.
	// Handler signature: func(t *router.BlockTransmission).
	TopicBlockTransmitted = "block_transmitted"
)

// BlockTransmission describes a failover block sent to the mesh.
type BlockTransmission struct {
	Height             int64
	BlockHash          []byte
	VerifierIdentifier []byte
	Score              int64
	Recipients         int
	Timestamp          int64
}

type Router struct {
	bus EventBus.Bus
}

func New() *Router {
	return &Router{bus: EventBus.New()}
}

// Subscribe registers a synchronous handler, it runs on the publisher's goroutine.
func (r *Router) Subscribe(topic string, handler interface{}) {
	if err := r.bus.Subscribe(topic, handler); err != nil {
		logging.ErrorLog.Printf("Cannot subscribe to %s: %s.", topic, err.Error())
	}
}

// SubscribeAsync registers a handler running on its own goroutine. Transactional handlers process one event at a
// time, in order.
func (r *Router) SubscribeAsync(topic string, handler interface{}) {
	if err := r.bus.SubscribeAsync(topic, handler, true); err != nil {
		logging.ErrorLog.Printf("Cannot subscribe to %s: %s.", topic, err.Error())
	}
}

func (r *Router) Unsubscribe(topic string, handler interface{}) {
	_ = r.bus.Unsubscribe(topic, handler)
}

func (r *Router) Publish(topic string, args ...interface{}) {
	r.bus.Publish(topic, args...)
}

// Wait blocks until all asynchronous handlers are done.
func (r *Router) Wait() {
	r.bus.WaitAsync()
}
