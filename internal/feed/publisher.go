// Package feed lets a remote hmi-probe process drive node updates into
// the engine of a running hmi-debug-api over NATS, decoupling "many producers" from
// "one render loop". Adapted from internal/probe's publisher/subscriber
// pair; updates are JSON-encoded rather than Protobuf (see DESIGN.md).
package feed

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"

	"hmitree/internal/graph"
)

// UpdateMessage is the wire format of a single node update.
type UpdateMessage struct {
	ID   graph.NodeID `json:"id"`
	Args []string     `json:"args"`
}

// Publisher publishes update commands to a NATS subject.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher connects to url and returns a Publisher bound to subject.
func NewPublisher(url, subject string) (*Publisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	log.Printf("feed: connected to NATS server at %s", url)
	return &Publisher{nc: nc, subject: subject}, nil
}

// PublishUpdate JSON-encodes an update and publishes it.
func (p *Publisher) PublishUpdate(id graph.NodeID, args []string) error {
	data, err := json.Marshal(UpdateMessage{ID: id, Args: args})
	if err != nil {
		return fmt.Errorf("marshal update message: %w", err)
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		log.Println("feed: NATS publisher connection drained and closed")
	}
}
