package feed

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"

	"hmitree/internal/graph"
)

// UpdateHandler processes one update received from the feed.
type UpdateHandler func(id graph.NodeID, args []string)

// Subscriber receives update commands from a NATS subject.
type Subscriber struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
}

// NewSubscriber connects to url and returns a Subscriber bound to subject.
func NewSubscriber(url, subject string) (*Subscriber, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	log.Printf("feed: connected to NATS server at %s", url)
	return &Subscriber{nc: nc, subject: subject}, nil
}

// Start subscribes to the configured subject and invokes handler for
// every successfully decoded update. Malformed messages are logged and
// dropped rather than terminating the subscription.
func (s *Subscriber) Start(handler UpdateHandler) error {
	sub, err := s.nc.Subscribe(s.subject, func(msg *nats.Msg) {
		var update UpdateMessage
		if err := json.Unmarshal(msg.Data, &update); err != nil {
			log.Printf("feed: dropping malformed update: %v", err)
			return
		}
		handler(update.ID, update.Args)
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", s.subject, err)
	}
	s.sub = sub
	log.Printf("feed: subscribed to '%s', waiting for updates", s.subject)
	return nil
}

// Close unsubscribes and closes the NATS connection.
func (s *Subscriber) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Close()
		log.Println("feed: NATS subscriber connection closed")
	}
}
