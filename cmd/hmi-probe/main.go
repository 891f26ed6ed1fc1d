// Command hmi-probe reads the same "<id>,<args...>" update-command
// grammar as hmi-engine's stdin protocol, but publishes each update to
// a NATS subject instead of applying it directly, letting a separate
// hmi-debug-api process (subscribed via internal/feed) consume updates
// from a remote source.
package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"hmitree/internal/feed"
	"hmitree/internal/graph"
)

func main() {
	natsURL := flag.String("nats-url", "nats://127.0.0.1:4222", "NATS server URL")
	subject := flag.String("subject", "hmi.updates", "NATS subject to publish updates on")
	flag.Parse()

	log.Println("Starting hmi-probe...")

	pub, err := feed.NewPublisher(*natsURL, *subject)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer pub.Close()

	scanner := bufio.NewScanner(os.Stdin)
	published := 0
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Split(line, ",")
		if len(fields) == 0 {
			continue
		}
		id, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			log.Printf("skipping malformed line %q: %v", line, err)
			continue
		}
		if err := pub.PublishUpdate(graph.NodeID(id), fields[1:]); err != nil {
			log.Printf("failed to publish update for node %d: %v", id, err)
			continue
		}
		published++
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("Error reading stdin: %v", err)
	}
	log.Printf("hmi-probe published %d update(s).", published)
}
