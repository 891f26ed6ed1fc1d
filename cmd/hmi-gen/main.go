// Command hmi-gen writes a synthetic node-definition and command
// stream to stdout in the grammar internal/hmicli.Run reads, biasing a
// configurable fraction of updates toward a small "hot" subset of node
// ids so the generated stream reliably exercises heavy-hitter
// formation. Grounded on scripts/pcapgen's role as a synthetic traffic
// generator for the sketch pipeline.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
)

func main() {
	nodeCount := flag.Int("nodes", 50, "number of Text nodes to define under the root")
	updateCount := flag.Int("updates", 5000, "number of update commands to emit")
	frameEvery := flag.Int("frame-every", 50, "emit a 'refresh' command every N updates")
	hotCount := flag.Int("hot", 5, "number of node ids to bias updates toward")
	hotFraction := flag.Float64("hot-fraction", 0.8, "fraction of updates directed at the hot id set")
	flag.Parse()

	if *hotCount > *nodeCount {
		log.Fatalf("hot count %d cannot exceed node count %d", *hotCount, *nodeCount)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	fmt.Fprintln(w, *nodeCount)
	for id := 1; id <= *nodeCount; id++ {
		fmt.Fprintf(w, "0,T,%d,seed-%d\n", id, id)
	}

	hotIDs := make([]int, *hotCount)
	for i := range hotIDs {
		hotIDs[i] = i + 1
	}

	for i := 0; i < *updateCount; i++ {
		var id int
		if rand.Float64() < *hotFraction {
			id = hotIDs[rand.Intn(len(hotIDs))]
		} else {
			id = rand.Intn(*nodeCount) + 1
		}
		fmt.Fprintf(w, "%d,v%d\n", id, i)

		if (i+1)%*frameEvery == 0 {
			fmt.Fprintln(w, "refresh")
		}
	}
	fmt.Fprintln(w, "end")

	log.Printf("hmi-gen: wrote %d node definitions and %d updates (%d hot ids, %.0f%% biased)",
		*nodeCount, *updateCount, *hotCount, *hotFraction*100)
}
