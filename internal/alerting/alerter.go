// Package alerting periodically inspects the heavy-hitters tracker and
// raises a notification when an unusually large share of the scene
// graph has become non-cacheable — a "cache-thrash storm" that means
// the render budget is being blown on every frame.
//
// Grounded on internal/alerter.Alerter's ticker-driven Start/Stop shape
// and its markdown-to-HTML alert body construction, with the AI/gRPC
// analysis step dropped (see DESIGN.md) since this domain has no
// analogous external analysis service.
package alerting

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gomarkdown/markdown"

	"hmitree/internal/notifier"
)

// HitterSource is the read-only view the alerter needs from the
// heavy-hitters tracker.
type HitterSource interface {
	CurrentHitters() map[uint64]struct{}
	StreamSize() uint64
}

// Alerter polls hitters at checkInterval and notifies on every poll at
// which the hitter count is at or above threshold.
type Alerter struct {
	hitters       HitterSource
	notifier      notifier.Notifier
	checkInterval time.Duration
	threshold     int

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New constructs an Alerter. checkInterval is parsed from a Go
// duration string (e.g. "30s"), matching the template's
// config.AlerterConfig.CheckInterval convention.
func New(hitters HitterSource, n notifier.Notifier, checkInterval string, threshold int) (*Alerter, error) {
	interval, err := time.ParseDuration(checkInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid alerting poll_interval: %w", err)
	}
	return &Alerter{
		hitters:       hitters,
		notifier:      n,
		checkInterval: interval,
		threshold:     threshold,
		stopChan:      make(chan struct{}),
	}, nil
}

// Start begins the periodic evaluation loop. It blocks until Stop is
// called, so callers run it in its own goroutine.
func (a *Alerter) Start() {
	log.Println("Alerter started")

	a.wg.Add(1)
	defer a.wg.Done()

	ticker := time.NewTicker(a.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.evaluate()
		case <-a.stopChan:
			return
		}
	}
}

// Stop gracefully halts the evaluation loop after one final check.
func (a *Alerter) Stop() {
	log.Println("Stopping Alerter...")
	close(a.stopChan)
	a.wg.Wait()
	a.evaluate()
}

func (a *Alerter) evaluate() {
	hitters := a.hitters.CurrentHitters()
	if len(hitters) < a.threshold {
		return
	}

	log.Printf("Alerter: hitter count %d crossed threshold %d", len(hitters), a.threshold)

	body := fmt.Sprintf(
		"# Cache-thrash storm detected\n\n"+
			"**%d** node ids are currently heavy hitters (threshold %d) out of "+
			"%d observed updates.\n\n"+
			"These nodes and their ancestors are being rendered every frame "+
			"instead of served from cache.\n",
		len(hitters), a.threshold, a.hitters.StreamSize())

	html := markdown.ToHTML([]byte(body), nil, nil)

	subject := fmt.Sprintf("hmi-engine: cache-thrash storm (%d hitters)", len(hitters))
	if err := a.notifier.Send(subject, string(html)); err != nil {
		log.Printf("ERROR: failed to send cache-thrash alert: %v", err)
		return
	}
	log.Println("INFO: cache-thrash alert sent successfully")
}
