package main

import (
	"math/rand"
	"time"
)

// progressSink receives percentage-complete events during an export. The
// sequence is non-decreasing and terminates in exactly one 100.
type progressSink func(percent int)

// progressTickInterval is how often the simulator advances the displayed
// percentage while a render is in flight.
const progressTickInterval = 200 * time.Millisecond

// simulateProgress starts a ticker that bumps the displayed percentage by a
// random 5–10 points per tick, capped at 90. The renderer reports no granular
// progress, so this gives callers responsive feedback without ever signalling
// false completion — 100 is only emitted by the caller after the render settles.
//
// The returned stop function cancels the ticker and blocks until the goroutine
// has exited, so no progress event can be emitted after stop returns. Callers
// must invoke it on every exit path.
func simulateProgress(sink progressSink, interval time.Duration) (stop func()) {
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		percent := 0
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				percent += 5 + rand.Intn(6)
				if percent > 90 {
					percent = 90
				}
				sink(percent)
			}
		}
	}()

	return func() {
		close(done)
		<-exited
	}
}
