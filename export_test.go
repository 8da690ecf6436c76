package main

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

/* ─── Test doubles ───────────────────────────────────────────────────── */

// stubRenderer returns canned bytes or a canned error immediately.
type stubRenderer struct {
	pdf []byte
	err error
}

func (s *stubRenderer) renderPDF(ctx context.Context, html string) ([]byte, error) {
	return s.pdf, s.err
}

// stallingRenderer blocks until the context is done — simulating a hung
// headless browser — then reports the context's error.
type stallingRenderer struct{}

func (s *stallingRenderer) renderPDF(ctx context.Context, html string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// slowRenderer waits for delay (or context cancellation) before succeeding.
type slowRenderer struct {
	delay time.Duration
	pdf   []byte
}

func (s *slowRenderer) renderPDF(ctx context.Context, html string) ([]byte, error) {
	select {
	case <-time.After(s.delay):
		return s.pdf, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// failingRenderer marks the test as failed if the pipeline ever reaches it.
type failingRenderer struct{ t *testing.T }

func (f *failingRenderer) renderPDF(ctx context.Context, html string) ([]byte, error) {
	f.t.Error("renderer was invoked but should not have been")
	return nil, errors.New("unexpected call")
}

// progressRecorder is a concurrency-safe progressSink that keeps every
// emitted percentage in order.
type progressRecorder struct {
	mu     sync.Mutex
	events []int
}

func (r *progressRecorder) sink(percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, percent)
}

func (r *progressRecorder) snapshot() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.events...)
}

// assertProgressContract checks the event sequence is non-decreasing and ends
// with exactly one 100.
func assertProgressContract(t *testing.T, events []int) {
	t.Helper()
	if len(events) == 0 {
		t.Fatal("no progress events emitted")
	}
	if events[0] != 0 {
		t.Errorf("first event = %d, want 0", events[0])
	}
	for i := 1; i < len(events); i++ {
		if events[i] < events[i-1] {
			t.Errorf("progress went backwards: %v", events)
			break
		}
	}
	hundreds := 0
	for _, e := range events {
		if e == 100 {
			hundreds++
		}
	}
	if hundreds != 1 {
		t.Errorf("got %d events of 100, want exactly 1: %v", hundreds, events)
	}
	if events[len(events)-1] != 100 {
		t.Errorf("last event = %d, want 100 (no events after the terminal one)", events[len(events)-1])
	}
}

/* ─── Pipeline tests ─────────────────────────────────────────────────── */

// TestExportPlan_PDFSuccess verifies the happy path: renderer bytes come back
// as a PDF artifact with no fallback flag.
func TestExportPlan_PDFSuccess(t *testing.T) {
	rec := &progressRecorder{}
	r := &stubRenderer{pdf: []byte("%PDF-1.4 fake")}

	result, err := exportPlan(context.Background(), fixturePlan(), fixtureClient(), r, rec.sink, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != statusSucceededPDF || result.Format != formatPDF {
		t.Errorf("status/format = %s/%s, want %s/%s", result.Status, result.Format, statusSucceededPDF, formatPDF)
	}
	if result.Fallback {
		t.Error("fallback flag set on a successful PDF export")
	}
	if string(result.Bytes) != "%PDF-1.4 fake" {
		t.Error("artifact bytes do not match renderer output")
	}
	assertProgressContract(t, rec.snapshot())
}

// TestExportPlan_FallbackOnTimeout is the core degradation property: a
// renderer that always times out must still yield a Succeeded(HTML) result
// carrying the same semantic content as the PDF path — never a hard failure.
func TestExportPlan_FallbackOnTimeout(t *testing.T) {
	rec := &progressRecorder{}

	result, err := exportPlan(context.Background(), fixturePlan(), fixtureClient(),
		&stallingRenderer{}, rec.sink, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("timeout must degrade, not fail: %v", err)
	}
	if result.Status != statusSucceededHTML || result.Format != formatHTML {
		t.Errorf("status/format = %s/%s, want %s/%s", result.Status, result.Format, statusSucceededHTML, formatHTML)
	}
	if !result.Fallback {
		t.Error("fallback flag not set on degraded delivery")
	}

	html := string(result.Bytes)
	for _, want := range []string{"Summer Cut", "Greek Yogurt Bowl", "Grilled Salmon", "Jordan Reyes"} {
		if !strings.Contains(html, want) {
			t.Errorf("fallback artifact missing %q", want)
		}
	}
	assertProgressContract(t, rec.snapshot())
}

// TestExportPlan_FallbackOnRendererError verifies a crashed renderer (non-
// timeout error) gets the same fallback treatment as a timeout.
func TestExportPlan_FallbackOnRendererError(t *testing.T) {
	rec := &progressRecorder{}
	r := &stubRenderer{err: errors.New("browser process exited")}

	result, err := exportPlan(context.Background(), fixturePlan(), fixtureClient(), r, rec.sink, time.Second)
	if err != nil {
		t.Fatalf("renderer crash must degrade, not fail: %v", err)
	}
	if result.Status != statusSucceededHTML || !result.Fallback {
		t.Errorf("expected flagged HTML fallback, got %+v", result.Status)
	}
	assertProgressContract(t, rec.snapshot())
}

// TestExportPlan_HardFailOnAssembly verifies an invalid document fails before
// the renderer is ever invoked — there is nothing to render and nothing to
// degrade to.
func TestExportPlan_HardFailOnAssembly(t *testing.T) {
	rec := &progressRecorder{}
	plan := fixturePlan()
	plan.Name = ""

	result, err := exportPlan(context.Background(), plan, fixtureClient(),
		&failingRenderer{t: t}, rec.sink, time.Second)
	if err == nil {
		t.Fatal("expected a hard failure for HTML assembly")
	}
	var ee *exportError
	if !errors.As(err, &ee) {
		t.Fatalf("expected *exportError, got %T", err)
	}
	if ee.Reason != "html assembly" {
		t.Errorf("reason = %q, want %q", ee.Reason, "html assembly")
	}
	if result != nil {
		t.Error("expected nil result on hard failure")
	}
	assertProgressContract(t, rec.snapshot())
}

// TestExportPlan_Cancelled verifies a caller-side abort surfaces as a failure
// rather than delivering a partial or fallback artifact.
func TestExportPlan_Cancelled(t *testing.T) {
	rec := &progressRecorder{}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	result, err := exportPlan(ctx, fixturePlan(), fixtureClient(),
		&stallingRenderer{}, rec.sink, time.Second)
	if err == nil {
		t.Fatal("expected an error for a cancelled export")
	}
	var ee *exportError
	if !errors.As(err, &ee) || ee.Reason != "cancelled" {
		t.Fatalf("expected cancelled exportError, got %v", err)
	}
	if result != nil {
		t.Error("a cancelled export must not deliver an artifact")
	}
}

// TestExportPlan_CallerDeadlineAborts verifies a caller context that expires
// via its own deadline gets the same treatment as an explicit cancel: a hard
// failure, never a fallback artifact delivered to a caller that has moved on.
// The render timeout here is generous so only the caller's deadline can fire.
func TestExportPlan_CallerDeadlineAborts(t *testing.T) {
	rec := &progressRecorder{}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	result, err := exportPlan(ctx, fixturePlan(), fixtureClient(),
		&stallingRenderer{}, rec.sink, time.Minute)
	if err == nil {
		t.Fatal("expected an error when the caller's deadline expired")
	}
	var ee *exportError
	if !errors.As(err, &ee) || ee.Reason != "cancelled" {
		t.Fatalf("expected cancelled exportError, got %v", err)
	}
	if result != nil {
		t.Error("an aborted caller must not receive an artifact")
	}
}

// TestExportPlan_ProgressDuringLongRender verifies the simulator emits
// intermediate ticks (capped below 100) while the renderer is busy, and the
// full sequence still honors the contract.
func TestExportPlan_ProgressDuringLongRender(t *testing.T) {
	rec := &progressRecorder{}
	r := &slowRenderer{delay: 700 * time.Millisecond, pdf: []byte("pdf")}

	_, err := exportPlan(context.Background(), fixturePlan(), fixtureClient(), r, rec.sink, 5*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := rec.snapshot()
	assertProgressContract(t, events)
	intermediates := 0
	for _, e := range events {
		if e > 0 && e < 100 {
			intermediates++
			if e > 90 {
				t.Errorf("simulated progress exceeded the 90%% cap: %d", e)
			}
		}
	}
	if intermediates == 0 {
		t.Error("expected intermediate progress ticks during a long render")
	}
}

/* ─── Simulator tests ────────────────────────────────────────────────── */

// TestSimulateProgress_CapAndMonotonic runs the ticker fast and long enough to
// hit the cap, then verifies every emitted value.
func TestSimulateProgress_CapAndMonotonic(t *testing.T) {
	rec := &progressRecorder{}
	stop := simulateProgress(rec.sink, time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	stop()

	events := rec.snapshot()
	if len(events) == 0 {
		t.Fatal("no events emitted")
	}
	for i, e := range events {
		if e > 90 {
			t.Errorf("event %d exceeds the 90%% cap: %d", i, e)
		}
		if i > 0 && e < events[i-1] {
			t.Errorf("progress went backwards at %d: %v", i, events)
		}
	}
	if events[len(events)-1] != 90 {
		t.Errorf("expected the cap (90) to be reached, last event = %d", events[len(events)-1])
	}
}

// TestSimulateProgress_NoEventsAfterStop verifies stop() is a hard barrier:
// once it returns, the sink is never called again.
func TestSimulateProgress_NoEventsAfterStop(t *testing.T) {
	rec := &progressRecorder{}
	stop := simulateProgress(rec.sink, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	stop()

	before := len(rec.snapshot())
	time.Sleep(20 * time.Millisecond)
	after := len(rec.snapshot())
	if before != after {
		t.Errorf("sink called after stop: %d events before, %d after", before, after)
	}
}

/* ─── Filename tests ─────────────────────────────────────────────────── */

// TestAttachmentFilename verifies non-alphanumeric characters are replaced and
// degenerate names get a usable default.
func TestAttachmentFilename(t *testing.T) {
	cases := []struct {
		planName string
		format   string
		want     string
	}{
		{"Summer Cut", "pdf", "Summer_Cut.pdf"},
		{"Jordan's Plan (v2)!", "html", "Jordan_s_Plan_v2_.html"},
		{"???", "pdf", "nutrition_plan.pdf"},
		{"", "html", "nutrition_plan.html"},
	}
	for _, tc := range cases {
		if got := attachmentFilename(tc.planName, tc.format); got != tc.want {
			t.Errorf("attachmentFilename(%q, %q) = %q, want %q", tc.planName, tc.format, got, tc.want)
		}
	}
}
