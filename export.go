package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

/* ─── Export job model ───────────────────────────────────────────────── */

// exportStatus tracks the export state machine. A job moves through Rendering
// exactly once and terminates in one of the three final states; the fallback
// is a transition, not an exception path, so it is testable without forcing a
// real timeout.
type exportStatus string

const (
	statusPending       exportStatus = "pending"
	statusRendering     exportStatus = "rendering"
	statusSucceededPDF  exportStatus = "succeeded_pdf"
	statusSucceededHTML exportStatus = "succeeded_html"
	statusFailed        exportStatus = "failed"
)

// Artifact formats (and their content types).
const (
	formatPDF  = "pdf"
	formatHTML = "html"
)

// exportResult is the terminal artifact of a successful export. Fallback is
// set when PDF rendering failed and the HTML document was served instead —
// still a success from the caller's point of view, but flagged so the UI can
// warn about degraded delivery.
type exportResult struct {
	Status   exportStatus
	Format   string
	Bytes    []byte
	Fallback bool
}

// exportError is the only export-path failure surfaced to callers: HTML
// assembly failed, or the export was cancelled. Renderer timeouts and crashes
// are absorbed by the fallback and never reach here.
type exportError struct {
	Reason string
	Err    error
}

func (e *exportError) Error() string {
	return fmt.Sprintf("export failed (%s): %v", e.Reason, e.Err)
}

func (e *exportError) Unwrap() error { return e.Err }

/* ─── Pipeline ───────────────────────────────────────────────────────── */

// exportPlan runs the full export pipeline: assemble HTML, attempt PDF
// rendering bounded by timeout, fall back to serving the HTML itself on any
// render failure. Synthetic progress is reported to sink throughout; the
// simulator is cancelled on every exit path and exactly one 100 is emitted
// after it has stopped, so no event can follow the terminal one.
//
// Each call is self-contained — no shared mutable state — so concurrent
// exports need no coordination.
func exportPlan(ctx context.Context, plan *planDocument, client *clientProfile,
	r renderer, sink progressSink, timeout time.Duration) (*exportResult, error) {

	job := exportResult{Status: statusPending}

	sink(0)
	job.Status = statusRendering

	stop := simulateProgress(sink, progressTickInterval)
	finish := func() {
		stop()
		sink(100)
	}

	// HTML is both the renderer input and the fallback artifact. If this fails
	// there is nothing to render and nothing to degrade to: hard failure,
	// without attempting the renderer.
	html, err := assemblePlanHTML(plan, client, time.Now())
	if err != nil {
		finish()
		job.Status = statusFailed
		return nil, &exportError{Reason: "html assembly", Err: err}
	}

	renderCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pdf, renderErr := r.renderPDF(renderCtx, html)
	if renderErr == nil {
		finish()
		job.Status = statusSucceededPDF
		job.Format = formatPDF
		job.Bytes = pdf
		return &job, nil
	}

	// A caller-side abort — cancellation or the caller's own deadline — is not
	// a render failure: the caller has moved on and must not receive an
	// artifact, fallback included. Checked on the parent context: renderCtx
	// expiring alone is the render timeout, which degrades instead.
	if ctx.Err() != nil {
		finish()
		job.Status = statusFailed
		return nil, &exportError{Reason: "cancelled", Err: ctx.Err()}
	}

	// Timeout or renderer crash: degrade to the HTML document we already have.
	// The fallback is not retried and cannot fail at this point.
	log.Printf("[export] PDF render failed, serving HTML fallback: %v", renderErr)
	finish()
	job.Status = statusSucceededHTML
	job.Format = formatHTML
	job.Bytes = []byte(html)
	job.Fallback = true
	return &job, nil
}

/* ─── Handler ────────────────────────────────────────────────────────── */

// nonAlphanumeric matches runs of filename-unsafe characters in plan names.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// attachmentFilename derives a download filename from the plan name.
func attachmentFilename(planName, format string) string {
	base := nonAlphanumeric.ReplaceAllString(planName, "_")
	if base == "" || base == "_" {
		base = "nutrition_plan"
	}
	return base + "." + format
}

// exportPlanHandler streams the plan document as a PDF attachment, or as HTML
// with an X-Export-Fallback header when rendering degraded. Callers must
// inspect the actual Content-Type rather than assume PDF.
// GET /api/plans/:id/export.
func (h *Handler) exportPlanHandler(c *gin.Context) {
	trainerID := c.GetInt("trainer_id")

	plan, err := h.fetchPlan(c, c.Param("id"), trainerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "plan not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to fetch plan")
		}
		return
	}

	client, err := h.fetchClient(c, strconv.Itoa(plan.ClientID), trainerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "client not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to fetch client")
		}
		return
	}

	// The artifact is streamed on this same response, so progress events go to
	// the log here; interactive callers attach their own sink via the pipeline.
	sink := func(percent int) {
		log.Printf("[export] plan %d: %d%%", plan.ID, percent)
	}

	r := &httpRenderer{baseURL: h.rendererBaseURL, timeout: h.renderTimeout}
	result, err := exportPlan(c.Request.Context(), &plan, &client, r, sink, h.renderTimeout)
	if err != nil {
		log.Printf("[export] plan %d failed: %v", plan.ID, err)
		apiError(c, http.StatusInternalServerError, "failed to export plan")
		return
	}

	contentType := "application/pdf"
	if result.Format == formatHTML {
		contentType = "text/html; charset=utf-8"
	}
	if result.Fallback {
		c.Header("X-Export-Fallback", "true")
	}
	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", attachmentFilename(plan.Name, result.Format)))
	c.Data(http.StatusOK, contentType, result.Bytes)
}
