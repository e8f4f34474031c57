// Package services contains the validator, checker and importer built on the route table.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"dslf/internal/domain/models"
	"dslf/internal/httpclient"

	"go.uber.org/zap"
)

// Acceptable status range of a probed destination.
const (
	MinAcceptableStatus = 200
	MaxAcceptableStatus = 399
)

const (
	defaultConcurrency  = 10
	defaultProbeTimeout = 10 * time.Second
	maxDrainBytes       = 64 << 10
	userAgent           = "dslf-validator"
)

// ValidatorOptions - validator tuning.
type ValidatorOptions struct {
	// Concurrency: maximum number of probes in flight.
	Concurrency int
	// ProbeTimeout: deadline of one probe, including the GET fallback.
	ProbeTimeout time.Duration
	// OverallTimeout: deadline of the whole run, zero means none.
	OverallTimeout time.Duration
}

// Validator probes every route target over the network.
type Validator struct {
	doer  httpclient.HTTPDoer
	sugar *zap.SugaredLogger
	opts  ValidatorOptions
}

// ValidationReport - outcomes of a validation run in table order.
type ValidationReport struct {
	Outcomes []models.ValidationOutcome
}

// Failures returns the failed outcomes in table order.
func (r ValidationReport) Failures() []models.ValidationOutcome {
	var failed []models.ValidationOutcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// OK reports whether every destination was reachable.
func (r ValidationReport) OK() bool {
	for _, o := range r.Outcomes {
		if !o.OK() {
			return false
		}
	}
	return true
}

// NewValidator - constructor for Validator. Zero options take defaults.
func NewValidator(doer httpclient.HTTPDoer, opts ValidatorOptions, sugar *zap.SugaredLogger) *Validator {
	if opts.Concurrency < 1 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = defaultProbeTimeout
	}
	return &Validator{doer: doer, sugar: sugar, opts: opts}
}

// Validate probes every entry with at most Concurrency probes in flight.
// Entries left unprobed when the overall timeout fires are reported as timeouts.
func (v *Validator) Validate(ctx context.Context, entries []models.RouteEntry) ValidationReport {
	runCtx := ctx
	if v.opts.OverallTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, v.opts.OverallTimeout)
		defer cancel()
	}

	v.sugar.Infow("Validating destination URLs", "count", len(entries), "concurrency", v.opts.Concurrency)

	inputCh := createProbeChannel(runCtx, entries)
	workerChs := v.distributeProbeTasks(runCtx, inputCh, v.opts.Concurrency)
	resultCh := collectProbeResults(workerChs...)

	outcomes := make([]models.ValidationOutcome, len(entries))
	probed := make([]bool, len(entries))
	for res := range resultCh {
		outcomes[res.index] = res.outcome
		probed[res.index] = true
	}

	for i, e := range entries {
		if !probed[i] {
			outcomes[i] = models.ValidationOutcome{
				Path:   e.Path,
				Target: e.Target,
				Reason: models.ReasonTimeout,
				Err:    fmt.Errorf("not probed: %w", context.Cause(runCtx)),
			}
		}
	}

	return ValidationReport{Outcomes: outcomes}
}

func (v *Validator) distributeProbeTasks(ctx context.Context, inputCh <-chan probeTask, numWorkers int) []chan probeResult {
	resultChs := make([]chan probeResult, 0, numWorkers)

	for i := 0; i < numWorkers; i++ {
		resultCh := make(chan probeResult)

		go func(ch chan probeResult) {
			defer close(ch)
			for task := range inputCh {
				if ctx.Err() != nil {
					return
				}
				outcome := v.probe(ctx, task.entry)
				v.logOutcome(outcome)
				ch <- probeResult{index: task.index, outcome: outcome}
			}
		}(resultCh)

		resultChs = append(resultChs, resultCh)
	}

	return resultChs
}

// probe issues HEAD and falls back to GET when the target rejects HEAD.
func (v *Validator) probe(ctx context.Context, e models.RouteEntry) models.ValidationOutcome {
	probeCtx, cancel := context.WithTimeout(ctx, v.opts.ProbeTimeout)
	defer cancel()

	outcome := models.ValidationOutcome{Path: e.Path, Target: e.Target}

	status, err := v.send(probeCtx, http.MethodHead, e.Target)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, err = v.send(probeCtx, http.MethodGet, e.Target)
	}

	outcome.StatusCode = status
	switch {
	case err != nil:
		outcome.Reason = classifyProbeError(err)
		outcome.Err = err
	case status < MinAcceptableStatus || status > MaxAcceptableStatus:
		outcome.Reason = models.ReasonHTTPStatus
	default:
		outcome.Reason = models.ReasonNone
	}
	return outcome
}

func (v *Validator) send(ctx context.Context, method, target string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := v.doer.Do(req)
	if err != nil {
		return 0, err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

func (v *Validator) logOutcome(o models.ValidationOutcome) {
	if o.OK() {
		v.sugar.Debugw("Destination OK", "path", o.Path, "target", o.Target, "status", o.StatusCode)
		return
	}
	v.sugar.Warnw("Destination failed", "path", o.Path, "target", o.Target, "reason", o.Describe())
}

// classifyProbeError maps a transport error onto a failure reason.
func classifyProbeError(err error) models.FailureReason {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.ReasonTimeout
	}
	return models.ReasonConnection
}
