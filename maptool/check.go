package maptool

import (
	"context"
	"fmt"
	"time"

	tracing "github.com/jamesrr39/go-tracing"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/semaphore"
	"github.com/jamesrr39/tmxkit/tilemap"
)

// Report is the outcome of checking one map file.
type Report struct {
	Path       string
	Violations []*tilemap.ConsistencyViolation
	// Err is set when the file could not be opened; there are no violations then.
	Err      errorsx.Error
	Duration time.Duration
}

func (r *Report) OK() bool {
	return r.Err == nil && len(r.Violations) == 0
}

func (r *Report) String() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("%s: could not be opened: %s", r.Path, r.Err.Error())
	case len(r.Violations) == 0:
		return fmt.Sprintf("%s: ok (%s)", r.Path, r.Duration)
	}
	return fmt.Sprintf("%s: %d problem(s)", r.Path, len(r.Violations))
}

// Checker opens maps and runs their consistency check. Every check is recorded as a trace.
type Checker struct {
	logger *logpkg.Logger
	docs   *Documents
	tracer *tracing.Tracer
	sema   *semaphore.Semaphore
}

// NewChecker creates a checker. concurrency bounds how many maps CheckAll has open at once.
func NewChecker(logger *logpkg.Logger, docs *Documents, tracer *tracing.Tracer, concurrency uint) *Checker {
	if concurrency == 0 {
		concurrency = 1
	}
	return &Checker{logger, docs, tracer, semaphore.NewSemaphore(concurrency)}
}

func (c *Checker) Check(path string) *Report {
	trace := tracing.StartTrace(c.tracer, path)
	ctx := context.WithValue(context.Background(), tracing.TraceCtxKey, trace)
	ctx = context.WithValue(ctx, tracing.TracerCtxKey, c.tracer)

	startTime := time.Now()
	report := &Report{Path: path}

	openSpan := tracing.StartSpan(ctx, "open")
	m, err := c.docs.Open(path)
	openSpan.End(ctx)

	if err != nil {
		report.Err = err
	} else {
		checkSpan := tracing.StartSpan(ctx, "check consistency")
		report.Violations = m.CheckConsistency()
		checkSpan.End(ctx)
	}
	report.Duration = time.Since(startTime)

	traceErr := c.tracer.EndTrace(trace, report.String())
	if traceErr != nil {
		c.logger.Warn("could not write trace for %q: %s", path, traceErr)
	}
	c.logger.Debug("checked %q in %s", path, report.Duration)
	return report
}

// CheckAll checks every path. Each map is only ever handled by one goroutine.
// Reports are returned in the order of paths.
func (c *Checker) CheckAll(paths []string) []*Report {
	reports := make([]*Report, len(paths))
	for i, path := range paths {
		c.sema.Add()
		go func(i int, path string) {
			defer c.sema.Done()
			reports[i] = c.Check(path)
		}(i, path)
	}
	c.sema.Wait()
	return reports
}
