// Package worker refreshes the product cache in the background.
package worker

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"apiadventures/internal/domain"
	applog "apiadventures/internal/log"
	"apiadventures/internal/services"
)

// DefaultSchedule refreshes the cache once an hour.
const DefaultSchedule = "@every 1h"

type Result string

const (
	Success Result = "success"
	Failure Result = "failure"
	// Skipped means the connectivity constraint was not met.
	Skipped Result = "skipped"
)

// Run describes one scheduler firing.
type Run struct {
	Result Result    `json:"result"`
	At     time.Time `json:"at"`
	Detail string    `json:"detail,omitempty"`
}

// Probe reports whether the network needed by a refresh is available.
type Probe func(ctx context.Context) error

// DialProbe succeeds when a TCP connection to hostPort can be opened.
func DialProbe(hostPort string, timeout time.Duration) Probe {
	return func(ctx context.Context) error {
		d := net.Dialer{Timeout: timeout}
		conn, err := d.DialContext(ctx, "tcp", hostPort)
		if err != nil {
			return err
		}
		return conn.Close()
	}
}

// Refresher runs the loader on a cron schedule, independent of any viewer.
type Refresher struct {
	loader   services.Loader
	probe    Probe
	schedule string
	cron     *cron.Cron

	mu   sync.Mutex
	last *Run
}

func NewRefresher(loader services.Loader, probe Probe, schedule string) *Refresher {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	logger := cron.PrintfLogger(applog.Logger())
	return &Refresher{
		loader:   loader,
		probe:    probe,
		schedule: schedule,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// Start registers the refresh job and starts the scheduler.
func (r *Refresher) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, func() { r.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("schedule %q: %w", r.schedule, err)
	}
	r.cron.Start()
	applog.Info(nil, "worker.refresh.scheduled", map[string]any{"schedule": r.schedule})
	return nil
}

// Stop stops scheduling and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

// Next is the next scheduled firing, zero before Start.
func (r *Refresher) Next() time.Time {
	entries := r.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunOnce performs one refresh and reports how it went.
func (r *Refresher) RunOnce(ctx context.Context) Run {
	run := Run{At: time.Now().UTC()}
	finish := func(res Result, detail string) Run {
		run.Result, run.Detail = res, detail
		r.mu.Lock()
		r.last = &run
		r.mu.Unlock()
		applog.Info(nil, "worker.refresh."+string(res), map[string]any{"detail": detail})
		return run
	}

	if r.probe != nil {
		if err := r.probe(ctx); err != nil {
			return finish(Skipped, "network unavailable: "+err.Error())
		}
	}

	o, err := r.loader.Load(ctx)
	if err != nil {
		return finish(Failure, err.Error())
	}
	switch v := o.(type) {
	case domain.LoadUnsuccessful:
		return finish(Failure, v.Reason.String())
	case domain.ProductList:
		return finish(Success, fmt.Sprintf("%d products", len(v.Products)))
	}
	return finish(Success, "")
}

// Last is the most recent run, nil when the job has not fired yet.
func (r *Refresher) Last() *Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return nil
	}
	cp := *r.last
	return &cp
}
