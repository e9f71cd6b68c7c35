package worker_test

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"apiadventures/internal/domain"
	"apiadventures/internal/worker"
)

type stubLoader struct {
	outcome domain.Outcome
	err     error
	calls   atomic.Int32
}

func (s *stubLoader) Load(ctx context.Context) (domain.Outcome, error) {
	s.calls.Add(1)
	return s.outcome, s.err
}

func TestRunOnce_Results(t *testing.T) {
	offline := func(context.Context) error { return errors.New("no route to host") }
	online := func(context.Context) error { return nil }

	tests := []struct {
		name      string
		loader    *stubLoader
		probe     worker.Probe
		want      worker.Result
		wantCalls int32
	}{
		{
			name:      "products loaded",
			loader:    &stubLoader{outcome: domain.ProductList{Products: []domain.CategorizedProduct{domain.Equipment{Name: "Rower", Price: 3}}}},
			probe:     online,
			want:      worker.Success,
			wantCalls: 1,
		},
		{
			name:      "unsuccessful outcome",
			loader:    &stubLoader{outcome: domain.LoadUnsuccessful{Reason: domain.ServerError}},
			probe:     online,
			want:      worker.Failure,
			wantCalls: 1,
		},
		{
			name:      "loader error",
			loader:    &stubLoader{outcome: domain.ProductsNotLoaded{}, err: errors.New("decode products")},
			want:      worker.Failure,
			wantCalls: 1,
		},
		{
			name:   "offline skips the load",
			loader: &stubLoader{outcome: domain.ProductsNotLoaded{}},
			probe:  offline,
			want:   worker.Skipped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := worker.NewRefresher(tt.loader, tt.probe, "")
			if r.Last() != nil {
				t.Fatal("Last should be nil before the first run")
			}
			run := r.RunOnce(context.Background())
			if run.Result != tt.want {
				t.Fatalf("want %s, got %s (%s)", tt.want, run.Result, run.Detail)
			}
			if got := tt.loader.calls.Load(); got != tt.wantCalls {
				t.Fatalf("want %d loads, got %d", tt.wantCalls, got)
			}
			if last := r.Last(); last == nil || last.Result != tt.want {
				t.Fatalf("Last not recorded: %+v", last)
			}
		})
	}
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	r := worker.NewRefresher(&stubLoader{}, nil, "every now and then")
	if err := r.Start(); err == nil {
		r.Stop()
		t.Fatal("expected schedule parse error")
	}
}

func TestStart_FiresOnSchedule(t *testing.T) {
	loader := &stubLoader{outcome: domain.LoadUnsuccessful{Reason: domain.OfflineNoProducts}}
	r := worker.NewRefresher(loader, nil, "@every 1s")
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}
	defer r.Stop()

	if r.Next().IsZero() {
		t.Fatal("next run should be scheduled")
	}
	deadline := time.Now().Add(3 * time.Second)
	for loader.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if loader.calls.Load() == 0 {
		t.Fatal("scheduled refresh never ran")
	}
}

func TestDialProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			_ = c.Close()
		}
	}()

	if err := worker.DialProbe(addr, time.Second)(context.Background()); err != nil {
		t.Fatalf("probe against listener failed: %v", err)
	}
	_ = ln.Close()
	if err := worker.DialProbe(addr, time.Second)(context.Background()); err == nil {
		t.Fatal("probe against closed listener should fail")
	}
}
