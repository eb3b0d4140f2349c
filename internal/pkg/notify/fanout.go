package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Job is one best-effort delivery attempt on a named channel.
type Job struct {
	Channel string
	Send    func(ctx context.Context) error
}

// Dispatch runs all jobs concurrently and collects a per-channel outcome.
// Failures are logged, never returned as an error: callers have already
// committed their authoritative write and must not fail on delivery problems.
// The returned map holds "sent" or "failed" keyed by channel name; channel
// names must be unique within one call.
func Dispatch(ctx context.Context, jobs ...Job) map[string]string {
	outcomes := make(map[string]string, len(jobs))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(j Job) {
			defer wg.Done()
			status := "sent"
			if err := j.Send(ctx); err != nil {
				status = "failed"
				slog.Warn("notification delivery failed", "channel", j.Channel, "err", err)
			}
			mu.Lock()
			outcomes[j.Channel] = status
			mu.Unlock()
		}(job)
	}
	wg.Wait()
	return outcomes
}
