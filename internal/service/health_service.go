package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"disaster-locator-bot/internal/dto"
)

// HealthCheck probes one dependency; nil means healthy.
type HealthCheck func(ctx context.Context) error

type IHealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

type healthService struct {
	instance string
	checks   map[string]HealthCheck
	timeout  time.Duration
}

func NewHealthService(instance string, checks map[string]HealthCheck) IHealthService {
	return &healthService{instance: instance, checks: checks, timeout: 3 * time.Second}
}

// Check runs all probes in parallel. Any failing probe degrades the status.
func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]string, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, check HealthCheck) {
			defer wg.Done()
			if err := check(ctx); err != nil {
				results[i] = "down: " + err.Error()
				return
			}
			results[i] = "up"
		}(i, s.checks[name])
	}
	wg.Wait()

	res := dto.HealthResponse{Status: "ok", Checks: make(map[string]string, len(names)), Instance: s.instance}
	for i, name := range names {
		res.Checks[name] = results[i]
		if results[i] != "up" {
			res.Status = "degraded"
		}
	}
	return res
}
