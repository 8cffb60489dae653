package main

import (
	"context"
	"net/http"
	"time"
)

// healthCheck pings one external dependency.
type healthCheck struct {
	name  string
	check func(ctx context.Context) error
}

type HealthStatus struct {
	Healthy      bool              `json:"healthy"`
	Dependencies map[string]string `json:"dependencies"`
	Waiting      int               `json:"waiting"`
	LiveMatches  int               `json:"live_matches"`
	Errors       []string          `json:"errors"`
}

func (s *Services) addHealthCheck(name string, check func(ctx context.Context) error) {
	s.checks = append(s.checks, healthCheck{name: name, check: check})
}

// Check runs every registered health check.
func (s *Services) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy:      true,
		Dependencies: make(map[string]string, len(s.checks)),
		Errors:       []string{},
	}

	for _, hc := range s.checks {
		if err := hc.check(ctx); err != nil {
			status.Healthy = false
			status.Dependencies[hc.name] = "down"
			status.Errors = append(status.Errors, hc.name+": "+err.Error())
			continue
		}
		status.Dependencies[hc.name] = "up"
	}

	if s.Coordinator != nil {
		stats := s.Coordinator.Stats()
		status.Waiting = stats.Waiting
		status.LiveMatches = stats.LiveMatches
	}
	return status
}

func handleReadiness(services *Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := services.Check(ctx)
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, status)
	}
}
