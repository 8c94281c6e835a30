package handler

import (
	"context"
	"net/http"
	"time"

	"pooled-multisender/internal/core/ports"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const healthTimeout = 2 * time.Second

type dependencyStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency"`
	Error   string `json:"error,omitempty"`
}

// HealthCheck pings every backing store concurrently and answers 503 when
// any of them fails within healthTimeout.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		results := make([]dependencyStatus, len(checkers))
		var g errgroup.Group
		for i, checker := range checkers {
			g.Go(func() error {
				start := time.Now()
				err := checker.Ping(ctx)
				results[i] = dependencyStatus{Status: "healthy", Latency: time.Since(start).String()}
				if err != nil {
					results[i].Status = "unhealthy"
					results[i].Error = err.Error()
				}
				return nil
			})
		}
		_ = g.Wait()

		status, code := "healthy", http.StatusOK
		deps := make(map[string]dependencyStatus, len(checkers))
		for i, checker := range checkers {
			deps[checker.Name()] = results[i]
			if results[i].Error != "" {
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{"status": status, "dependencies": deps})
	}
}
