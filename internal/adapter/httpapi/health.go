package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const probeTimeout = 2 * time.Second

type checkResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "Healthy"})
}

// readiness runs every probe; any failure turns the answer into a 503.
func (s *Server) readiness(c *gin.Context) {
	status := http.StatusOK
	overall := "Healthy"
	checks := make(map[string]checkResult, len(s.ready))
	for _, chk := range s.ready {
		ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
		err := chk.Probe(ctx)
		cancel()
		if err != nil {
			status, overall = http.StatusServiceUnavailable, "Unhealthy"
			checks[chk.Name] = checkResult{Status: "Unhealthy", Error: err.Error()}
			s.log.WarnContext(c.Request.Context(), "readiness probe failed", "check", chk.Name, "err", err)
			continue
		}
		checks[chk.Name] = checkResult{Status: "Healthy"}
	}
	c.JSON(status, gin.H{"status": overall, "checks": checks})
}
