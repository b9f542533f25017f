package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tokencrypt-go/internal/config"
	"github.com/tokencrypt-go/internal/storage"
)

var startTime = time.Now()

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	GitCommit    string `json:"git_commit"`
	Compression  string `json:"compression"`
	Uptime       string `json:"uptime"`
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAlloc     uint64 `json:"mem_alloc_mb"`
}

// HealthHandler returns server health status
func HealthHandler(compression string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		info := config.GetVersionInfo()
		c.JSON(http.StatusOK, HealthResponse{
			Status:       "ok",
			Version:      info.Version,
			GitCommit:    info.GitCommit,
			Compression:  compression,
			Uptime:       time.Since(startTime).Round(time.Second).String(),
			GoVersion:    info.GoVersion,
			NumGoroutine: runtime.NumGoroutine(),
			MemAlloc:     m.Alloc / 1024 / 1024, // MB
		})
	}
}

// ReadyHandler returns whether the service is ready to accept traffic
func ReadyHandler(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
