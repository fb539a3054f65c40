package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// recentLogCount is how many activity entries the initial page render shows;
// the live view grows up to 50 client-side.
const recentLogCount = 10

// Dashboard renders the full HTML snapshot. Live updates arrive over the
// websocket afterwards.
func Dashboard(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snap, err := deps.Aggregator.ComputeSnapshot(ctx)
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading dashboard: %v", err)
		return
	}

	recent, err := deps.Logs.Recent(ctx, recentLogCount)
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading dashboard: %v", err)
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Snapshot":   snap,
		"RecentLogs": recent,
		"Year":       time.Now().Year(),
	})
}
