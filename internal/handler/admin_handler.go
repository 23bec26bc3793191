package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"lentera.id/elearning/internal/scheduler"
	"lentera.id/elearning/pkg/response"
)

type AdminHandler struct {
	scheduler *scheduler.Scheduler
}

func NewAdminHandler(sched *scheduler.Scheduler) *AdminHandler {
	return &AdminHandler{scheduler: sched}
}

// TriggerSnapshots handles POST /admin/leaderboard/snapshots. Same write
// path as the nightly job; meant for recovery after a missed night. The
// skip-on-duplicate insert makes running it twice for one day harmless.
func (h *AdminHandler) TriggerSnapshots(c *gin.Context) {
	if err := h.scheduler.RunJobByName(c.Request.Context(), scheduler.SnapshotJobName); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "leaderboard snapshots created"})
}
