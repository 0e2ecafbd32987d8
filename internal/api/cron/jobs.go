package cron

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kennelworks/kennelworks/internal/logger"
	"github.com/kennelworks/kennelworks/internal/service"
)

// JobsHandler fires the scheduled jobs on demand, mirroring what the
// scheduler does at its anchors. Useful for operations and for
// catching up after an outage.
type JobsHandler struct {
	transitionService service.TransitionService
	reminderService   service.ReminderService
	backupService     service.BackupService
	logger            *logger.Logger
}

func NewJobsHandler(
	transitionService service.TransitionService,
	reminderService service.ReminderService,
	backupService service.BackupService,
	logger *logger.Logger,
) *JobsHandler {
	return &JobsHandler{
		transitionService: transitionService,
		reminderService:   reminderService,
		backupService:     backupService,
		logger:            logger,
	}
}

// RunDailyTransitions runs the presence transition engine over all
// animals. Safe to re-run within the same day: the rules are
// idempotent over field values.
func (h *JobsHandler) RunDailyTransitions(c *gin.Context) {
	response, err := h.transitionService.RunDailyTransitions(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to run daily transitions",
			"error", err)

		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// RunDepartureReminder fires the pending-departures check.
func (h *JobsHandler) RunDepartureReminder(c *gin.Context) {
	response, err := h.reminderService.RunDepartureReminder(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to run departure reminder",
			"error", err)

		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// RunBackup snapshots the animal set into the export sink.
func (h *JobsHandler) RunBackup(c *gin.Context) {
	response, err := h.backupService.RunBackup(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to run backup",
			"error", err)

		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
