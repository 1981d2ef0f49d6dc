package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ctxPkg "github.com/feyabloom/studio/pkg/context"
	"github.com/feyabloom/studio/pkg/scheduler"
)

func schedulerFrom(c *gin.Context) *scheduler.Scheduler {
	sched := ctxPkg.GetScheduler(c.Request.Context())
	if sched == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler not running"})
	}

	return sched
}

// SchedulerJobs 返回所有调度器任务信息.
//
//	@Summary	任务列表
//	@Tags		调度器
//	@Produce	json
//	@Success	200	{object}	map[string][]scheduler.JobInfo
//	@Router		/api/v1/scheduler/jobs [get]
func SchedulerJobs(c *gin.Context) {
	sched := schedulerFrom(c)
	if sched == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": sched.GetJobInfos()})
}

// SchedulerRunJob 立即执行一次指定名称的任务.
func SchedulerRunJob(c *gin.Context) {
	sched := schedulerFrom(c)
	if sched == nil {
		return
	}

	name := c.Param("name")
	if err := sched.RunNow(name); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scheduler.ErrJobNotFound) {
			status = http.StatusNotFound
		}

		c.JSON(status, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "job triggered", "name": name})
}

// SchedulerStopJobs 停止所有任务.
func SchedulerStopJobs(c *gin.Context) {
	sched := schedulerFrom(c)
	if sched == nil {
		return
	}

	if err := sched.StopJobs(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "jobs stopped"})
}

// SchedulerRemoveJob 根据 id 或名称删除任务.
func SchedulerRemoveJob(c *gin.Context) {
	sched := schedulerFrom(c)
	if sched == nil {
		return
	}

	ref := c.Param("id")

	var err error
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		err = sched.RemoveJob(id)
	} else {
		err = sched.RemoveJobByName(ref)
	}

	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scheduler.ErrJobNotFound) {
			status = http.StatusNotFound
		}

		c.JSON(status, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job removed"})
}

// SchedulerQueueWaiting 返回队列中等待的任务数.
func SchedulerQueueWaiting(c *gin.Context) {
	sched := schedulerFrom(c)
	if sched == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{"waiting": sched.JobsWaitingInQueue()})
}
