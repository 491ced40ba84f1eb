package cron

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/robfig/cron/v3"
	"github.com/sahilchouksey/task-manager-api/model"
	"github.com/sahilchouksey/task-manager-api/services"
	"github.com/sahilchouksey/task-manager-api/services/snapshot"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Job names recorded in cron_job_logs
const (
	JobTaskStats     = "task_stats"
	JobSnapshotTasks = "snapshot_tasks"
)

// jobTimeout bounds a single job run
const jobTimeout = 5 * time.Minute

// Snapshotter uploads a snapshot of the task table
type Snapshotter interface {
	Snapshot(ctx context.Context) (*snapshot.Result, error)
}

// Config controls which jobs are registered
type Config struct {
	StatsSchedule    string
	SnapshotSchedule string
}

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron        *cron.Cron
	db          *gorm.DB
	taskService *services.TaskService
	snapshotter Snapshotter
	config      Config
}

// NewCronManager creates a new cron manager. snapshotter may be nil, in
// which case the snapshot job is not registered.
func NewCronManager(db *gorm.DB, taskService *services.TaskService, snapshotter Snapshotter, config Config) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	if config.StatsSchedule == "" {
		config.StatsSchedule = "0 0 * * * *"
	}

	return &CronManager{
		cron:        c,
		db:          db,
		taskService: taskService,
		snapshotter: snapshotter,
		config:      config,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Info("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Info("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs and waits for running ones
func (m *CronManager) Stop() {
	log.Info("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Info("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Hourly by default: log active/completed counts
	if _, err := m.cron.AddFunc(m.config.StatsSchedule, func() {
		m.runJob(JobTaskStats, m.RecordTaskStats)
	}); err != nil {
		return err
	}

	if m.snapshotter != nil && m.config.SnapshotSchedule != "" {
		if _, err := m.cron.AddFunc(m.config.SnapshotSchedule, func() {
			m.runJob(JobSnapshotTasks, m.SnapshotTasks)
		}); err != nil {
			return err
		}
	}

	log.Infof("%d cron jobs registered", len(m.cron.Entries()))
	return nil
}

// jobFunc returns a summary message and optional metadata
type jobFunc func(ctx context.Context) (string, map[string]interface{}, error)

func (m *CronManager) runJob(jobName string, job jobFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	cronLog := m.logJobStart(ctx, jobName)

	message, metadata, err := job(ctx)
	if err != nil {
		m.logJobError(ctx, cronLog, err)
		return
	}
	m.logJobComplete(ctx, cronLog, message, metadata)
}

// logJobStart logs the start of a cron job
func (m *CronManager) logJobStart(ctx context.Context, jobName string) *model.CronJobLog {
	log.Infof("[CRON] Starting job: %s at %s", jobName, time.Now().Format(time.RFC3339))

	cronLog := &model.CronJobLog{
		JobName:   jobName,
		Status:    model.CronJobRunning,
		StartedAt: time.Now(),
		Metadata:  datatypes.JSON("{}"),
	}
	if err := m.db.WithContext(ctx).Create(cronLog).Error; err != nil {
		log.Warnf("[CRON] Failed to record start of %s: %v", jobName, err)
	}
	return cronLog
}

// logJobComplete logs successful completion of a cron job
func (m *CronManager) logJobComplete(ctx context.Context, cronLog *model.CronJobLog, message string, metadata map[string]interface{}) {
	log.Infof("[CRON] Completed job: %s - %s", cronLog.JobName, message)

	updates := map[string]interface{}{
		"status":  model.CronJobCompleted,
		"message": message,
	}
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			updates["metadata"] = datatypes.JSON(raw)
		}
	}
	m.finishJob(ctx, cronLog, updates)
}

// logJobError logs a cron job error
func (m *CronManager) logJobError(ctx context.Context, cronLog *model.CronJobLog, err error) {
	log.Errorf("[CRON] Error in job: %s - %v", cronLog.JobName, err)

	m.finishJob(ctx, cronLog, map[string]interface{}{
		"status":    model.CronJobFailed,
		"error_msg": err.Error(),
	})
}

func (m *CronManager) finishJob(ctx context.Context, cronLog *model.CronJobLog, updates map[string]interface{}) {
	if cronLog.ID == 0 {
		return
	}

	completedAt := time.Now()
	updates["completed_at"] = completedAt
	updates["duration"] = completedAt.Sub(cronLog.StartedAt).Milliseconds()

	if err := m.db.WithContext(ctx).Model(cronLog).Updates(updates).Error; err != nil {
		log.Warnf("[CRON] Failed to record end of %s: %v", cronLog.JobName, err)
	}
}
