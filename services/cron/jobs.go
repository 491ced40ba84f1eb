package cron

import (
	"context"
	"fmt"
)

// RecordTaskStats logs how many tasks are active and completed
func (m *CronManager) RecordTaskStats(ctx context.Context) (string, map[string]interface{}, error) {
	counts, err := m.taskService.CountTasks(ctx)
	if err != nil {
		return "", nil, err
	}

	message := fmt.Sprintf("%d active, %d completed", counts.Active, counts.Completed)
	return message, map[string]interface{}{
		"active":    counts.Active,
		"completed": counts.Completed,
	}, nil
}

// SnapshotTasks uploads the task table to object storage
func (m *CronManager) SnapshotTasks(ctx context.Context) (string, map[string]interface{}, error) {
	if m.snapshotter == nil {
		return "snapshot storage not configured, skipped", nil, nil
	}

	result, err := m.snapshotter.Snapshot(ctx)
	if err != nil {
		return "", nil, err
	}

	return fmt.Sprintf("uploaded %d tasks to %s", result.Count, result.Key), map[string]interface{}{
		"key":   result.Key,
		"count": result.Count,
	}, nil
}
