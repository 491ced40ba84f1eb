// Package snapshot exports the task table as JSON to S3-compatible storage.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/sahilchouksey/task-manager-api/model"
	"github.com/sahilchouksey/task-manager-api/services"
)

// TaskLister is the part of the task service a snapshot needs
type TaskLister interface {
	ListTasks(ctx context.Context, filter services.TaskFilter) ([]model.Task, error)
}

// Config holds configuration for the snapshot uploader
type Config struct {
	Bucket    string
	Prefix    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// Document is the JSON layout of an uploaded snapshot
type Document struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Count       int          `json:"count"`
	Tasks       []model.Task `json:"tasks"`
}

// Result describes a finished upload
type Result struct {
	Key   string
	Count int
}

// Service uploads task snapshots
type Service struct {
	s3Client s3iface.S3API
	bucket   string
	prefix   string
	tasks    TaskLister
	now      func() time.Time
}

// NewService creates a snapshot service backed by an S3 session
func NewService(config Config, tasks TaskLister) (*Service, error) {
	if config.Bucket == "" {
		return nil, errors.New("snapshot bucket is not configured")
	}

	awsConfig := &aws.Config{
		Region: aws.String(config.Region),
	}
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}
	if config.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, "")
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return NewServiceWithClient(s3.New(sess), config.Bucket, config.Prefix, tasks), nil
}

// NewServiceWithClient creates a snapshot service with an existing S3 client
func NewServiceWithClient(client s3iface.S3API, bucket, prefix string, tasks TaskLister) *Service {
	return &Service{
		s3Client: client,
		bucket:   bucket,
		prefix:   prefix,
		tasks:    tasks,
		now:      time.Now,
	}
}

// Snapshot uploads every task as one JSON document
func (s *Service) Snapshot(ctx context.Context) (*Result, error) {
	tasks, err := s.tasks.ListTasks(ctx, services.FilterAll)
	if err != nil {
		return nil, err
	}

	generatedAt := s.now().UTC()
	body, err := json.Marshal(Document{
		GeneratedAt: generatedAt,
		Count:       len(tasks),
		Tasks:       tasks,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := s.objectKey(generatedAt)
	_, err = s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload snapshot: %w", err)
	}

	return &Result{Key: key, Count: len(tasks)}, nil
}

func (s *Service) objectKey(at time.Time) string {
	return path.Join(s.prefix, fmt.Sprintf("tasks-%s.json", at.Format("20060102T150405Z")))
}
