package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/muhammadolammi/skillsmap/internal/database"
	"github.com/muhammadolammi/skillsmap/internal/pipeline"
)

type R2Config struct {
	AccountID string
	Bucket    string
	AccessKey string
	SecretKey string
}

type AppConfig struct {
	DBURL        string
	GoogleAPIKey string
	GeminiModel  string
	AdvisorModel string
	RabbitMQURL  string
	RedisURL     string
	Port         string
	Workers      int
	LogLevel     string
	LogFormat    string
	R2           R2Config
}

// UploadQueries is what the worker needs from the resume_uploads table.
type UploadQueries interface {
	GetResumeUpload(ctx context.Context, id uuid.UUID) (database.ResumeUpload, error)
	UpdateResumeUploadStatus(ctx context.Context, arg database.UpdateResumeUploadStatusParams) error
}

type ObjectFetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

type StatusPublisher interface {
	Publish(update StatusUpdate) error
}

type WorkerConfig struct {
	DB          UploadQueries
	Processor   *pipeline.Processor
	Objects     ObjectFetcher
	Publisher   StatusPublisher
	RABBITMQUrl string
}

// UploadJob is the queue message announcing a resume stored in R2.
type UploadJob struct {
	UploadID uuid.UUID `json:"upload_id"`
}

type StatusUpdate struct {
	UploadID    uuid.UUID         `json:"upload_id"`
	UserID      uuid.UUID         `json:"user_id,omitempty"`
	Status      string            `json:"status"`
	Message     string            `json:"message"`
	SkillsAdded int               `json:"skills_added"`
	Notices     []pipeline.Notice `json:"notices,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

const (
	UploadStatusProcessing = "processing"
	UploadStatusCompleted  = "completed"
	UploadStatusFailed     = "failed"
)
