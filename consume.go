package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/muhammadolammi/skillsmap/internal/database"
	"github.com/muhammadolammi/skillsmap/internal/logger"
	"github.com/muhammadolammi/skillsmap/internal/pipeline"
	"github.com/muhammadolammi/skillsmap/internal/resume"
	usersession "github.com/muhammadolammi/skillsmap/internal/session"
	"github.com/muhammadolammi/skillsmap/internal/store"
	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

const uploadQueue = "resume_uploads"

var ErrNoConsumers = errors.New("every consumer worker exited")

// processUpload runs the skills pipeline for one stored resume and records the
// outcome on its resume_uploads row.
func processUpload(ctx context.Context, job UploadJob, wc *WorkerConfig) error {
	log := logger.Ctx(ctx).With().Str("upload_id", job.UploadID.String()).Logger()

	upload, err := retry(3, func() (database.ResumeUpload, error) {
		return wc.DB.GetResumeUpload(ctx, job.UploadID)
	})
	if err != nil {
		wc.publish(StatusUpdate{UploadID: job.UploadID, Status: UploadStatusFailed, Message: "upload not found"})
		return errors.Wrapf(err, "load upload %s", job.UploadID)
	}

	wc.setStatus(ctx, upload, UploadStatusProcessing, "skill extraction started", nil, nil)

	// network failures are transient
	data, err := retry(3, func() ([]byte, error) {
		return wc.Objects.Fetch(ctx, upload.ObjectKey)
	})
	if err != nil {
		log.Warn().Err(err).Str("object_key", upload.ObjectKey).Msg("failed to download resume after retries")
		wc.setStatus(ctx, upload, UploadStatusFailed, fmt.Sprintf("file download error: %v", err), nil, err)
		return err
	}

	mediaType := upload.Mime
	if mediaType == "" {
		mediaType = resume.MediaTypeFromFilename(upload.OriginalFilename)
	}
	doc := resume.Document{Filename: upload.OriginalFilename, MediaType: mediaType, Data: data}

	sess := usersession.New(upload.ID.String(), upload.UserID)
	res := wc.Processor.Process(ctx, sess, doc)

	if res.Saved.Status == store.StatusError {
		err := errors.New("skills could not be saved")
		wc.setStatus(ctx, upload, UploadStatusFailed, err.Error(), &res, err)
		return err
	}

	wc.setStatus(ctx, upload, UploadStatusCompleted, fmt.Sprintf("%d new skills", res.Added), &res, nil)
	log.Info().Int("skills_added", res.Added).Msg("upload processed")
	return nil
}

func (wc *WorkerConfig) setStatus(ctx context.Context, upload database.ResumeUpload, status, message string, res *pipeline.Result, cause error) {
	update := StatusUpdate{
		UploadID: upload.ID,
		UserID:   upload.UserID,
		Status:   status,
		Message:  message,
	}
	params := database.UpdateResumeUploadStatusParams{Status: status, ID: upload.ID}
	if res != nil {
		update.SkillsAdded = res.Added
		update.Notices = res.Notices
		params.SkillsAdded = int32(res.Added)
	}
	if cause != nil {
		params.Error = sql.NullString{String: cause.Error(), Valid: true}
	}

	_, err := retry(3, func() (any, error) {
		return nil, wc.DB.UpdateResumeUploadStatus(ctx, params)
	})
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("upload_id", upload.ID.String()).Str("status", status).Msg("failed to update upload status")
	}
	wc.publish(update)
}

func (wc *WorkerConfig) publish(update StatusUpdate) {
	if wc.Publisher == nil {
		return
	}
	update.Timestamp = time.Now()
	if err := wc.Publisher.Publish(update); err != nil {
		logger.Warn().Err(err).Str("upload_id", update.UploadID.String()).Msg("failed to publish update")
	}
}

func handleDelivery(ctx context.Context, body []byte, wc *WorkerConfig) error {
	var job UploadJob
	if err := json.Unmarshal(body, &job); err != nil {
		return errors.Wrap(err, "error unmarshalling message body")
	}
	return processUpload(ctx, job, wc)
}

func worker(ctx context.Context, id int, wc *WorkerConfig, wg *sync.WaitGroup) error {
	defer wg.Done()
	conn, err := amqp.Dial(wc.RABBITMQUrl)
	if err != nil {
		return errors.Wrap(err, "error dialling rabbitmq")
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "error connecting to rabbitmq channel")
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		uploadQueue, // queue name
		true,        // durable (survives broker restarts)
		false,       // auto-delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return errors.Wrap(err, "failed to declare queue")
	}
	if err := ch.ExchangeDeclare(statusExchange, "topic", true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "failed to declare status exchange")
	}

	msgs, err := ch.Consume(
		uploadQueue, // queue name
		"",          // consumer tag
		true,        // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return errors.Wrap(err, "error consuming rabbitmq message")
	}

	log := logger.Ctx(ctx).With().Int("worker", id+1).Logger()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			if err := handleDelivery(ctx, msg.Body, wc); err != nil {
				log.Error().Err(err).Msg("upload failed")
			}
		}
	}
}

// StartConsumerWorkerPool blocks until ctx is cancelled or every worker exits.
// It returns ErrNoConsumers when the workers all stopped on their own.
func (wc *WorkerConfig) StartConsumerWorkerPool(ctx context.Context, numWorkers int) error {
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for i := range numWorkers {
		logger.Info().Int("worker", i+1).Msg("worker started")
		go func() {
			if err := worker(ctx, i, wc, &wg); err != nil {
				logger.Error().Err(err).Int("worker", i+1).Msg("worker stopped")
			}
		}()
	}
	wg.Wait()

	if ctx.Err() == nil {
		return ErrNoConsumers
	}
	return nil
}
