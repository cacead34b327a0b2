package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

const statusExchange = "resume_updates"

var retryDelay = 500 * time.Millisecond

// retry retries a function up to `attempts` times with linear backoff
func retry[T any](attempts int, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i < attempts-1 {
			time.Sleep(retryDelay * time.Duration(i+1))
		}
	}
	return zero, errors.Wrapf(lastErr, "after %d attempts", attempts)
}

// --- File Download ---

type R2Fetcher struct {
	client *s3.Client
	bucket string
}

func NewR2Fetcher(cfg aws.Config, r2 R2Config) *R2Fetcher {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2.AccountID))
	})
	return &R2Fetcher{client: client, bucket: r2.Bucket}
}

func (f *R2Fetcher) Fetch(ctx context.Context, key string) ([]byte, error) {
	return DownloadFromR2(ctx, f.client, f.bucket, key)
}

func DownloadFromR2(ctx context.Context, client *s3.Client, bucket, key string) ([]byte, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get object")
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	_, err = io.Copy(buf, out.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read object body")
	}
	return buf.Bytes(), nil
}

// --- Status updates ---

type amqpPublisher struct {
	conn *amqp.Connection
}

func (p *amqpPublisher) Publish(update StatusUpdate) error {
	return publishStatusUpdate(p.conn, update)
}

func publishStatusUpdate(rabbitConn *amqp.Connection, update StatusUpdate) error {
	ch, err := rabbitConn.Channel()
	if err != nil {
		return errors.Wrap(err, "open channel")
	}
	defer ch.Close()

	body, err := json.Marshal(update)
	if err != nil {
		return errors.Wrap(err, "encode status update")
	}
	routingKey := fmt.Sprintf("upload.%s", update.UploadID)

	return ch.Publish(
		statusExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
