package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"audio-vectorize/internal/model"
	"audio-vectorize/internal/platform/rabbitmq"
	"audio-vectorize/internal/vectorstore"
)

type chunkDeleter interface {
	DeleteFile(ctx context.Context, c vectorstore.Container, fileID string) (int64, error)
}

type fileDeleter interface {
	DeleteByID(id uuid.UUID) (bool, error)
}

// CleanupWorker removes what a half-finished upload or delete left behind.
type CleanupWorker struct {
	conn      *amqp.Connection
	chunks    chunkDeleter
	files     fileDeleter
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewCleanupWorker(conn *amqp.Connection, chunks chunkDeleter, files fileDeleter, queueName string) *CleanupWorker {
	return &CleanupWorker{
		conn:      conn,
		chunks:    chunks,
		files:     files,
		queueName: queueName,
	}
}

func (w *CleanupWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}
	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}
	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.cancel = cancel
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.Process(workerCtx, d.Body); err != nil {
					log.Printf("cleanup worker: %v", err)
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

// Process decodes one job and executes it.
func (w *CleanupWorker) Process(ctx context.Context, body []byte) error {
	var job model.CleanupJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("decode cleanup job failed: %w", err)
	}
	return w.Handle(ctx, job)
}

func (w *CleanupWorker) Handle(ctx context.Context, job model.CleanupJob) error {
	id, err := uuid.Parse(job.FileID)
	if err != nil {
		return fmt.Errorf("cleanup job file id %q: %w", job.FileID, err)
	}

	container := vectorstore.Container{Database: job.Database, Collection: job.Collection}
	if container.Valid() {
		n, err := w.chunks.DeleteFile(ctx, container, job.FileID)
		if err != nil {
			return fmt.Errorf("cleanup chunks of %s failed: %w", job.FileID, err)
		}
		log.Printf("cleanup worker: removed %d chunks of %s (%s)", n, job.FileID, job.Reason)
	}

	if job.DropFileRow {
		if _, err := w.files.DeleteByID(id); err != nil {
			return fmt.Errorf("cleanup file row %s failed: %w", job.FileID, err)
		}
	}
	return nil
}

func (w *CleanupWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
