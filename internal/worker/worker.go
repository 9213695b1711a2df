package worker

import (
	"context"
	"fmt"

	redisclient "github.com/varzia/worldcup-backend/internal/clients/redis"
	"github.com/varzia/worldcup-backend/internal/logger"
	"github.com/varzia/worldcup-backend/internal/services"
	"github.com/varzia/worldcup-backend/internal/types"
)

// Worker is the long-running consumer side of the scoring pipeline. Several
// instances can run at once; the consumer group hands each batch message to
// exactly one of them at a time, and an unacked batch comes back.
type Worker struct {
	log         *logger.Logger
	queue       redisclient.BatchQueue
	predictions services.PredictionService
}

func New(baseLog *logger.Logger, queue redisclient.BatchQueue, predictions services.PredictionService) *Worker {
	return &Worker{
		log:         baseLog.With("component", "BatchWorker"),
		queue:       queue,
		predictions: predictions,
	}
}

// Run blocks consuming batch messages until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("Batch worker starting")
	return w.queue.Consume(ctx, w.handle)
}

func (w *Worker) handle(ctx context.Context, msg types.BatchMessage) (err error) {
	// A panic must not kill the consume loop; treat it as a failed batch so
	// the message stays pending for redelivery.
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Batch handler panic", "batch_number", msg.BatchNumber, "panic", r)
			err = fmt.Errorf("panic while processing batch %d: %v", msg.BatchNumber, r)
		}
	}()

	summary, err := w.predictions.ProcessBatch(ctx, msg)
	if err != nil {
		return err
	}
	w.log.Info("Batch processed", "batch_number", summary.BatchNumber, "processed_count", summary.ProcessedCount)
	return nil
}
