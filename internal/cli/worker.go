package cli

import (
	"fmt"

	"hirelens/internal/objectstore"
	"hirelens/internal/queue"

	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume analysis jobs from RabbitMQ",
	Long: `Consume AnalysisJob messages from the queue.queue RabbitMQ queue.

Each job names a target role and a list of resumes, either inline as base64
or as keys in S3-compatible object storage. Status updates (processing,
completed, failed) and the batch result are published to the queue.exchange
topic exchange with routing key job.<id>.`,
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().Int("workers", 0, "Concurrent jobs (default from queue.workers)")
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	ctx := cmd.Context()

	if cmd.Flags().Changed("workers") {
		cfg.Queue.Workers, _ = cmd.Flags().GetInt("workers")
	}

	svc, err := newServices(ctx, cfg, logger, serviceOptions{store: true})
	if err != nil {
		return err
	}
	defer svc.Close()

	var objects objectstore.Getter
	if cfg.ObjectStorage.Enabled {
		s, err := objectstore.New(ctx, cfg.ObjectStorage)
		if err != nil {
			return fmt.Errorf("failed to create object storage client: %w", err)
		}
		objects = s
	}

	consumer, err := queue.Dial(cfg.Queue, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.LogError(err, "Failed to close queue connection")
		}
	}()

	publisher, err := consumer.Publisher()
	if err != nil {
		return err
	}
	defer func() { _ = publisher.Close() }()

	consumer.Attach(queue.NewWorker(svc.analyzer, objects, publisher, logger))

	logger.Info("Queue worker started",
		"queue", cfg.Queue.Queue,
		"exchange", cfg.Queue.Exchange,
		"workers", cfg.Queue.Workers,
		"object_storage", cfg.ObjectStorage.Enabled)

	return consumer.Run(ctx)
}
