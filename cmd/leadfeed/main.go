// Command leadfeed publishes the rows of lead spreadsheets onto the lead
// record queue, where the API's queue worker ingests them.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/reverio/leadgen/internal/entity"
	"github.com/reverio/leadgen/internal/infra/feed"
	"github.com/reverio/leadgen/internal/infra/logging"
	"github.com/reverio/leadgen/internal/infra/queue"
)

func main() {
	_ = godotenv.Load()

	dir := flag.String("dir", envOr("LEADS_DIR", "./Leads"), "directory of .xlsx workbooks")
	file := flag.String("file", "", "publish a single workbook instead of -dir")
	amqpURL := flag.String("amqp", os.Getenv("RABBITMQ_URL"), "RabbitMQ URL")
	dryRun := flag.Bool("dry-run", false, "parse and count records without publishing")
	flag.Parse()

	logger, err := logging.New(envOr("LOG_LEVEL", "info"), "console")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var records []entity.SourceRecord
	if *file != "" {
		records, err = feed.ReadFile(*file)
	} else {
		records, err = feed.NewExcelSource(*dir, logger).Load(ctx)
	}
	if err != nil {
		logger.Fatal("read workbooks", zap.Error(err))
	}
	logger.Info("records read", zap.Int("count", len(records)))

	if *dryRun {
		return
	}
	if *amqpURL == "" {
		logger.Fatal("RABBITMQ_URL or -amqp is required")
	}

	rabbitMQ, err := queue.NewRabbitMQ(*amqpURL)
	if err != nil {
		logger.Fatal("connect", zap.Error(err))
	}
	defer rabbitMQ.Close()

	producer := queue.NewProducer(rabbitMQ.Ch)
	published := 0
	for _, rec := range records {
		if err := producer.PublishRecord(ctx, rec); err != nil {
			logger.Error("publish failed", zap.Int("published", published), zap.Error(err))
			break
		}
		published++
	}
	logger.Info("records published", zap.Int("published", published), zap.Int("total", len(records)))
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
