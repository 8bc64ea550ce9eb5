package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/joho/godotenv"

	"camhub/internal/config"
	"camhub/internal/notify"
	"camhub/internal/observability/logging"
	"camhub/internal/observability/metrics"
	"camhub/internal/service"
	"camhub/internal/store"
	httptransport "camhub/internal/transport/http"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.NewLogger(logging.Config{
		ServiceName: "camhub",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)

	metrics.MustRegister("camhub")

	ctx := context.Background()

	awsOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.DynamoEndpoint != "" {
		// Local DynamoDB accepts any static credentials.
		awsOpts = append(awsOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOpts...)
	if err != nil {
		slog.Error("load aws config", "error", err)
		os.Exit(1)
	}

	var recordStore store.RecordStore
	switch cfg.StoreDriver {
	case "memory":
		slog.Warn("using in-memory record store, data will not survive a restart")
		recordStore = store.NewMemoryStore()
	default:
		recordStore = store.NewDynamoStore(dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.DynamoEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
			}
		}))
	}

	configs := service.NewDeviceConfigService(recordStore, cfg.DevicesTable)
	images := service.NewImageService(recordStore, cfg.ImagesTable)
	tokens := service.NewTokenService(sts.NewFromConfig(awsCfg), cfg.UploadRoleARN, cfg.UploadBucket, cfg.AWSRegion)

	dispatcher := notify.NewDispatcher(configs, notify.Options{
		MonitorBaseURL: cfg.MonitorBaseURL,
		Workers:        cfg.NotifyWorkers,
		QueueSize:      cfg.NotifyQueueSize,
	}, logger)
	defer dispatcher.Close()

	router := httptransport.NewRouter(httptransport.Deps{
		Configs:     configs,
		Images:      images,
		Tokens:      tokens,
		Dispatcher:  dispatcher,
		CORSOrigins: splitOrigins(cfg.CORSOrigins),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("camhub listening", "addr", cfg.Addr, "store", cfg.StoreDriver)
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(o); s != "" {
			out = append(out, s)
		}
	}
	return out
}
