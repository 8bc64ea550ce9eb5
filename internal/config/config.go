package config

import (
	"os"
	"strconv"
)

type Config struct {
	// HTTP
	Addr        string
	Environment string
	LogLevel    string
	CORSOrigins string

	// Record store
	StoreDriver    string // "dynamodb" (default) or "memory"
	AWSRegion      string
	DynamoEndpoint string // optional override for a local DynamoDB
	DevicesTable   string
	ImagesTable    string

	// Object-store upload tokens
	UploadBucket  string
	UploadRoleARN string

	// Notifications
	MonitorBaseURL  string
	NotifyWorkers   int
	NotifyQueueSize int
}

func Load() Config {
	return Config{
		Addr:        getenv("ADDR", ":8080"),
		Environment: getenv("ENVIRONMENT", "dev"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		CORSOrigins: os.Getenv("CORS_ORIGINS"),

		StoreDriver:    getenv("STORE_DRIVER", "dynamodb"),
		AWSRegion:      getenv("AWS_REGION", "us-east-1"),
		DynamoEndpoint: os.Getenv("DYNAMO_ENDPOINT"),
		DevicesTable:   getenv("DEVICES_TABLE", "devices"),
		ImagesTable:    getenv("IMAGES_TABLE", "images"),

		UploadBucket:  getenv("UPLOAD_BUCKET", "camhub-snapshots"),
		UploadRoleARN: os.Getenv("UPLOAD_ROLE_ARN"),

		MonitorBaseURL:  getenv("MONITOR_BASE_URL", "https://monitor.camhub.example.com"),
		NotifyWorkers:   getint("NOTIFY_WORKERS", 4),
		NotifyQueueSize: getint("NOTIFY_QUEUE_SIZE", 64),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
