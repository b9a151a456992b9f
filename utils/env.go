package utils

import "os"

var (
	STORE_PATH            = os.Getenv("STORE_PATH")
	STORE_BUSY_TIMEOUT_MS = GetEnvOrDefaultInt("STORE_BUSY_TIMEOUT_MS", 5000)

	// DATASTORE selects where exports and snapshots go: "disk", "s3", or empty for none
	DATASTORE      = os.Getenv("DATASTORE")
	DATASTORE_PATH = GetEnvOrDefault("DATASTORE_PATH", "./data")

	AWS_ACCESS_KEY_ID     = os.Getenv("AWS_ACCESS_KEY_ID")
	AWS_SECRET_ACCESS_KEY = os.Getenv("AWS_SECRET_ACCESS_KEY")
	AWS_DEFAULT_REGION    = GetEnvOrDefault("AWS_DEFAULT_REGION", "us-east-1")

	S3_BUCKET_NAME = os.Getenv("S3_BUCKET_NAME")
	S3_ENDPOINT    = os.Getenv("S3_ENDPOINT")
)
