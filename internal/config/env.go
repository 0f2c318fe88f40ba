package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config from environment variables. A .env file in
// the working directory is loaded first when present; variables already
// set in the real environment win over the file.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	overlayString(&cfg.DatabaseDSN, os.Getenv("LOANKEEPER_DATABASE_DSN"))
	overlayString(&cfg.DataFile, os.Getenv("LOANKEEPER_DATA_FILE"))
	overlayString(&cfg.SessionFile, os.Getenv("LOANKEEPER_SESSION_FILE"))
	overlayString(&cfg.SecretKey, os.Getenv("LOANKEEPER_SECRET_KEY"))
	overlayString(&cfg.AttachmentsDir, os.Getenv("LOANKEEPER_ATTACHMENTS_DIR"))
	overlayString(&cfg.S3RootUser, os.Getenv("MINIO_ROOT_USER"))
	overlayString(&cfg.S3RootPassword, os.Getenv("MINIO_ROOT_PASSWORD"))
	overlayString(&cfg.S3Bucket, os.Getenv("LOANKEEPER_S3_BUCKET"))
	overlayString(&cfg.S3Region, os.Getenv("LOANKEEPER_S3_REGION"))
	overlayString(&cfg.S3BaseEndpoint, os.Getenv("LOANKEEPER_S3_ENDPOINT"))

	if v := os.Getenv("LOANKEEPER_SESSION_VALIDITY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SessionValidity = d
		}
	}
	if v := os.Getenv("LOANKEEPER_RESET_CODE_VALIDITY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ResetCodeValidity = d
		}
	}
}
