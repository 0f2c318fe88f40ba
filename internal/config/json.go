package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/loankeeper/internal/flagx"
	"github.com/dmitrijs2005/loankeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It
// relies on timex.Duration so JSON can specify lifetimes either as
// strings like "24h" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	DatabaseDSN       string         `json:"database_dsn"`
	DataFile          string         `json:"data_file"`
	SessionFile       string         `json:"session_file"`
	SecretKey         string         `json:"secret_key"`
	SessionValidity   timex.Duration `json:"session_validity"`
	ResetCodeValidity timex.Duration `json:"reset_code_validity"`
	AttachmentsDir    string         `json:"attachments_dir"`
	S3RootUser        string         `json:"s3_root_user"`
	S3RootPassword    string         `json:"s3_root_password"`
	S3Bucket          string         `json:"s3_bucket"`
	S3Region          string         `json:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint"`
}

// parseJson overlays Config with values loaded from a JSON file named
// by the -c/-config flags. Only fields present in the file override
// the current values. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlayString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	overlayString(&cfg.DataFile, jc.DataFile)
	overlayString(&cfg.SessionFile, jc.SessionFile)
	overlayString(&cfg.SecretKey, jc.SecretKey)
	overlayString(&cfg.AttachmentsDir, jc.AttachmentsDir)
	overlayString(&cfg.S3RootUser, jc.S3RootUser)
	overlayString(&cfg.S3RootPassword, jc.S3RootPassword)
	overlayString(&cfg.S3Bucket, jc.S3Bucket)
	overlayString(&cfg.S3Region, jc.S3Region)
	overlayString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	if jc.SessionValidity.Duration != 0 {
		cfg.SessionValidity = time.Duration(jc.SessionValidity.Duration)
	}
	if jc.ResetCodeValidity.Duration != 0 {
		cfg.ResetCodeValidity = time.Duration(jc.ResetCodeValidity.Duration)
	}
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
