// Package config handles configuration for the loankeeper CLI,
// including defaults, JSON overlay, environment overlay, and
// command-line flags.
package config

import "time"

// Config holds runtime settings for the loankeeper CLI.
//
// Fields:
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty means local mode: all
//     records live in the single JSON file at DataFile.
//   - DataFile: path of the local-mode JSON database.
//   - SessionFile: path of the persisted session token.
//   - SecretKey: HMAC secret for signing session JWTs (HS256). Do not
//     use the test default in prod.
//   - SessionValidity / ResetCodeValidity: token and recovery-code
//     lifetimes.
//   - AttachmentsDir: local attachment directory, used when S3 is not
//     configured.
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible
//     backend. S3Bucket / S3Region / S3BaseEndpoint: object storage
//     settings. Attachments go to S3 when S3Bucket is non-empty.
type Config struct {
	DatabaseDSN       string
	DataFile          string
	SessionFile       string
	SecretKey         string
	SessionValidity   time.Duration
	ResetCodeValidity time.Duration
	AttachmentsDir    string
	S3RootUser        string
	S3RootPassword    string
	S3Bucket          string
	S3Region          string
	S3BaseEndpoint    string
}

// RemoteEnabled reports whether the shared Postgres backend is
// configured. The backend is picked once at startup and never switched
// at runtime.
func (c *Config) RemoteEnabled() bool {
	return c.DatabaseDSN != ""
}

// S3Enabled reports whether attachments go to the S3-compatible
// backend instead of the local directory.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// LoadDefaults populates Config with local-mode defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = ""
	c.DataFile = "loankeeper.json"
	c.SessionFile = ".loankeeper_session"
	c.SecretKey = "secretKey"
	c.SessionValidity = 24 * time.Hour
	c.ResetCodeValidity = 15 * time.Minute
	c.AttachmentsDir = "attachments"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// LoadConfig builds a Config by applying defaults, then overlaying
// values from an optional JSON file, the environment (including a .env
// file when present), and finally command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
