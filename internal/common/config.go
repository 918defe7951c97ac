package common

import (
	"os"
	"strconv"
	"time"
)

// DefaultWebhookURL is the collector endpoint used when WEBHOOK_URL is unset
// and no --webhook-url override is given. It is injected into the sender at
// construction, never read from a global at send time.
const DefaultWebhookURL = "https://n8n.jatenx.pro/webhook-test/e37077b5-31c1-4da2-aca9-ce0286b4ea3b"

// Config holds all application configuration
type Config struct {
	Paths   PathsConfig
	OCR     OCRConfig
	Enhance EnhanceConfig
	Webhook WebhookConfig
	JobLog  JobLogConfig
}

// PathsConfig holds the output directory layout. Each base directory is
// partitioned by year: <base>/<year>/<stem>.<ext>.
type PathsConfig struct {
	EnhancedDir string // enhanced PDFs
	TextDir     string // raw OCR text
	RecordDir   string // parsed invoice records
}

// OCRConfig holds text-extraction configuration.
type OCRConfig struct {
	Pdftotext string
	Pdftoppm  string
	Tesseract string
	Language  string
	DPI       int
	MaxPages  int
}

// EnhanceConfig holds ocrmypdf configuration.
type EnhanceConfig struct {
	Binary   string
	Language string
	Timeout  time.Duration
}

// WebhookConfig holds delivery configuration.
type WebhookConfig struct {
	URL     string
	Timeout time.Duration
	Delay   time.Duration
}

// JobLogConfig holds the processing-history store configuration.
type JobLogConfig struct {
	Path string // sqlite file; empty -> in-memory
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			EnhancedDir: getEnv("ENHANCED_DIR", "ocr_processed"),
			TextDir:     getEnv("TEXT_DIR", "data_result"),
			RecordDir:   getEnv("RECORD_DIR", "invoices_json"),
		},
		OCR: OCRConfig{
			Pdftotext: getEnv("PDFTOTEXT", ""),
			Pdftoppm:  getEnv("PDFTOPPM", ""),
			Tesseract: getEnv("TESSERACT", ""),
			Language:  getEnv("OCR_LANGUAGE", "spa"),
			DPI:       getEnvAsInt("OCR_DPI", 300),
			MaxPages:  getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		Enhance: EnhanceConfig{
			Binary:   getEnv("OCRMYPDF", "ocrmypdf"),
			Language: getEnv("OCR_LANGUAGE", "spa"),
			Timeout:  getEnvAsDuration("ENHANCE_TIMEOUT", 300*time.Second),
		},
		Webhook: WebhookConfig{
			URL:     getEnv("WEBHOOK_URL", DefaultWebhookURL),
			Timeout: getEnvAsDuration("WEBHOOK_TIMEOUT", 120*time.Second),
			Delay:   getEnvAsDuration("WEBHOOK_DELAY", time.Second),
		},
		JobLog: JobLogConfig{
			Path: getEnv("JOBLOG_PATH", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration.
func (c *Config) Validate() error {
	if c.Webhook.URL == "" {
		return NewAppError(CodeInvalidInput, "WEBHOOK_URL is required", ErrInvalidInput)
	}
	if c.Enhance.Timeout <= 0 {
		return NewAppError(CodeInvalidInput, "ENHANCE_TIMEOUT must be positive", ErrInvalidInput)
	}
	if c.OCR.DPI <= 0 {
		return NewAppError(CodeInvalidInput, "OCR_DPI must be positive", ErrInvalidInput)
	}
	return nil
}
