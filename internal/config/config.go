// SPDX-License-Identifier: EPL-2.0

// Package config reads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend names accepted by STORE and BLOB.
const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
	BackendS3     = "s3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Port      string
	PublicURL string

	Store    string
	MongoURI string
	MongoDB  string

	Blob         string
	S3           S3Config
	SignedURLTTL time.Duration

	SessionSecret string

	ImageAPIURL string
	ImageAPIKey string

	MoodGain       float64
	MixRate        float64 // mixes per second
	MixBurst       int
	MaxUploadBytes int64

	FetchAllowPrivate bool
	CORSOrigins       []string
	LogDev            bool
}

// S3Config addresses any S3-compatible endpoint.
type S3Config struct {
	Endpoint       string
	Bucket         string
	AccessKey      string
	SecretKey      string
	Region         string
	UseSSL         bool
	ForcePathStyle bool
}

// Load reads a .env file from the working directory when one exists and then
// builds the Config from the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: .env: %w", ErrInvalidConfig, err)
	}

	return FromEnv()
}

// FromEnv builds the Config from the process environment only.
func FromEnv() (*Config, error) {
	p := parser{}

	port := getEnv("PORT", "3000")
	cfg := &Config{
		Port:      port,
		PublicURL: strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:"+port), "/"),

		Store:    getEnv("STORE", BackendMongo),
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "moodmix"),

		Blob: getEnv("BLOB", BackendS3),
		S3: S3Config{
			Endpoint:       getEnv("S3_ENDPOINT", "localhost:9000"),
			Bucket:         getEnv("S3_BUCKET", "moodmix"),
			AccessKey:      getEnv("S3_ACCESS_KEY", ""),
			SecretKey:      getEnv("S3_SECRET_KEY", ""),
			Region:         getEnv("S3_REGION", "us-east-1"),
			UseSSL:         p.bool("S3_USE_SSL", false),
			ForcePathStyle: p.bool("S3_FORCE_PATH_STYLE", true),
		},
		SignedURLTTL: p.duration("SIGNED_URL_TTL", 24*time.Hour),

		SessionSecret: getEnv("SESSION_SECRET", ""),

		ImageAPIURL: getEnv("IMAGE_API_URL", "https://api.deepai.org/api/text2img"),
		ImageAPIKey: getEnv("IMAGE_API_KEY", ""),

		MoodGain:       p.float("MOOD_GAIN", 0.15),
		MixRate:        p.float("MIX_RATE", 2),
		MixBurst:       p.int("MIX_BURST", 4),
		MaxUploadBytes: int64(p.int("MAX_UPLOAD_BYTES", 50<<20)),

		FetchAllowPrivate: p.bool("FETCH_ALLOW_PRIVATE", false),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "*")),
		LogDev:            p.bool("LOG_DEV", false),
	}

	if p.err != nil {
		return nil, p.err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that have no usable default.
func (c *Config) Validate() error {
	switch c.Store {
	case BackendMemory, BackendMongo:
	default:
		return fmt.Errorf("%w: STORE=%q, want %q or %q", ErrInvalidConfig, c.Store, BackendMongo, BackendMemory)
	}
	switch c.Blob {
	case BackendMemory, BackendS3:
	default:
		return fmt.Errorf("%w: BLOB=%q, want %q or %q", ErrInvalidConfig, c.Blob, BackendS3, BackendMemory)
	}

	if c.SessionSecret == "" && !c.MemoryMode() {
		return fmt.Errorf("%w: SESSION_SECRET is required unless STORE and BLOB are %q",
			ErrInvalidConfig, BackendMemory)
	}
	if c.MoodGain < 0 || math.IsNaN(c.MoodGain) || math.IsInf(c.MoodGain, 0) {
		return fmt.Errorf("%w: MOOD_GAIN %v must be a finite non-negative number", ErrInvalidConfig, c.MoodGain)
	}
	if c.MixRate <= 0 {
		return fmt.Errorf("%w: MIX_RATE %v must be positive", ErrInvalidConfig, c.MixRate)
	}
	if c.MixBurst <= 0 {
		return fmt.Errorf("%w: MIX_BURST %d must be positive", ErrInvalidConfig, c.MixBurst)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: MAX_UPLOAD_BYTES %d must be positive", ErrInvalidConfig, c.MaxUploadBytes)
	}
	if c.SignedURLTTL <= 0 {
		return fmt.Errorf("%w: SIGNED_URL_TTL %v must be positive", ErrInvalidConfig, c.SignedURLTTL)
	}

	return nil
}

// MemoryMode reports whether both backends are in-process.
func (c *Config) MemoryMode() bool {
	return c.Store == BackendMemory && c.Blob == BackendMemory
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parser keeps the first conversion error so FromEnv can report it once.
type parser struct {
	err error
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s=%q: %w", ErrInvalidConfig, key, value, err)
	}
}

func (p *parser) bool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return b
}

func (p *parser) int(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return n
}

func (p *parser) float(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return f
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return d
}
