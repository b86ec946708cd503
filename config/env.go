package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process-wide configuration resolved from the environment.
type Config struct {
	Port                 string
	DataDir              string
	FontDir              string
	PublicBaseURL        string
	MaxConcurrentRenders int
	OutputRetention      time.Duration
	VideoPreset          string

	RedisAddr   string
	RedisPass   string
	RedisDB     int
	TTSCacheTTL time.Duration

	S3Bucket       string
	S3Region       string
	S3Profile      string
	S3Prefix       string
	S3UsePathStyle bool

	KafkaBrokers     []string
	KafkaJobsTopic   string
	KafkaEventsTopic string
	KafkaGroupID     string

	YouTubeServiceAccountFile string
}

// Load reads .env when present (non-fatal if missing) and resolves every setting with its default.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:                 GetEnvOrDefault("PORT", DefaultPort),
		DataDir:              GetEnvOrDefault("DATA_DIR", "."),
		FontDir:              GetEnvOrDefault("FONT_DIR", DefaultFontDir),
		MaxConcurrentRenders: getEnvInt("MAX_CONCURRENT_RENDERS", DefaultMaxConcurrentRenders),
		OutputRetention:      getEnvHours("OUTPUT_RETENTION_HOURS", DefaultOutputRetention),
		VideoPreset:          GetEnvOrDefault("FFMPEG_PRESET", DefaultVideoPreset),

		RedisAddr:   strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPass:   os.Getenv("REDIS_PASS"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		TTSCacheTTL: getEnvHours("TTS_CACHE_TTL_HOURS", DefaultTTSCacheTTL),

		S3Bucket:       strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:       strings.TrimSpace(os.Getenv("S3_REGION")),
		S3Profile:      strings.TrimSpace(os.Getenv("S3_PROFILE")),
		S3UsePathStyle: strings.EqualFold(strings.TrimSpace(os.Getenv("S3_USE_PATH_STYLE")), "true"),

		KafkaJobsTopic:   GetEnvOrDefault("KAFKA_TOPIC_RENDER_JOBS", "slideshow-render-jobs"),
		KafkaEventsTopic: strings.TrimSpace(os.Getenv("KAFKA_TOPIC_RENDER_EVENTS")),
		KafkaGroupID:     GetEnvOrDefault("KAFKA_CONSUMER_GROUP_ID", "slideshow-render-group"),

		YouTubeServiceAccountFile: strings.TrimSpace(os.Getenv("YOUTUBE_SERVICE_ACCOUNT_FILE")),
	}

	cfg.PublicBaseURL = strings.TrimSuffix(GetEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:"+cfg.Port), "/")

	if prefix := strings.TrimSpace(os.Getenv("S3_PREFIX")); prefix != "" {
		cfg.S3Prefix = strings.Trim(prefix, "/") + "/"
	}

	if brokers := strings.TrimSpace(os.Getenv("KAFKA_BOOTSTRAP_SERVERS")); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if cfg.MaxConcurrentRenders < 1 {
		cfg.MaxConcurrentRenders = 1
	}

	return cfg
}

// UploadsRoot is the directory holding per-session upload namespaces.
func (c Config) UploadsRoot() string {
	return filepath.Join(c.DataDir, UploadsDir)
}

// OutputRoot is the directory finished videos are served from.
func (c Config) OutputRoot() string {
	return filepath.Join(c.DataDir, OutputDir)
}

// GetEnvOrDefault returns the trimmed environment value or def when unset.
func GetEnvOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvHours(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	h, err := strconv.ParseFloat(v, 64)
	if err != nil || h <= 0 {
		return def
	}
	return time.Duration(h * float64(time.Hour))
}
