package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	DatabaseURL  string
	SessionStore string
	SessionDir   string

	LLMProvider       string
	GroqAPIKeys       []string
	GroqBaseURL       string
	GeminiAPIKey      string
	PrimaryModel      string
	FallbackModels    []string
	LLMMaxTokens      int
	LLMMaxAttempts    int
	LLMRetryBaseDelay time.Duration
	LLMRetryMaxDelay  time.Duration

	SpeechEnabled bool
	STTModel      string
	TTSModel      string
	TTSVoice      string

	InterviewTimeout   time.Duration
	FreeInterviewLimit int
	QueueURL           string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
	JWTSecret          string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	groqKeys := splitAndTrim(os.Getenv("GROQ_API_KEYS"))

	if env == "production" {
		if dbURL == "" {
			log.Printf("DATABASE_URL is required in production")
		}
		if len(groqKeys) == 0 {
			log.Printf("GROQ_API_KEYS is required in production")
		}
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		Env:             env,

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),

		DatabaseURL:  dbURL,
		SessionStore: normalizeSessionStore(getEnv("SESSION_STORE", "memory"), dbURL),
		SessionDir:   getEnv("SESSION_DIR", "./data/interviews"),

		LLMProvider:       normalizeProvider(getEnv("LLM_PROVIDER", "groq")),
		GroqAPIKeys:       groqKeys,
		GroqBaseURL:       getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		PrimaryModel:      getEnv("LLM_PRIMARY_MODEL", "llama-3.3-70b-versatile"),
		FallbackModels:    splitAndTrim(getEnv("LLM_FALLBACK_MODELS", "qwen-2.5-32b,llama-3.1-8b-instant")),
		LLMMaxTokens:      getEnvInt("LLM_MAX_TOKENS", 4096),
		LLMMaxAttempts:    getEnvInt("LLM_MAX_ATTEMPTS", 3),
		LLMRetryBaseDelay: getEnvDurationMS("LLM_RETRY_BASE_MS", 2*time.Second),
		LLMRetryMaxDelay:  getEnvDurationMS("LLM_RETRY_MAX_MS", 10*time.Second),

		SpeechEnabled: getEnvBool("SPEECH_ENABLED", false),
		STTModel:      getEnv("STT_MODEL", "whisper-large-v3"),
		TTSModel:      getEnv("TTS_MODEL", "playai-tts"),
		TTSVoice:      getEnv("TTS_VOICE", "Fritz-PlayAI"),

		InterviewTimeout:   getEnvDurationSec("INTERVIEW_TIMEOUT_SECONDS", 30*time.Minute),
		FreeInterviewLimit: getEnvInt("FREE_INTERVIEW_LIMIT", 10),
		QueueURL:           getEnv("IV_SQS_QUEUE_URL", ""),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      getEnv("UI_REDIRECT_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
	}
}

// Models returns the model cascade in fallback order, primary first.
func (c Config) Models() []string {
	out := make([]string, 0, 1+len(c.FallbackModels))
	if c.PrimaryModel != "" {
		out = append(out, c.PrimaryModel)
	}
	out = append(out, c.FallbackModels...)
	return out
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		log.Printf("invalid %s=%q, using default %d", key, raw, def)
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch raw {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func getEnvDurationMS(key string, def time.Duration) time.Duration {
	n := getEnvInt(key, int(def/time.Millisecond))
	return time.Duration(n) * time.Millisecond
}

func getEnvDurationSec(key string, def time.Duration) time.Duration {
	n := getEnvInt(key, int(def/time.Second))
	return time.Duration(n) * time.Second
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeSessionStore(raw, dbURL string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg":
		if dbURL == "" {
			log.Printf("SESSION_STORE=postgres requires DATABASE_URL, falling back to memory")
			return "memory"
		}
		return "postgres"
	case "file":
		return "file"
	default:
		return "memory"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gemini":
		return "gemini"
	default:
		return "groq"
	}
}
