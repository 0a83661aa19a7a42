package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/graphragio/gateway/internal/core/domain"
)

type Config struct {
	APIPort  string
	LogLevel string

	// GraphRAG project locations. Either a single root or a multi-index spec.
	RootDir      string
	DataDir      string
	Indexes      string
	DefaultIndex string

	ReferenceBaseURL string
	ShowReferences   bool
	CommunityLevel   int
	ResponseType     string

	// LLM overrides; empty values defer to the index settings.yaml.
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	OpenAICompatAPIKey string

	PostgresDSN string

	RateLimitRPS   float64
	RateLimitBurst int

	CORSOrigins string
}

// IndexDef is one parsed entry of GRAPHRAG_INDEXES.
type IndexDef struct {
	Name string
	Root string
	Data string
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8012"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		RootDir:      mustEnv("GRAPHRAG_ROOT_DIR", "."),
		DataDir:      mustEnv("GRAPHRAG_DATA_DIR", ""),
		Indexes:      mustEnv("GRAPHRAG_INDEXES", ""),
		DefaultIndex: mustEnv("GRAPHRAG_DEFAULT_INDEX", ""),

		ReferenceBaseURL: mustEnv("GRAPHRAG_REFERENCE_BASE_URL", ""),
		ShowReferences:   mustEnvBool("GRAPHRAG_SHOW_REFERENCES", true),
		CommunityLevel:   mustEnvInt("GRAPHRAG_COMMUNITY_LEVEL", 2),
		ResponseType:     mustEnv("GRAPHRAG_RESPONSE_TYPE", "Multiple Paragraphs"),

		LLMBaseURL: mustEnv("LLM_BASE_URL", ""),
		LLMAPIKey:  mustEnv("LLM_API_KEY", ""),
		LLMModel:   mustEnv("LLM_MODEL", ""),

		OpenAICompatAPIKey: mustEnv("OPENAI_COMPAT_API_KEY", ""),

		PostgresDSN: mustEnv("POSTGRES_DSN", ""),

		RateLimitRPS:   mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		RateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 0),

		CORSOrigins: mustEnv("API_CORS_ORIGINS", "*"),
	}
}

// CORSOriginList splits the comma-separated origins value.
func (c Config) CORSOriginList() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			origins = append(origins, part)
		}
	}
	return origins
}

// IndexDefs parses GRAPHRAG_INDEXES, a comma list of `name=root[:data]`
// entries. When unset, the single-index fields define one index named
// "default". All paths come back absolute.
func (c Config) IndexDefs() ([]IndexDef, error) {
	if strings.TrimSpace(c.Indexes) == "" {
		return []IndexDef{{Name: "default", Root: absPath(c.RootDir), Data: absPath(c.DataDir)}}, nil
	}

	entries := strings.Split(c.Indexes, ",")
	defs := make([]IndexDef, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, spec, found := strings.Cut(entry, "=")
		if !found || strings.TrimSpace(name) == "" || strings.TrimSpace(spec) == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse indexes",
				fmt.Errorf("entry %q must look like name=root[:data]", entry))
		}
		root, data, _ := strings.Cut(spec, ":")
		defs = append(defs, IndexDef{
			Name: strings.TrimSpace(name),
			Root: absPath(strings.TrimSpace(root)),
			Data: absPath(strings.TrimSpace(data)),
		})
	}
	if len(defs) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse indexes",
			fmt.Errorf("GRAPHRAG_INDEXES is set but empty"))
	}
	return defs, nil
}

func absPath(path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
