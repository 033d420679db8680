package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ProviderDeepSeek = "deepseek"
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"

	DataProviderYahoo    = "yahoo"
	DataProviderLongport = "longport"
)

type Config struct {
	ProjectDir   string `json:"project_dir"`
	DataDir      string `json:"data_dir"`
	DataCacheDir string `json:"data_cache_dir"`
	DBPath       string `json:"db_path"`

	ServerAddr         string   `json:"server_addr"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins"`

	LLMProvider    string `json:"llm_provider"`
	ModelName      string `json:"model_name"`
	BackendURL     string `json:"backend_url"`
	MaxTokens      int    `json:"max_tokens"`
	OpenAIAPIKey   string `json:"openai_api_key"`
	DeepSeekAPIKey string `json:"deepseek_api_key"`
	OllamaURL      string `json:"ollama_url"`

	DataProvider        string `json:"data_provider"`
	FinnhubAPIKey       string `json:"finnhub_api_key"`
	LongportAppKey      string `json:"longport_app_key"`
	LongportAppSecret   string `json:"longport_app_secret"`
	LongportAccessToken string `json:"longport_access_token"`
	CacheEnabled        bool   `json:"cache_enabled"`

	InitialCash float64 `json:"initial_cash"`

	Debug    bool   `json:"debug"`
	LogLevel string `json:"log_level"`

	// Eino Debug configuration
	EinoDebugEnabled bool `json:"eino_debug_enabled"`
	EinoDebugPort    int  `json:"eino_debug_port"`
}

// DefaultConfig returns defaults rooted at the working directory with .env
// and the process environment applied.
func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()
	cfg := DefaultConfigWithRoot(currentDir)
	cfg.applyEnv(EnvLookup(".env"))
	return cfg
}

// EnvLookup returns a lookup that prefers the process environment and falls
// back to the values in envFile. A missing env file is not an error.
func EnvLookup(envFile string) func(string) string {
	fileVals, _ := godotenv.Read(envFile)
	return func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return fileVals[key]
	}
}

// DefaultConfigWithRoot returns defaults with every directory placed under root.
// Environment variables are not consulted.
func DefaultConfigWithRoot(root string) *Config {
	return &Config{
		ProjectDir:   root,
		DataDir:      filepath.Join(root, "data"),
		DataCacheDir: filepath.Join(root, "data", "cache"),
		DBPath:       filepath.Join(root, "data", "hedge_fund.db"),

		ServerAddr:         ":8000",
		CORSAllowedOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173"},

		LLMProvider: ProviderDeepSeek,
		ModelName:   "deepseek-chat",
		MaxTokens:   4096,
		OllamaURL:   "http://localhost:11434",

		DataProvider: DataProviderYahoo,
		CacheEnabled: true,

		InitialCash: 100000,

		LogLevel: "info",

		EinoDebugEnabled: false,
		EinoDebugPort:    52538,
	}
}

func (c *Config) applyEnv(getenv func(string) string) {
	if val := getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := getenv("DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := getenv("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}
	if val := getenv("DB_PATH"); val != "" {
		c.DBPath = val
	}

	if val := getenv("SERVER_ADDR"); val != "" {
		c.ServerAddr = val
	}
	if val := getenv("CORS_ALLOWED_ORIGINS"); val != "" {
		var origins []string
		for _, o := range strings.Split(val, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORSAllowedOrigins = origins
	}

	if val := getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = strings.ToLower(val)
	}
	if val := getenv("MODEL_NAME"); val != "" {
		c.ModelName = val
	}
	if val := getenv("BACKEND_URL"); val != "" {
		c.BackendURL = val
	}
	if val := getenv("MAX_TOKENS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxTokens = v
		}
	}
	if val := getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}
	// OLLAMA_HOST is what the ollama CLI itself reads
	if val := getenv("OLLAMA_HOST"); val != "" {
		c.OllamaURL = val
	}
	if val := getenv("OLLAMA_URL"); val != "" {
		c.OllamaURL = val
	}

	if val := getenv("DATA_PROVIDER"); val != "" {
		c.DataProvider = strings.ToLower(val)
	}
	if val := getenv("FINNHUB_API_KEY"); val != "" {
		c.FinnhubAPIKey = val
	}
	if val := getenv("LONGPORT_APP_KEY"); val != "" {
		c.LongportAppKey = val
	}
	if val := getenv("LONGPORT_APP_SECRET"); val != "" {
		c.LongportAppSecret = val
	}
	if val := getenv("LONGPORT_ACCESS_TOKEN"); val != "" {
		c.LongportAccessToken = val
	}
	if val := getenv("CACHE_ENABLED"); val != "" {
		if cache, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = cache
		}
	}

	if val := getenv("INITIAL_CASH"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			c.InitialCash = v
		}
	}

	if val := getenv("HEDGE_FUND_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
	if val := getenv("LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
	}

	if val := getenv("EINO_DEBUG_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.EinoDebugEnabled = enabled
		}
	}
	if val := getenv("EINO_DEBUG_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.EinoDebugPort = port
		}
	}
}

func (c Config) Validate() error {
	var errs []error
	switch c.LLMProvider {
	case ProviderDeepSeek, ProviderOpenAI, ProviderOllama:
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLMProvider))
	}
	switch c.DataProvider {
	case DataProviderYahoo, DataProviderLongport:
	default:
		errs = append(errs, fmt.Errorf("unknown data provider %q", c.DataProvider))
	}
	if strings.TrimSpace(c.ServerAddr) == "" {
		errs = append(errs, errors.New("server address is required"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("db path is required"))
	}
	if c.InitialCash <= 0 {
		errs = append(errs, fmt.Errorf("initial cash must be positive, got %v", c.InitialCash))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ProjectDir, c.DataDir, c.DataCacheDir, filepath.Dir(c.DBPath)}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" || path == "." {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
