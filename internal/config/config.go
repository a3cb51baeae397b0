package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	Logger LoggerConfig
	DB     DBConfig
	Redis  RedisConfig
	LLM    LLMConfig
	Parser ParserConfig
	Import ImportConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type LoggerConfig struct {
	Env   string
	Level string
}

type DBConfig struct {
	Driver   string // sqlite, postgres or oracle
	DSN      string // used as-is when set
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration

	// LocalCapacity bounds the in-memory cache used when Address is empty.
	// Zero disables caching entirely.
	LocalCapacity int
}

type LLMConfig struct {
	Provider     string // ollama or openai; empty disables explanations
	ServerURL    string
	Model        string
	APIKey       string
	Timeout      time.Duration
	FallbackText string
}

// ParserConfig holds the document markers. Empty fields keep the defaults.
type ParserConfig struct {
	Emphasis           string
	TitlePrefix        string
	QuestionKeyword    string
	AnswerKeyword      string
	Labels             string
	FallbackExtensions []string
	IDGenerator        string // ulid or uuid
}

type ImportConfig struct {
	Concurrency int
	MaxFileSize int64
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", 20)
	v.SetDefault("server.write_timeout", 20)
	v.SetDefault("server.body_limit", 10*1024*1024)
	v.SetDefault("logger.env", "development")
	v.SetDefault("logger.level", "info")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("redis.ttl", 24*60*60)
	v.SetDefault("redis.local_capacity", 10000)
	v.SetDefault("llm.timeout", 20)
	v.SetDefault("llm.fallback_text", "Không thể tạo lời giải thích lúc này.")
	v.SetDefault("parser.id_generator", "ulid")
	v.SetDefault("import.concurrency", 4)
	v.SetDefault("import.max_file_size", 5*1024*1024)
}

// LoadConfig reads config.yaml from the working directory or ./config, or
// the file named by EZQUIZ_CONFIG.
// A missing file is not an error: defaults and environment variables apply.
func LoadConfig() (*Config, error) {
	return Load(os.Getenv("EZQUIZ_CONFIG"))
}

// Load reads the config file at path, or searches the default locations when
// path is empty. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Add config paths based on environment
	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if path != "" {
		v.SetConfigFile(path)
	}

	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", absPath)
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  time.Duration(v.GetInt("server.read_timeout")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("server.write_timeout")) * time.Second,
			BodyLimit:    v.GetInt("server.body_limit"),
		},
		Logger: LoggerConfig{
			Env:   v.GetString("logger.env"),
			Level: v.GetString("logger.level"),
		},
		DB: DBConfig{
			Driver:   v.GetString("db.driver"),
			DSN:      v.GetString("db.dsn"),
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      time.Duration(v.GetInt("redis.ttl")) * time.Second,

			LocalCapacity: v.GetInt("redis.local_capacity"),
		},
		LLM: LLMConfig{
			Provider:     v.GetString("llm.provider"),
			ServerURL:    v.GetString("llm.server_url"),
			Model:        v.GetString("llm.model"),
			APIKey:       v.GetString("llm.api_key"),
			Timeout:      time.Duration(v.GetInt("llm.timeout")) * time.Second,
			FallbackText: v.GetString("llm.fallback_text"),
		},
		Parser: ParserConfig{
			Emphasis:           v.GetString("parser.emphasis"),
			TitlePrefix:        v.GetString("parser.title_prefix"),
			QuestionKeyword:    v.GetString("parser.question_keyword"),
			AnswerKeyword:      v.GetString("parser.answer_keyword"),
			Labels:             v.GetString("parser.labels"),
			FallbackExtensions: v.GetStringSlice("parser.fallback_extensions"),
			IDGenerator:        v.GetString("parser.id_generator"),
		},
		Import: ImportConfig{
			Concurrency: v.GetInt("import.concurrency"),
			MaxFileSize: v.GetInt64("import.max_file_size"),
		},
	}
}

// GetDSN returns the data source name for the configured driver.
func (c *Config) GetDSN() string {
	if c.DB.DSN != "" {
		return c.DB.DSN
	}
	switch c.DB.Driver {
	case "oracle":
		return fmt.Sprintf("oracle://%s:%s@%s:%d/%s",
			c.DB.User,
			c.DB.Password,
			c.DB.Host,
			c.DB.Port,
			c.DB.DBName,
		)
	case "postgres":
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			c.DB.User,
			c.DB.Password,
			c.DB.Host,
			c.DB.Port,
			c.DB.DBName,
		)
	default:
		name := c.DB.DBName
		if name == "" {
			name = "ezquiz.db"
		}
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", name)
	}
}
