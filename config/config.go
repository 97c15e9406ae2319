package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	Notion  NotionConfig  `yaml:"notion"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	// AllowedOrigins 는 브라우저에서 /api/content 를 호출할 수 있는 origin 목록이다.
	// 비어 있으면 모든 origin 을 허용한다.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// NotionConfig 는 블로그 콘텐츠를 보관하는 Notion 데이터베이스 접근 설정이다.
// Token, DatabaseID 는 비밀 값이므로 config.yaml 이 아닌 환경변수로 주입하는 것을 권장한다.
type NotionConfig struct {
	BaseURL    string `yaml:"base_url"`
	Version    string `yaml:"version"`
	DatabaseID string `yaml:"database_id"`
	Token      string `yaml:"-"`

	// SortProperty 는 목록 조회 시 내림차순 정렬 기준이 되는 date 속성 이름이다.
	SortProperty string `yaml:"sort_property"`

	// Timeout 은 한 번의 요청 안에서 수행되는 Notion 호출 전체의 상한이다.
	Timeout time.Duration `yaml:"timeout"`

	// BlockPageSize 는 블록 children 조회 시 한 페이지 크기이다. (Notion 최대 100)
	BlockPageSize int `yaml:"block_page_size"`

	// MaxBlockPages 는 next_cursor 를 따라갈 최대 페이지 수이다.
	// 기본값 1 은 첫 페이지 이후의 블록을 잘라낸다.
	MaxBlockPages int `yaml:"max_block_pages"`
}

const (
	DefaultPort          = "8080"
	DefaultNotionBaseURL = "https://api.notion.com/v1"
	DefaultNotionVersion = "2022-06-28"
	DefaultSortProperty  = "Date"
	DefaultNotionTimeout = 10 * time.Second
	DefaultBlockPageSize = 100
	DefaultMaxBlockPages = 1
)

// tokenEnvKeys 는 Notion 토큰을 찾을 환경변수 목록이다. 앞에 있을수록 우선한다.
var tokenEnvKeys = []string{
	"NOTION_INTEGRATION_TOKEN",
	"NOTION_OAUTH_CLIENT_SECRET",
	"NOTION_API_KEY",
}

var config *AppConfig

func InitApp() {
	c, err := Load(GetBasePath())
	if err != nil {
		panic(err)
	}
	config = c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

// Load 는 basePath 의 .env 와 config.yaml 을 읽고, 환경변수 override 와 기본값을 적용한다.
// config.yaml 이 없으면 기본값과 환경변수만으로 구성한다.
func Load(basePath string) (*AppConfig, error) {
	// .env 는 선택 사항이다.
	_ = godotenv.Load(filepath.Join(basePath, ENV_FILE))

	var c AppConfig
	data, err := os.ReadFile(filepath.Join(basePath, CONFIG_FILE))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", CONFIG_FILE, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", CONFIG_FILE, err)
	}

	c.applyEnv()
	c.applyDefaults()
	return &c, nil
}

func (c *AppConfig) applyEnv() {
	for _, key := range tokenEnvKeys {
		if v := os.Getenv(key); v != "" {
			c.Notion.Token = v
			break
		}
	}
	c.Notion.DatabaseID = getEnv("NOTION_DATABASE_ID", c.Notion.DatabaseID)
	c.Notion.BaseURL = getEnv("NOTION_API_BASE_URL", c.Notion.BaseURL)
	c.Notion.Version = getEnv("NOTION_VERSION", c.Notion.Version)
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = splitList(origins)
	}
}

func (c *AppConfig) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	n := &c.Notion
	if n.BaseURL == "" {
		n.BaseURL = DefaultNotionBaseURL
	}
	n.BaseURL = strings.TrimRight(n.BaseURL, "/")
	if n.Version == "" {
		n.Version = DefaultNotionVersion
	}
	if n.SortProperty == "" {
		n.SortProperty = DefaultSortProperty
	}
	if n.Timeout <= 0 {
		n.Timeout = DefaultNotionTimeout
	}
	if n.BlockPageSize <= 0 || n.BlockPageSize > 100 {
		n.BlockPageSize = DefaultBlockPageSize
	}
	if n.MaxBlockPages <= 0 {
		n.MaxBlockPages = DefaultMaxBlockPages
	}
}

// MissingKeys 는 목록 조회에 필요한 값 중 비어 있는 항목의 환경변수 이름을 반환한다.
func (n NotionConfig) MissingKeys() []string {
	var missing []string
	if n.Token == "" {
		missing = append(missing, tokenEnvKeys[0])
	}
	if n.DatabaseID == "" {
		missing = append(missing, "NOTION_DATABASE_ID")
	}
	return missing
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return cwd
}
