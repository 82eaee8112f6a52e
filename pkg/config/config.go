package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type SearchConfig struct {
	BaseURL     string   `yaml:"baseURL"`
	APIKey      string   `yaml:"apiKey"`
	WithinHours int      `yaml:"withinHours"`
	MaxResults  int      `yaml:"maxResults"`
	States      []string `yaml:"states"`
	Keywords    []string `yaml:"keywords"`
	Accounts    []string `yaml:"accounts"`
}

type ClassifierConfig struct {
	BaseURL        string `yaml:"baseURL"`
	APIKey         string `yaml:"apiKey"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

type NotifierConfig struct {
	SMTPHost   string   `yaml:"smtpHost"`
	SMTPPort   int      `yaml:"smtpPort"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	From       string   `yaml:"from"`
	Recipients []string `yaml:"recipients"`
}

type UploaderConfig struct {
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type MongoConfig struct {
	Host       string `yaml:"host"`
	DBName     string `yaml:"dbname"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	AuthSource string `yaml:"authSource"`
}

type Config struct {
	OutputDir   string           `yaml:"outputDir"`
	AnchorHours []int            `yaml:"anchorHours"` // 每天的触发整点（UTC）
	Address     string           `yaml:"address"`     // feed API 监听地址
	Search      SearchConfig     `yaml:"search"`
	Classifier  ClassifierConfig `yaml:"classifier"`
	Notifier    NotifierConfig   `yaml:"notifier"`
	Uploader    UploaderConfig   `yaml:"uploader"`
	Mongo       MongoConfig      `yaml:"mongo"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
	if len(c.AnchorHours) == 0 {
		c.AnchorHours = []int{0, 6, 12, 18}
	}
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.Search.BaseURL == "" {
		c.Search.BaseURL = "https://api.twitterapi.io"
	}
	if c.Search.WithinHours == 0 {
		c.Search.WithinHours = 72
	}
	if c.Search.MaxResults == 0 {
		c.Search.MaxResults = 20
	}
	if c.Classifier.BaseURL == "" {
		c.Classifier.BaseURL = "https://api.openai.com/v1"
	}
	if c.Classifier.Model == "" {
		c.Classifier.Model = "gpt-4o-mini"
	}
	if c.Classifier.TimeoutSeconds == 0 {
		c.Classifier.TimeoutSeconds = 60
	}
	if c.Notifier.SMTPHost == "" {
		c.Notifier.SMTPHost = "smtp.gmail.com"
	}
	if c.Notifier.SMTPPort == 0 {
		c.Notifier.SMTPPort = 587
	}
}

// applyEnv 密钥类配置允许环境变量覆盖，配置文件里可以不落明文
func (c *Config) applyEnv() {
	if v := os.Getenv("TWITTER_API_KEY"); v != "" {
		c.Search.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Classifier.APIKey = v
	}
	if v := os.Getenv("EMAIL_ADDRESS"); v != "" {
		c.Notifier.Username = v
		if c.Notifier.From == "" {
			c.Notifier.From = v
		}
	}
	if v := os.Getenv("EMAIL_PASSWORD"); v != "" {
		c.Notifier.Password = v
	}
}
