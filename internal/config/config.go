package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends for users, questions and scores.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Storage struct {
		Backend       string `yaml:"backend"`
		Dir           string `yaml:"dir"`
		UsersFile     string `yaml:"users_file"`
		QuestionsFile string `yaml:"questions_file"`
		ScoresFile    string `yaml:"scores_file"`
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"quiz"`
	Auth struct {
		Hasher       string `yaml:"hasher"`
		BcryptCost   int    `yaml:"bcrypt_cost"`
		RootUsername string `yaml:"root_username"`
		RootPassword string `yaml:"root_password"`
		DemoUsername string `yaml:"demo_username"`
		DemoPassword string `yaml:"demo_password"`
	} `yaml:"auth"`
	Log struct {
		Env   string `yaml:"env"`
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var cfg Config
	cfg.Server.Port = "8080"
	cfg.Storage.Backend = BackendFile
	cfg.Storage.Dir = "data"
	cfg.Storage.UsersFile = "users.json"
	cfg.Storage.QuestionsFile = "questions.json"
	cfg.Storage.ScoresFile = "scores.json"
	cfg.Redis.TTL = "10m"
	cfg.Quiz.CacheTTL = "10m"
	cfg.Auth.Hasher = "sha256"
	cfg.Auth.RootUsername = "root"
	cfg.Auth.RootPassword = "root123@R"
	cfg.Auth.DemoUsername = "demo"
	cfg.Auth.DemoPassword = "demo"
	cfg.Log.Env = "development"
	cfg.Log.Level = "info"
	return cfg
}

// Load reads YAML config from path on top of Default. A missing file is not
// an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// UsersPath, QuestionsPath and ScoresPath resolve the store files under Storage.Dir.
func (c Config) UsersPath() string { return c.storagePath(c.Storage.UsersFile) }

func (c Config) QuestionsPath() string { return c.storagePath(c.Storage.QuestionsFile) }

func (c Config) ScoresPath() string { return c.storagePath(c.Storage.ScoresFile) }

func (c Config) storagePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Storage.Dir, name)
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
