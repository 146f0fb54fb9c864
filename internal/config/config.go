package config

import (
	"gopkg.in/yaml.v3"
	"os"
)

type LineConfig struct {
	ChannelToken  string `yaml:"channel_token"`
	ChannelSecret string `yaml:"channel_secret"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // disk | postgres
	Path   string `yaml:"path"`   // disk: base directory
	DSN    string `yaml:"dsn"`    // postgres: connection string
}

type ExportConfig struct {
	Secret  string `yaml:"secret"`
	BaseURL string `yaml:"base_url"`
	Dir     string `yaml:"dir"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Line    LineConfig    `yaml:"line"`
	Storage StorageConfig `yaml:"storage"`
	Admins  []string      `yaml:"admins"`
	Export  ExportConfig  `yaml:"export"`
}

func LoadConfig() *Config {
	f, err := os.Open("config/config.yaml")
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 10000
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "disk"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "./data"
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "./exports"
	}
	return &cfg
}
