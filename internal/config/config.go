package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig настройки HTTP API
type ServerConfig struct {
	Listen          string `yaml:"listen"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// SimulationConfig настройки движка симуляции
type SimulationConfig struct {
	SSDStepDelayMs int    `yaml:"ssd_step_delay_ms"`
	HDDStepDelayMs int    `yaml:"hdd_step_delay_ms"`
	Operator       string `yaml:"operator"`
}

// LoggingConfig настройки логирования
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ReportingConfig настройки сертификатов затирания
type ReportingConfig struct {
	Enabled          bool   `yaml:"enabled"`
	LocalPath        string `yaml:"local_path"`
	Format           string `yaml:"format"`
	SignCertificates bool   `yaml:"sign_certificates"`
	KeyDir           string `yaml:"key_dir"`
}

// SecurityConfig защита деструктивных операций
type SecurityConfig struct {
	RequireConfirmation bool   `yaml:"require_confirmation"`
	ConfirmationToken   string `yaml:"confirmation_token"`
}

// Enterprise конфигурация
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Simulation SimulationConfig `yaml:"simulation"`
	Logging    LoggingConfig    `yaml:"logging"`
	Reporting  ReportingConfig  `yaml:"reporting"`
	Security   SecurityConfig   `yaml:"security"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:          ":8080",
			ShutdownTimeout: "10s",
		},
		Simulation: SimulationConfig{
			SSDStepDelayMs: 2,
			HDDStepDelayMs: 6,
			Operator:       "",
		},
		Logging: LoggingConfig{
			Level: "INFO",
			File:  "",
		},
		Reporting: ReportingConfig{
			Enabled:          true,
			LocalPath:        "./reports",
			Format:           "json",
			SignCertificates: false,
			KeyDir:           "./certs",
		},
		Security: SecurityConfig{
			RequireConfirmation: true,
			ConfirmationToken:   "I-OWN-THIS-DEVICE",
		},
	}
}

// Load загружает конфигурацию из файла
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate проверяет конфигурацию на валидность
func Validate(config *Config) error {
	if config.Server.Listen == "" {
		return fmt.Errorf("server listen address must not be empty")
	}
	if config.Server.ShutdownTimeout != "" {
		if _, err := time.ParseDuration(config.Server.ShutdownTimeout); err != nil {
			return fmt.Errorf("invalid shutdown timeout: %s", config.Server.ShutdownTimeout)
		}
	}

	if config.Simulation.SSDStepDelayMs < 0 || config.Simulation.SSDStepDelayMs > 1000 {
		return fmt.Errorf("SSD step delay must be between 0 and 1000ms, got %d", config.Simulation.SSDStepDelayMs)
	}
	if config.Simulation.HDDStepDelayMs < 0 || config.Simulation.HDDStepDelayMs > 1000 {
		return fmt.Errorf("HDD step delay must be between 0 and 1000ms, got %d", config.Simulation.HDDStepDelayMs)
	}

	validLevels := map[string]bool{
		"DEBUG": true,
		"INFO":  true,
		"WARN":  true,
		"ERROR": true,
	}
	if !validLevels[config.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	if config.Reporting.Enabled {
		validFormats := map[string]bool{
			"json": true,
			"csv":  true,
		}
		if !validFormats[config.Reporting.Format] {
			return fmt.Errorf("invalid report format: %s", config.Reporting.Format)
		}
		if config.Reporting.LocalPath == "" {
			return fmt.Errorf("reporting local path must not be empty")
		}
	}

	if config.Security.RequireConfirmation && config.Security.ConfirmationToken == "" {
		return fmt.Errorf("confirmation token must not be empty when confirmation is required")
	}

	return nil
}

// Save сохраняет конфигурацию в файл
func Save(config *Config, path string) error {
	if err := Validate(config); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetShutdownTimeout возвращает таймаут graceful shutdown сервера
func (config *Config) GetShutdownTimeout() time.Duration {
	if config.Server.ShutdownTimeout == "" {
		return 10 * time.Second
	}

	duration, err := time.ParseDuration(config.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second // Fallback
	}

	return duration
}

// SSDStepDelay возвращает паузу под-шага для SSD устройств
func (config *Config) SSDStepDelay() time.Duration {
	return time.Duration(config.Simulation.SSDStepDelayMs) * time.Millisecond
}

// HDDStepDelay возвращает паузу под-шага для прочих устройств
func (config *Config) HDDStepDelay() time.Duration {
	return time.Duration(config.Simulation.HDDStepDelayMs) * time.Millisecond
}
