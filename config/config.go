// config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type DataPathsConfig struct {
	RiskCSV    string `yaml:"risk_csv"`    // official municipality risk catalog (riesgos.csv)
	DriversCSV string `yaml:"drivers_csv"` // mutable driver registry (conductores.csv)
	BackupDir  string `yaml:"backup_dir"`  // flat-file JSON backups, one per ruta_id
}

type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Database DatabaseConfig  `yaml:"database"`
	Data     DataPathsConfig `yaml:"data"`
}

var AppConfig Config

// LoadConfig reads configuration from the yaml file at configPath, then
// applies environment overrides (populated from .env by main via godotenv):
// DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME and RISK_CSV_PATH.
func LoadConfig(configPath string) error {
	file, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(file, &AppConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides()
	applyDefaults()

	// Create the backup directory up front so the first evaluation does not
	// have to.
	if AppConfig.Data.BackupDir != "" {
		if err := os.MkdirAll(AppConfig.Data.BackupDir, 0755); err != nil {
			return fmt.Errorf("failed to create backup directory: %w", err)
		}
	}
	if AppConfig.Data.DriversCSV != "" {
		if err := os.MkdirAll(filepath.Dir(AppConfig.Data.DriversCSV), 0755); err != nil {
			return fmt.Errorf("failed to create directory for drivers CSV: %w", err)
		}
	}

	return nil
}

func applyEnvOverrides() {
	if v := os.Getenv("DB_HOST"); v != "" {
		AppConfig.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		AppConfig.Database.Port = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		AppConfig.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		AppConfig.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		AppConfig.Database.DBName = v
	}
	if v := os.Getenv("RISK_CSV_PATH"); v != "" {
		AppConfig.Data.RiskCSV = v
	}
}

func applyDefaults() {
	if AppConfig.Server.Port == "" {
		AppConfig.Server.Port = "8000"
	}
	if AppConfig.Data.RiskCSV == "" {
		AppConfig.Data.RiskCSV = "data/riesgos.csv"
	}
	if AppConfig.Data.DriversCSV == "" {
		AppConfig.Data.DriversCSV = "data/conductores.csv"
	}
	if AppConfig.Data.BackupDir == "" {
		AppConfig.Data.BackupDir = "data"
	}
}
