package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type DatabaseType string

const (
	DatabaseMemory DatabaseType = "memory"
	DatabaseMySQL  DatabaseType = "mysql"
	DatabaseSQLite DatabaseType = "sqlite"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Provider ProviderConfig `yaml:"provider"`
	Upload   UploadConfig   `yaml:"upload"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Type   DatabaseType `yaml:"type"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	MySQL  MySQLConfig  `yaml:"mysql"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type MySQLConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	Database  string `yaml:"database"`
	Charset   string `yaml:"charset"`
	ParseTime bool   `yaml:"parse_time"`
	Loc       string `yaml:"loc"`
}

type ProviderConfig struct {
	APIURL       string   `yaml:"api_url"`
	Token        string   `yaml:"token"`
	Gateways     []string `yaml:"gateways"`
	ProbeTimeout int      `yaml:"probe_timeout"` // seconds, per gateway
	SealDeadline int      `yaml:"seal_deadline"` // hours before an unreachable deal is reported failed
}

type UploadConfig struct {
	MaxFileSize int64 `yaml:"max_file_size"`
}

// LoadConfig reads configuration from a YAML file and applies env overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()
	return &cfg, nil
}

// applyEnv applies environment overrides. The provider token should come from
// the environment rather than the config file.
func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = ":" + port
	}
	if token := os.Getenv("WEB3_STORAGE_TOKEN"); token != "" {
		c.Provider.Token = token
	}
	if dbType := os.Getenv("DATABASE_TYPE"); dbType != "" {
		c.Database.Type = DatabaseType(dbType)
	}
}

// GetDatabaseDSN builds the DSN for the configured database backend.
func (c *Config) GetDatabaseDSN() string {
	switch c.Database.Type {
	case DatabaseSQLite:
		return c.Database.SQLite.Path
	case DatabaseMySQL:
		mysql := c.Database.MySQL
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
			mysql.User,
			mysql.Password,
			mysql.Host,
			mysql.Port,
			mysql.Database,
			mysql.Charset,
			mysql.ParseTime,
			mysql.Loc,
		)
	default:
		return ""
	}
}

// Default returns the development configuration: in-memory records and a
// mock-only provider behind the public IPFS gateways.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port: ":8080",
		},
		Database: DatabaseConfig{
			Type: DatabaseMemory,
			SQLite: SQLiteConfig{
				Path: "./data/filvault.db",
			},
			MySQL: MySQLConfig{
				Host:      "127.0.0.1",
				Port:      3306,
				User:      "root",
				Password:  "password",
				Database:  "filvault",
				Charset:   "utf8mb4",
				ParseTime: true,
				Loc:       "Local",
			},
		},
		Provider: ProviderConfig{
			APIURL: "https://api.web3.storage",
			Gateways: []string{
				"https://w3s.link/ipfs/",
				"https://dweb.link/ipfs/",
				"https://ipfs.io/ipfs/",
			},
			ProbeTimeout: 5,
			SealDeadline: 24,
		},
		Upload: UploadConfig{
			MaxFileSize: 50 << 20,
		},
	}
	cfg.applyEnv()
	return cfg
}
