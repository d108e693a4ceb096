package config

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "ASSETREPORT_"

// AppConfig 应用配置
type AppConfig struct {
	Server   ServerConfig   `toml:"server" envPrefix:"SERVER_"`
	Data     DataConfig     `toml:"data" envPrefix:"DATA_"`
	Database DatabaseConfig `toml:"database" envPrefix:"DB_"`
	Sync     SyncConfig     `toml:"sync" envPrefix:"SYNC_"`
	Log      LogConfig      `toml:"log" envPrefix:"LOG_"`
	CORS     CORSConfig     `toml:"cors" envPrefix:"CORS_"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int   `toml:"port" env:"PORT"`
	DevMode     bool  `toml:"dev_mode" env:"DEV_MODE"`
	MaxUploadMB int64 `toml:"max_upload_mb" env:"MAX_UPLOAD_MB"`
}

// DataConfig 数据目录配置
type DataConfig struct {
	DataDir string `toml:"data_dir" env:"DIR"`
}

// DatabaseConfig 数据库配置，driver 为 sqlite / postgres / mysql / sqlserver
type DatabaseConfig struct {
	Driver       string `toml:"driver" env:"DRIVER"`
	DSN          string `toml:"dsn" env:"DSN"`
	MaxOpenConns int    `toml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	AutoMigrate  bool   `toml:"auto_migrate" env:"AUTO_MIGRATE"`
}

// SyncConfig 派生表重建配置
type SyncConfig struct {
	Enabled        bool   `toml:"enabled" env:"ENABLED"`
	Schedule       string `toml:"schedule" env:"SCHEDULE"` // cron 表达式，空表示不定时
	MaxRetries     uint64 `toml:"max_retries" env:"MAX_RETRIES"`
	TimeoutSeconds int    `toml:"timeout_seconds" env:"TIMEOUT_SECONDS"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level" env:"LEVEL"`
	Format string `toml:"format" env:"FORMAT"` // text / json
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        20261,
			DevMode:     false,
			MaxUploadMB: 32,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Database: DatabaseConfig{
			Driver:       "sqlite",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			AutoMigrate:  true,
		},
		Sync: SyncConfig{
			Enabled:        true,
			Schedule:       "@every 6h",
			MaxRetries:     3,
			TimeoutSeconds: 300,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultConfigPath 可执行文件同目录下的 config.toml
func DefaultConfigPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadConfigWithInfo 加载配置：默认值 -> config.toml -> .env / 环境变量
// path 为空时使用可执行文件同目录下的 config.toml
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, err
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	// .env 不存在时忽略；已设置的环境变量优先
	_ = godotenv.Load(".env.local", ".env")

	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, info, err
	}
	if _, ok := os.LookupEnv(EnvPrefix + "SERVER_PORT"); ok {
		info.PortSpecified = true
	}

	return config, info, nil
}

// EnsureDataDir 确保数据目录存在，相对路径基于可执行文件目录
// 同时为 SQLite 补全默认 DSN
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		exeDir, err := GetExeDir()
		if err != nil {
			exeDir = "."
		}
		dataDir = filepath.Join(exeDir, dataDir)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	if err := os.MkdirAll(UploadDir(dataDir), 0755); err != nil {
		return "", err
	}

	if config.Database.DSN == "" && isSQLite(config.Database.Driver) {
		config.Database.DSN = filepath.Join(dataDir, "assetreport.db") + "?_busy_timeout=5000"
	}

	return dataDir, nil
}

// UploadDir 上传临时文件目录
func UploadDir(dataDir string) string {
	return filepath.Join(dataDir, "uploads")
}

func isSQLite(driver string) bool {
	switch driver {
	case "", "sqlite", "sqlite3":
		return true
	}
	return false
}
