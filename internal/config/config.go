package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Composio ComposioConfig `toml:"composio"`
	Sheet    SheetConfig    `toml:"sheet"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// ComposioConfig Composio 连接器配置
// api_key 等敏感项建议用环境变量注入，不写进配置文件
type ComposioConfig struct {
	BaseURL             string `toml:"base_url"`
	APIKey              string `toml:"api_key"`
	UserID              string `toml:"user_id"`
	AuthConfigID        string `toml:"auth_config_id"`
	PostConnectRedirect string `toml:"post_connect_redirect"`
}

// SheetConfig 同步目标配置
type SheetConfig struct {
	Title       string `toml:"title"`        // 新建表格的默认标题
	Tab         string `toml:"tab"`          // 数据工作表名
	WorkspaceID string `toml:"workspace_id"` // 关联记录的键
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    8000,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Composio: ComposioConfig{
			BaseURL:             "https://backend.composio.dev",
			UserID:              "default",
			PostConnectRedirect: "http://localhost:3000",
		},
		Sheet: SheetConfig{
			Title:       "Pitch Canvas Data",
			Tab:         "Canvas Items",
			WorkspaceID: "default",
		},
	}
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfig 从 config.toml 加载配置
// 配置文件位于可执行文件同目录下；环境变量覆盖敏感项
func LoadConfig() (*AppConfig, error) {
	config := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// 配置文件不存在，使用默认配置
			applyEnvOverrides(config)
			return config, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides 环境变量覆盖（用于本地运行与部署）
func applyEnvOverrides(config *AppConfig) {
	if v := os.Getenv("COMPOSIO_API_KEY"); v != "" {
		config.Composio.APIKey = v
	}
	if v := os.Getenv("COMPOSIO_USER_ID"); v != "" {
		config.Composio.UserID = v
	}
	if v := os.Getenv("COMPOSIO_GOOGLESHEETS_AUTH_CONFIG_ID"); v != "" {
		config.Composio.AuthConfigID = v
	}
	if v := os.Getenv("COMPOSIO_POST_CONNECT_REDIRECT"); v != "" {
		config.Composio.PostConnectRedirect = v
	}
	if v := os.Getenv("PITCHCANVAS_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// EnsureDataDir 确保数据目录存在
// 数据目录位于可执行文件同目录下
func EnsureDataDir(config *AppConfig) (string, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(exeDir, dataDir)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	// 导出文件子目录
	if err := os.MkdirAll(filepath.Join(dataDir, "exports"), 0755); err != nil {
		return "", err
	}

	return dataDir, nil
}
