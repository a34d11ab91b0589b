package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	MonitorAddress string `mapstructure:"monitor_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	StaticDir      string `mapstructure:"static_dir"`
	CORSOrigin     string `mapstructure:"cors_origin"`
}

type DatabaseConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Driver   string         `mapstructure:"driver"` // "gorm" or "pq"
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":3000")
	viper.SetDefault("server.monitor_address", ":9100")
	viper.SetDefault("server.rpc_address", ":3001")
	viper.SetDefault("server.static_dir", "./public")
	viper.SetDefault("server.cors_origin", "*")
	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.driver", "gorm")

	viper.AutomaticEnv()

	if err = viper.ReadInConfig(); err != nil {
		// 没有配置文件时使用默认值和环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	err = viper.Unmarshal(&config)
	return
}
