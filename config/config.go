// Package config loads the application configuration and sets up logging.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Source    SourceConfig    `mapstructure:"source"`
	History   HistoryConfig   `mapstructure:"history"`
	Sinks     []string        `mapstructure:"sinks"`
	XLSX      XLSXConfig      `mapstructure:"xlsx"`
	Warehouse WarehouseConfig `mapstructure:"warehouse"`
	Drive     DriveConfig     `mapstructure:"drive"`
	Databases DatabasesConfig `mapstructure:"databases"`
	Migrate   bool            `mapstructure:"migrate"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Email     EmailConfig     `mapstructure:"email"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Chart     ChartConfig     `mapstructure:"chart"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SourceConfig configures the quote download.
type SourceConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"`
	Burst     int           `mapstructure:"burst"`
	UserAgent string        `mapstructure:"user_agent"`
}

// HistoryConfig bounds the backward walk.
type HistoryConfig struct {
	BusinessDays    int    `mapstructure:"business_days"`
	MaxCalendarDays int    `mapstructure:"max_calendar_days"`
	Timezone        string `mapstructure:"timezone"`
}

// XLSXConfig configures the spreadsheet sink.
type XLSXConfig struct {
	Path string `mapstructure:"path"`
}

// WarehouseConfig configures the columnar file sink.
type WarehouseConfig struct {
	Backend string      `mapstructure:"backend"`
	Prefix  string      `mapstructure:"prefix"`
	Name    string      `mapstructure:"name"`
	HDFS    HDFSConfig  `mapstructure:"hdfs"`
	FTP     FTPConfig   `mapstructure:"ftp"`
	Local   LocalConfig `mapstructure:"local"`
}

// HDFSConfig holds namenode settings.
type HDFSConfig struct {
	Addresses []string `mapstructure:"addresses"`
	User      string   `mapstructure:"user"`
}

// FTPConfig holds FTP server settings.
type FTPConfig struct {
	Addr     string        `mapstructure:"addr"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LocalConfig roots the warehouse on the local disk.
type LocalConfig struct {
	Root string `mapstructure:"root"`
}

// DriveConfig configures the Google Drive upload.
type DriveConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	FolderID        string `mapstructure:"folder_id"`
	FileName        string `mapstructure:"file_name"`
	TempPath        string `mapstructure:"temp_path"`
}

// DatabasesConfig holds the archive databases.
type DatabasesConfig struct {
	MySQL   MySQLConfig   `mapstructure:"mysql"`
	MongoDB MongoDBConfig `mapstructure:"mongodb"`
}

// MySQLConfig holds MySQL connection settings.
type MySQLConfig struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Addr     string `mapstructure:"addr"`
	DB       string `mapstructure:"db"`
	Table    string `mapstructure:"table"`
}

// MongoDBConfig holds MongoDB connection settings.
type MongoDBConfig struct {
	URI        string `mapstructure:"uri"`
	DB         string `mapstructure:"db"`
	Collection string `mapstructure:"collection"`
}

// KafkaConfig configures the broker sink.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// EmailConfig configures run notifications.
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

// MetricsConfig configures the Prometheus push.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// ChartConfig configures the chart server.
type ChartConfig struct {
	Addr string `mapstructure:"addr"`
}

// Location resolves the configured time zone, falling back to UTC.
func (h HistoryConfig) Location() *time.Location {
	loc, err := time.LoadLocation(h.Timezone)
	if err != nil {
		zap.L().Warn("config: unknown timezone, using UTC", zap.String("timezone", h.Timezone), zap.Error(err))
		return time.UTC
	}

	return loc
}

// Load reads configuration from file and environment.
// An empty file means config.yaml in the working directory, which is optional.
func Load(file string) (*Config, error) {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("QUOTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("source.base_url", "https://www4.bcb.gov.br/Download/fechamento")
	v.SetDefault("source.timeout", 30*time.Second)
	v.SetDefault("source.rate_limit", 5.0)
	v.SetDefault("source.burst", 1)
	v.SetDefault("source.user_agent", "currency-quotes/1.0")
	v.SetDefault("history.business_days", 365)
	v.SetDefault("history.max_calendar_days", 1000)
	v.SetDefault("history.timezone", "America/Sao_Paulo")
	v.SetDefault("sinks", []string{"warehouse", "drive"})
	v.SetDefault("xlsx.path", "cotacoes_ultimos_365_dias_uteis.xlsx")
	v.SetDefault("warehouse.backend", "hdfs")
	v.SetDefault("warehouse.prefix", "/user/data/cotacoes")
	v.SetDefault("warehouse.name", "cotacoes_diarias")
	v.SetDefault("warehouse.hdfs.addresses", []string{"localhost:8020"})
	v.SetDefault("warehouse.hdfs.user", "user")
	v.SetDefault("warehouse.ftp.addr", "localhost:21")
	v.SetDefault("warehouse.ftp.user", "anonymous")
	v.SetDefault("warehouse.ftp.password", "anonymous@")
	v.SetDefault("warehouse.ftp.timeout", 30*time.Second)
	v.SetDefault("warehouse.local.root", ".")
	v.SetDefault("drive.credentials_file", "credentials.json")
	v.SetDefault("drive.folder_id", "")
	v.SetDefault("drive.file_name", "cotacoes_diarias.csv")
	v.SetDefault("drive.temp_path", "/tmp/cotacoes_diarias.csv")
	v.SetDefault("databases.mysql.user", "")
	v.SetDefault("databases.mysql.password", "")
	v.SetDefault("databases.mysql.addr", "localhost:3306")
	v.SetDefault("databases.mysql.db", "cotacoes")
	v.SetDefault("databases.mysql.table", "cotacoes")
	v.SetDefault("databases.mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("databases.mongodb.db", "cotacoes")
	v.SetDefault("databases.mongodb.collection", "cotacoes_diarias")
	v.SetDefault("migrate", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "cotacoes")
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.host", "smtp.gmail.com")
	v.SetDefault("email.port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from", "")
	v.SetDefault("email.to", "")
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "currency_quotes")
	v.SetDefault("chart.addr", ":8050")
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
