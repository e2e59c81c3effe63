package config

import (
	"FoodieHub/models"
	"fmt"
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"os"
	"time"
)

const DefaultPath = "config/config.yaml"

type ServerConfig struct {
	Addr       string `yaml:"addr" env:"FOODIEHUB_ADDR"`
	UploadsDir string `yaml:"uploadsDir" env:"FOODIEHUB_UPLOADS_DIR"`
}

type DatabaseConfig struct {
	Username string `yaml:"username" env:"FOODIEHUB_DB_USERNAME"`
	Password string `yaml:"password" env:"FOODIEHUB_DB_PASSWORD"`
	Host     string `yaml:"host" env:"FOODIEHUB_DB_HOST"`
	Port     string `yaml:"port" env:"FOODIEHUB_DB_PORT"`
	Database string `yaml:"database" env:"FOODIEHUB_DB_NAME"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"FOODIEHUB_REDIS_ADDR"`
	Password string `yaml:"password" env:"FOODIEHUB_REDIS_PASSWORD"`
	Database int    `yaml:"database" env:"FOODIEHUB_REDIS_DB"`
}

type JWTConfig struct {
	PrivateKeyPath string        `yaml:"privateKeyPath" env:"FOODIEHUB_JWT_PRIVATE_KEY"`
	PublicKeyPath  string        `yaml:"publicKeyPath" env:"FOODIEHUB_JWT_PUBLIC_KEY"`
	TTL            time.Duration `yaml:"ttl" env:"FOODIEHUB_JWT_TTL"`
}

type SessionConfig struct {
	CookieName    string        `yaml:"cookieName" env:"FOODIEHUB_SESSION_COOKIE"`
	IdleTimeout   time.Duration `yaml:"idleTimeout" env:"FOODIEHUB_SESSION_IDLE_TIMEOUT"`
	SweepInterval time.Duration `yaml:"sweepInterval" env:"FOODIEHUB_SESSION_SWEEP_INTERVAL"`
	SecureCookie  bool          `yaml:"secureCookie" env:"FOODIEHUB_SESSION_SECURE_COOKIE"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"FOODIEHUB_LOG_LEVEL"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Session  SessionConfig  `yaml:"session"`
	Log      LogConfig      `yaml:"log"`
}

// 預設值，設定檔或環境變數未提供時使用
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:       ":3000",
			UploadsDir: "./uploads",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		JWT: JWTConfig{
			PrivateKeyPath: "jwt/private_key.pem",
			PublicKeyPath:  "jwt/public_key.pem",
			TTL:            time.Hour,
		},
		Session: SessionConfig{
			CookieName:    "cart_session_id",
			IdleTimeout:   2 * time.Hour,
			SweepInterval: time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// 讀取設定檔，再以環境變數覆蓋
func LoadConfig(filename string) (Config, error) {
	config := Default()
	file, err := os.Open(filename)
	if err != nil {
		return config, errors.Wrap(err, "open config")
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return config, errors.Wrap(err, "decode config")
	}

	if err := env.Parse(&config); err != nil {
		return config, errors.Wrap(err, "parse env")
	}

	return config, nil
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func SetupMySQLConnection(config Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(config.Database.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.LoginToken{},
		&models.Restaurant{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		return nil, errors.Wrap(err, "auto migrate")
	}

	return db, nil
}

func SetupRedisConnection(config Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.Database,
	})
}
