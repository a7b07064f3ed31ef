package configuration

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"content-platform/infrastructure/logger"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	Transaction Transaction `json:"transaction"`
	Lifecycle   Lifecycle   `json:"lifecycle"`
	RedisClient RedisClient `json:"redisClient"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	Outbox      Outbox      `json:"outbox"`
	Worker      Worker      `json:"worker"`
	Maintenance Maintenance `json:"maintenance"`
	Logger      Logger      `json:"logger"`
	Cors        Cors        `json:"cors"`
}

type App struct {
	Port        int    `json:"port" validate:"gt=0,lt=65536"`
	SecretKey   string `json:"secretKey" validate:"required,min=16"`
	TLSEnabled  bool   `json:"tlsEnabled"`
	TLSCertFile string `json:"tlsCertFile"`
	TLSKeyFile  string `json:"tlsKeyFile"`
}

type Database struct {
	// Vendor selects the gorm dialector: postgres (default) or mysql.
	Vendor string `json:"vendor" validate:"oneof=postgres mysql"`
	// URL, when set, is used verbatim as the DSN of the selected vendor.
	URL   string `json:"url"`
	Psql  Db     `json:"psql"`
	MySql Db     `json:"mysql"`
	Mongo Db     `json:"mongo"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	URI      string `json:"uri"`
}

// Transaction bounds every lifecycle transaction: MaxWait for acquiring a
// connection, Timeout for the whole unit of work.
type Transaction struct {
	MaxWait time.Duration `json:"maxWait" validate:"gt=0"`
	Timeout time.Duration `json:"timeout" validate:"gt=0"`
}

type Lifecycle struct {
	TemporaryContentTTL time.Duration `json:"temporaryContentTTL" validate:"gt=0"`
	ApprovedGrace       time.Duration `json:"approvedGrace" validate:"gt=0"`
}

type RedisClient struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Password     string `json:"password"`
	DatabaseName string `json:"databaseName"`
	Username     string `json:"username"`
}

func (r RedisClient) Addr() string {
	if r.Host == "" {
		return ""
	}
	port := r.Port
	if port == "" {
		port = "6379"
	}
	return fmt.Sprintf("%s:%s", r.Host, port)
}

func (r RedisClient) DB() int {
	n, err := strconv.Atoi(r.DatabaseName)
	if err != nil {
		return 0
	}
	return n
}

type Pubsub struct {
	ProjectID       string `json:"projectID"`
	Topic           string `json:"topic"`
	CredentialsFile string `json:"credentialsFile"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
}

type Outbox struct {
	Interval    time.Duration `json:"interval" validate:"gt=0"`
	BatchSize   int           `json:"batchSize" validate:"gt=0,lte=500"`
	MaxAttempts int           `json:"maxAttempts" validate:"gt=0"`
}

type Worker struct {
	Enabled     bool `json:"enabled"`
	Concurrency int  `json:"concurrency" validate:"gte=0"`
}

// Maintenance guards the operator endpoints. An empty Key disables them.
type Maintenance struct {
	Key string `json:"key" validate:"omitempty,min=16"`
}

type Logger struct {
	Format string `json:"format"`
	Level  string `json:"level"`
}

type Cors struct {
	AllowOrigins []string `json:"allowOrigins"`
}

var C Config

func init() {
	LoadEnvFromFile("config.env", ".env")
	LoadConfig()
	applyDefaults(&C)
	initDatabase(&C)
	initApp(&C)
	initIntegrations(&C)
	logger.Configure(C.Logger.Format, C.Logger.Level)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func applyDefaults(C *Config) {
	if C.Database.Vendor == "" {
		C.Database.Vendor = "postgres"
	}
	if C.Transaction.MaxWait == 0 {
		C.Transaction.MaxWait = 15 * time.Second
	}
	if C.Transaction.Timeout == 0 {
		C.Transaction.Timeout = 15 * time.Second
	}
	if C.Lifecycle.TemporaryContentTTL == 0 {
		C.Lifecycle.TemporaryContentTTL = 24 * time.Hour
	}
	if C.Lifecycle.ApprovedGrace == 0 {
		C.Lifecycle.ApprovedGrace = 5 * time.Minute
	}
	if C.Outbox.Interval == 0 {
		C.Outbox.Interval = 10 * time.Second
	}
	if C.Outbox.BatchSize == 0 {
		C.Outbox.BatchSize = 50
	}
	if C.Outbox.MaxAttempts == 0 {
		C.Outbox.MaxAttempts = 10
	}
	if C.Pubsub.Topic == "" {
		C.Pubsub.Topic = "content-approved"
	}
	if C.ServiceBus.Queue == "" {
		C.ServiceBus.Queue = "content-approved"
	}
	if C.Worker.Concurrency == 0 {
		C.Worker.Concurrency = 2
	}
	if len(C.Cors.AllowOrigins) == 0 {
		C.Cors.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
}

func initDatabase(C *Config) {
	setFromEnv(&C.Database.Vendor, "DB_VENDOR")
	setFromEnv(&C.Database.URL, "DATABASE_URL")

	fillFromEnv(&C.Database.Psql.Name, "DB_NAME")
	fillFromEnv(&C.Database.Psql.Host, "DB_HOST")
	fillFromEnv(&C.Database.Psql.Port, "DB_PORT")
	fillFromEnv(&C.Database.Psql.User, "DB_USER")
	fillFromEnv(&C.Database.Psql.Password, "DB_PASSWORD")
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = "5432"
	}

	fillFromEnv(&C.Database.MySql.Name, "MYSQL_DB_NAME")
	fillFromEnv(&C.Database.MySql.Host, "MYSQL_HOST")
	fillFromEnv(&C.Database.MySql.Port, "MYSQL_PORT")
	fillFromEnv(&C.Database.MySql.User, "MYSQL_USER")
	fillFromEnv(&C.Database.MySql.Password, "MYSQL_PASSWORD")
	if C.Database.MySql.Port == "" {
		C.Database.MySql.Port = "3306"
	}

	setFromEnv(&C.Database.Mongo.URI, "MONGO_URI")
	fillFromEnv(&C.Database.Mongo.Name, "MONGO_DB_NAME")

	logger.GetLogger().WithFields(map[string]interface{}{
		"vendor": C.Database.Vendor,
		"host":   C.Database.Psql.Host,
		"name":   C.Database.Psql.Name,
		"url":    C.Database.URL != "",
	}).Info("Database configuration")
}

func initApp(C *Config) {
	// SECRET_KEY from the environment overrides the config file.
	setFromEnv(&C.App.SecretKey, "SECRET_KEY")
	// Port resolution order: APP_PORT -> PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			C.App.TLSEnabled = false
		}
	}
	fillFromEnv(&C.App.TLSCertFile, "TLS_CERT_FILE")
	fillFromEnv(&C.App.TLSKeyFile, "TLS_KEY_FILE")
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; configuration validation will refuse to start. Provide SECRET_KEY via environment.")
	}
}

func initIntegrations(C *Config) {
	fillFromEnv(&C.RedisClient.Host, "REDIS_HOST")
	fillFromEnv(&C.RedisClient.Port, "REDIS_PORT")
	fillFromEnv(&C.RedisClient.Username, "REDIS_USERNAME")
	fillFromEnv(&C.RedisClient.Password, "REDIS_PASSWORD")
	fillFromEnv(&C.Pubsub.ProjectID, "PUBSUB_PROJECT_ID")
	fillFromEnv(&C.Pubsub.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	fillFromEnv(&C.ServiceBus.Namespace, "SERVICEBUS_NAMESPACE")
	setFromEnv(&C.Maintenance.Key, "MAINTENANCE_KEY")
	setFromEnv(&C.Logger.Level, "LOG_LEVEL")
	setFromEnv(&C.Logger.Format, "LOG_FORMAT")
	if v := os.Getenv("WORKER_ENABLED"); v != "" {
		C.Worker.Enabled = v == "1" || v == "true"
	}
}

// setFromEnv overrides dst when the variable is set.
func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// fillFromEnv only fills an empty dst.
func fillFromEnv(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}
