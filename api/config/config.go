// api/config/config.go
package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Configuration stores all the configurations
type Configuration struct {
	Server        ServerConfiguration
	Rules         RulesConfiguration
	Oracle        OracleConfiguration
	Oversight     OversightConfiguration
	Redis         RedisConfiguration
	Elasticsearch ElasticsearchConfiguration
	Sqlite        SqliteConfiguration
}

// ServerConfiguration stores the port and other web server settings
type ServerConfiguration struct {
	Port string
}

// RulesConfiguration stores the rule file location and hot-reload switch
type RulesConfiguration struct {
	File  string
	Watch bool
}

// OracleConfiguration stores the reasoning oracle settings
type OracleConfiguration struct {
	Model        string
	Timeout      string
	MaxRetries   int
	RetryBackoff string
}

// OversightConfiguration stores the review pass worker pool settings
type OversightConfiguration struct {
	Model         string
	Workers       int
	QueueSize     int
	Timeout       string
	MinConfidence float64
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Addr            string
	DefaultCacheTTL string
}

// ElasticsearchConfiguration stores data for Elasticsearch connection
type ElasticsearchConfiguration struct {
	URL string
}

// SqliteConfiguration stores the action store location
type SqliteConfiguration struct {
	Path string
}

var config *Configuration

func InitConfig() error {
	viper.AddConfigPath("config") // path to look for the config file in
	viper.SetConfigName("config") // name of the config file (without extension)
	viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name

	viper.AutomaticEnv() // read in environment variables that match

	// Set default configurations
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("rules.file", "rules.json")
	viper.SetDefault("rules.watch", true)
	viper.SetDefault("oracle.model", "gemini-1.5-flash")
	viper.SetDefault("oracle.timeout", "15s")
	viper.SetDefault("oracle.maxRetries", 2)
	viper.SetDefault("oracle.retryBackoff", "500ms")
	viper.SetDefault("dedup.window", "30s")
	viper.SetDefault("oversight.model", "gemini-1.5-flash")
	viper.SetDefault("oversight.workers", 2)
	viper.SetDefault("oversight.queueSize", 64)
	viper.SetDefault("oversight.timeout", "20s")
	viper.SetDefault("oversight.minConfidence", 0.25)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.defaultCacheTTL", "10m")
	viper.SetDefault("elasticsearch.url", "http://localhost:9200")
	viper.SetDefault("audit.index", "decision-audit")
	viper.SetDefault("sqlite.path", "actions.db")
	viper.SetDefault("ratelimit.requests", 100)
	viper.SetDefault("ratelimit.window", "1m")
	viper.SetDefault("log.dir", "logging")

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	// Unmarshal the configuration into the Configuration struct
	err := viper.Unmarshal(&config)
	if err != nil {
		return err
	}

	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}

// GetString retrieves a string value from the configuration
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt retrieves an integer value from the configuration
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool retrieves a boolean value from the configuration
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat64 retrieves a float64 value from the configuration
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}

// GetDuration retrieves a duration value from the configuration
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}
