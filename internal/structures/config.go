package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	Driver       string        `yaml:"driver" validate:"required|in:file,sqlite,memory"`
	Dir          string        `yaml:"dir"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type FastingConfig struct {
	TargetDuration time.Duration `yaml:"targetDuration" validate:"required|min:1"`
	StartOfFast    string        `yaml:"startOfFast" validate:"required"`
}

type HealthConfig struct {
	Driver       string        `yaml:"driver" validate:"required|in:bridge,memory,none"`
	BridgeURL    string        `yaml:"bridgeURL"`
	Timeout      time.Duration `yaml:"timeout"`
	WindowDays   int           `yaml:"windowDays" validate:"required|min:1"`
	SyncInterval time.Duration `yaml:"syncInterval"`
	WeightPolicy string        `yaml:"weightPolicy" validate:"required|in:latest,first_nonzero"`
	WeightUnit   string        `yaml:"weightUnit" validate:"required|in:lb,kg"`
}

type ActivityConfig struct {
	StepGoal int `yaml:"stepGoal" validate:"required|min:1"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
	TTL     int  `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type CorsConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server         `yaml:"webServer"`
	Persistence Persistence    `yaml:"persistence"`
	Logger      LoggerConfig   `yaml:"logger"`
	Fasting     FastingConfig  `yaml:"fasting"`
	Health      HealthConfig   `yaml:"health"`
	Activity    ActivityConfig `yaml:"activity"`
	Cache       CacheConfig    `yaml:"cache"`
	Metrics     MetricsConfig  `yaml:"metrics"`
	Cors        CorsConfig     `yaml:"cors"`
}
