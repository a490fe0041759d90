package providers

import (
	"dailytrack/internal/structures"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const AppName = "DailyTrack"

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("webServer.port", 8090)
	v.SetDefault("persistence.driver", "file")
	v.SetDefault("persistence.writeTimeout", "10s")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("fasting.targetDuration", "16h")
	v.SetDefault("fasting.startOfFast", "20:00")
	v.SetDefault("health.driver", "none")
	v.SetDefault("health.timeout", "10s")
	v.SetDefault("health.windowDays", 365)
	v.SetDefault("health.weightPolicy", "latest")
	v.SetDefault("health.weightUnit", "lb")
	v.SetDefault("activity.stepGoal", 10000)
	v.SetDefault("cache.ttl", 60)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	// A missing .env is the normal case.
	_ = godotenv.Load(filepath.Join(filepath.Dir(flags.ConfigPath), ".env"))

	v := viper.New()
	setDefaults(v)

	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	_ = v.BindEnv("logger.level", "DAILYTRACK_LOG_LEVEL")
	_ = v.BindEnv("logger.dir", "DAILYTRACK_LOG_DIR")
	_ = v.BindEnv("persistence.driver", "DAILYTRACK_PERSISTENCE_DRIVER")
	_ = v.BindEnv("persistence.dir", "DAILYTRACK_DATA_DIR")
	_ = v.BindEnv("health.driver", "DAILYTRACK_HEALTH_DRIVER")
	_ = v.BindEnv("health.bridgeURL", "DAILYTRACK_HEALTH_BRIDGE_URL")
	_ = v.BindEnv("health.syncInterval", "DAILYTRACK_SYNC_INTERVAL")
	_ = v.BindEnv("cache.enabled", "DAILYTRACK_CACHE_ENABLED")
	_ = v.BindEnv("cache.size", "DAILYTRACK_CACHE_SIZE")
	_ = v.BindEnv("metrics.enabled", "DAILYTRACK_METRICS_ENABLED")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode
	if conf.Debug {
		conf.Logger.Level = "debug"
	}

	return &conf, nil
}
