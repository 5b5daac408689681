package util

import "github.com/mxcd/go-config/config"

func InitConfig() error {
	err := config.LoadConfigWithOptions([]config.Value{
		config.String("LOG_LEVEL").NotEmpty().Default("info"),
		config.Bool("DEV").Default(false),
		config.Int("PORT").Default(8080),

		config.String("SESSION_STORAGE_BACKEND").NotEmpty().Default("mongo"),

		config.String("SESSION_DB_HOST").NotEmpty().Default("localhost"),
		config.Int("SESSION_DB_PORT").Default(27017),
		config.String("SESSION_DB_NAME").NotEmpty().Default("catalyst"),
		config.String("SESSION_DB_COLLECTION").NotEmpty().Default("session"),
		config.String("SESSION_DB_USERNAME").Default(""),
		config.String("SESSION_DB_PASSWORD").Sensitive().Default(""),

		config.String("REDIS_HOST").NotEmpty().Default("localhost"),
		config.Int("REDIS_PORT").Default(6379),
		config.String("REDIS_PASSWORD").Sensitive().Default(""),
		config.Int("REDIS_DB").Default(0),

		config.Int("MEMORY_MAX_SESSIONS").Default(65536),

		config.Int("SWEEP_INTERVAL_SECONDS").Default(300),
	}, &config.LoadConfigOptions{
		DotEnvFile: "docsession.env",
	})
	return err
}
