package config

import (
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	DatabasePath        string
	Port                string
	APIURL              string
	APIKey              string
	CSVSourcePath       string
	CSVQuirkySourcePath string
	ETLOnStart          bool
}

var once sync.Once
var config *Config

func GetConfig() (*Config, error) {
	var err error
	once.Do(func() {
		config, err = loadConfig()
	})
	return config, err
}

func loadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// A missing .env is fine: everything has a default or comes from the
	// environment.
	_ = viper.ReadInConfig()

	viper.SetDefault("DATABASE_PATH", "kasparro.db")
	viper.SetDefault("PORT", "8000")
	viper.SetDefault("CSV_SOURCE_PATH", "data/source1.csv")
	viper.SetDefault("CSV_QUIRKY_SOURCE_PATH", "data/source2.csv")
	viper.SetDefault("ETL_ON_START", true)

	cfg := &Config{
		DatabasePath:        viper.GetString("DATABASE_PATH"),
		Port:                viper.GetString("PORT"),
		APIURL:              viper.GetString("API_URL"),
		APIKey:              viper.GetString("API_KEY"),
		CSVSourcePath:       viper.GetString("CSV_SOURCE_PATH"),
		CSVQuirkySourcePath: viper.GetString("CSV_QUIRKY_SOURCE_PATH"),
		ETLOnStart:          viper.GetBool("ETL_ON_START"),
	}

	return cfg, nil
}
