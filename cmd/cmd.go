package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/plant-dashboard/internal"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "plant-dashboard",
	Short: "Plant Dashboard",
	Long:  `Department dashboards, data reports and approvals for plant operations.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func isContainerEnv() bool {
	return os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true"
}

func loadConfig(path string) (*internal.Config, error) {
	if isContainerEnv() {
		cfg := internal.LoadConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("error validating config from environment: %w", err)
		}
		return cfg, nil
	}

	// a local .env is optional in development
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	return &cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory containing config.yml")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(eventCmd)
}
