package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/healthart/internal/shared"
	"github.com/desertthunder/healthart/internal/ui"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file when missing, initializes the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.writePlain("%s Created %s\n", ui.Styles.OK("✓"), configPath)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	config.ApplyEnv()
	r.config = config
	r.configPath = configPath

	if cmd.Bool("save-env") {
		if err := shared.SaveConfig(configPath, config); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		r.logger.Info("saved environment overrides", "path", configPath)
		r.writePlain("%s Saved environment credentials to %s\n", ui.Styles.OK("✓"), configPath)
	}

	r.logger.Info("initializing database", "path", config.Database.Path)
	db, err := shared.OpenGallery(config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("%s Gallery database ready at %s\n", ui.Styles.OK("✓"), config.Database.Path)

	if err := config.Validate(); err != nil {
		r.writePlainln("%s %v", ui.Styles.Warn("⚠"), err)
		r.writePlain("%s\n", ui.Styles.Help("Set whoop.client_id, whoop.client_secret and openai.api_key in "+configPath+" or via WHOOP_CLIENT_ID, WHOOP_CLIENT_SECRET and OPENAI_API_KEY."))
		return nil
	}

	r.writePlain("%s Credentials configured\n", ui.Styles.OK("✓"))
	return nil
}
