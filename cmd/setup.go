package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/plsort/internal/shared"
)

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml from the template and initialize the rewrite journal",
		Action: r.Setup,
	}
}

// Setup writes a template config file when none exists, then creates and migrates the journal database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("using existing config file", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.writePlain("%s\n", r.palette.OK("Created "+configPath))

		config, err := shared.ResolveConfig(configPath, cmd.String("env"))
		if err != nil {
			return err
		}
		r.config = config
	}

	if r.config.Database.Path == "" {
		r.writePlain("%s\n", r.palette.Warn("database.path is empty; the rewrite journal is disabled."))
	} else {
		r.logger.Info("initializing database", "path", r.config.Database.Path)
		if _, err := r.openJournal(); err != nil {
			return err
		}
		r.writePlain("%s\n", r.palette.OK(fmt.Sprintf("Rewrite journal ready at %s", r.config.Database.Path)))
	}

	r.writePlainln("Next steps:")
	r.writePlain("1. Set client_id, client_secret and redirect_uri in %s (or SPOTIFY_* in .env)\n", configPath)
	r.writePlain("2. Register the redirect URI in your Spotify developer dashboard\n")
	return r.writePlain("3. Run 'plsort' to start sorting\n")
}
