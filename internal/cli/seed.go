package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/singularity-sky/singularity/internal/config"
	"github.com/singularity-sky/singularity/internal/infra/sqlite"
	"github.com/singularity-sky/singularity/internal/seed"
)

func init() {
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the starter badge, dark-site and event catalog",
	Long: `Load the starter catalog into the database: badge tiers, dark-sky
sites and upcoming celestial events. Rows are upserted by id, so the
command is safe to run more than once.`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := sqlite.Open(cfg.DB.Dir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := seed.Apply(context.Background(), db); err != nil {
		return err
	}

	cmd.Printf("seeded %d badges, %d dark sites, %d events\n",
		len(seed.Badges()), len(seed.DarkSites()), len(seed.Events()))
	return nil
}
