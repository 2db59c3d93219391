package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"foodflow/pkg/config"
	"foodflow/pkg/food"
	"foodflow/pkg/logger"
	"foodflow/pkg/store"
)

var seedConfig string

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load records from a YAML or JSON fixture into the configured store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := readFixture(args[0])
		if err != nil {
			return err
		}
		cfg, err := config.Load(seedConfig)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		log := logger.New(cmd.ErrOrStderr(), logger.ParseLevel(cfg.Log.Level), "foodctl", nil)
		repo, closeStore, err := store.Open(ctx, cfg.Store, log)
		if err != nil {
			return err
		}
		defer closeStore()

		for i := range recs {
			if err := repo.Add(ctx, &recs[i]); err != nil {
				return fmt.Errorf("record %d (%s): %w", i, recs[i].Description, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d records into %s store\n", len(recs), cfg.Store.Type)
		return nil
	},
}

// readFixture decodes a list of records. JSON fixtures parse as YAML.
func readFixture(path string) ([]food.Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var recs []food.Record
	if err := yaml.Unmarshal(b, &recs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return recs, nil
}

func init() {
	seedCmd.Flags().StringVar(&seedConfig, "config", os.Getenv("FOODFLOW_CONFIG"), "Path to the service config file")
	rootCmd.AddCommand(seedCmd)
}
