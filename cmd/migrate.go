package main

import (
	"context"
	"fmt"
	"time"

	"storefront-core/internal/pkg/config"
	"storefront-core/migrations"

	"ariga.io/atlas-go-sdk/atlasexec"
	"github.com/spf13/cobra"
)

type migrateOptions struct {
	AtlasBin string
	DryRun   bool
	Timeout  time.Duration
}

func newMigrateCommand() *cobra.Command {
	opts := &migrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations with the atlas CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.AtlasBin, "atlas", "atlas", "path to the atlas binary")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print pending statements without executing them")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 2*time.Minute, "overall migration timeout")

	return cmd
}

func runMigrate(cmd *cobra.Command, opts *migrateOptions) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
	defer cancel()

	wd, err := atlasexec.NewWorkingDir(atlasexec.WithMigrations(migrations.FS))
	if err != nil {
		return fmt.Errorf("prepare migration dir: %w", err)
	}
	defer wd.Close()

	client, err := atlasexec.NewClient(wd.Path(), opts.AtlasBin)
	if err != nil {
		return fmt.Errorf("init atlas client: %w", err)
	}

	res, err := client.MigrateApply(ctx, &atlasexec.MigrateApplyParams{
		URL:    cfg.DB.BuildDSN(),
		DryRun: opts.DryRun,
	})
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, f := range res.Applied {
		fmt.Fprintf(out, "applied %s\n", f.Name)
	}
	fmt.Fprintf(out, "schema at version %q (%d applied)\n", res.Target, len(res.Applied))
	return nil
}
