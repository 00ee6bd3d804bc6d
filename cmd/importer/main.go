package main

import (
	"fmt"
	"os"

	"go-payroll/internal/app"
	"go-payroll/internal/bootstrap"
	"go-payroll/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string
	var cfg config.Config

	root := &cobra.Command{
		Use:           "importer",
		Short:         "Load payroll setup data into the database",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}
			loaded, err := config.Load(files...)
			if err != nil {
				return err
			}
			if _, err := bootstrap.NewLogger(loaded); err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load before the environment")

	root.AddCommand(newComponentsCmd(&cfg), newSeedPermissionsCmd(&cfg))
	return root
}

func newComponentsCmd(cfg *config.Config) *cobra.Command {
	var companyID string

	cmd := &cobra.Command{
		Use:   "components <file.yaml>",
		Short: "Import a salary component catalog for a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.ImportComponents(cmd.Context(), *cfg, companyID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d, skipped %d\n", len(result.Created), len(result.Skipped))
			for _, name := range result.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "  skipped: %s\n", name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&companyID, "company", "", "company id (uuid)")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}

func newSeedPermissionsCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-permissions",
		Short: "Insert the permission catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := app.SeedPermissions(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d permissions\n", n)
			return nil
		},
	}
}
