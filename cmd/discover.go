package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var discoverFormat string

// discoverCmd lists pending videos without processing them
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List playlist videos that have not been processed yet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		formatter, err := newItemFormatter(discoverFormat)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		factory := NewServiceFactory(cfg, newLogger(cfg))
		defer factory.Close()

		store, err := factory.CreateStore(ctx)
		if err != nil {
			return err
		}
		if _, err := store.Load(ctx); err != nil {
			return err
		}

		disc, err := factory.CreateDiscovery(ctx, store)
		if err != nil {
			return err
		}

		items, err := disc.ListPending(ctx)
		if err != nil {
			return err
		}

		output, err := formatter.Format(items)
		if err != nil {
			return fmt.Errorf("failed to format result: %w", err)
		}
		fmt.Print(output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().StringVarP(&discoverFormat, "output", "o", "json", "output format: json or text")
}
