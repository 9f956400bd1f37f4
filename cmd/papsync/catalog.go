package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnc4vk/pap-data-population/internal/config"
)

func newCatalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the active substance and country catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := initCatalog(config.Load())
			if err != nil {
				return err
			}

			cat := source.Snapshot()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "substances (%d):\n", len(cat.Substances))
			for _, s := range cat.Substances {
				fmt.Fprintf(out, "  %s\n", s)
			}
			fmt.Fprintf(out, "countries (%d):\n  %s\n",
				len(cat.Countries), strings.Join(cat.Countries, " "))

			return nil
		},
	}
}
