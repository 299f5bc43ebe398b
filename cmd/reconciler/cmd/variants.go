package cmd

import (
	"fmt"

	"gst-reconciliation-service/internal/mapping"

	"github.com/spf13/cobra"
)

var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "List the available reconciliation variants",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, v := range mapping.AllVariants() {
			m, err := mapping.Get(v)
			if err != nil {
				return err
			}
			sources := m.SourceAName + " vs " + m.SourceBName
			if m.SourceCName != "" {
				sources += " vs " + m.SourceCName
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-12s %s\n", v, m.Granularity, sources)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(variantsCmd)
}
