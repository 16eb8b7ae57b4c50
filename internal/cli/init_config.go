package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkruglov/abacgen/internal/config"
)

func init() {
	rootCmd.AddCommand(initConfigCmd)
	initConfigCmd.Flags().StringVar(&initConfigPath, "path", "abacgen.yaml", "where to write the sample config")
}

var initConfigPath string

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a commented sample config",
	Long:  "Creates a starter abacgen.yaml with every section documented.\nRefuses to overwrite an existing file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(initConfigPath); err == nil {
			return fmt.Errorf("config already exists at %s", initConfigPath)
		}
		if err := os.WriteFile(initConfigPath, []byte(config.SampleYAML()), 0644); err != nil {
			return fmt.Errorf("write sample config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", initConfigPath)
		return nil
	},
}
