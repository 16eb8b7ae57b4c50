package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkruglov/abacgen/internal/config"
	"github.com/pkruglov/abacgen/internal/sqlgen"
	"github.com/pkruglov/abacgen/internal/synth"
)

// overrides carries CLI flag values that take precedence over the config.
type overrides struct {
	maxRules    int
	maxRulesSet bool
	seed        int64
	seedSet     bool
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&genConfigPath, "config", "abacgen.yaml", "path to synthesis config")
	generateCmd.Flags().StringVar(&genOutPath, "out", "generated_policies.sql", "output SQL script path")
	generateCmd.Flags().IntVar(&genMaxRules, "max-rules", 0, "rule budget override (0 = use config)")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 0, "random seed override")
}

var (
	genConfigPath string
	genOutPath    string
	genMaxRules   int
	genSeed       int64
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Synthesize rules and write the SQL seed script",
	Long:  "Runs one synthesis pass over the config and writes the seed script.\nFlag overrides for --max-rules and --seed take precedence over config values.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ov := overrides{
			maxRules:    genMaxRules,
			maxRulesSet: cmd.Flags().Changed("max-rules"),
			seed:        genSeed,
			seedSet:     cmd.Flags().Changed("seed"),
		}
		stats, err := generateOnce(genConfigPath, genOutPath, ov)
		if err != nil {
			return err
		}
		printStats(cmd, stats, genOutPath)
		return nil
	},
}

// generateOnce loads the config, applies overrides, runs the pipeline,
// and writes the script. Shared by generate and watch.
func generateOnce(configPath, outPath string, ov overrides) (synth.Stats, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return synth.Stats{}, err
	}
	if ov.maxRulesSet {
		cfg.MaxRules = ov.maxRules
	}
	if ov.seedSet {
		seed := ov.seed
		cfg.Seed = &seed
	}

	rules, stats := synth.Synthesize(cfg)
	if err := sqlgen.WriteFile(outPath, cfg, rules); err != nil {
		return stats, err
	}
	return stats, nil
}

func printStats(cmd *cobra.Command, stats synth.Stats, outPath string) {
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rules to %s (expanded %d, derived %d, unique %d, seed %d)\n",
		stats.Final, outPath, stats.Expanded, stats.Derived, stats.Unique, stats.Seed)
}
