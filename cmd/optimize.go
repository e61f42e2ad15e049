package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meshachvetz/meshachvetz/internal/loader"
	"github.com/meshachvetz/meshachvetz/internal/optimizer"
	"github.com/meshachvetz/meshachvetz/internal/progress"
)

var (
	optimizeAlgorithm string
	optimizeOut       string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize <csv>",
	Short: "Search for a higher-quality assignment for a roster",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fatalf("config error: %v", err)
			return
		}
		if optimizeAlgorithm != "" {
			cfg.Optimizer.Algorithm = optimizeAlgorithm
			if err := cfg.Validate(); err != nil {
				fatalf("config error: %v", err)
				return
			}
		}

		sd, _, err := loadRosterOrFatal(args[0])
		if err != nil {
			fatalf("optimize failed: %v", err)
			return
		}

		tracker := progress.NewTracker(progress.ParseLevel(cfg.LogLevel), nil)
		strategy, err := optimizer.New(cfg.Optimizer.Algorithm, cfg, tracker)
		if err != nil {
			fatalf("optimize failed: %v", err)
			return
		}

		result := strategy.Optimize(sd)
		printOptimizeResult(result)

		if optimizeOut != "" {
			if err := loader.WriteRoster(optimizeOut, result.OptimizedSchoolData); err != nil {
				fatalf("writing optimized roster: %v", err)
			}
		}
	},
}

func printOptimizeResult(result *optimizer.Result) {
	fmt.Printf("algorithm: %s\n", result.AlgorithmName)
	fmt.Printf("initial_score: %.2f\n", result.InitialScore)
	fmt.Printf("final_score:   %.2f\n", result.FinalScore)
	fmt.Printf("improvement:   %.2f\n", result.Improvement)
	fmt.Printf("iterations:    %d\n", result.IterationCount)
	fmt.Printf("elapsed:       %s\n", progress.FormatDuration(result.ExecutionTime))
	fmt.Printf("constraints_satisfied: %v\n", result.ConstraintsSatisfied)
	for _, v := range result.Violations {
		fmt.Printf("  violation[%s]: %s\n", v.Kind, v.Detail)
	}
}

func init() {
	optimizeCmd.Flags().StringVar(&optimizeAlgorithm, "algorithm", "", "Override optimizer.algorithm: local_search, genetic, or_tools")
	optimizeCmd.Flags().StringVar(&optimizeOut, "out", "", "Write the optimized roster back to this CSV path")
}
