package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meshachvetz/meshachvetz/internal/loader"
	"github.com/meshachvetz/meshachvetz/internal/model"
)

var validateCmd = &cobra.Command{
	Use:   "validate <csv>",
	Short: "Load a roster and report validation/imputation findings without scoring",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sd, summary, err := loadRosterOrFatal(args[0])
		if err != nil {
			fatalf("validation failed: %v", err)
			return
		}
		printValidationSummary(args[0], sd, summary)
		fmt.Println("roster is valid")
	},
}

func printValidationSummary(path string, sd *model.SchoolData, summary *loader.ImputationSummary) {
	fmt.Printf("roster %s: %d students, %d classes\n", path, len(sd.Students), len(sd.SortedClassIDs()))
	if len(summary.AcademicScoreImputed) > 0 {
		fmt.Printf("imputed academic_score (mean=%.2f) for %d students: %v\n", summary.AcademicScoreMean, len(summary.AcademicScoreImputed), summary.AcademicScoreImputed)
	}
	if len(summary.BehaviorRankImputed) > 0 {
		fmt.Printf("imputed behavior_rank (mode=%s) for %d students: %v\n", summary.BehaviorRankMode, len(summary.BehaviorRankImputed), summary.BehaviorRankImputed)
	}
	for _, w := range summary.DanglingReferencesDropped {
		fmt.Printf("warning: %s\n", w)
	}
}

// loadRosterOrFatal loads a roster; a load failure is a fatal validation
// error at the CLI boundary (§7) rather than an internal one.
func loadRosterOrFatal(path string) (*model.SchoolData, *loader.ImputationSummary, error) {
	return loader.LoadRoster(path)
}
