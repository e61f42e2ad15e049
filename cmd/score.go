package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meshachvetz/meshachvetz/internal/scorer"
)

var scoreCmd = &cobra.Command{
	Use:   "score <csv>",
	Short: "Score a roster under the effective configuration",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fatalf("config error: %v", err)
			return
		}
		sd, summary, err := loadRosterOrFatal(args[0])
		if err != nil {
			fatalf("scoring failed: %v", err)
			return
		}
		printValidationSummary(args[0], sd, summary)

		result := scorer.Evaluate(sd, cfg)
		printScoreResult(result)
	},
}

func printScoreResult(result *scorer.Result) {
	fmt.Printf("final_score: %.2f\n", result.FinalScore)
	fmt.Printf("  student_layer: %.2f (weight %.2f)\n", result.StudentLayerScore, result.LayerWeights.Student)
	fmt.Printf("  class_layer:   %.2f (weight %.2f)\n", result.ClassLayerScore, result.LayerWeights.Class)
	fmt.Printf("  school_layer:  %.2f (weight %.2f)\n", result.SchoolLayerScore, result.LayerWeights.School)
	fmt.Printf("  school sub-metrics: academic=%.2f behavior=%.2f size=%.2f assistance=%.2f\n",
		result.SchoolScores.AcademicBalance.Score,
		result.SchoolScores.BehaviorBalance.Score,
		result.SchoolScores.SizeBalance.Score,
		result.SchoolScores.AssistanceBalance.Score,
	)

	summary := scorer.Summarize(result)
	fmt.Printf("students: %d (highly satisfied %d, moderately %d, low %d)\n",
		summary.TotalStudents, summary.HighlySatisfiedCount, summary.ModeratelySatisfiedCount, summary.LowSatisfactionCount)
}
