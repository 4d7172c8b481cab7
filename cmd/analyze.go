package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seomentor/seomentor-api/internal/model"
)

var analyzeReq model.AnalysisRequest

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Run a one-shot audit and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		analyzeReq.URL = args[0]
		req := analyzeReq.Sanitized()

		scraped := env.scraper.ScrapeHomepage(ctx, req.URL)
		result := env.auditor.Run(ctx, req, scraped)

		id, err := env.store.CreateProject(ctx, req, result)
		if err != nil {
			return eris.Wrap(err, "store analysis")
		}
		zap.L().Info("analysis stored", zap.Int64("project_id", id), zap.String("url", req.URL))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(struct {
			ProjectID int64                 `json:"project_id"`
			Result    *model.AnalysisResult `json:"result"`
		}{id, result}), "encode result")
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeReq.Country, "country", "", "target country")
	analyzeCmd.Flags().StringVar(&analyzeReq.Language, "language", "", "content language")
	analyzeCmd.Flags().IntVar(&analyzeReq.PlanDays, "plan-days", 0, "roadmap length in days (7-30)")
	analyzeCmd.Flags().StringVar(&analyzeReq.PrimaryGoal, "goal", "", "primary SEO goal")
	analyzeCmd.Flags().StringVar(&analyzeReq.BusinessOffer, "offer", "", "what the business sells")
	analyzeCmd.Flags().StringVar(&analyzeReq.TargetAudience, "audience", "", "target audience")
	analyzeCmd.Flags().StringSliceVar(&analyzeReq.PriorityPages, "priority-pages", nil, "pages to prioritize")
	analyzeCmd.Flags().StringSliceVar(&analyzeReq.SeedKeywords, "keywords", nil, "seed keywords")
	analyzeCmd.Flags().StringSliceVar(&analyzeReq.KnownCompetitors, "competitors", nil, "known competitors")
	analyzeCmd.Flags().StringVar(&analyzeReq.ExecutionCapacity, "capacity", "", "execution capacity, e.g. hours per week")
	rootCmd.AddCommand(analyzeCmd)
}
