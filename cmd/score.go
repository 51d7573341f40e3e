package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goldencrust/interview-agent/internal/scoring"
	"github.com/goldencrust/interview-agent/pkg/anthropic"
)

var scoreCmd = &cobra.Command{
	Use:   "score [interview-id]",
	Short: "Score interview credibility",
	Long:  "Scores one interview by id, or every completed interview that has no credibility report yet when no id is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		scorer := scoring.NewScorer(anthropic.NewClient(cfg.Anthropic.Key), st, cfg.Scoring)

		if len(args) == 1 {
			report, err := scorer.Score(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			zap.L().Info("interview scored",
				zap.String("interview_id", report.InterviewID),
				zap.Int("score", report.Score),
				zap.String("recommendation", report.Recommendation),
			)
			return nil
		}

		n, err := scorer.ScorePending(cmd.Context())
		if err != nil {
			return err
		}
		zap.L().Info("pending interviews scored", zap.Int("count", n))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}
