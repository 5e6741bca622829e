/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	adapterrepo "github.com/eslsoft/wordpace/internal/adapter/repository"
	"github.com/eslsoft/wordpace/internal/infrastructure/config"
	"github.com/eslsoft/wordpace/internal/infrastructure/database"
	"github.com/eslsoft/wordpace/internal/infrastructure/server"
	"github.com/eslsoft/wordpace/internal/usecase"
)

// reevaluateCmd runs the batch difficulty pass once and exits.
var reevaluateCmd = &cobra.Command{
	Use:   "reevaluate",
	Short: "Run one batch difficulty reevaluation",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user")
		threshold, _ := cmd.Flags().GetFloat64("threshold")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err := server.NewLogger(cfg)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		pool, err := database.NewConnection(cfg, logger)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer pool.Close()

		if threshold <= 0 {
			threshold = cfg.Engine.DifficultyThreshold
		}

		reeval := usecase.NewReevaluateUsecase(
			adapterrepo.NewWordRecordRepository(pool),
			adapterrepo.NewAttemptRepository(pool),
		)

		var applied []usecase.AppliedAdjustment
		if userID > 0 {
			applied, err = reeval.Reevaluate(cmd.Context(), userID, threshold)
		} else {
			applied, err = reeval.ReevaluateAll(cmd.Context(), threshold)
		}
		if err != nil {
			return fmt.Errorf("reevaluate: %w", err)
		}

		for _, adj := range applied {
			logger.WithFields(map[string]any{
				"word":     adj.Word,
				"score":    adj.DifficultyScore,
				"from":     adj.OldLevel,
				"to":       adj.NewLevel,
				"interval": adj.NewIntervalHours,
			}).Info(adj.Reason)
		}
		logger.Infof("applied %d schedule corrections", len(applied))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reevaluateCmd)

	reevaluateCmd.Flags().Int64("user", 0, "only reevaluate this user id (default: all active users)")
	reevaluateCmd.Flags().Float64("threshold", 0, "difficulty threshold override (default: config value)")
}
