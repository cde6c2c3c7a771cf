package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/kilianp07/studytime/core/model"
	"github.com/kilianp07/studytime/core/prediction"
)

func init() {
	rootCmd.AddCommand(newPredictCmd())
}

func newPredictCmd() *cobra.Command {
	var req model.PredictionRequest
	c := &cobra.Command{
		Use:   "predict",
		Short: "Compute a suggestion locally and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, _ := prediction.NewFormulaEngine().Predict(req)
			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(resp)
		},
	}
	c.Flags().Int64Var(&req.Grade, "grade", 0, "grade level")
	c.Flags().StringVar(&req.Subject, "subject", "", "subject name")
	c.Flags().Float64Var(&req.LastScore, "last-score", 0, "most recent score")
	for _, name := range []string{"grade", "subject", "last-score"} {
		_ = c.MarkFlagRequired(name)
	}
	return c
}
