package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"churnd/internal/common/fsutil"
	"churnd/internal/model"
	"churnd/pkg/types"
)

// doctorSamples are exercised through both models after loading. The second
// record deliberately uses a returning customer and a referral source.
var doctorSamples = []types.CustomerInput{
	{
		CustomerID:     1,
		RecencyDays:    10,
		Frequency:      5,
		Monetary:       500,
		AvgOrderValue:  100,
		TotalItemsSold: 20,
		Attribution:    "Direct",
		CustomerType:   types.CustomerTypeNew,
	},
	{
		CustomerID:     2,
		RecencyDays:    45,
		Frequency:      2,
		Monetary:       150,
		AvgOrderValue:  75,
		TotalItemsSold: 3,
		Attribution:    "Referral: Bing.com",
		CustomerType:   types.CustomerTypeReturning,
	},
}

func newDoctorCmd() *cobra.Command {
	var churnPath, stackPath string
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check model artifacts and run smoke predictions",
		Long:  "doctor verifies artifact files are present, loads both models,\nand runs sample predictions. Exit code is non-zero on any failure.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, churnPath, stackPath)
		},
	}
	cmd.Flags().StringVar(&churnPath, "churn-model", envDefault("CHURND_CHURN_MODEL", "churn_model.xgb"), "Path to the churn classifier artifact")
	cmd.Flags().StringVar(&stackPath, "next-purchase-model", envDefault("CHURND_NEXT_PURCHASE_MODEL", "next_purchase_stack.json"), "Path to the next-purchase stack manifest")
	return cmd
}

func runDoctor(cmd *cobra.Command, churnPath, stackPath string) error {
	out := cmd.OutOrStdout()
	failed := false

	fmt.Fprintln(out, "checking artifact files...")
	for _, p := range []string{churnPath, stackPath} {
		expanded, err := fsutil.ExpandHome(p)
		if err != nil {
			fmt.Fprintf(out, "  FAIL %s: %v\n", p, err)
			failed = true
			continue
		}
		if size := fsutil.FileSize(expanded); size >= 0 {
			fmt.Fprintf(out, "  ok   %s (%d bytes)\n", p, size)
		} else {
			fmt.Fprintf(out, "  FAIL %s: missing\n", p)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("artifact files missing")
	}

	fmt.Fprintln(out, "loading models...")
	predictor, err := model.Load(model.Config{
		ChurnModelPath:        churnPath,
		NextPurchaseModelPath: stackPath,
	})
	if err != nil {
		fmt.Fprintf(out, "  FAIL %v\n", err)
		return err
	}
	health := predictor.Health()
	fmt.Fprintf(out, "  ok   classification: %s\n", health.ClassificationModel)
	fmt.Fprintf(out, "  ok   regression:     %s\n", health.RegressionModel)

	fmt.Fprintln(out, "running sample predictions...")
	for _, sample := range doctorSamples {
		pred, err := predictor.Predict(context.Background(), sample)
		if err != nil {
			fmt.Fprintf(out, "  FAIL customer %d: %v\n", sample.CustomerID, err)
			return err
		}
		fmt.Fprintf(out, "  ok   customer %d: next purchase in %.1f days, churn %.1f%%\n",
			pred.CustomerID, pred.PredNextPurchaseDays, pred.ChurnProbability)
	}

	fmt.Fprintln(out, "all checks passed")
	return nil
}
