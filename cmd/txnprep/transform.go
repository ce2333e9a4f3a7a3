package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rushteam/txnprep/feature"
	"github.com/rushteam/txnprep/pipeline"
)

func (a *app) transformCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Fit preprocessing on the train CSV, transform both partitions and persist artifacts",
		Args:  cobra.NoArgs,
		RunE:  a.runTransform,
	}
	cmd.Flags().String("train", "", "Train CSV path")
	cmd.Flags().String("test", "", "Test CSV path")
	cmd.Flags().String("out-dir", "", "Write the assembled train/test matrices as CSV into this directory")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics in text format to this file")
	_ = cmd.MarkFlagRequired("train")
	_ = cmd.MarkFlagRequired("test")
	return cmd
}

func (a *app) runTransform(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	trainPath, _ := cmd.Flags().GetString("train")
	testPath, _ := cmd.Flags().GetString("test")
	outDir, _ := cmd.Flags().GetString("out-dir")
	metricsFile, _ := cmd.Flags().GetString("metrics-file")

	reg := prometheus.NewRegistry()
	tr, err := pipeline.New(cfg, pipeline.WithLogger(a.logger), pipeline.WithRegisterer(reg))
	if err != nil {
		return err
	}
	defer tr.Close()

	res, runErr := tr.Run(cmd.Context(), trainPath, testPath)
	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
			a.logger.Warn("write metrics failed", zap.String("path", metricsFile), zap.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}

	if outDir != "" {
		header := res.Header(cfg.Contract.Label)
		if err := writeMatrix(filepath.Join(outDir, "train.csv"), res.Train, header); err != nil {
			return err
		}
		if err := writeMatrix(filepath.Join(outDir, "test.csv"), res.Test, header); err != nil {
			return err
		}
	}

	trainRows, cols := res.Train.Dims()
	testRows, _ := res.Test.Dims()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run:          %s\n", res.RunID)
	fmt.Fprintf(out, "train:        %d x %d\n", trainRows, cols)
	fmt.Fprintf(out, "test:         %d x %d\n", testRows, cols)
	fmt.Fprintf(out, "preprocessor: %s\n", res.ScalerLocator)
	fmt.Fprintf(out, "encoder:      %s\n", res.Locators.Encoder)
	fmt.Fprintf(out, "schema:       %s\n", res.Locators.Schema)
	fmt.Fprintf(out, "features:     %s\n", res.Locators.FeatureColumns)
	return nil
}

func writeMatrix(path string, m *feature.Matrix, header []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.WriteCSV(f, header); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
