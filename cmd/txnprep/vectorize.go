package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rushteam/txnprep/dataset"
	"github.com/rushteam/txnprep/feature"
	"github.com/rushteam/txnprep/inference"
	"github.com/rushteam/txnprep/pkg/dsl"
)

func (a *app) vectorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vectorize [records.csv]",
		Short: "Vectorize raw records (CSV file or stdin) with persisted artifacts, one JSON array per line",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runVectorize,
	}
	cmd.Flags().Bool("engineered", false, "Records already contain engineered columns; skip feature engineering")
	return cmd
}

func (a *app) runVectorize(cmd *cobra.Command, args []string) error {
	bundle, _, err := a.loadBundle(cmd)
	if err != nil {
		return err
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	var opts []feature.EngineerOption
	if cfg.LabelRule != "" {
		rule, err := dsl.NewLabelRule(cfg.LabelRule)
		if err != nil {
			return err
		}
		opts = append(opts, feature.WithLabelRule(rule))
	}
	v, err := inference.NewVectorizer(bundle, opts...)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	t, err := dataset.ReadCSV(in)
	if err != nil {
		return err
	}

	engineered, _ := cmd.Flags().GetBool("engineered")
	enc := json.NewEncoder(cmd.OutOrStdout())
	names := t.Names()
	for i := 0; i < t.Rows(); i++ {
		rec := make(map[string]string, len(names))
		for _, name := range names {
			col, _ := t.Column(name)
			rec[name] = col.Text(i)
		}
		var vec []float64
		if engineered {
			vec, err = v.Vector(rec)
		} else {
			vec, err = v.VectorFromRaw(rec)
		}
		if err != nil {
			a.logger.Error("vectorize record failed", zap.Int("row", i), zap.Error(err))
			return err
		}
		if err := enc.Encode(vec); err != nil {
			return err
		}
	}
	a.logger.Debug("records vectorized", zap.Int("rows", t.Rows()))
	return nil
}
