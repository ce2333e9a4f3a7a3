package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rushteam/txnprep/artifact"
	"github.com/rushteam/txnprep/config"
)

func (a *app) inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Load and validate persisted artifacts and print their contents",
		Args:  cobra.NoArgs,
		RunE:  a.runInspect,
	}
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")
	return cmd
}

func (a *app) loadBundle(cmd *cobra.Command) (*artifact.Bundle, artifact.Locators, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, artifact.Locators{}, err
	}
	backend, err := config.BuildStore(cmd.Context(), cfg.Store)
	if err != nil {
		return nil, artifact.Locators{}, err
	}
	defer backend.Close()

	as := artifact.NewStore(backend, cfg.Artifacts, cfg.Contract)
	bundle, err := as.Load(cmd.Context())
	if err != nil {
		return nil, artifact.Locators{}, err
	}
	return bundle, as.Locators(), nil
}

func (a *app) runInspect(cmd *cobra.Command, _ []string) error {
	bundle, locators, err := a.loadBundle(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"locators":        locators,
			"schema":          bundle.Schema,
			"feature_columns": bundle.FeatureColumns,
			"preprocessor":    bundle.Numeric,
			"encoder":         bundle.Encoder,
		})
	}

	fmt.Fprintln(out, "Artifacts")
	fmt.Fprintln(out, strings.Repeat("=", 40))
	fmt.Fprintf(out, "  preprocessor:    %s\n", locators.Preprocessor)
	fmt.Fprintf(out, "  encoder:         %s\n", locators.Encoder)
	fmt.Fprintf(out, "  schema:          %s\n", locators.Schema)
	fmt.Fprintf(out, "  feature_columns: %s\n", locators.FeatureColumns)

	fmt.Fprintln(out, "\nNumeric columns:")
	for _, p := range bundle.Numeric.Columns {
		fmt.Fprintf(out, "  %-20s median=%-12g mean=%-12g std=%g\n", p.Name, p.Median, p.Mean, p.Std)
	}

	fmt.Fprintln(out, "\nCategorical columns:")
	for _, c := range bundle.Encoder.Columns {
		fmt.Fprintf(out, "  %-20s %d categories: %s\n", c.Name, len(c.Categories), strings.Join(c.Categories, ", "))
	}

	fmt.Fprintf(out, "\nFeature columns: %d\n", len(bundle.FeatureColumns))
	return nil
}
