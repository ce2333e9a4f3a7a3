package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rushteam/txnprep/artifact"
	"github.com/rushteam/txnprep/pipeline"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app 是各子命令共享的配置与日志
type app struct {
	v      *viper.Viper
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix("TXNPREP")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:           "txnprep",
		Short:         "Feature preprocessing for fraud transaction data",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(a.v.GetBool("debug"))
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Pipeline config file (.yaml, .yml or .json)")
	flags.Bool("debug", false, "Development logging")
	flags.String("artifacts-dir", "", "Artifact directory (overrides config)")
	flags.String("store", "", "Artifact store backend: file, memory, redis, http (overrides config)")
	flags.String("label-rule", "", "CEL label rule, e.g. 'label > 0.5' (overrides config)")
	for _, name := range []string{"config", "debug", "artifacts-dir", "store", "label-rule"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(a.transformCmd())
	rootCmd.AddCommand(a.inspectCmd())
	rootCmd.AddCommand(a.vectorizeCmd())
	return rootCmd
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// loadConfig 读取配置文件（可选），再应用命令行/环境变量覆盖
func (a *app) loadConfig() (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()
	if path := a.v.GetString("config"); path != "" {
		var (
			loaded *pipeline.Config
			err    error
		)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			loaded, err = pipeline.LoadFromJSON(path)
		case ".yaml", ".yml":
			loaded, err = pipeline.LoadFromYAML(path)
		default:
			return cfg, fmt.Errorf("unsupported config file extension %q", filepath.Ext(path))
		}
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		cfg = *loaded
	}
	if dir := a.v.GetString("artifacts-dir"); dir != "" {
		cfg.Artifacts = artifact.NewPaths(dir)
	}
	if backend := a.v.GetString("store"); backend != "" {
		cfg.Store.Backend = backend
	}
	if rule := a.v.GetString("label-rule"); rule != "" {
		cfg.LabelRule = rule
	}
	return cfg.WithDefaults(), nil
}
