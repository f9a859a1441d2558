package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/lunfardo314/easyexpr"
	"github.com/lunfardo314/easyexpr/calc"
	"github.com/lunfardo314/easyexpr/policy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var calcCmd = &cobra.Command{
	Use:   "easycalc [type]",
	Short: "Interactive expression calculator",
	Long: `Interactive expression calculator. Every line is compiled and evaluated.
The type of values is one of float64 (default), int or any. 'dynamic' is any
with values resolved at run time.`,
	Args: cobra.MaximumNArgs(1),
	RunE: calcF,
}

func init() {
	viper.SetEnvPrefix("EASYCALC")

	calcCmd.PersistentFlags().String("type", "float64", "Type of values: float64, int, any or dynamic.")
	viper.BindEnv("TYPE")
	viper.BindPFlag("type", calcCmd.PersistentFlags().Lookup("type"))

	calcCmd.PersistentFlags().Int("history", 100, "Number of remembered input lines.")
	viper.BindEnv("HISTORY")
	viper.BindPFlag("history", calcCmd.PersistentFlags().Lookup("history"))

	calcCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error.")
	viper.BindEnv("LOG_LEVEL")
	viper.BindPFlag("log_level", calcCmd.PersistentFlags().Lookup("log-level"))

	calcCmd.PersistentFlags().String("security", "math", "Granted capabilities: none, math, member, invoke or all, separated by '|'.")
	viper.BindEnv("SECURITY")
	viper.BindPFlag("security", calcCmd.PersistentFlags().Lookup("security"))
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func calcF(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(viper.GetString("log_level"))
	if err != nil {
		return err
	}
	defer logger.Sync()
	easyexpr.SetLogger(logger.Sugar())

	access, err := policy.ParseAccess(viper.GetString("security"))
	if err != nil {
		return err
	}
	cfg := calc.DefaultConfig()
	cfg.SecurityAccess = access
	cfg.HistorySize = viper.GetInt("history")

	typ := viper.GetString("type")
	if len(args) > 0 {
		typ = args[0]
	}
	log := logger.Sugar().Named("calc")
	in, out, errOut := cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()

	switch strings.ToLower(typ) {
	case "float64", "double":
		return calc.New[float64](cfg, log).Run(in, out, errOut)
	case "int":
		return calc.New[int](cfg, log).Run(in, out, errOut)
	case "any":
		return calc.New[any](cfg, log).Run(in, out, errOut)
	case "dynamic":
		cfg.Dynamic = true
		return calc.New[any](cfg, log).Run(in, out, errOut)
	}
	return fmt.Errorf("%s is not a known type", typ)
}

func main() {
	if err := calcCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
