package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app carries what every subcommand needs once the persistent pre-run has
// loaded the configuration.
type app struct {
	cfg    *Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}
	v := viper.New()

	var configFile string

	cmd := &cobra.Command{
		Use:   "tagmerge",
		Short: "Resolve merged tag metadata from declaration files",
		Long: `tagmerge reads a YAML file declaring tag schemas and tagged elements,
and resolves the tags on an element into merged, conflict-checked views,
honouring attribute aliases, meta-tags and repeatable containers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v, configFile)
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}

			a.cfg = cfg
			a.logger = logger

			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = a.logger.Sync()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default: ./.tagmerge.yaml)")
	flags.StringP("model", "m", "", "declaration file (default: tags.yaml)")
	flags.String("strategy", "", "search strategy: direct, inherited, superclass, exhaustive")
	flags.String("log-level", "", "log level: debug, info, warn, error, off")
	flags.StringP("output", "o", "", "output format: yaml, text")

	if err := bindFlags(v, flags); err != nil {
		panic(err)
	}

	cmd.AddCommand(
		newCheckCmd(a),
		newGetCmd(a),
		newStreamCmd(a),
		newDumpCmd(a),
		newVersionCmd(),
	)

	return cmd
}
