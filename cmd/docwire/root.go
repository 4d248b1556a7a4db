package main

import (
	"fmt"

	"github.com/danmuck/docwire/internal/config"
	"github.com/danmuck/docwire/internal/logging"
	"github.com/danmuck/docwire/internal/protocol/schema"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootOpts struct {
	configPath  string
	logLevel    string
	maxDepth    int
	schemaFiles []string

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}
	cmd := &cobra.Command{
		Use:           "docwire",
		Short:         "Convert schema-typed documents to and from the DocumentProto wire format",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ./"+config.DefaultPath+" when present)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level from the config")
	cmd.PersistentFlags().IntVar(&opts.maxDepth, "max-depth", 0, "override codec.max_depth (0 keeps the config value)")
	cmd.PersistentFlags().StringSliceVar(&opts.schemaFiles, "schemas", nil, "extra YAML schema files to register")

	cmd.AddCommand(
		newBenchCmd(opts),
		newSampleCmd(opts),
		newInspectCmd(opts),
		newServeCmd(opts),
		newConfigCmd(opts),
		newSchemaCmd(opts),
	)
	return cmd
}

func (o *rootOpts) init() error {
	logging.ConfigureRuntime()
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		if _, ok := logging.ParseLevel(o.logLevel); !ok {
			return fmt.Errorf("unknown log level %q", o.logLevel)
		}
		cfg.Log.Level = o.logLevel
	}
	if o.maxDepth != 0 {
		cfg.Codec.MaxDepth = o.maxDepth
		if err := config.Validate(cfg); err != nil {
			return err
		}
	}
	zerolog.SetGlobalLevel(cfg.LogLevel())
	o.cfg = cfg
	return nil
}

// registry loads the configured schemas followed by any --schemas files.
func (o *rootOpts) registry() (*schema.Registry, error) {
	reg, err := o.cfg.Registry()
	if err != nil {
		return nil, err
	}
	for _, path := range o.schemaFiles {
		if err := reg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
