package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdcore "github.com/projecteru2/blkinfo/cmd/core"
	cmddevice "github.com/projecteru2/blkinfo/cmd/device"
	cmdothers "github.com/projecteru2/blkinfo/cmd/others"
	"github.com/projecteru2/blkinfo/config"
	"github.com/projecteru2/blkinfo/version"
)

var (
	cfgFile string
	conf    *config.Config
)

var rootCmd = func() *cobra.Command {
	confProvider := func() *config.Config { return conf }
	devices := cmddevice.Handler{BaseHandler: cmdcore.BaseHandler{ConfProvider: confProvider}}

	cmd := &cobra.Command{
		Use:   "blkinfo DEVICE",
		Short: "Print the lsblk record of a block device as JSON",
		Example: "  blkinfo sda\n" +
			"  blkinfo query list   # a device named like a subcommand",
		Version: version.VERSION,
		Args:    cobra.ExactArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Arguments are valid by now; later failures are not usage errors.
			cmd.SilenceUsage = true
			return initConfig(cmdcore.CommandContext(cmd))
		},
		RunE: devices.Query,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	viper.SetEnvPrefix("BLKINFO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindEnv("command")

	for _, c := range cmddevice.Commands(devices) {
		cmd.AddCommand(c)
	}
	for _, c := range cmdothers.Commands(cmdothers.Handler{}) {
		cmd.AddCommand(c)
	}

	return cmd
}()

func initConfig(ctx context.Context) error {
	conf = config.DefaultConfig()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	if err := viper.Unmarshal(conf); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	conf.Normalize()

	return log.SetupLog(ctx, &conf.Log, "")
}

// Execute is the main entry point called from main.go.
func Execute() error {
	ctx, cancel := newCommandContext()
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}
