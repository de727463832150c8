package main

import (
	"fmt"
	"strings"

	"treeorder/internal/config"
	"treeorder/internal/log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     *config.Config
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "treeorder",
		Short: "Custom ordering for folder trees",
		Long: `treeorder keeps a custom order for the files and folders of a vault.

Items can be moved with the arrow commands, dragged in the terminal or
desktop explorer, and the order follows files as they are created,
renamed and deleted.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, v)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/treeorder/config.yaml)")
	flags.String("vault", "", "vault directory")
	flags.String("store", "", "settings backend: yaml or sqlite")
	flags.String("settings-file", "", "settings file (default is <vault>/.treeorder/settings.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-format", "", "log format: text or json")
	flags.String("log-file", "", "write logs to a rotating file")

	v.SetEnvPrefix("TREEORDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, flag := range map[string]string{
		"vault":         "vault",
		"store":         "store",
		"settings_file": "settings-file",
		"log.level":     "log-level",
		"log.format":    "log-format",
		"log.file":      "log-file",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(
		newTreeCmd(),
		newMoveUpCmd(),
		newMoveDownCmd(),
		newMoveCmd(),
		newResetCmd(),
		newReconcileCmd(),
		newToggleCmd(),
		newSettingsCmd(),
		newConfigCmd(),
		newWatchCmd(),
		newTUICmd(),
		newGUICmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// loadConfig reads the config file, applies flag and TREEORDER_*
// environment overrides and configures logging.
func loadConfig(cmd *cobra.Command, v *viper.Viper) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadConfigFile(cfgFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), warningText(err.Error()))
		fmt.Fprintln(cmd.ErrOrStderr(), infoText("Using default settings. Run 'treeorder config init' to create a config file."))
		cfg = config.New()
	}

	if v.IsSet("vault") {
		cfg.Vault = v.GetString("vault")
	}
	if v.IsSet("store") {
		cfg.Store = v.GetString("store")
	}
	if v.IsSet("settings_file") {
		cfg.SettingsFile = v.GetString("settings_file")
	}
	if v.IsSet("log.level") {
		cfg.Log.Level = v.GetString("log.level")
	}
	if v.IsSet("log.format") {
		cfg.Log.Format = v.GetString("log.format")
	}
	if v.IsSet("log.file") {
		cfg.Log.File = v.GetString("log.file")
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := []log.Option{log.WithLevel(cfg.Log.Level), log.WithOutput(cmd.ErrOrStderr())}
	if strings.EqualFold(cfg.Log.Format, "json") {
		opts = append(opts, log.WithJSON())
	}
	if cfg.Log.File != "" {
		opts = append(opts, log.WithRotatingFile(cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups))
	}
	log.Configure(opts...)
	log.SetDebug(strings.EqualFold(cfg.Log.Level, "debug"))
	return nil
}
