package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var _config = NewDefaultCLIConfig()

//RootCmd is the root command for metavote
var RootCmd = &cobra.Command{
	Use:              "metavote",
	Short:            "meta-election replay and inspection tools",
	TraverseChildren: true,
}

func init() {
	RootCmd.PersistentFlags().String("datadir", _config.Metavote.DataDir, "Top-level directory for configuration and data")
	RootCmd.PersistentFlags().String("log", _config.Metavote.LogLevel, "debug, info, warn, error, fatal, panic")
	RootCmd.PersistentFlags().String("log-file", _config.Metavote.LogFile, "Also write logs to this file")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if err := bindFlagsLoadViper(cmd); err != nil {
		return err
	}

	// If --datadir was explicitely set, but not --dump-dir, this will update
	// the default dump dir to be inside the new datadir
	_config.Metavote.SetDataDir(_config.Metavote.DataDir)

	logFields := logrus.Fields{
		"metavote.DataDir":       _config.Metavote.DataDir,
		"metavote.LogLevel":      _config.Metavote.LogLevel,
		"metavote.LogFile":       _config.Metavote.LogFile,
		"metavote.Dump":          _config.Metavote.Dump,
		"metavote.CacheSize":     _config.Metavote.CacheSize,
		"metavote.ConsensusMode": _config.Metavote.ConsensusMode,
		"Scenario":               _config.Scenario,
	}

	if _config.Metavote.Dump {
		logFields["metavote.DumpDir"] = _config.Metavote.DumpDir
	}

	_config.Metavote.Logger().WithFields(logFields).Debug("Config")

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := viper.BindPFlags(cmd.InheritedFlags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/metavote.toml (.json, .yaml also work)
	viper.SetConfigName("metavote")
	viper.AddConfigPath(_config.Metavote.DataDir)

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_config.Metavote.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Metavote.Logger().Debugf("No config file found in: %s", _config.Metavote.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	return viper.Unmarshal(_config)
}
