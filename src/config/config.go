package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/mosaicnetworks/metavote/src/common"
	"github.com/mosaicnetworks/metavote/src/observation"
)

// Default filenames.
const (
	// DefaultDumpFile is the default name of the folder containing the Badger
	// database of snapshots
	DefaultDumpFile = "dump_db"

	// DefaultScenarioFile is the default name of the replay scenario
	DefaultScenarioFile = "scenario.json"
)

// Default configuration values.
const (
	DefaultLogLevel      = "debug"
	DefaultLogFile       = ""
	DefaultDump          = false
	DefaultCacheSize     = 100
	DefaultConsensusMode = "supermajority"
)

// Config contains all the configuration properties of a metavote run.
type Config struct {
	// DataDir is the top-level directory containing configuration, peers.json
	// and dumps.
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogFile, if set, receives a copy of every log line.
	LogFile string `mapstructure:"log-file"`

	// Dump activates persistent storage of election snapshots.
	Dump bool `mapstructure:"dump"`

	// DumpDir is the directory of the snapshot database.
	DumpDir string `mapstructure:"dump-dir"`

	// CacheSize is the number of snapshots kept in memory.
	CacheSize int `mapstructure:"cache-size"`

	// ConsensusMode is either "supermajority" or "single". It can be
	// overridden by scenarios.
	ConsensusMode string `mapstructure:"consensus"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:       DefaultDataDir(),
		LogLevel:      DefaultLogLevel,
		LogFile:       DefaultLogFile,
		Dump:          DefaultDump,
		DumpDir:       DefaultDumpDir(),
		CacheSize:     DefaultCacheSize,
		ConsensusMode: DefaultConsensusMode,
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t, level)
	return config
}

// SetDataDir sets the top-level directory, and updates the dump directory if
// it is currently set to the default value. If the dump directory is not
// currently the default, it means the user has explicitely set it to something
// else, so avoid changing it again here.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.DumpDir == DefaultDumpDir() {
		c.DumpDir = filepath.Join(dataDir, DefaultDumpFile)
	}
}

// ScenarioFile returns the default path of the replay scenario.
func (c *Config) ScenarioFile() string {
	return filepath.Join(c.DataDir, DefaultScenarioFile)
}

// Mode parses ConsensusMode.
func (c *Config) Mode() (observation.ConsensusMode, error) {
	return observation.ParseConsensusMode(c.ConsensusMode)
}

// Logger returns a formatted logrus Entry, with prefix set to "metavote".
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)
		if c.LogFile != "" {
			c.logger.Hooks.Add(lfshook.NewHook(
				c.LogFile,
				&logrus.JSONFormatter{},
			))
		}
	}
	return c.logger.WithField("prefix", "metavote")
}

// DefaultDumpDir returns the default path for the snapshot database.
func DefaultDumpDir() string {
	return filepath.Join(DefaultDataDir(), DefaultDumpFile)
}

// DefaultDataDir return the default directory name for top-level metavote
// config based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Metavote")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Metavote")
		} else {
			return filepath.Join(home, ".metavote")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
