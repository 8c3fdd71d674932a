package commands

import (
	"github.com/mosaicnetworks/metavote/src/config"
)

//CLIConfig contains configuration for the metavote commands
type CLIConfig struct {
	Metavote    config.Config `mapstructure:",squash"`
	Scenario    string        `mapstructure:"scenario"`
	Index       int           `mapstructure:"index"`
	ServiceAddr string        `mapstructure:"service-listen"`
}

//NewDefaultCLIConfig creates a CLIConfig with default values
func NewDefaultCLIConfig() *CLIConfig {
	return &CLIConfig{
		Metavote:    *config.NewDefaultConfig(),
		Scenario:    "",
		Index:       -1,
		ServiceAddr: "127.0.0.1:8000",
	}
}
