package store

import (
	"fmt"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/shiwake/pkg/worktime"
)

// Config supplies everything the editor needs from the environment: where
// the local cache lives, where the remote achievement store is, and who is
// editing.
type Config interface {
	BasePath() string
	APIBase() string
	EmployeeID() string
	WorkTimeDefaults() worktime.Defaults
}

// LoadConfig reads the .shiwake config file (current directory, home
// directory, or the directory named by SHIWAKE_CONFIG_PATH) merged with
// SHIWAKE_* environment variables.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetDefault("path", "~/.shiwake.db")
	v.SetDefault("api", "http://localhost:8099")
	v.SetConfigName(".shiwake") // .yaml is implicit
	v.SetEnvPrefix("SHIWAKE")
	v.AutomaticEnv()

	if override := v.GetString("config_path"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	v.AddConfigPath("$HOME")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("store: read config: %w", err)
		}
	}

	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("store: expand cache path: %w", err)
	}

	defaults := worktime.ParseDefaults(v.GetStringMapString("worktimes"))
	if defaults == nil {
		defaults = worktime.StandardDefaults
	}

	return &fileConfig{
		Path:     path,
		API:      v.GetString("api"),
		Employee: v.GetString("employee"),
		Defaults: defaults,
	}, nil
}

type fileConfig struct {
	Path     string
	API      string
	Employee string
	Defaults worktime.Defaults
}

func (f *fileConfig) BasePath() string                    { return f.Path }
func (f *fileConfig) APIBase() string                     { return f.API }
func (f *fileConfig) EmployeeID() string                  { return f.Employee }
func (f *fileConfig) WorkTimeDefaults() worktime.Defaults { return f.Defaults }

// StaticConfig is a fixed-value Config for tests and the mockapi command.
type StaticConfig struct {
	Path     string
	API      string
	Employee string
	Defaults worktime.Defaults
}

func (s StaticConfig) BasePath() string   { return s.Path }
func (s StaticConfig) APIBase() string    { return s.API }
func (s StaticConfig) EmployeeID() string { return s.Employee }

func (s StaticConfig) WorkTimeDefaults() worktime.Defaults {
	if s.Defaults == nil {
		return worktime.StandardDefaults
	}
	return s.Defaults
}
