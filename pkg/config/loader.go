package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/kkyr/fig"
	"github.com/spf13/pflag"
)

const (
	EnvPrefix = "CAMREADER"
	FileName  = "camreader.yaml"
)

// Dirs returns the directories searched for the configuration file.
// The path param specifies a custom directory or file.
func Dirs(path string) []string {
	if path != "" {
		return []string{path}
	}
	dirs := []string{".", "configs", "../../configs"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".camreader"))
	}
	return dirs
}

// Load reads the configuration file over the defaults.
// Reads and puts environment variables with the prefix CAMREADER_,
// params from the config should be in uppercase separated with _.
// A missing file leaves the defaults with only the environment applied.
func Load(path string) (*Config, error) {
	conf := Default()
	err := LoadConfig(&conf, path)
	if errors.Is(err, fig.ErrFileNotFound) {
		err = fig.Load(&conf, fig.IgnoreFile(), fig.UseEnv(EnvPrefix))
	}
	if err != nil {
		return nil, err
	}
	return &conf, nil
}

// LoadConfig loads a configuration file into the given struct.
func LoadConfig(config any, path string) error {
	name, dirs := FileName, Dirs(path)
	if path != "" && filepath.Ext(path) != "" {
		name, dirs = filepath.Base(path), []string{filepath.Dir(path)}
	}
	return fig.Load(config, fig.File(name), fig.Dirs(dirs...), fig.UseEnv(EnvPrefix))
}

// Locate returns the configuration file Load would read or "".
func Locate(path string) string {
	name, dirs := FileName, Dirs(path)
	if path != "" && filepath.Ext(path) != "" {
		name, dirs = filepath.Base(path), []string{filepath.Dir(path)}
	}
	for _, dir := range dirs {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// PathFromArgs picks the --conf value out of args before the other flags
// are known.
func PathFromArgs(args []string) string {
	fs := pflag.NewFlagSet("conf", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	path := fs.StringP("conf", "c", "", "Set custom configuration file path")
	_ = fs.Parse(args)
	return *path
}
