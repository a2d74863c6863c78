package main

import "github.com/BurntSushi/toml"

// fileConfig is the optional -config file's shape: every field mirrors a
// flag, and a value set on the command line always wins over the file
// (a file value is applied only to a flag not given explicitly).
type fileConfig struct {
	Workers int  `toml:"workers"`
	Verbose bool `toml:"verbose"`
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	_, err := toml.DecodeFile(path, &cfg)
	return cfg, err
}
