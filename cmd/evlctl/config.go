package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/evlctl/internal/config"
)

type options struct {
	configPath string
	ip         string
	port       int
	password   string
	set        map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("evlctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "evlctl.toml", "config file path")
	fs.StringVar(&opts.ip, "ip", "", "panel address, overrides config ip")
	fs.IntVar(&opts.port, "port", 0, "panel TPI port, overrides config port")
	fs.StringVar(&opts.password, "password", "", "panel password, overrides config and env")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	opts.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// loadConfig reads the config file and lets explicit flags win over it.
func loadConfig(opts options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.set["ip"] {
		cfg.IP = strings.TrimSpace(opts.ip)
	}
	if opts.set["port"] {
		cfg.Port = opts.port
	}
	if opts.set["password"] {
		cfg.Password = opts.password
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
