package main

import (
	"flag"
	"fmt"

	"github.com/example/scrollshot/internal/config"
)

type configCmd struct {
	*root
	fs     *flag.FlagSet
	action string
	path   string
}

func (c *configCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	c := &configCmd{root: r.subcommand("config")}
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	fs.Usage = usageFunc(c)
	c.fs = fs
	fs.StringVar(&c.path, "path", "", "config file written by save (default the loaded file or the user config path)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: c}
	}
	switch c.action = fs.Arg(0); c.action {
	case "print", "save":
	default:
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *configCmd) Run() error {
	cfg := c.cfg()
	if c.action == "print" {
		_, err := fmt.Fprint(c.out(), cfg.String())
		return err
	}
	path := c.path
	if path == "" {
		path = config.NewLoader(version, configPathOverride).GetConfigPath()
	}
	if path == "" {
		path = config.DefaultPath()
	}
	if err := config.Save(cfg, path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Fprintf(c.errOut(), "saved config to %s\n", path)
	return nil
}
