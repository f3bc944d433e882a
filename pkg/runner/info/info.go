package info

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"

	"tableflip.dev/tradelog/pkg/config"
	"tableflip.dev/tradelog/pkg/remote"
)

type Info struct {
	Config *config.Config
	Remote remote.Service
}

func (n *Info) Do(ctx context.Context) error {
	out := color.Output
	if override := os.Getenv(config.ConfigPathEnv); override != "" {
		_, _ = fmt.Fprintln(out, config.ConfigPathEnv, "found on env, using", override)
	} else {
		_, _ = fmt.Fprintln(out, config.ConfigPathEnv, "env var not set")
	}

	if n.Config == nil {
		var err error
		n.Config, err = config.Load()
		if err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintln(out, "Config.server: ", n.Config.Server)
	_, _ = fmt.Fprintln(out, "Config.timeout:", n.Config.Timeout)
	_, _ = fmt.Fprintln(out, "Config.listen: ", n.Config.Listen)
	_, _ = fmt.Fprintln(out, "Config.path:   ", n.Config.BasePath())

	if n.Remote == nil {
		return fmt.Errorf("no journal server client")
	}

	groups, err := n.Remote.List(ctx)
	if err != nil {
		_, _ = color.New(color.FgRed).Fprintf(out, "Server unreachable: %v\n", err)
		return nil
	}
	count := 0
	for _, ops := range groups {
		count += len(ops)
	}
	_, _ = fmt.Fprintf(out, "Server reachable: %d operations in %d expirations\n", count, len(groups))
	return nil
}
