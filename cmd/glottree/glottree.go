package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/glottolog/glottree"
	"github.com/glottolog/glottree/languoid"

	"github.com/scott-cotton/cli"
)

func gtMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	defer func() {
		if cfg.CloseOut != nil {
			cfg.CloseOut()
		}
	}()
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

func (cfg *MainConfig) outOpt(cc *cli.Context, a string) (any, error) {
	cfg.Out = a
	if a == "-" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	cc.Out = f
	cfg.CloseOut = f.Close
	return nil, nil
}

// readArg reads the file named by arg, or the command input for "-".
func readArg(cc *cli.Context, arg string) ([]byte, error) {
	if arg == "-" {
		return io.ReadAll(cc.In)
	}
	d, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("could not read %q: %w", arg, err)
	}
	return d, nil
}

// parentArg maps "-" to the top level.
func parentArg(r *glottree.Repo, arg string) (string, error) {
	if arg == "-" || arg == "" {
		return "", nil
	}
	n, err := r.ByCode(arg)
	if err != nil {
		return "", err
	}
	return n.ID, nil
}

func maxLevel(s string) (languoid.Level, error) {
	if s == "" {
		return languoid.NoLevel, nil
	}
	lv, err := languoid.ParseLevel(s)
	if err != nil {
		return languoid.NoLevel, fmt.Errorf("%w: -max: %w", cli.ErrUsage, err)
	}
	return lv, nil
}
