package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
)

func checkRepo(cfg *CheckConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Check.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: check takes no arguments", cli.ErrUsage)
	}
	r, err := cfg.open()
	if err != nil {
		return err
	}
	problems := 0
	for _, err := range r.BuildErrors() {
		fmt.Fprintln(cc.Out, err)
		problems++
	}
	for _, v := range r.Violations() {
		fmt.Fprintln(cc.Out, v)
		problems++
	}
	if cfg.Lint {
		for _, w := range r.Lint() {
			fmt.Fprintf(cc.Out, "warning: %s\n", w)
		}
	}
	if problems > 0 {
		return fmt.Errorf("%d problems in %d languoids", problems, r.Tree().Len())
	}
	return nil
}
