package main

import (
	"fmt"

	"github.com/glottolog/glottree/asciitree"
	"github.com/glottolog/glottree/newick"

	"github.com/scott-cotton/cli"
)

func show(cfg *ShowConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Show.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: show requires one languoid", cli.ErrUsage)
	}
	lv, err := maxLevel(cfg.Max)
	if err != nil {
		return err
	}
	r, err := cfg.open()
	if err != nil {
		return err
	}
	n, err := r.ByCode(args[0])
	if err != nil {
		return err
	}
	o := asciitree.Options{MaxLevel: lv}
	if cfg.colored(cc.Out) {
		o.Colors = asciitree.NewColors()
	}
	return asciitree.Render(cc.Out, r.Tree(), n.ID, o)
}

func newickTree(cfg *NewickConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Newick.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: newick takes at most one languoid", cli.ErrUsage)
	}
	lv, err := maxLevel(cfg.Max)
	if err != nil {
		return err
	}
	r, err := cfg.open()
	if err != nil {
		return err
	}
	o := newick.Options{MaxLevel: lv}
	if len(args) == 0 {
		_, err = fmt.Fprintln(cc.Out, newick.Forest(r.Tree(), o))
		return err
	}
	n, err := r.ByCode(args[0])
	if err != nil {
		return err
	}
	s, err := newick.Tree(r.Tree(), n.ID, o)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cc.Out, s)
	return err
}
