package main

import (
	"bytes"
	"fmt"

	"github.com/glottolog/glottree"

	"github.com/scott-cotton/cli"
)

func tree2lff(cfg *Tree2LFFConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Tree2LFF.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: tree2lff takes no arguments", cli.ErrUsage)
	}
	r, err := cfg.open()
	if err != nil {
		return err
	}
	if cfg.Root == "" {
		return r.EncodeToLFF(cc.Out)
	}
	n, err := r.ByCode(cfg.Root)
	if err != nil {
		return err
	}
	return r.EncodeSubtreeToLFF(n.ID, cc.Out)
}

func lff2tree(cfg *LFF2TreeConfig, cc *cli.Context, args []string) error {
	args, err := cfg.LFF2Tree.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: lff2tree requires one file argument", cli.ErrUsage)
	}
	d, err := readArg(cc, args[0])
	if err != nil {
		return err
	}
	r, err := cfg.open()
	if err != nil {
		return err
	}
	t, err := r.DecodeFromLFF(bytes.NewReader(d))
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	if cfg.DryRun {
		fmt.Fprintf(cc.Out, "%s: %d languoids, no problems\n", args[0], t.Len())
		return nil
	}
	policy := glottree.OrphanRefuse
	if cfg.DeleteOrphans {
		policy = glottree.OrphanDelete
	}
	return r.ApplyLFF(t, policy)
}
