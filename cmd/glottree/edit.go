package main

import (
	"fmt"

	"github.com/glottolog/glottree"
	"github.com/glottolog/glottree/languoid"

	"github.com/scott-cotton/cli"
)

var editArgs = map[string]int{
	"reparent": 2,
	"level":    2,
	"rename":   2,
	"patch":    2,
	"create":   3,
}

func edit(cfg *EditConfig, what string, cc *cli.Context, args []string) error {
	args, err := cfg.Edit.Parse(cc, args)
	if err != nil {
		return err
	}
	if want, ok := editArgs[what]; ok && len(args) != want {
		return fmt.Errorf("%w: %s requires %d arguments", cli.ErrUsage, what, want)
	}
	if what == "reorder" && len(args) < 2 {
		return fmt.Errorf("%w: reorder requires a parent and children", cli.ErrUsage)
	}
	r, err := cfg.open()
	if err != nil {
		return err
	}
	switch what {
	case "create":
		parent, err := parentArg(r, args[0])
		if err != nil {
			return err
		}
		lv, err := languoid.ParseLevel(args[2])
		if err != nil {
			return fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		n, err := r.Create(parent, args[1], lv)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cc.Out, n.ID)
		return err
	case "reorder":
		parent, err := parentArg(r, args[0])
		if err != nil {
			return err
		}
		return r.Reorder(parent, args[1:])
	}
	n, err := r.ByCode(args[0])
	if err != nil {
		return err
	}
	switch what {
	case "reparent":
		parent, err := parentArg(r, args[1])
		if err != nil {
			return err
		}
		return r.ProposeReparent(n.ID, parent)
	case "level":
		lv, err := languoid.ParseLevel(args[1])
		if err != nil {
			return fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		return r.ProposeLevelChange(n.ID, lv)
	case "rename":
		return r.Rename(n.ID, args[1])
	case "patch":
		return r.PatchAttrs(n.ID, []byte(args[1]))
	}
	return fmt.Errorf("%w: unknown edit %q", cli.ErrUsage, what)
}

func deleteLanguoid(cfg *DeleteConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Delete.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: delete requires one languoid", cli.ErrUsage)
	}
	policy := glottree.DeleteRefuse
	switch {
	case cfg.Cascade && cfg.Lift:
		return fmt.Errorf("%w: -cascade and -lift exclude each other", cli.ErrUsage)
	case cfg.Cascade:
		policy = glottree.DeleteCascade
	case cfg.Lift:
		policy = glottree.DeleteLift
	}
	r, err := cfg.open()
	if err != nil {
		return err
	}
	n, err := r.ByCode(args[0])
	if err != nil {
		return err
	}
	return r.Delete(n.ID, policy)
}
