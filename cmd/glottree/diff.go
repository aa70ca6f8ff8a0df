package main

import (
	"bytes"
	"fmt"

	"github.com/glottolog/glottree/lff"
	"github.com/glottolog/glottree/lffdiff"

	"github.com/scott-cotton/cli"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: diff requires one file argument", cli.ErrUsage)
	}
	d, err := readArg(cc, args[0])
	if err != nil {
		return err
	}
	r, err := cfg.open()
	if err != nil {
		return err
	}
	if cfg.Changes {
		t, err := r.DecodeFromLFF(bytes.NewReader(d), lff.DecodeCheck(false))
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		for _, c := range lffdiff.Changes(r.Tree(), t) {
			fmt.Fprintln(cc.Out, c)
		}
		return nil
	}
	var cur bytes.Buffer
	if err := r.EncodeToLFF(&cur); err != nil {
		return err
	}
	lines := lffdiff.Diff(cur.String(), string(d))
	if !lffdiff.Changed(lines) {
		return nil
	}
	opts := []lffdiff.WriteOption{lffdiff.WriteContext(cfg.Context)}
	if cfg.colored(cc.Out) {
		opts = append(opts, lffdiff.WriteColors(lffdiff.NewColors()))
	}
	if err := lffdiff.Write(cc.Out, lines, opts...); err != nil {
		return err
	}
	return cli.ExitCodeErr(1)
}
