package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/glottolog/glottree/languoid"
	"github.com/glottolog/glottree/navigate"
	"github.com/glottolog/glottree/query"

	"github.com/scott-cotton/cli"
)

func writeNode(w io.Writer, n *languoid.Node) {
	fmt.Fprintf(w, "%s\t%s\t%s\n", n.ID, n.Level, n.Name)
}

func list(cfg *ListConfig, cc *cli.Context, args []string) error {
	args, err := cfg.List.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: list takes no arguments", cli.ErrUsage)
	}
	var f *query.Filter
	if strings.TrimSpace(cfg.Where) != "" {
		f, err = query.Compile(cfg.Where)
		if err != nil {
			return fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
	}
	r, err := cfg.open()
	if err != nil {
		return err
	}
	ns, err := r.Select(f)
	if err != nil {
		return err
	}
	for _, n := range ns {
		writeNode(cc.Out, n)
	}
	return nil
}

func nav(cfg *NavConfig, what string, cc *cli.Context, args []string) error {
	args, err := cfg.Nav.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: %s requires one languoid", cli.ErrUsage, what)
	}
	r, err := cfg.open()
	if err != nil {
		return err
	}
	n, err := r.ByCode(args[0])
	if err != nil {
		return err
	}
	var nm navigate.NodeMap = r.Tree()
	if cfg.Live {
		nm = nil
	}
	var ns []*languoid.Node
	switch what {
	case "ancestors":
		ns, err = r.Ancestors(n.ID, nm)
	case "siblings":
		ns, err = r.Siblings(n.ID, nm)
	default:
		for d, derr := range r.Descendants(n.ID, nm) {
			if derr != nil {
				return derr
			}
			writeNode(cc.Out, d)
		}
		return nil
	}
	if err != nil {
		return err
	}
	for _, n := range ns {
		writeNode(cc.Out, n)
	}
	return nil
}
