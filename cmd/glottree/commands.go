package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, &cli.Opt{
		Name:        "o",
		Description: "output file (default stdout)",
		Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
	})
	return cli.NewCommandAt(&cfg.Main, "glottree").
		WithSynopsis("glottree [-C repo] [opts] command [opts]").
		WithDescription("glottree curates a languoid classification stored as a directory tree.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return gtMain(cfg, cc, args)
		}).
		WithSubs(
			Tree2LFFCommand(cfg),
			LFF2TreeCommand(cfg),
			CheckCommand(cfg),
			ShowCommand(cfg),
			NewickCommand(cfg),
			NavCommand(cfg, "ancestors", "a"),
			NavCommand(cfg, "descendants", "d"),
			NavCommand(cfg, "siblings", "s"),
			ListCommand(cfg),
			DiffCommand(cfg),
			EditCommand(cfg, "reparent", "reparent <id> <parent|->", "move a languoid below another, or to the top level with -"),
			EditCommand(cfg, "level", "level <id> <family|language|dialect>", "change the level of a languoid"),
			EditCommand(cfg, "rename", "rename <id> <name>", "rename a languoid"),
			EditCommand(cfg, "patch", "patch <id> <json>", "patch the record of a languoid with a JSON merge patch or JSON Patch"),
			EditCommand(cfg, "create", "create <parent|-> <name> <level>", "create a languoid with a new glottocode"),
			EditCommand(cfg, "reorder", "reorder <parent|-> <id>...", "set the display order of children"),
			DeleteCommand(cfg))
}

func Tree2LFFCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &Tree2LFFConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Tree2LFF, "tree2lff").
		WithAliases("export").
		WithSynopsis("tree2lff [-r id]").
		WithDescription("write the classification in languoid flat format").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return tree2lff(cfg, cc, args)
		})
}

func LFF2TreeCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &LFF2TreeConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.LFF2Tree, "lff2tree").
		WithAliases("import").
		WithSynopsis("lff2tree [-delete-orphans] [-n] <file|->").
		WithDescription("make the tree directory hold the classification of an LFF file").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return lff2tree(cfg, cc, args)
		})
}

func CheckCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &CheckConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Check, "check").
		WithSynopsis("check [-lint]").
		WithDescription("report unreadable records and invariant violations").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return checkRepo(cfg, cc, args)
		})
}

func ShowCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ShowConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Show, "show").
		WithSynopsis("show [-max level] <id|code>").
		WithDescription("draw a languoid in its classification").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return show(cfg, cc, args)
		})
}

func NewickCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &NewickConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Newick, "newick").
		WithSynopsis("newick [-max level] [id|code]").
		WithDescription("write a subtree, or every top-level languoid, in Newick format").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return newickTree(cfg, cc, args)
		})
}

func NavCommand(mainCfg *MainConfig, name, alias string) *cli.Command {
	cfg := &NavConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Nav, name).
		WithAliases(alias).
		WithSynopsis(name + " [-live] <id|code>").
		WithDescription("list the " + name + " of a languoid").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return nav(cfg, name, cc, args)
		})
}

func ListCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ListConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.List, "list").
		WithAliases("l").
		WithSynopsis("list [-where expr]").
		WithDescription(listDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return list(cfg, cc, args)
		})
}

const listDescription = `list languoids in pre-order, optionally filtered.

The filter is an expression over the fields

  id, name, level, depth, parent, ancestors, isolate, children, attrs

where attrs holds the record sections, for example

  list -where 'level == "language" && attrs.core["iso639-3"] != ""'
  list -where 'parent == "indo1319" && children > 0'

and the functions slug(name) and validcode(id) are available.`

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg, Context: 2}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Diff, "diff").
		WithSynopsis("diff [-U n] [-changes] <file|->").
		WithDescription("compare the classification with an LFF file").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
}

func EditCommand(mainCfg *MainConfig, name, synopsis, desc string) *cli.Command {
	cfg := &EditConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Edit, name).
		WithSynopsis(synopsis).
		WithDescription(desc).
		WithRun(func(cc *cli.Context, args []string) error {
			return edit(cfg, name, cc, args)
		})
}

func DeleteCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DeleteConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Delete, "delete").
		WithAliases("rm").
		WithSynopsis("delete [-cascade|-lift] <id>").
		WithDescription("delete a languoid; without a flag only leaves can be deleted").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return deleteLanguoid(cfg, cc, args)
		})
}
