package main

import (
	"io"
	"os"

	"github.com/glottolog/glottree"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	Repo    string `cli:"name=C desc='repository root (default .)'"`
	Color   bool   `cli:"name=color desc='output with color'"`
	Verbose bool   `cli:"name=v desc='log what is done'"`

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) open() (*glottree.Repo, error) {
	root := cfg.Repo
	if root == "" {
		root = "."
	}
	return glottree.OpenDir(root, glottree.WithLogger(newLog(cfg.Verbose)))
}

// colored reports whether output to w is colored: -color forces it either
// way, otherwise a terminal gets colors.
func (cfg *MainConfig) colored(w io.Writer) bool {
	if cfg.Color {
		return true
	}
	for _, opt := range cfg.Main.Opts {
		if opt.Name == "color" && opt.Value != nil {
			return false
		}
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

type Tree2LFFConfig struct {
	*MainConfig
	Root string `cli:"name=r desc='encode only the subtree of this languoid'"`

	Tree2LFF *cli.Command
}

type LFF2TreeConfig struct {
	*MainConfig
	DeleteOrphans bool `cli:"name=delete-orphans desc='delete languoids missing from the file'"`
	DryRun        bool `cli:"name=n desc='only decode and check the file'"`

	LFF2Tree *cli.Command
}

type CheckConfig struct {
	*MainConfig
	Lint bool `cli:"name=lint desc='also report curation warnings'"`

	Check *cli.Command
}

type ShowConfig struct {
	*MainConfig
	Max string `cli:"name=max desc='deepest level to show: family, language or dialect'"`

	Show *cli.Command
}

type NewickConfig struct {
	*MainConfig
	Max string `cli:"name=max desc='deepest level to include'"`

	Newick *cli.Command
}

type NavConfig struct {
	*MainConfig
	Live bool `cli:"name=live desc='read the store instead of the loaded tree'"`

	Nav *cli.Command
}

type ListConfig struct {
	*MainConfig
	Where string `cli:"name=where desc='expression selecting languoids'"`

	List *cli.Command
}

type DiffConfig struct {
	*MainConfig
	Context int  `cli:"name=U desc='lines of context (-1 for all)'"`
	Changes bool `cli:"name=changes desc='list languoid changes instead of lines'"`

	Diff *cli.Command
}

type EditConfig struct {
	*MainConfig

	Edit *cli.Command
}

type DeleteConfig struct {
	*MainConfig
	Cascade bool `cli:"name=cascade desc='delete the whole subtree'"`
	Lift    bool `cli:"name=lift desc='move children up to the parent'"`

	Delete *cli.Command
}
