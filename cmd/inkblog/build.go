package main

import (
	"inkblog/internal/build"
)

type BuildCmd struct {
	Output string `short:"o" help:"Override build.public_dir"`
	Drafts bool   `help:"Include draft posts"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Build.PublicDir = b.Output
	}
	if b.Drafts {
		cfg.Build.IncludeDraft = true
	}

	builder := &build.Builder{Cfg: cfg, Logger: g.Logger}
	res, err := builder.Run(g.Ctx)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		g.Logger.Warn("ingest", "path", w.Path, "msg", w.Msg)
	}
	return nil
}
