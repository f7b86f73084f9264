package main

import (
	"inkblog/internal/serve"
)

type ServeCmd struct {
	Addr   string `short:"a" help:"Override serve.addr"`
	Drafts bool   `help:"Include draft posts" default:"true" negatable:""`
}

func (c *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Serve.Addr = c.Addr
	}
	cfg.Build.IncludeDraft = c.Drafts

	s, err := serve.New(serve.Options{Config: cfg, Logger: g.Logger})
	if err != nil {
		return err
	}
	defer s.Close()

	return s.ListenAndServe(g.Ctx, cfg.Serve.Addr)
}
