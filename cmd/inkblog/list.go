package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"inkblog/internal/app"
	"inkblog/internal/domain/content"
)

type ListCmd struct {
	Tag string `short:"t" help:"Only list posts carrying this tag"`

	out io.Writer `kong:"-"`
}

func (l *ListCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	blog, err := app.Open(app.Options{Config: cfg, Logger: g.Logger})
	if err != nil {
		return err
	}
	defer blog.Close()

	res, err := blog.Reload(g.Ctx)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		g.Logger.Warn("ingest", "path", w.Path, "msg", w.Msg)
	}

	out := l.out
	if out == nil {
		out = os.Stdout
	}
	return writeList(out, blog.Posts(), l.Tag)
}

func writeList(w io.Writer, posts []content.PostMeta, tag string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, p := range posts {
		if tag != "" && !p.HasTag(tag) {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Published.Display(), p.Slug, p.Title, strings.Join(p.Tags, ","))
	}
	return tw.Flush()
}
