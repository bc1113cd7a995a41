// Command pagectl renders, tags and places pages locally without a datastore.
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Globals are shared by every subcommand.
type Globals struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	out io.Writer
}

type CLI struct {
	Globals

	Render RenderCmd `cmd:"" help:"Render stored page data to HTML"`
	Tags   TagsCmd   `cmd:"" help:"Print freshness tags for update text"`
	Slug   SlugCmd   `cmd:"" help:"Print the slug and file path a page would get"`
}

// AfterApply runs after flag parsing.
func (g *Globals) AfterApply() error {
	level := zerolog.InfoLevel
	if g.Verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
	return nil
}

func newParser(cli *CLI, out io.Writer) (*kong.Kong, error) {
	cli.out = out
	return kong.New(cli,
		kong.Name("pagectl"),
		kong.Description("Local tooling for generated discovery pages."),
		kong.UsageOnError(),
		kong.Bind(&cli.Globals),
	)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli, os.Stdout)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	parser.FatalIfErrorf(ctx.Run())
}
