package main

import (
	"flag"
	"io"

	"github.com/zucenko/crowd/server"
)

type Options struct {
	ServerURL  string
	ConfigPath string
	LayoutPath string
}

func parseOptions(args []string, output io.Writer) (Options, error) {
	var o Options
	fs := flag.NewFlagSet("crowd", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&o.ServerURL, "server", "", "watch a remote session, e.g. ws://localhost:8080/watch")
	fs.StringVar(&o.ConfigPath, "config", "", "yaml or toml config for a local simulation")
	fs.StringVar(&o.LayoutPath, "layout", "", "wall layout for a local simulation")
	err := fs.Parse(args)
	return o, err
}

// Load opens the feed the window draws from.
func Load(o Options) (server.Feed, error) {
	return server.OpenFeed(o.ServerURL, o.ConfigPath, o.LayoutPath)
}
