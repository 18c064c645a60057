// Command ixd is the engine's CLI entrypoint: a serve subcommand that runs
// the MCP stdio server, plus one-shot reindex/search/definitions/callers
// subcommands for scripting and debugging without going through MCP.
// Grounded on the teacher's cmd/lci/main.go: same urfave/cli/v2 app shape,
// the same --root/--include/--exclude flag overlay onto a loaded config,
// and the same signal-driven graceful shutdown around the server's Start.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/pustynsky/search-index-sub001/internal/config"
	"github.com/pustynsky/search-index-sub001/internal/mcprpc"
	"github.com/pustynsky/search-index-sub001/internal/query"
)

const appVersion = "0.1.0"

func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}

	cfg, err := config.Load(absRoot)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if inc := c.StringSlice("include"); len(inc) > 0 {
		cfg.Include = inc
	}
	if exc := c.StringSlice("exclude"); len(exc) > 0 {
		cfg.Exclude = append(cfg.Exclude, exc...)
	}
	return cfg, nil
}

func buildEngine(c *cli.Context) (*mcprpc.Engine, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, err
	}
	e := mcprpc.NewEngine(cfg)
	if err := e.BuildAll(); err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	return e, nil
}

func main() {
	app := &cli.App{
		Name:    "ixd",
		Usage:   "code search and indexing engine",
		Version: appVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "project root to index (default: cwd)"},
			&cli.StringSliceFlag{Name: "include", Usage: "include only files matching these glob patterns"},
			&cli.StringSliceFlag{Name: "exclude", Usage: "exclude files matching these glob patterns"},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the MCP stdio server",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfigWithOverrides(c)
					if err != nil {
						return err
					}
					e := mcprpc.NewEngine(cfg)
					e.StartAsync()
					if err := e.StartWatching(); err != nil {
						fmt.Fprintf(os.Stderr, "warning: filesystem watch disabled: %v\n", err)
					}
					defer e.Close()

					srv := mcprpc.NewServer(e, "ixd", appVersion)

					ctx, cancel := context.WithCancel(context.Background())
					defer cancel()
					sigCh := make(chan os.Signal, 1)
					signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

					errCh := make(chan error, 1)
					go func() { errCh <- srv.Run(ctx) }()

					select {
					case err := <-errCh:
						return err
					case <-sigCh:
						cancel()
						return <-errCh
					}
				},
			},
			{
				Name:  "reindex",
				Usage: "build the indices once and report counts",
				Action: func(c *cli.Context) error {
					e, err := buildEngine(c)
					if err != nil {
						return err
					}
					return printJSON(map[string]any{
						"contentFiles": e.Content.FileCount(),
						"definitions":  e.Def.Len(),
						"catalogFiles": e.Catalog.Len(),
					})
				},
			},
			{
				Name:      "search",
				Usage:     "run a one-shot search_grep-style query",
				ArgsUsage: "<term> [term...]",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return cli.Exit("search requires at least one term", 1)
					}
					e, err := buildEngine(c)
					if err != nil {
						return err
					}
					result, err := query.Grep(e.Content, query.GrepOptions{Terms: c.Args().Slice()})
					if err != nil {
						return err
					}
					return printJSON(result)
				},
			},
			{
				Name:      "definitions",
				Usage:     "look up declared symbols by name",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return cli.Exit("definitions requires a name", 1)
					}
					e, err := buildEngine(c)
					if err != nil {
						return err
					}
					matches, err := query.Definitions(e.Def, query.DefinitionOptions{Name: c.Args().First()})
					if err != nil {
						return err
					}
					return printJSON(matches)
				},
			},
			{
				Name:      "callers",
				Usage:     "walk the caller tree for a method",
				ArgsUsage: "<method>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "direction", Value: "up"},
					&cli.IntFlag{Name: "max-depth", Value: 3},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return cli.Exit("callers requires a method name", 1)
					}
					e, err := buildEngine(c)
					if err != nil {
						return err
					}
					tree, err := query.CallTree(e.Content, e.Def, query.CallersOptions{
						Method:    c.Args().First(),
						Direction: c.String("direction"),
						MaxDepth:  c.Int("max-depth"),
					})
					if err != nil {
						return err
					}
					return printJSON(tree)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
