package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"lanferry/config"
	"lanferry/internal/catalog"
	"lanferry/internal/registry"
	"lanferry/internal/transfer"
	"lanferry/internal/ui"
	"lanferry/pkg/env"
	"lanferry/pkg/logging"
)

// node bundles the wired-up components a command needs.
type node struct {
	cfg      *config.Config
	log      *logrus.Logger
	catalog  *catalog.Catalog
	registry *registry.Registry
	client   *transfer.Client
}

func setup(c *cli.Context) (*node, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	log := logging.NewLogger(c.Bool("debug"))

	if err := catalog.EnsureDirs(cfg.ServedDir, cfg.DownloadsDir); err != nil {
		return nil, err
	}

	reg, err := registry.Open(cfg.RegistryPath)
	if err != nil {
		return nil, err
	}

	return &node{
		cfg:      cfg,
		log:      log,
		catalog:  catalog.New(cfg.ServedDir),
		registry: reg,
		client:   transfer.NewClient(cfg, reg, log),
	}, nil
}

func (n *node) menu() *ui.Menu {
	return ui.NewMenu(n.catalog, n.registry, n.client, os.Stdin, os.Stdout)
}

func main() {
	env.LoadEnv()

	app := &cli.App{
		Name:  "lanferry",
		Usage: "share files with peers on the local network",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: env.GetEnv("LANFERRY_CONFIG", "."),
				Usage: "directory containing config.yaml",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "verbose logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "start",
				Usage: "serve local files and open the interactive menu",
				Action: func(c *cli.Context) error {
					n, err := setup(c)
					if err != nil {
						return err
					}
					defer n.registry.Close()

					server := transfer.NewServer(n.cfg, n.log)
					go func() {
						if err := server.ListenAndServe(); err != nil {
							n.log.WithError(err).Fatal("transfer server stopped")
						}
					}()

					n.menu().Run()
					return nil
				},
			},
			{
				Name:  "files",
				Usage: "list files available in the served directory",
				Action: func(c *cli.Context) error {
					n, err := setup(c)
					if err != nil {
						return err
					}
					defer n.registry.Close()
					return n.menu().ListFiles()
				},
			},
			{
				Name:  "peers",
				Usage: "list saved peers",
				Action: func(c *cli.Context) error {
					n, err := setup(c)
					if err != nil {
						return err
					}
					defer n.registry.Close()
					return n.menu().ListPeers()
				},
			},
			{
				Name:      "add-peer",
				Usage:     "save a peer address under a name",
				ArgsUsage: "<name> <host:port>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("usage: lanferry add-peer <name> <host:port>", 1)
					}
					n, err := setup(c)
					if err != nil {
						return err
					}
					defer n.registry.Close()

					if err := n.registry.Add(c.Args().Get(0), c.Args().Get(1)); err != nil {
						return err
					}
					fmt.Printf("Peer %q added.\n", c.Args().Get(0))
					return nil
				},
			},
			{
				Name:      "get",
				Usage:     "download a file from a peer and verify it",
				ArgsUsage: "<peer> <filename>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("usage: lanferry get <peer> <filename>", 1)
					}
					n, err := setup(c)
					if err != nil {
						return err
					}
					defer n.registry.Close()

					err = n.client.Fetch(c.Args().Get(0), c.Args().Get(1))
					switch {
					case err == nil:
						fmt.Printf("%q downloaded and verified successfully.\n", c.Args().Get(1))
						return nil
					case errors.Is(err, transfer.ErrNotFound):
						return cli.Exit(fmt.Sprintf("%q not found on peer", c.Args().Get(1)), 1)
					case errors.Is(err, transfer.ErrVerificationFailed):
						return cli.Exit("verification failed, corrupt download deleted", 1)
					default:
						return err
					}
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
