package main

import (
	"context"
	"errors"
	"github.com/ZilDuck/nft-marketplace/internal/config"
	"github.com/ZilDuck/nft-marketplace/internal/config/di"
	"github.com/ZilDuck/nft-marketplace/internal/elastic_search"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var container *di.Container

func main() {
	config.Init()

	c, err := di.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}

	if err := run(c, os.Args); err != nil {
		zap.L().With(zap.Error(err)).Error("marketd failed")
		os.Exit(1)
	}
}

// run executes the command line against c and closes c whatever the outcome.
func run(c *di.Container, args []string) error {
	container = c
	defer func() {
		if err := container.Delete(); err != nil {
			zap.L().With(zap.Error(err)).Error("Failed to close container")
		}
	}()

	return newApp().Run(args)
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "marketd",
		Usage: "NFT marketplace ledger",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the marketplace API",
				Action: serve,
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the listing search index from the listing table",
				Action: reindex,
			},
			{
				Name:   "mappings",
				Usage:  "Install the search index mappings",
				Action: mappings,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "reset", Value: false, Usage: "Drop existing indices first"},
				},
			},
		},
	}
}

func serve(c *cli.Context) error {
	container.Wire()

	if active, err := container.GetMarketplace().FetchActive(c.Context); err == nil {
		container.GetMetrics().SetActive(len(active))
	}

	srv := &http.Server{
		Addr:              ":" + config.Get().ApiPort,
		Handler:           container.GetApi().Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		zap.L().Info("marketd: Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			zap.L().With(zap.Error(err)).Error("marketd: Shutdown failed")
		}
	}()

	zap.L().Info("Serving marketplace on :" + config.Get().ApiPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func reindex(c *cli.Context) error {
	indexer := container.GetMarketplaceIndexer()
	if indexer == nil {
		return elastic_search.ErrNoClient
	}

	listings, err := container.GetListingRepo().GetAll(c.Context)
	if err != nil {
		return err
	}

	count, err := indexer.Reindex(listings)
	if err != nil {
		return err
	}

	zap.L().With(zap.Int("listings", count)).Info("marketd: Reindexed listings")

	return nil
}

func mappings(c *cli.Context) error {
	elastic := container.GetElastic()
	if elastic == nil {
		return elastic_search.ErrNoClient
	}

	return elastic.InstallMappings(c.Bool("reset"))
}
