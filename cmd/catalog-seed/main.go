// Command catalog-seed loads a JSON catalog of directors, genres and movies
// into the database read by the API server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/Clark-Hu/movie-catalog/internal/config"
	"github.com/Clark-Hu/movie-catalog/internal/repository"
	"github.com/Clark-Hu/movie-catalog/internal/store"
)

func main() {
	var (
		data    = flag.String("data", "catalog.json", "path to catalog data file")
		migrate = flag.Bool("migrate", true, "apply schema migrations before loading")
		timeout = flag.Duration("timeout", 30*time.Second, "overall time limit")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := log.New(os.Stdout, "[catalog-seed] ", log.LstdFlags)

	file, err := os.Open(*data)
	if err != nil {
		log.Fatalf("open catalog data: %v", err)
	}
	defer file.Close()

	catalog, err := repository.DecodeCatalog(file)
	if err != nil {
		log.Fatalf("parse catalog data: %v", err)
	}
	if err := catalog.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	st, err := store.New(ctx, cfg.DBURL, store.Options{
		MaxConns:    2,
		ConnTimeout: time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		LogQueries:  cfg.DBLogQueries,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer st.Close()

	if *migrate {
		if err := st.Migrate(); err != nil {
			log.Fatalf("migrate database: %v", err)
		}
	}

	if err := repository.New(st).Seed(ctx, catalog); err != nil {
		log.Fatalf("seed catalog: %v", err)
	}
	logger.Printf("loaded %d directors, %d genres, %d movies from %s",
		len(catalog.Directors), len(catalog.Genres), len(catalog.Movies), *data)
}
