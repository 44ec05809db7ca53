// Command importcsv loads the legacy CSV fixtures into the configured store.
// The directory comes from IMPORT_DIR unless given as the only argument.
//
//	importcsv [dir]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/yamdb/catalogue-api/internal/infrastructure/config"
	"github.com/yamdb/catalogue-api/internal/infrastructure/db"
	"github.com/yamdb/catalogue-api/internal/infrastructure/importer"
	"github.com/yamdb/catalogue-api/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "importcsv",
	})

	dir := cfg.ImportDir
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	if err := run(ctx, cfg, dir, log); err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}
}

func run(ctx context.Context, cfg *config.Config, dir string, log zerolog.Logger) error {
	if _, err := os.Stat(dir); err != nil {
		return err
	}

	store, err := db.Open(ctx, cfg, logger.Component("migrate"))
	if err != nil {
		return err
	}
	defer store.Close()

	im := importer.New(importer.Repositories{
		Users:      store.Users,
		Categories: store.Categories,
		Genres:     store.Genres,
		Titles:     store.Titles,
		Reviews:    store.Reviews,
		Comments:   store.Comments,
	}, logger.Component("importer"))

	report, err := im.Run(ctx, os.DirFS(dir))
	if err != nil {
		return err
	}

	files := make([]string, 0, len(report))
	for name := range report {
		files = append(files, name)
	}
	sort.Strings(files)

	var total importer.FileStats
	for _, name := range files {
		st := report[name]
		total.Inserted += st.Inserted
		total.Skipped += st.Skipped
		total.Failed += st.Failed
	}
	log.Info().
		Str("dir", dir).
		Strs("files", files).
		Int("inserted", total.Inserted).
		Int("skipped", total.Skipped).
		Int("failed", total.Failed).
		Msg("import finished")
	return nil
}
