// relicsctl inspects and migrates the content collections of a relics
// server without going through HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/jrramp/arecheoedu/internal/config"
	"github.com/jrramp/arecheoedu/internal/logging"
	"github.com/jrramp/arecheoedu/internal/models"
	"github.com/jrramp/arecheoedu/internal/services"
	"github.com/jrramp/arecheoedu/internal/storage"
)

const usage = "expected one of 'export', 'import', 'seed' or 'config' subcommands"

var errUsage = errors.New(usage)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "config.yaml", "path to config file")
	collection := fs.String("collection", models.CollectionPresentations, "collection to operate on (presentations or quizzes)")
	file := fs.String("file", "", "JSON file to import")

	switch args[0] {
	case "export", "import", "seed", "config":
	default:
		return errUsage
	}

	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}

	if args[0] == "config" {
		enc := yaml.NewEncoder(stdout)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}

	log := logging.New(cfg.LogLevel, "console", stderr)

	backend, err := storage.Open(ctx, cfg.StorageOptions(), log)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer backend.Close()

	if d, ok := backend.(storage.DirEnsurer); ok {
		if err := d.EnsureDir(); err != nil {
			return err
		}
	}

	switch args[0] {
	case "export":
		return doExport(ctx, backend, *collection, stdout, log)
	case "import":
		if *file == "" {
			fs.PrintDefaults()
			return fmt.Errorf("import needs --file")
		}
		return doImport(ctx, backend, *collection, *file, log)
	default:
		storage.Bootstrap(ctx, backend, storage.DefaultSeeds(cfg.Storage.SeedDirectory()), log)
		return nil
	}
}

func loadConfig(path string) (config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return config.Config{}, err
	}

	parts, err := config.ProcessConfigPath(path)
	if err != nil {
		return config.Config{}, err
	}

	cfg, err := config.NewFileSystemLoader().Load(parts.FileName, parts.Path, config.DefaultEnvPrefix, config.NewDefaultEnvBinder())
	if err != nil {
		return config.Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func doExport(ctx context.Context, backend storage.Backend, collection string, out io.Writer, log zerolog.Logger) error {
	var value interface{}

	switch collection {
	case models.CollectionPresentations:
		value = storage.NewPresentations(backend, log, nil).Load(ctx)
	case models.CollectionQuizzes:
		value = storage.NewQuizzes(backend, log, nil).Load(ctx)
	default:
		return fmt.Errorf("unknown collection %q", collection)
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", collection, err)
	}

	_, err = fmt.Fprintln(out, string(data))

	return err
}

// doImport validates the file and replaces the whole collection with it.
func doImport(ctx context.Context, backend storage.Backend, collection, file string, log zerolog.Logger) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}

	service := services.NewContentService(
		storage.NewPresentations(backend, log, nil),
		storage.NewQuizzes(backend, log, nil),
		nil,
		log,
	)

	switch collection {
	case models.CollectionPresentations:
		var ps models.Presentations
		if err := json.Unmarshal(data, &ps); err != nil {
			return fmt.Errorf("decoding %s: %w", file, err)
		}
		if err := ps.Validate(); err != nil {
			return fmt.Errorf("invalid presentations: %w", err)
		}
		err = service.ReplacePresentations(ctx, ps)
	case models.CollectionQuizzes:
		var quizzes models.QuizMap
		if err := json.Unmarshal(data, &quizzes); err != nil {
			return fmt.Errorf("decoding %s: %w", file, err)
		}
		if err := quizzes.Validate(); err != nil {
			return fmt.Errorf("invalid quizzes: %w", err)
		}
		err = service.ReplaceQuizzes(ctx, quizzes)
	default:
		return fmt.Errorf("unknown collection %q", collection)
	}

	if err != nil {
		return err
	}

	log.Info().Str("collection", collection).Str("file", file).Msg("imported")

	return nil
}
