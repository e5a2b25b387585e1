package cli

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"ability-lst/internal/ability"
	"ability-lst/internal/catalog"
	"ability-lst/internal/catalog/postgres"
	"ability-lst/internal/catalog/sqlite"
	"ability-lst/internal/collection"
	"ability-lst/internal/config"
	"ability-lst/internal/parser"
	"ability-lst/internal/vocab"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by every command of one run.
type app struct {
	systemFlag   string
	verbose      bool
	defaultsPath string
	vocabPath    string

	cfg     *config.Config
	system  ability.RuleSystem
	dataDir string
	vocab   *vocab.Vocabulary
	storage collection.Storage
}

func newRootCmd() *cobra.Command {
	a := &app{storage: collection.FileStorage{}}

	root := &cobra.Command{
		Use:   "abilitylst",
		Short: "Create, edit and patch PCGen ability .lst files",
		Long: `Reads and writes the feats, traits and GM awards of PCGen ability .lst files
for Pathfinder 1e, D&D 3.5e and D&D 5e, writes .MOD patch lines against
abilities defined in other sources and keeps .pcc manifests in step.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.configure()
		},
	}

	root.PersistentFlags().StringVarP(&a.systemFlag, "system", "s", "", "Rule system: pf1e, 35e or 5e")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output")
	root.PersistentFlags().StringVar(&a.defaultsPath, "defaults", defaultDefaultsPath(), "File holding remembered defaults")
	root.PersistentFlags().StringVar(&a.vocabPath, "vocab", "", "YAML vocabulary replacing the built-in one")

	root.AddCommand(parseCmd(a))
	root.AddCommand(renderCmd(a))
	root.AddCommand(normalizeCmd(a))
	root.AddCommand(addCmd(a))
	root.AddCommand(removeCmd(a))
	root.AddCommand(modCmd(a))
	root.AddCommand(aspectCmd(a))
	root.AddCommand(vocabCmd(a))
	root.AddCommand(pccCmd(a))
	root.AddCommand(configCmd(a))
	root.AddCommand(indexCmd(a))
	root.AddCommand(lookupCmd(a))
	root.AddCommand(graphCmd(a))
	root.AddCommand(similarCmd(a))
	root.AddCommand(historyCmd(a))

	return root
}

func defaultDefaultsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".abilitylst.env"
	}
	return filepath.Join(dir, "abilitylst", "defaults.env")
}

// configure loads configuration. The rule system comes from --system, then the
// environment, then the remembered defaults.
func (a *app) configure() error {
	if a.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	a.cfg = config.Load()
	remembered, err := config.Remembered(a.defaultsPath)
	if err != nil {
		log.Warn().Err(err).Str("file", a.defaultsPath).Msg("Ignoring remembered defaults")
		remembered = map[string]string{}
	}

	system := cmp.Or(a.systemFlag, os.Getenv(config.KeySystem), remembered[config.KeySystem], a.cfg.System)
	rs, err := ability.ParseRuleSystem(system)
	if err != nil {
		return err
	}
	a.system = rs
	a.dataDir = cmp.Or(a.cfg.DataDir, remembered[config.KeyDataDir])

	if a.vocabPath != "" {
		a.vocab, err = vocab.LoadFile(a.vocabPath)
		if err != nil {
			return err
		}
	} else {
		a.vocab = vocab.Default()
	}

	log.Debug().Str("system", rs.Slug()).Str("data_dir", a.dataDir).Msg("Configured")
	return nil
}

// load reads an ability file for the configured rule system and names the
// offending line when a field is malformed.
func (a *app) load(ctx context.Context, path string) (*collection.Collection, error) {
	c, err := collection.Load(ctx, a.storage, path, a.system)
	var fe *parser.FieldError
	if errors.As(err, &fe) {
		log.Error().Str("file", path).Int("line", fe.LineNo).Str("field", fe.Token).Msg("Malformed field")
	}
	return c, err
}

// loadOrNew is load, returning an empty collection when path does not exist.
func (a *app) loadOrNew(ctx context.Context, path string) (*collection.Collection, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return collection.New(a.system), nil
	}
	return a.load(ctx, path)
}

// save writes c to path unless path holds a file that was not generated as
// homebrew, which only force overrides.
func (a *app) save(ctx context.Context, c *collection.Collection, path string, force, modsOnly bool) error {
	if !force {
		ok, err := collection.SafeToOverwrite(a.storage, path)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("refusing to overwrite %s: header does not look like a homebrew file (use --force)", path)
		}
	}
	if !collection.InDataDir(path) {
		log.Warn().Str("file", path).Msg("File is outside a PCGen data folder; PCGen will not load it")
	}
	if modsOnly {
		return c.SaveModsOnly(ctx, a.storage, path)
	}
	return c.Save(ctx, a.storage, path)
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// openCatalog opens the configured catalog store behind a lookup cache and
// makes sure its schema exists.
func openCatalog(ctx context.Context, cfg *config.Config) (*catalog.Cached, error) {
	var (
		store catalog.Store
		err   error
	)
	switch cfg.CatalogDriver {
	case "sqlite":
		store, err = sqlite.New(ctx, cfg.CatalogDSN)
	case "postgres":
		dsn := cfg.DatabaseURL
		if strings.HasPrefix(cfg.CatalogDSN, "postgres") {
			dsn = cfg.CatalogDSN
		}
		store, err = postgres.New(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown catalog driver %q", cfg.CatalogDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close(ctx)
		return nil, fmt.Errorf("ensure catalog schema: %w", err)
	}
	log.Debug().Str("driver", cfg.CatalogDriver).Msg("Opened catalog")
	return catalog.NewCached(store), nil
}

// connectPostgres opens the pool backing the similarity index.
func connectPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}

	ctxPing, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pgPool.Ping(ctxPing); err != nil {
		pgPool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")
	return pgPool, nil
}

// connectNeo4j opens the driver backing the prerequisite graph.
func connectNeo4j(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	neo4jDriver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}

	if err := neo4jDriver.VerifyConnectivity(ctx); err != nil {
		neo4jDriver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Info().Msg("Connected to Neo4j")
	return neo4jDriver, nil
}
