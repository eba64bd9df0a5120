package cmd

import (
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/abhisek/fedrill/internal/catalog"
	"github.com/abhisek/fedrill/internal/config"
	"github.com/abhisek/fedrill/internal/logger"
	"github.com/abhisek/fedrill/internal/session"
	"github.com/abhisek/fedrill/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "fedrill",
	Short: "Adaptive quiz drills with spaced repetition",
	Long: "fedrill drills multiple-choice exam questions, resurfacing missed items on a\n" +
		"growing review schedule and steering practice toward weak categories.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to a YAML config file")
	pf.String("db", "", "Path to SQLite database file (overrides FEDRILL_DB env var)")
	pf.String("catalog", "", "Path to a question bank JSON file (default: embedded bank)")
	pf.String("user", "", "Learner id for local commands (default: OS user name)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(intervalCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// annotationVerbose marks commands that log at the configured level by
// default instead of only warnings.
const annotationVerbose = "fedrill.verbose"

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"db":        "db",
	"catalog":   "catalog",
	"log-level": "log.level",
	"mode":      "quiz.mode",
	"size":      "quiz.size",
	"addr":      "server.addr",
}

// loadConfig merges defaults, the config file, environment and flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Options{
		File:     file,
		Flags:    cmd.Flags(),
		FlagKeys: flagKeys,
	})
	if err != nil {
		return nil, err
	}
	// Interactive commands stay quiet unless asked otherwise.
	if cmd.Annotations[annotationVerbose] == "" && !cmd.Flags().Changed("log-level") && os.Getenv(config.EnvPrefix+"LOG__LEVEL") == "" {
		cfg.Log.Level = "warn"
	}
	return cfg, nil
}

// resolveDBPath returns the configured database path, falling back to
// FEDRILL_DB and then the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(cfg.Catalog)
}

// resolveUser returns --user, falling back to the OS account name.
func resolveUser(cmd *cobra.Command) string {
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		return u
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}

// app bundles the wired dependencies of a command.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	store *store.Store
	svc   *session.Service
}

func (a *app) Close() {
	a.store.Close()
	a.log.Sync()
}

// setup wires config, logger, catalog, store and service for cmd.
func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Options{
		Mode:     cfg.Log.Mode,
		Level:    cfg.Log.Level,
		HashIDs:  cfg.Log.HashIDs,
		HashSalt: cfg.Log.HashSalt,
	})
	if err != nil {
		return nil, err
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	svc := session.NewService(cat, s.AttemptRepo(), s.ProgressRepo(), s.SessionRepo(),
		session.WithLogger(log),
		session.WithHistoryWindow(cfg.Quiz.HistoryWindow),
		session.WithReviewLimit(cfg.Quiz.ReviewLimit),
	)
	return &app{cfg: cfg, log: log, store: s, svc: svc}, nil
}
