package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"interview-practice-be/internal/config"
	"interview-practice-be/internal/pkg/logger"
	"interview-practice-be/pkg/catalog"
	"interview-practice-be/pkg/localstore"
	"interview-practice-be/pkg/practice"

	"github.com/spf13/cobra"
)

type options struct {
	storePath string
	serverURL string
	interval  time.Duration
	questions string
	verbose   bool
}

// app is everything a command needs; built per invocation.
type app struct {
	store   localstore.Store
	session *practice.Session
	catalog *catalog.Catalog
	logger  logger.ILogger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func defaultStorePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "interview-practice", "practice.db")
	}
	return ".practice.db"
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "practice",
		Short:         "Work through coding interview questions from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.storePath, "store", getenv("PRACTICE_STORE", defaultStorePath()), "local draft database")
	root.PersistentFlags().StringVar(&opts.serverURL, "server", getenv("PRACTICE_SERVER", "http://localhost:3000"), "submission ledger base URL")
	root.PersistentFlags().DurationVar(&opts.interval, "interval", config.GetEnvAsDuration("AUTOSAVE_INTERVAL", practice.DefaultAutosaveInterval), "autosave interval")
	root.PersistentFlags().StringVar(&opts.questions, "questions", os.Getenv("QUESTIONS_FILE"), "YAML file overriding the built-in questions")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newStartCmd(opts))
	root.AddCommand(newListCmd(opts))
	root.AddCommand(newOpenCmd(opts))
	root.AddCommand(newResetCmd(opts))
	root.AddCommand(newSubmitCmd(opts))
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newSyncCmd(opts))
	root.AddCommand(newPlaygroundCmd(opts))
	return root
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func loadApp(opts *options) (*app, error) {
	store, err := localstore.OpenSQLite(opts.storePath)
	if err != nil {
		return nil, err
	}

	questions := catalog.Default()
	if opts.questions != "" {
		questions, err = catalog.Load(opts.questions)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	log := logger.NewConsoleLogger(opts.verbose)
	return &app{
		store:   store,
		session: practice.NewSession(store, practice.NewHTTPLedgerClient(opts.serverURL), log),
		catalog: questions,
		logger:  log,
	}, nil
}

func (a *app) Close() {
	_ = a.logger.Sync()
	_ = a.store.Close()
}

// withApp opens the local store around fn.
func withApp(opts *options, fn func(a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		a, err := loadApp(opts)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(a, args)
	}
}

func (a *app) requireSession() (string, error) {
	id, ok := a.session.SessionID()
	if !ok {
		return "", fmt.Errorf("%w: run `practice start` first", practice.ErrNoSession)
	}
	return id, nil
}
