package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"interview-practice-be/internal/config"
	"interview-practice-be/internal/entity"
	"interview-practice-be/internal/pkg/logger"
	"interview-practice-be/internal/repository/contract"
	"interview-practice-be/internal/repository/implementation"
	"interview-practice-be/pkg/database"

	"github.com/spf13/cobra"
)

func main() {
	var importDir string
	var verbose bool

	cmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Prepare the postgres ledger and optionally import JSON session files",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrate(cmd.Context(), importDir, verbose)
		},
	}
	cmd.Flags().StringVar(&importDir, "import", "", "directory of question-submission-*.json files to copy into postgres")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log SQL statements")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func migrate(ctx context.Context, importDir string, verbose bool) error {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		return errors.New("DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, verbose)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	log.Println("Step 1: Running AutoMigrate for session_documents...")
	appLogger := logger.NewConsoleLogger(verbose)
	defer appLogger.Sync()

	repo, err := implementation.NewGormSessionDocumentRepository(db, appLogger)
	if err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	defer repo.Close()

	log.Println("Step 2: Creating updated_at trigger...")
	postMigrationSQL := []string{
		`CREATE OR REPLACE FUNCTION set_current_timestamp_updated_at() RETURNS trigger LANGUAGE plpgsql AS $$
		BEGIN
		  NEW.updated_at := now();
		  RETURN NEW;
		END; $$;`,
		`DROP TRIGGER IF EXISTS set_session_documents_updated_at ON session_documents;`,
		`CREATE TRIGGER set_session_documents_updated_at BEFORE UPDATE ON session_documents
		 FOR EACH ROW EXECUTE FUNCTION set_current_timestamp_updated_at();`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	if importDir == "" {
		log.Println("Success: Database migration completed.")
		return nil
	}

	log.Printf("Step 3: Importing session files from %s...", importDir)
	imported, err := importSessions(ctx, importDir, repo, implementation.NewFileSessionDocumentRepository(importDir, appLogger))
	if err != nil {
		return fmt.Errorf("import stopped after %d session(s): %w", imported, err)
	}
	log.Printf("Success: Imported %d session(s).", imported)
	return nil
}

// importSessions merges every session file in dir into dst. Running it twice
// is harmless: the later submission per question wins.
func importSessions(ctx context.Context, dir string, dst, src contract.SessionDocumentRepository) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "question-submission-*.json"))
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, path := range matches {
		sessionId := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "question-submission-"), ".json")
		doc, err := src.FindBySessionId(ctx, sessionId)
		if err != nil || doc == nil {
			log.Printf("Warn: Skipping unreadable %s: %v", path, err)
			continue
		}

		_, err = dst.Mutate(ctx, sessionId, func(current *entity.SessionDocument) (*entity.SessionDocument, error) {
			if current == nil {
				return doc, nil
			}
			current.Merge(doc)
			return current, nil
		})
		if err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
