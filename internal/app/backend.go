package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mdnotes/internal/config"
	"mdnotes/internal/dbclient"
	"mdnotes/internal/domain"
	"mdnotes/internal/secret"
	"mdnotes/internal/storage"
)

// backend holds the stores selected by the storage config. The local SQLite
// database is always opened: it keeps settings, revisions and approvals
// whatever backend holds the documents.
type backend struct {
	db   *storage.DB
	docs domain.DocumentStore

	local  *storage.DocumentStore // sqlite backend
	folder *storage.FolderStore   // folder backend
	remote dbclient.Store         // mysql, postgres, mongodb
}

func openBackend(ctx context.Context, cfg *config.Config, secrets secret.SecretStore, logger *zap.Logger) (*backend, error) {
	db, err := storage.New(cfg.DBPath())
	if err != nil {
		return nil, err
	}
	b := &backend{db: db}

	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		b.local = storage.NewDocumentStore(db)
		b.docs = b.local

	case config.BackendFolder:
		b.folder, err = storage.NewFolderStore(cfg.Storage.Folder)
		if err != nil {
			db.Close()
			return nil, err
		}
		b.docs = b.folder

	default:
		conn := &domain.DatabaseConnection{
			Driver:   domain.DatabaseDriver(cfg.Storage.Backend),
			Host:     cfg.Storage.Host,
			Port:     cfg.Storage.Port,
			Database: cfg.Storage.Database,
			Username: cfg.Storage.Username,
			SSLMode:  cfg.Storage.SSLMode,
			Table:    cfg.Storage.Table,
		}
		password, err := secrets.Get(secret.ConnectionKey(conn))
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("read %s password: %w", conn.Driver, err)
		}
		b.remote, err = dbclient.Open(ctx, conn, string(password), logger)
		if err != nil {
			db.Close()
			return nil, err
		}
		b.docs = b.remote
	}

	logger.Info("storage ready",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("db", db.Path()),
	)
	return b, nil
}

// fingerprint changes whenever a document is added, removed or updated by
// any process. Only the SQLite backend can answer it.
func (b *backend) fingerprint(ctx context.Context) (string, bool) {
	if b.local == nil {
		return "", false
	}
	fp, err := b.local.Fingerprint(ctx)
	if err != nil {
		return "", false
	}
	return fp, true
}

// path returns the file backing a document, or "" when it lives in a database.
func (b *backend) path(id string) string {
	if b.folder == nil {
		return ""
	}
	return b.folder.Path(id)
}

func (b *backend) Close() {
	if b.remote != nil {
		b.remote.Close()
	}
	b.db.Close()
}
