package media

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/indieinfra/gallery/config"
	storageutil "github.com/indieinfra/gallery/storage/util"
)

type dialect int

const (
	dialectPostgres dialect = iota
	dialectMySQL
	dialectSQLite
)

// SQLMediaStore keeps records in a single relational table. Ids come from the
// database (sequence, AUTO_INCREMENT or AUTOINCREMENT) and are never reused.
type SQLMediaStore struct {
	db      *sql.DB
	table   string
	dialect dialect
}

func NewSQLMediaStore(cfg *config.SQLMediaStrategy) (*SQLMediaStore, error) {
	driver, dsn, err := cfg.ResolveSQL()
	if err != nil {
		return nil, err
	}

	store, err := newSQLMediaStoreWithDB(cfg, driver, nil)
	if err != nil {
		return nil, err
	}

	driverName, err := resolveSQLDriverName(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	if store.dialect == dialectSQLite {
		// A single writer avoids SQLITE_BUSY between pooled connections.
		db.SetMaxOpenConns(1)
	}

	store.db = db

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func newSQLMediaStoreWithDB(cfg *config.SQLMediaStrategy, driver string, db *sql.DB) (*SQLMediaStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("media sql config is nil")
	}

	d, err := detectDialect(driver)
	if err != nil {
		return nil, err
	}

	return &SQLMediaStore{
		db:      db,
		table:   storageutil.DeriveTableName(cfg.TablePrefix, "media"),
		dialect: d,
	}, nil
}

func detectDialect(driver string) (dialect, error) {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "pgx":
		return dialectPostgres, nil
	case "mysql":
		return dialectMySQL, nil
	case "sqlite", "sqlite3":
		return dialectSQLite, nil
	default:
		return dialectPostgres, fmt.Errorf("unsupported sql driver %q", driver)
	}
}

func resolveSQLDriverName(driver string) (string, error) {
	d, err := detectDialect(driver)
	if err != nil {
		return "", err
	}

	switch d {
	case dialectMySQL:
		return "mysql", nil
	case dialectSQLite:
		return "sqlite", nil
	default:
		return "pgx", nil
	}
}

func (ms *SQLMediaStore) initSchema(ctx context.Context) error {
	if _, err := ms.db.ExecContext(ctx, ms.schemaQuery()); err != nil {
		return storageErr("init schema", err)
	}

	return nil
}

func (ms *SQLMediaStore) schemaQuery() string {
	var id string
	switch ms.dialect {
	case dialectMySQL:
		id = "id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY"
	case dialectSQLite:
		id = "id INTEGER PRIMARY KEY AUTOINCREMENT"
	default:
		id = "id BIGSERIAL PRIMARY KEY"
	}

	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
%s,
file_url VARCHAR(%d) NOT NULL,
media_type VARCHAR(%d) NOT NULL
)`, ms.table, id, MaxFileURLLength, MaxMediaTypeLength)
}

func (ms *SQLMediaStore) Create(ctx context.Context, fileURL string, mediaType string) (Record, error) {
	if err := ValidateRecordInput(fileURL, mediaType); err != nil {
		return Record{}, err
	}

	rec := Record{FileURL: fileURL, MediaType: mediaType}

	if ms.dialect == dialectPostgres {
		row := ms.db.QueryRowContext(ctx, ms.insertQuery(), fileURL, mediaType)
		if err := row.Scan(&rec.ID); err != nil {
			return Record{}, storageErr("create", err)
		}

		return rec, nil
	}

	res, err := ms.db.ExecContext(ctx, ms.insertQuery(), fileURL, mediaType)
	if err != nil {
		return Record{}, storageErr("create", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Record{}, storageErr("create", err)
	}

	rec.ID = id
	return rec, nil
}

func (ms *SQLMediaStore) ListByType(ctx context.Context, mediaType string) ([]Record, error) {
	rows, err := ms.db.QueryContext(ctx, ms.listQuery(), mediaType)
	if err != nil {
		return nil, storageErr("list", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.FileURL, &rec.MediaType); err != nil {
			return nil, storageErr("list", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("list", err)
	}

	return records, nil
}

func (ms *SQLMediaStore) Close() error {
	if ms.db == nil {
		return nil
	}

	return ms.db.Close()
}

func (ms *SQLMediaStore) insertQuery() string {
	q := fmt.Sprintf(
		"INSERT INTO %s (file_url, media_type) VALUES (%s, %s)",
		ms.table,
		ms.placeholderFor(1),
		ms.placeholderFor(2),
	)

	if ms.dialect == dialectPostgres {
		q += " RETURNING id"
	}

	return q
}

func (ms *SQLMediaStore) listQuery() string {
	return fmt.Sprintf(
		"SELECT id, file_url, media_type FROM %s WHERE media_type = %s ORDER BY id ASC",
		ms.table,
		ms.placeholderFor(1),
	)
}

func (ms *SQLMediaStore) placeholderFor(index int) string {
	if ms.dialect == dialectPostgres {
		return fmt.Sprintf("$%d", index)
	}

	return "?"
}
