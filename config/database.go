package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const DefaultSQLiteFile = "media.db"

// ResolveSQL returns the driver and DSN for the SQL media strategy. An explicit
// driver and DSN take precedence over DatabaseURL.
func (s *SQLMediaStrategy) ResolveSQL() (driver string, dsn string, err error) {
	if s == nil {
		return "", "", fmt.Errorf("sql media config is nil")
	}

	if s.Driver != "" {
		return s.Driver, s.DSN, nil
	}

	return ParseDatabaseURL(s.DatabaseURL)
}

// ParseDatabaseURL turns a connection URL into a database/sql driver name and
// DSN. Empty input falls back to a local sqlite file.
//
//	postgres://u:p@host/db    -> postgres, postgres://u:p@host/db
//	postgresql://u:p@host/db  -> postgres, postgresql://u:p@host/db
//	mysql://u:p@host:3306/db  -> mysql,    u:p@tcp(host:3306)/db?parseTime=true
//	sqlite:///media.db        -> sqlite,   media.db
//	sqlite:////var/media.db   -> sqlite,   /var/media.db
func ParseDatabaseURL(raw string) (string, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "sqlite", DefaultSQLiteFile, nil
	}

	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return "", "", fmt.Errorf("database url %q has no scheme", raw)
	}

	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return "postgres", raw, nil
	case "mysql":
		dsn, err := mysqlDSN(raw)
		if err != nil {
			return "", "", err
		}
		return "mysql", dsn, nil
	case "sqlite", "sqlite3":
		path := rest
		if strings.HasPrefix(rest, "/") {
			// sqlite:///relative.db is relative, sqlite:////abs.db is absolute.
			path = strings.TrimPrefix(rest, "/")
		}
		if path == "" {
			path = DefaultSQLiteFile
		}
		return "sqlite", path, nil
	default:
		return "", "", fmt.Errorf("unsupported database url scheme %q", scheme)
	}
}

func mysqlDSN(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid mysql url: %w", err)
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	if u.Port() == "" {
		cfg.Addr = u.Host + ":3306"
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	cfg.ParseTime = true

	if u.User != nil {
		cfg.User = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			cfg.Passwd = pw
		}
	}

	if cfg.DBName == "" {
		return "", fmt.Errorf("mysql url %q is missing a database name", raw)
	}

	return cfg.FormatDSN(), nil
}
