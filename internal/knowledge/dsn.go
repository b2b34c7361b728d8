package knowledge

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/tmc/langchaingo/tools/sqldatabase"
	"github.com/tmc/langchaingo/tools/sqldatabase/mysql"
	"github.com/tmc/langchaingo/tools/sqldatabase/postgresql"

	"github.com/rahul/salesgpt/internal/sqlengine"
)

var ErrUnsupportedDatabase = errors.New("unsupported database url")

type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
	DriverSQLite   Driver = "sqlite"
)

// Database is a parsed catalog database location.
type Database struct {
	Driver Driver
	// DSN is in the form the Go driver for Driver expects.
	DSN string
}

// ParseDatabaseURL accepts SQLAlchemy style URLs (postgresql+psycopg2://,
// mysql+pymysql://, sqlite:///path) as well as plain driver URLs.
func ParseDatabaseURL(raw string) (Database, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Database{}, ErrNoDatabaseURL
	}

	if strings.HasPrefix(raw, "file:") {
		return Database{Driver: DriverSQLite, DSN: raw}, nil
	}

	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return Database{}, fmt.Errorf("%w: %q has no scheme", ErrUnsupportedDatabase, raw)
	}
	// Drop the "+driver" suffix used by SQLAlchemy URLs.
	dialect, _, _ := strings.Cut(strings.ToLower(scheme), "+")

	switch dialect {
	case "postgres", "postgresql":
		dsn := "postgresql://" + rest
		if _, err := pgx.ParseConfig(dsn); err != nil {
			return Database{}, fmt.Errorf("parsing postgres url: %w", err)
		}
		return Database{Driver: DriverPostgres, DSN: dsn}, nil

	case "mysql", "mariadb":
		dsn, err := mysqlDSN(rest)
		if err != nil {
			return Database{}, err
		}
		return Database{Driver: DriverMySQL, DSN: dsn}, nil

	case "sqlite", "sqlite3":
		// sqlite:///relative.db and sqlite:////abs/path.db, as SQLAlchemy reads them.
		path := strings.TrimPrefix(rest, "/")
		if path == "" {
			path = ":memory:"
		}
		return Database{Driver: DriverSQLite, DSN: path}, nil
	}

	return Database{}, fmt.Errorf("%w: scheme %q", ErrUnsupportedDatabase, scheme)
}

func mysqlDSN(rest string) (string, error) {
	u, err := url.Parse("mysql://" + rest)
	if err != nil {
		return "", fmt.Errorf("parsing mysql url: %w", err)
	}

	cfg := gomysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	if u.Port() == "" {
		cfg.Addr = net.JoinHostPort(u.Hostname(), "3306")
	}
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	if cfg.DBName == "" {
		return "", fmt.Errorf("%w: mysql url has no database name", ErrUnsupportedDatabase)
	}
	if q := u.Query(); len(q) > 0 {
		cfg.Params = make(map[string]string, len(q))
		for k := range q {
			cfg.Params[k] = q.Get(k)
		}
	}
	return cfg.FormatDSN(), nil
}

// Open connects the langchaingo engine for d.
func (d Database) Open() (sqldatabase.Engine, error) {
	switch d.Driver {
	case DriverPostgres:
		return postgresql.NewPostgreSQL(d.DSN)
	case DriverMySQL:
		return mysql.NewMySQL(d.DSN)
	case DriverSQLite:
		engine, err := sqlengine.NewSQLite(d.DSN)
		if err != nil {
			return nil, err
		}
		return engine, nil
	}
	return nil, fmt.Errorf("%w: driver %q", ErrUnsupportedDatabase, d.Driver)
}
