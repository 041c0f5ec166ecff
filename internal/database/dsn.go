package database

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/datquery/dbexplorer/internal/config"
	"github.com/datquery/dbexplorer/internal/errs"
)

// DriverFor maps a configured database type onto the registered
// database/sql driver name ("pgx" is handled separately by the pgx pool).
func DriverFor(dbType string) (string, error) {
	switch dbType {
	case config.TypeMySQL:
		return "mysql", nil
	case config.TypeSQLite:
		return "sqlite3", nil
	case config.TypeSQLServer:
		return "sqlserver", nil
	case config.TypeSnowflake:
		return "snowflake", nil
	default:
		return "", errs.Newf(errs.ErrKindUnsupportedDialect, "no driver for database type %q", dbType)
	}
}

// BuildDSN constructs the driver-specific connection string for db.
// A configured connection_string is passed through verbatim (it must
// already be in the target driver's format); otherwise the DSN is
// assembled from the individual fields. password is the resolved secret,
// empty when none is stored.
func BuildDSN(db config.Database, password string) (string, error) {
	if db.ConnectionString != "" {
		return db.ConnectionString, nil
	}

	switch db.Type {
	case config.TypePostgres:
		return urlDSN("postgres", db, password, db.Port, 5432), nil

	case config.TypeMySQL:
		port := db.Port
		if port == 0 {
			port = 3306
		}
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", db.Username, password, db.Host, port, db.Database)
		if params := encodeParams(db.ExtraParams); params != "" {
			dsn += "?" + params
		}
		return dsn, nil

	case config.TypeSQLite:
		// The path is used as-is; ":memory:" works unchanged.
		return db.Database, nil

	case config.TypeSQLServer:
		u := url.URL{
			Scheme: "sqlserver",
			User:   userInfo(db.Username, password),
			Host:   hostPort(db.Host, db.Port, 1433),
		}
		q := url.Values{}
		q.Set("database", db.Database)
		for k, v := range db.ExtraParams {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
		return u.String(), nil

	case config.TypeSnowflake:
		// gosnowflake format: user:pass@account/database?params
		account := db.Account
		if account == "" {
			account = db.Host
		}
		dsn := fmt.Sprintf("%s:%s@%s/%s",
			url.QueryEscape(db.Username), url.QueryEscape(password), account, db.Database)
		if params := encodeParams(db.ExtraParams); params != "" {
			dsn += "?" + params
		}
		return dsn, nil

	default:
		return "", errs.Newf(errs.ErrKindUnsupportedDialect, "no DSN format for database type %q", db.Type)
	}
}

func urlDSN(scheme string, db config.Database, password string, port, defaultPort int) string {
	u := url.URL{
		Scheme: scheme,
		User:   userInfo(db.Username, password),
		Host:   hostPort(db.Host, port, defaultPort),
		Path:   "/" + db.Database,
	}
	q := url.Values{}
	for k, v := range db.ExtraParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func userInfo(username, password string) *url.Userinfo {
	if username == "" {
		return nil
	}
	if password == "" {
		return url.User(username)
	}
	return url.UserPassword(username, password)
}

func hostPort(host string, port, defaultPort int) string {
	if port == 0 {
		port = defaultPort
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// encodeParams renders extra_params as a query string with stable key
// order, so generated DSNs are deterministic.
func encodeParams(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = url.QueryEscape(k) + "=" + url.QueryEscape(params[k])
	}
	return strings.Join(parts, "&")
}
