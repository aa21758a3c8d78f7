package database

import (
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

// ExternalParams describes the third-party database a sync reads from.
type ExternalParams struct {
	Driver         string
	Host           string
	Port           int
	Database       string
	Username       string
	Password       string
	ConnectTimeout time.Duration
}

// ExternalDSN returns the database/sql driver name and DSN for p.
func ExternalDSN(p ExternalParams) (driverName string, dsn string, err error) {
	addr := net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
	timeoutSecs := strconv.Itoa(int(p.ConnectTimeout.Seconds()))

	switch p.Driver {
	case "", "postgres":
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(p.Username, p.Password),
			Host:   addr,
			Path:   "/" + p.Database,
		}
		q := url.Values{}
		if p.ConnectTimeout > 0 {
			q.Set("connect_timeout", timeoutSecs)
		}
		u.RawQuery = q.Encode()
		return "pgx", u.String(), nil

	case "sqlserver":
		q := url.Values{}
		q.Set("database", p.Database)
		if p.ConnectTimeout > 0 {
			q.Set("dial timeout", timeoutSecs)
		}
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(p.Username, p.Password),
			Host:     addr,
			RawQuery: q.Encode(),
		}
		return "sqlserver", u.String(), nil

	case "mysql":
		cfg := mysql.NewConfig()
		cfg.User = p.Username
		cfg.Passwd = p.Password
		cfg.Net = "tcp"
		cfg.Addr = addr
		cfg.DBName = p.Database
		cfg.Timeout = p.ConnectTimeout
		return "mysql", cfg.FormatDSN(), nil
	}
	return "", "", errors.Errorf("unsupported driver %q", p.Driver)
}
