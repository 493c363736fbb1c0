package sqlsource

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"trendspotter/internal/errors"

	"github.com/go-sql-driver/mysql"
)

// Supported dialects
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Descriptor holds connection details for one query. For sqlite, Database is the file path.
type Descriptor struct {
	Driver   string `json:"driver" form:"driver" binding:"required,oneof=postgres mysql sqlite"`
	Host     string `json:"host" form:"host"`
	Port     int    `json:"port" form:"port"`
	Database string `json:"database" form:"database" binding:"required"`
	User     string `json:"user" form:"user"`
	Password string `json:"password" form:"password"`
	SSLMode  string `json:"ssl_mode" form:"ssl_mode"`
}

// Validate checks the descriptor has what its dialect needs
func (d Descriptor) Validate() error {
	switch d.Driver {
	case DriverPostgres, DriverMySQL:
		if strings.TrimSpace(d.Host) == "" {
			return errors.InvalidInput(fmt.Sprintf("%s connection requires a host", d.Driver))
		}
	case DriverSQLite:
	default:
		return errors.InvalidInput(fmt.Sprintf("unsupported driver %q", d.Driver))
	}
	if strings.TrimSpace(d.Database) == "" {
		return errors.InvalidInput("database name is required")
	}
	if d.Port < 0 || d.Port > 65535 {
		return errors.InvalidInput(fmt.Sprintf("invalid port %d", d.Port))
	}
	return nil
}

func (d Descriptor) port() int {
	if d.Port > 0 {
		return d.Port
	}
	switch d.Driver {
	case DriverMySQL:
		return 3306
	case DriverPostgres:
		return 5432
	}
	return 0
}

// DriverName is the database/sql driver registered for the dialect
func (d Descriptor) DriverName() string {
	return d.Driver
}

// DSN builds the driver-specific data source name
func (d Descriptor) DSN() string {
	addr := net.JoinHostPort(d.Host, strconv.Itoa(d.port()))
	switch d.Driver {
	case DriverPostgres:
		sslMode := d.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		u := url.URL{
			Scheme:   "postgres",
			Host:     addr,
			Path:     "/" + d.Database,
			RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
		}
		if d.User != "" {
			u.User = url.UserPassword(d.User, d.Password)
		}
		return u.String()
	case DriverMySQL:
		cfg := mysql.NewConfig()
		cfg.User = d.User
		cfg.Passwd = d.Password
		cfg.Net = "tcp"
		cfg.Addr = addr
		cfg.DBName = d.Database
		cfg.ParseTime = true
		return cfg.FormatDSN()
	default:
		return d.Database
	}
}

// Redacted is a loggable form of the descriptor without credentials
func (d Descriptor) Redacted() string {
	if d.Driver == DriverSQLite {
		return fmt.Sprintf("sqlite:%s", d.Database)
	}
	return fmt.Sprintf("%s://%s@%s/%s", d.Driver, d.User, net.JoinHostPort(d.Host, strconv.Itoa(d.port())), d.Database)
}
