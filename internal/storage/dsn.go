package storage

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"health-report/internal/config"
)

// BuildDSN turns the database section into a driver-specific DSN.
// An explicit dsn always wins. loc is the zone MySQL DATETIME values are read in.
func BuildDSN(cfg config.DatabaseConfig, loc *time.Location) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	switch cfg.Driver {
	case "mysql":
		port := cfg.Port
		if port == 0 {
			port = 3306
		}
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
		mc.DBName = cfg.Name
		mc.ParseTime = true
		if loc != nil {
			mc.Loc = loc
		}
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return mc.FormatDSN(), nil

	case "pgx":
		port := cfg.Port
		if port == 0 {
			port = 5432
		}
		u := url.URL{
			Scheme: "postgres",
			Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
			Path:   "/" + cfg.Name,
		}
		if cfg.User != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		}
		return u.String(), nil

	case "sqlite":
		return cfg.Name, nil

	default:
		return "", fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}
