package database

import (
	"context"
	"database/sql"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Options describes how to reach the MySQL server holding the watchlist.
type Options struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
}

// DSN builds the driver connection string. parseTime maps DATETIME columns
// to time.Time, loc=UTC keeps timestamps consistent and clientFoundRows makes
// UPDATE report matched rows instead of changed rows.
func (o Options) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = o.User
	cfg.Passwd = o.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(o.Host, o.Port)
	cfg.DBName = o.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Open connects to MySQL and verifies the connection.
func Open(o Options) (*sql.DB, error) {
	db, err := sql.Open("mysql", o.DSN())
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

const createMoviesTable = `CREATE TABLE IF NOT EXISTS movies (
	id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
	imdb_id     VARCHAR(32)     NULL,
	title       VARCHAR(512)    NULL,
	year        VARCHAR(32)     NULL,
	genre       VARCHAR(255)    NULL,
	rating      DOUBLE          NULL,
	plot        TEXT            NULL,
	poster_url  VARCHAR(1024)   NULL,
	watched     BOOLEAN         NOT NULL DEFAULT FALSE,
	date_added  DATETIME(6)     NOT NULL,
	PRIMARY KEY (id),
	UNIQUE KEY uq_movies_imdb_id (imdb_id),
	KEY idx_movies_title (title),
	KEY idx_movies_watched (watched)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// Migrate creates the watchlist schema if it does not exist yet. It is
// safe to run on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, createMoviesTable)
	return err
}
