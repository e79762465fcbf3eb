package postgres

//nolint:revive
import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"traveltrust/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	maxIdleConnections = 10
	maxOpenConnections = 10
)

// Connection splits journal traffic: inserts go to Write, queries to Read.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

type endpoint struct {
	role     string
	username string
	password string
	host     string
	port     string
	name     string
	sslMode  string
}

func (e endpoint) dsn() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		e.username, e.password, net.JoinHostPort(e.host, e.port), e.name, e.sslMode)
}

func New(cfg *config.Config) (*Connection, error) {
	pg := cfg.DB.Postgres

	write, err := connect(endpoint{
		role:     "write",
		username: pg.Write.Username,
		password: pg.Write.Password,
		host:     pg.Write.Host,
		port:     pg.Write.Port,
		name:     pg.Prefix + pg.Write.Name,
		sslMode:  pg.Write.SSLMode,
	}, pg.MaxRetry, time.Duration(pg.RetryWaitTime)*time.Second)
	if err != nil {
		return nil, err
	}

	read, err := connect(endpoint{
		role:     "read",
		username: pg.Read.Username,
		password: pg.Read.Password,
		host:     pg.Read.Host,
		port:     pg.Read.Port,
		name:     pg.Prefix + pg.Read.Name,
		sslMode:  pg.Read.SSLMode,
	}, pg.MaxRetry, time.Duration(pg.RetryWaitTime)*time.Second)
	if err != nil {
		_ = write.Close()

		return nil, err
	}

	return &Connection{Read: read, Write: write}, nil
}

// Ping checks the write side, which the journal cannot work without.
func (c *Connection) Ping(ctx context.Context) error {
	return c.Write.PingContext(ctx) //nolint:wrapcheck
}

func (c *Connection) Close() error {
	return errors.Join(c.Read.Close(), c.Write.Close())
}

// connect dials up to maxRetry times, at least once, waiting between attempts.
func connect(e endpoint, maxRetry int, wait time.Duration) (*sqlx.DB, error) {
	var err error

	for attempt := 1; attempt <= max(maxRetry, 1); attempt++ {
		var db *sqlx.DB

		db, err = sqlx.Connect("postgres", e.dsn())
		if err == nil {
			db.SetMaxIdleConns(maxIdleConnections)
			db.SetMaxOpenConns(maxOpenConnections)

			log.Info().Str("role", e.role).Str("host", e.host).Str("db", e.name).Msg("Connected to database")

			return db, nil
		}

		log.Error().Err(err).
			Str("role", e.role).
			Str("host", e.host).
			Str("db", e.name).
			Int("attempt", attempt).
			Msg("Failed connecting to database, retrying")

		time.Sleep(wait)
	}

	return nil, fmt.Errorf("failed to connect to %s database %s: %w", e.role, e.name, err)
}
