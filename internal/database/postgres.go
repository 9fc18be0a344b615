package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/viper"
	"golang.org/x/sync/singleflight"

	"github.com/imaginify/backend/internal/apperror"
)

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
	Migrate         bool
}

// GetConfig returns database configuration with defaults
func GetConfig() *DBConfig {
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.name", "imaginify")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", time.Minute*5)
	viper.SetDefault("database.connect_timeout", 5*time.Second)
	viper.SetDefault("database.migrate", true)

	return &DBConfig{
		Host:            viper.GetString("database.host"),
		Port:            viper.GetString("database.port"),
		User:            viper.GetString("database.user"),
		Password:        viper.GetString("database.password"),
		Name:            viper.GetString("database.name"),
		SSLMode:         viper.GetString("database.ssl_mode"),
		MaxOpenConns:    viper.GetInt("database.max_open_conns"),
		MaxIdleConns:    viper.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: viper.GetDuration("database.conn_max_lifetime"),
		ConnectTimeout:  viper.GetDuration("database.connect_timeout"),
		Migrate:         viper.GetBool("database.migrate"),
	}
}

// DSN renders the lib/pq connection string.
func (c *DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, int(c.ConnectTimeout.Seconds()),
	)
}

// Opener establishes a ready-to-use pool.
type Opener func(ctx context.Context, config *DBConfig) (*sql.DB, error)

// Handle is the process-owned store handle. The pool is opened on the first
// Acquire and reused afterwards; a failed open is retried by the next caller.
// Concurrent callers share one in-flight open and each waits only as long as
// its own context allows.
type Handle struct {
	config *DBConfig
	open   Opener

	db      atomic.Pointer[sql.DB]
	opening singleflight.Group
	mu      sync.Mutex
	closed  bool
}

func NewHandle(config *DBConfig) *Handle {
	return &Handle{config: config, open: OpenPostgres}
}

// NewHandleWithOpener is used where the pool comes from somewhere other than
// lib/pq, such as sqlmock in tests.
func NewHandleWithOpener(config *DBConfig, open Opener) *Handle {
	return &Handle{config: config, open: open}
}

// NewHandleWithDB wraps an already opened pool.
func NewHandleWithDB(db *sql.DB) *Handle {
	h := &Handle{}
	h.db.Store(db)
	return h
}

// Acquire returns the pool, connecting if no connection exists yet.
func (h *Handle) Acquire(ctx context.Context) (*sql.DB, error) {
	if db := h.db.Load(); db != nil {
		return db, nil
	}
	if h.open == nil {
		return nil, apperror.Transient("database.Acquire", fmt.Errorf("no opener configured"))
	}

	// The open outlives any single caller so a cancelled request does not
	// abort the connect for everyone else.
	result := h.opening.DoChan("open", func() (any, error) {
		if db := h.db.Load(); db != nil {
			return db, nil
		}
		db, err := h.open(context.WithoutCancel(ctx), h.config)
		if err != nil {
			log.Printf("[DATABASE] Connection attempt failed: %v", err)
			return nil, err
		}

		h.mu.Lock()
		defer h.mu.Unlock()
		if h.closed {
			db.Close()
			return nil, fmt.Errorf("store handle closed")
		}
		h.db.Store(db)
		log.Println("[DATABASE] Connection established")
		return db, nil
	})

	select {
	case res := <-result:
		if res.Err != nil {
			return nil, apperror.Transient("database.Acquire", res.Err)
		}
		return res.Val.(*sql.DB), nil
	case <-ctx.Done():
		return nil, apperror.Transient("database.Acquire", ctx.Err())
	}
}

// Connected reports whether a pool has been opened.
func (h *Handle) Connected() bool {
	return h.db.Load() != nil
}

// Close closes the pool if it was opened. A closed handle stays closed.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	db := h.db.Swap(nil)
	if db == nil {
		return nil
	}
	return db.Close()
}

// OpenPostgres opens, pings and migrates a lib/pq pool.
func OpenPostgres(ctx context.Context, config *DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	if config.Migrate {
		if err := Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}
