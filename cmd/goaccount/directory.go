package main

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/goAccount/internal/config"
	"github.com/MrEthical07/goAccount/user"
	"github.com/MrEthical07/goAccount/user/postgres"
	"github.com/MrEthical07/goAccount/user/sqlite"
	"github.com/rs/zerolog"
)

// openDirectory connects the configured account backend. When migrate is
// true the PostgreSQL schema is created first; SQLite always migrates on open. The returned func releases the backend.
func openDirectory(ctx context.Context, c config.Config, log zerolog.Logger, migrate bool) (user.Directory, func(), error) {
	switch c.DirectoryDriver {
	case "postgres":
		pool, err := postgres.Connect(ctx, c.DatabaseURL, postgres.DefaultPoolConfig(), log)
		if err != nil {
			return nil, nil, err
		}
		if migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		return postgres.New(pool, time.Now), pool.Close, nil

	case "sqlite":
		// Open applies pending migrations itself.
		db, err := sqlite.Open(ctx, c.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.New(db, time.Now), func() { _ = db.Close() }, nil

	case "memory":
		log.Warn().Msg("using in-memory directory; accounts are lost on restart")
		return user.NewMemory(time.Now), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown directory driver %q", c.DirectoryDriver)
	}
}
