package main

import (
	"context"
	"fmt"

	dashcfg "github.com/Skotchmaster/product_dashboard/internal/config"
	"github.com/Skotchmaster/product_dashboard/internal/repo"
	pkgdb "github.com/Skotchmaster/product_dashboard/pkg/db"
)

type storage struct {
	Slots repo.Slots
	Ready func() error
	Close func() error
}

func openStorage(ctx context.Context, cfg *dashcfg.Config) (*storage, error) {
	switch cfg.Storage {
	case dashcfg.StorageMemory:
		return &storage{
			Slots: repo.NewMemoryRepo(),
			Close: func() error { return nil },
		}, nil

	case dashcfg.StorageBolt:
		r, err := repo.OpenBolt(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		return &storage{Slots: r, Close: r.Close}, nil

	case dashcfg.StorageGorm:
		db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		r, err := repo.NewGormRepo(ctx, db)
		if err != nil {
			_ = pkgdb.Close(db)
			return nil, err
		}
		return &storage{
			Slots: r,
			Ready: func() error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Ping()
			},
			Close: func() error { return pkgdb.Close(db) },
		}, nil
	}
	return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
}
