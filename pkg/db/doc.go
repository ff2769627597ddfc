// Package db opens the PostgreSQL pool, applies embedded goose migrations
// and runs work inside transactions.
//
//	pool, err := db.Open(ctx, cfg.Database)
//	if err != nil {
//		return err
//	}
//	if err := db.Migrate(ctx, pool, migrations.FS, cfg.Database.MigrationsTable, log); err != nil {
//		return err
//	}
//
// Healthcheck and Shutdown return func(context.Context) error closures for
// the readiness endpoint and the shutdown sequence.
package db
