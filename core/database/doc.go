// Package database handles the optional database connection.
//
// It wraps GORM and configures either a MySQL or a SQLite connection from the
// application's configuration. The database is used to keep a history of
// publish runs; every caller treats it as optional and keeps working without it.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logger.Warn("Optional database connection failed", zap.Error(err))
//	}
package database
