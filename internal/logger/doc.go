// Package logger provides named, idempotently configured loggers for the
// macops commands.
//
// Loggers live in an explicit Registry owned by the command's composition
// root. Each logger writes lines of the form
//
//	2006-01-02 15:04:05 [LEVEL] message
//
// to the console, a file, or both. The console sink can color the level token;
// the file sink never does, so persisted logs stay plain text.
//
// # Usage
//
//	reg := logger.NewRegistry()
//	defer reg.Close()
//
//	log, err := reg.ConsoleAndFile("pg_upgrade", "logs/pg_upgrade.log", logger.InfoLevel, true)
//	if err != nil {
//		return err
//	}
//	log.Info("Starting PostgreSQL upgrade: %s -> %s", oldVer, newVer)
//
// Requesting the same name again returns the configured logger without
// attaching more sinks.
package logger
