package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

/*
 * Setup a global logger.
 *
 * Production service writes JSON lines to the rotated file,
 * any other environment writes human readable lines to stdout
 */
func setupLogger() error {
	var out io.Writer

	if config.Environment == "prod" {
		if config.Log.File == "" {
			return fmt.Errorf("'log.file' is required in the production environment")
		}

		out = &lumberjack.Logger{
			Filename:   config.Log.File,
			MaxSize:    config.Log.MaxSize,    // Megabytes before rotation
			MaxBackups: config.Log.MaxBackups, // Rotated files to keep
			MaxAge:     config.Log.MaxAge,     // Days to keep rotated files
			Compress:   true,
		}
	} else {
		out = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	zerolog.SetGlobalLevel(config.Log.Level)

	log = zerolog.New(out).
		With().
		Timestamp().
		Str("service", "docflow").
		Logger()

	return nil
}
