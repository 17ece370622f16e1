// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package logger

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/natefinch/lumberjack"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

// Configure installs the global zerolog logger. Output goes to stderr, as
// colored console lines on a terminal and JSON otherwise. When file is set,
// JSON lines are also written to a rotating log file.
func Configure(level, file string) error {
	l, err := New(os.Stderr, isatty.IsTerminal(os.Stderr.Fd()), level, file)
	if err != nil {
		return err
	}
	log.Logger = l
	zerolog.DefaultContextLogger = &log.Logger
	return nil
}

// New builds a logger writing to out.
func New(out io.Writer, console bool, level, file string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), errors.Wrapf(err, "log level %q", level)
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	w := out
	if console {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime}
	}
	if file != "" {
		w = zerolog.MultiLevelWriter(w, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	}

	return zerolog.New(w).
		With().
		Timestamp().
		Logger().
		Level(lvl), nil
}
