// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package logger

import (
	"context"
	"fmt"
	"io"
	"time"
)

const bufferSize = 100

// LoggerInterface is what the player and remote packages log through.
type LoggerInterface interface {
	Print(s string)
	Printf(s string, as ...interface{})
	PrintError(source string, err error)
}

// Logger queues log lines on Prints for whoever displays them. Sending never
// blocks the caller: with a full buffer the oldest line is dropped.
type Logger struct {
	Prints chan string
}

var _ LoggerInterface = (*Logger)(nil)

func Init() *Logger {
	return &Logger{make(chan string, bufferSize)}
}

func (l *Logger) Print(s string) {
	for {
		select {
		case l.Prints <- s:
			return
		default:
		}
		// full, make room
		select {
		case <-l.Prints:
		default:
		}
	}
}

func (l *Logger) Printf(s string, as ...interface{}) {
	l.Print(fmt.Sprintf(s, as...))
}

func (l *Logger) PrintError(source string, err error) {
	l.Printf("Error(%s) -> %s", source, err.Error())
}

// Drain writes queued lines to w, timestamped, until ctx is done.
func (l *Logger) Drain(ctx context.Context, w io.Writer) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-l.Prints:
			fmt.Fprintf(w, "%s %s\n", time.Now().Format("15:04:05"), msg)
		}
	}
}
