package main

import (
	"io"
	"io/ioutil"

	"github.com/alexcesaro/log"
	"github.com/alexcesaro/log/golog"
)

var logger *golog.Logger

// SetLogger overrides the main logger of this command.
func SetLogger(w io.Writer, level log.Level) {
	logger = golog.New(w, level)
}

func init() {
	// Set a default null logger
	SetLogger(ioutil.Discard, log.Debug)
}
