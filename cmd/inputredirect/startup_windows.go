//go:build windows

package main

import (
	"log/slog"
	"os"

	"github.com/Alia5/InputRedirect/internal/util"
)

func init() {
	if !util.IsRunFromGUI() {
		return
	}
	if len(os.Args) < 2 || os.Args[1] != "run" {
		slog.Info("Detected GUI startup, injecting 'run' argument")
		slog.Warn("Run from a terminal to pass --target and other options, or use a config file")
		args := make([]string, 0, len(os.Args)+1)
		args = append(args, os.Args[0], "run")
		args = append(args, os.Args[1:]...)
		os.Args = args
	}
}
