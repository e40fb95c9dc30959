// Package config holds the root command line definition.
package config

import "github.com/Alia5/InputRedirect/internal/cmd"

type CLI struct {
	Config string    `help:"Path to a config file (json, yaml or toml)" env:"INPUTREDIRECT_CONFIG" placeholder:"PATH"`
	Log    LogConfig `embed:"" prefix:"log."`

	Run     cmd.Run           `cmd:"" help:"Redirect a controller to the 3DS"`
	Devices cmd.Devices       `cmd:"" help:"List connected controllers"`
	Monitor cmd.Monitor       `cmd:"" help:"Receive and decode frames like a 3DS would"`
	Cfg     cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
}

type LogConfig struct {
	Level   string `help:"Log level (trace, debug, info, warn, error)" default:"info" enum:"trace,debug,info,warn,warning,error" env:"INPUTREDIRECT_LOG_LEVEL"`
	File    string `help:"Write logs to this file instead of stdout/stderr" env:"INPUTREDIRECT_LOG_FILE"`
	RawFile string `help:"Write a hex dump of every frame to this file" env:"INPUTREDIRECT_LOG_RAW_FILE"`
}
