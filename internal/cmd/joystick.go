package cmd

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Alia5/InputRedirect/gamepad"
)

// Joystick selects and tunes the joystick device source.
type Joystick struct {
	Mapping        string        `help:"Button/axis layout of the controller (xpad, playstation, generic)" default:"xpad" env:"INPUTREDIRECT_JOYSTICK_MAPPING"`
	MaxSlots       int           `help:"Number of joystick slots probed" default:"4" env:"INPUTREDIRECT_JOYSTICK_MAX_SLOTS"`
	PollInterval   time.Duration `help:"Delay between two device reads" default:"4ms" env:"INPUTREDIRECT_JOYSTICK_POLL_INTERVAL"`
	RescanInterval time.Duration `help:"Delay between two probes for new devices" default:"1s" env:"INPUTREDIRECT_JOYSTICK_RESCAN_INTERVAL"`
}

// Config resolves the options into a gamepad.JoystickConfig.
func (j *Joystick) Config() (*gamepad.JoystickConfig, error) {
	m, ok := gamepad.LookupMapping(j.Mapping)
	if !ok {
		return nil, fmt.Errorf("unknown mapping %q, expected one of %s", j.Mapping, strings.Join(gamepad.MappingNames(), ", "))
	}
	return &gamepad.JoystickConfig{
		MaxSlots:       j.MaxSlots,
		PollInterval:   j.PollInterval,
		RescanInterval: j.RescanInterval,
		Mapping:        m,
	}, nil
}

// Open probes the joystick slots.
func (j *Joystick) Open(logger *slog.Logger) (*gamepad.JoystickSource, error) {
	cfg, err := j.Config()
	if err != nil {
		return nil, err
	}
	return gamepad.OpenJoystickSource(cfg, logger), nil
}
