package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Alia5/InputRedirect/gamepad"
)

type Devices struct {
	Joystick Joystick `embed:"" prefix:"joystick."`
}

// Run is called by Kong when the devices command is executed.
func (d *Devices) Run(logger *slog.Logger) error {
	src, err := d.Joystick.Open(logger)
	if err != nil {
		return err
	}
	defer src.Close()
	return ListDevices(os.Stdout, src)
}

// ListDevices writes one "index: name (id N)" line per device of src.
func ListDevices(w io.Writer, src gamepad.Source) error {
	devices := src.Devices()
	if len(devices) == 0 {
		_, err := fmt.Fprintln(w, "No devices found")
		return err
	}
	for i, d := range devices {
		if _, err := fmt.Fprintf(w, "%d: %s\n", i, d); err != nil {
			return err
		}
	}
	return nil
}
