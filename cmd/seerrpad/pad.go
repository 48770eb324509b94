package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmcdole/seerrpad/internal/adapter"
	"github.com/mmcdole/seerrpad/internal/input"
)

func newPadCmd(opts *cliOptions) *cobra.Command {
	var device string

	cmd := &cobra.Command{
		Use:   "pad",
		Short: "Print controller events until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if device == "" {
				device = cfg.Controller.Device
			}

			f, err := os.Open(device)
			if err != nil {
				return fmt.Errorf("open joystick %s: %w", device, err)
			}
			go func() {
				<-cmd.Context().Done()
				f.Close()
			}()

			name := input.DeviceName(device)
			profile := input.ResolveProfile(cfg.Controller.Profile, name)
			return runPad(cmd.Context(), f, name, profile, cfg, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&device, "device", "", "joystick device (default controller.device)")
	return cmd
}

// runPad prints every js_event read from src along with what the kiosk
// would make of it
func runPad(ctx context.Context, src io.ReadCloser, name string, profile input.ControllerProfile, cfg *adapter.Config, out io.Writer) error {
	defer src.Close()

	fmt.Fprintf(out, "Controller: %s\n", name)
	fmt.Fprintf(out, "Profile:    %s (A=%d B=%d X=%d Y=%d START=%d)\n",
		profile.Name, profile.A, profile.B, profile.X, profile.Y, profile.Start)
	fmt.Fprintf(out, "Deadzone:   %.2f\n\n", cfg.Controller.Deadzone)

	var x, y float64
	for {
		ev, err := input.ReadRawEvent(src)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read joystick: %w", err)
		}

		kind := "axis"
		if ev.Kind() == input.RawButton {
			kind = "button"
		}
		suffix := ""
		if ev.IsInit() {
			suffix = " (init)"
		}
		line := fmt.Sprintf("%-6s %2d = %6d%s", kind, ev.Number, ev.Value, suffix)

		switch {
		case ev.Kind() == input.RawButton && ev.Value == 1 && !ev.IsInit():
			if action, ok := profile.ButtonAction(ev.Number); ok {
				line += "  -> " + action.String()
			}
		case ev.Kind() == input.RawAxis && ev.Number <= 1:
			v := float64(ev.Value) / 32767
			if ev.Number == 0 {
				x = v
			} else {
				y = v
			}
			if action, ok := input.StickDirection(x, y, cfg.Controller.Deadzone); ok {
				line += "  -> " + action.String()
			}
		}
		fmt.Fprintln(out, line)
	}
}
