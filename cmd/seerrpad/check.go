package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmcdole/seerrpad/internal/adapter"
	"github.com/mmcdole/seerrpad/internal/adapter/source"
	"github.com/mmcdole/seerrpad/internal/domain"
	"github.com/mmcdole/seerrpad/internal/imagecache"
	"github.com/mmcdole/seerrpad/internal/tui/styles"
)

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                                  \r"

func newCheckCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Connect to the server and report its status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config:\n%w", err)
			}
			logger, closer := setupLogger(cfg)
			defer closer.Close()

			backend, err := source.NewBackend(cfg, logger)
			if err != nil {
				return err
			}
			defer backend.Close()

			return runCheck(cmd.Context(), cfg, backend, cmd.OutOrStdout())
		},
	}
}

// runCheck reports the server version and tries the poster host with
// one popular title
func runCheck(ctx context.Context, cfg *adapter.Config, backend *source.Backend, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Server.ConnectTimeout)
	defer cancel()

	version, err := withSpinner(ctx, out, "Connecting to "+cfg.Server.URL+"...", func() (string, error) {
		return backend.Check(ctx)
	})
	if err != nil {
		fmt.Fprintf(out, "✗ %s\n", describeError(err))
		return err
	}
	fmt.Fprintf(out, "✓ Jellyseerr %s at %s\n", version, cfg.Server.URL)

	items, err := backend.Catalog.ListPopular(ctx, domain.MediaTypeMovie, 1)
	if err != nil {
		fmt.Fprintf(out, "✗ Discover failed: %s\n", describeError(err))
		return err
	}
	fmt.Fprintf(out, "✓ Discover returned %d movies\n", len(items))

	var posterURL string
	for _, item := range items {
		if url := backend.Catalog.PosterURL(item.PosterPath); url != "" {
			posterURL = url
			break
		}
	}
	if posterURL == "" {
		fmt.Fprintln(out, "- No poster to fetch")
		return nil
	}

	load := imagecache.FetchLoader(ctx, cfg.Server.RequestTimeout, backend.Catalog.FetchImageBytes,
		imagecache.NewDecoder(cfg.Cache.PosterWidth, cfg.Cache.PosterHeight))
	img, err := load(posterURL)
	if err != nil {
		// posters are optional; the kiosk falls back to the placeholder
		fmt.Fprintf(out, "✗ Poster fetch failed: %s\n", describeError(err))
		return nil
	}
	b := img.Bounds()
	fmt.Fprintf(out, "✓ Poster host reachable (%dx%d)\n", b.Dx(), b.Dy())
	return nil
}

// describeError turns a catalog error into a short hint for the terminal
func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuthFailed):
		return "API key rejected"
	case errors.Is(err, domain.ErrServerOffline):
		return "server unreachable"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate limited"
	}
	return err.Error()
}

// withSpinner runs fn in the background and animates a spinner on out while
// it works. The spinner is only drawn on a terminal.
func withSpinner(ctx context.Context, out io.Writer, label string, fn func() (string, error)) (string, error) {
	type result struct {
		value string
		err   error
	}
	resultCh := make(chan result, 1)

	go func() {
		v, err := fn()
		resultCh <- result{v, err}
	}()

	if !isTerminal(out) {
		select {
		case res := <-resultCh:
			return res.value, res.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	frame := 0
	fmt.Fprintf(out, "\r%s %s", styles.SpinnerStyle.Render(styles.SpinnerFrames[frame]), label)

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case res := <-resultCh:
			fmt.Fprint(out, clearSpinnerLine)
			return res.value, res.err

		case <-ticker.C:
			frame++
			fmt.Fprintf(out, "\r%s %s", styles.SpinnerStyle.Render(styles.SpinnerFrames[frame%len(styles.SpinnerFrames)]), label)

		case <-ctx.Done():
			fmt.Fprint(out, clearSpinnerLine)
			return "", ctx.Err()
		}
	}
}

// runSetupFlow asks for the server and API key, checks them and saves the config
func runSetupFlow(ctx context.Context, cfg *adapter.Config, path string, stdin io.Reader, out io.Writer) error {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Welcome to seerrpad!")
	fmt.Fprintln(out)

	reader := bufio.NewReader(stdin)
	prompt := func(label, current string) (string, error) {
		if current != "" {
			fmt.Fprintf(out, "%s [%s]: ", label, current)
		} else {
			fmt.Fprintf(out, "%s: ", label)
		}
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
		return current, nil
	}

	for {
		url, err := prompt("Jellyseerr URL (e.g., http://192.168.1.100:5055)", cfg.Server.URL)
		if err != nil {
			return err
		}
		key, err := prompt("API key (Settings > General)", cfg.Server.APIKey)
		if err != nil {
			return err
		}
		if url == "" || key == "" {
			fmt.Fprintln(out, "Both the URL and the API key are required. Please try again.")
			continue
		}
		cfg.Server.URL = url
		cfg.Server.APIKey = key

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(out, "\n%v\n\n", err)
			continue
		}

		backend, err := source.NewBackend(cfg, adapter.NullLogger())
		if err != nil {
			return err
		}
		checkCtx, cancel := context.WithTimeout(ctx, cfg.Server.ConnectTimeout)
		version, err := withSpinner(checkCtx, out, "Connecting...", func() (string, error) {
			return backend.Check(checkCtx)
		})
		cancel()
		backend.Close()

		if err != nil {
			fmt.Fprintf(out, "\n✗ Could not connect: %s\n", describeError(err))
			fmt.Fprintln(out, "Please check the URL and API key and try again.")
			fmt.Fprintln(out)
			continue
		}
		fmt.Fprintf(out, "✓ Connected to Jellyseerr %s\n", version)
		break
	}

	if err := adapter.SaveConfig(cfg, path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "✓ Configuration saved to %s\n", path)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run seerrpad again to start the kiosk.")
	return nil
}
