package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Launcher opens trailers in an external video player and everything else
// (maps, ticketing pages) in the system browser.
type Launcher struct {
	command string   // configured player command, empty to auto-detect
	args    []string // additional arguments for the player
	logger  *slog.Logger

	// start runs a command without waiting for it; swapped in tests
	start func(name string, args ...string) error
	// run waits for the command, so "open -a" can report a missing app
	run func(name string, args ...string) error
	// lookPath reports whether a command is installed
	lookPath func(name string) (string, error)
}

// launchPath defines a single way to launch a player
type launchPath struct {
	path      string   // Command path: "mpv", "vlc", or "open-a:AppName"
	openFlags []string // For "open-a:" paths only - flags for macOS open command
}

// players lists the trailer players we know how to start, per platform
var players = map[string]map[string][]launchPath{
	"mpv": {
		"darwin":  {{path: "mpv"}},
		"linux":   {{path: "mpv"}},
		"windows": {{path: "mpv"}},
	},
	"vlc": {
		"darwin":  {{path: "vlc"}, {path: "open-a:VLC"}},
		"linux":   {{path: "vlc"}},
		"windows": {{path: "vlc"}},
	},
	"iina": {
		"darwin": {{path: "open-a:IINA", openFlags: []string{"-n"}}},
	},
	"celluloid": {
		"linux": {{path: "celluloid"}},
	},
}

// candidatePlayers defines the preferred player order for each platform
var candidatePlayers = map[string][]string{
	"darwin":  {"iina", "vlc", "mpv"},
	"linux":   {"mpv", "celluloid", "vlc"},
	"windows": {"vlc", "mpv"},
}

// NewLauncher creates a launcher from the player configuration
func NewLauncher(cfg PlayerConfig, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:  cfg.Command,
		args:     cfg.Args,
		logger:   logger,
		start:    startCommand,
		run:      runCommand,
		lookPath: exec.LookPath,
	}
}

func startCommand(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

func runCommand(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// PlayTrailer opens url in the configured player, the first installed
// candidate player, or the system default handler, in that order.
func (l *Launcher) PlayTrailer(url string) error {
	if url == "" {
		return fmt.Errorf("no trailer URL")
	}

	// Tier 1: User configured a specific player
	if l.command != "" {
		args := append(append([]string{}, l.args...), url)
		l.logger.Info("launching configured player", "command", l.command, "args", args)
		return l.start(l.command, args...)
	}

	// Tier 2: Try candidate chain
	if name, ok := l.detectAndLaunch(url); ok {
		l.logger.Info("launched trailer", "player", name)
		return nil
	}

	// Tier 3: Fall back to system default
	l.logger.Info("no candidate players found, using system default")
	return l.OpenURL(url)
}

func (l *Launcher) detectAndLaunch(url string) (string, bool) {
	candidates, ok := candidatePlayers[runtime.GOOS]
	if !ok {
		candidates = candidatePlayers["linux"]
	}

	for _, name := range candidates {
		for _, lp := range players[name][runtime.GOOS] {
			var err error
			if app, ok := strings.CutPrefix(lp.path, "open-a:"); ok {
				args := append(append([]string{}, lp.openFlags...), "-a", app, url)
				err = l.run("open", args...)
			} else if _, err = l.lookPath(lp.path); err == nil {
				err = l.start(lp.path, url)
			}

			if err == nil {
				return name, true
			}
			l.logger.Debug("launch path not available", "player", name, "path", lp.path, "error", err)
		}
	}
	return "", false
}

// OpenURL opens url with the system default handler
func (l *Launcher) OpenURL(url string) error {
	if url == "" {
		return fmt.Errorf("no URL to open")
	}

	var name string
	var args []string
	switch runtime.GOOS {
	case "darwin":
		name, args = "open", []string{url}
	case "windows":
		name, args = "cmd", []string{"/c", "start", "", url}
	default:
		// Linux and other Unix-like systems
		name, args = "xdg-open", []string{url}
	}

	l.logger.Info("opening with system default", "os", runtime.GOOS, "url", url)
	return l.start(name, args...)
}

// PlayerName returns the configured player's base name, or "auto"
func (l *Launcher) PlayerName() string {
	if l.command == "" {
		return "auto"
	}
	base := filepath.Base(l.command)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
