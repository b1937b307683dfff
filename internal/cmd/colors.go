package cmd

import (
	"os"
	"runtime"
	"strconv"

	"github.com/mattn/go-isatty"

	"github.com/runger/tubedash/internal/render"
)

// ANSI color codes for terminal output.
// These are initialized in init() and may be disabled on certain platforms.
var (
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[0;33m"
	colorCyan   = "\033[0;36m"
	colorDim    = "\033[2m"
	colorBold   = "\033[1m"
	colorReset  = "\033[0m"
)

// colorMode is the --color flag: auto, always, or never.
var colorMode = "auto"

func init() {
	if shouldDisableColors() {
		disableColors()
	}
}

func enableColors() {
	ansi := render.ANSI()
	colorRed = ansi.Red
	colorGreen = ansi.Green
	colorYellow = ansi.Yellow
	colorCyan = ansi.Cyan
	colorDim = ansi.Dim
	colorBold = ansi.Bold
	colorReset = ansi.Reset
}

func disableColors() {
	colorRed = ""
	colorGreen = ""
	colorYellow = ""
	colorCyan = ""
	colorDim = ""
	colorBold = ""
	colorReset = ""
}

// applyColorMode resolves --color against the environment and stdout.
func applyColorMode() {
	switch colorMode {
	case "always":
		enableColors()
	case "never":
		disableColors()
	default:
		if shouldDisableColors() || !isatty.IsTerminal(os.Stdout.Fd()) {
			disableColors()
		} else {
			enableColors()
		}
	}
}

func shouldDisableColors() bool {
	// https://no-color.org/
	if os.Getenv("NO_COLOR") != "" {
		return true
	}

	if os.Getenv("TERM") == "dumb" {
		return true
	}

	if runtime.GOOS == "windows" {
		if os.Getenv("WT_SESSION") != "" {
			return false
		}
		if os.Getenv("TERM_PROGRAM") != "" {
			return false
		}
		return os.Getenv("ANSICON") == "" && os.Getenv("ConEmuANSI") != "ON"
	}

	return false
}

// textStyle returns the current colors as a render style.
func textStyle() render.Style {
	return render.Style{
		Bold:   colorBold,
		Dim:    colorDim,
		Cyan:   colorCyan,
		Green:  colorGreen,
		Yellow: colorYellow,
		Red:    colorRed,
		Reset:  colorReset,
	}
}

// terminalWidth returns the stdout width from ioctl, then $COLUMNS, then 80.
func terminalWidth() int {
	if w := getTermWidthIoctl(); w > 0 {
		return w
	}
	if w, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && w > 0 {
		return w
	}
	return 80
}
