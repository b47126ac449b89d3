package dynamic

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
)

// chromeNames are looked up on PATH when no install location matches.
var chromeNames = []string{
	"google-chrome-stable", "google-chrome", "chromium", "chromium-browser",
	"chrome", "msedge", "brave-browser", "brave",
}

// installLocations lists where Chromium-family browsers are usually installed
// on goos. home and the Windows program directories are taken from env.
func installLocations(goos string, env func(string) string) []string {
	home := env("HOME")
	var paths []string

	switch goos {
	case "darwin":
		for _, app := range []string{"Google Chrome", "Chromium", "Microsoft Edge", "Brave Browser"} {
			bin := filepath.Join(app+".app", "Contents", "MacOS", app)
			paths = append(paths, filepath.Join("/Applications", bin))
			if home != "" {
				paths = append(paths, filepath.Join(home, "Applications", bin))
			}
		}
	case "windows":
		for _, key := range []string{"ProgramFiles", "ProgramFiles(x86)", "LocalAppData"} {
			base := env(key)
			if base == "" {
				continue
			}
			paths = append(paths,
				filepath.Join(base, "Google", "Chrome", "Application", "chrome.exe"),
				filepath.Join(base, "Chromium", "Application", "chrome.exe"),
				filepath.Join(base, "Microsoft", "Edge", "Application", "msedge.exe"),
			)
		}
	default:
		for _, name := range []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser", "microsoft-edge"} {
			paths = append(paths, filepath.Join("/usr/bin", name))
		}
		paths = append(paths, "/snap/bin/chromium")
		if home != "" {
			paths = append(paths, filepath.Join(home, ".local/share/flatpak/exports/bin/org.chromium.Chromium"))
		}
	}
	return paths
}

// FindChrome returns the browser binary to launch. An explicit path is used
// when it is executable; otherwise install locations and PATH are searched.
// An empty result lets chromedp fall back to its own lookup.
func FindChrome(explicit string) string {
	if explicit != "" {
		if isExecutable(explicit) {
			return explicit
		}
		log.Warn().Str("path", explicit).Msg("Configured Chrome path is not executable, searching")
	}

	for _, p := range installLocations(runtime.GOOS, os.Getenv) {
		if isExecutable(p) {
			log.Debug().Str("path", p).Msg("Using installed browser")
			return p
		}
	}
	for _, name := range chromeNames {
		if p, err := exec.LookPath(name); err == nil {
			log.Debug().Str("path", p).Msg("Using browser from PATH")
			return p
		}
	}

	log.Warn().Str("os", runtime.GOOS).Msg("No Chrome installation found")
	return ""
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return runtime.GOOS == "windows" || info.Mode()&0o111 != 0
}
