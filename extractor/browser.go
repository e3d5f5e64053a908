package extractor

import (
	"fmt"
	"log"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// NewBrowser launches the shared headless browser. A system Chromium is
// preferred when one is installed (container images ship it at a fixed
// path); otherwise the launcher auto-detects a local binary.
func NewBrowser(bin string) (*rod.Browser, error) {
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Leakless(false)

	if bin == "" {
		if _, err := os.Stat("/usr/bin/chromium-browser"); err == nil {
			bin = "/usr/bin/chromium-browser"
		}
	}
	if bin != "" {
		l = l.Bin(bin)
		log.Printf("Using system browser at: %s", bin)
	} else {
		log.Printf("Using auto-detected browser")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %v", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %v", err)
	}
	return browser, nil
}
