//go:build !console

package main

import (
	"fmt"

	webview "github.com/webview/webview_go"
)

// runEmbeddedUI starts the web server and opens an embedded browser window
func runEmbeddedUI(app *App) error {
	// Embedded mode always binds an ephemeral local port
	ws := NewWebServer(app, "localhost:0")

	// Start server and get URL
	url, cleanup, err := ws.StartForEmbedded()
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	defer cleanup()

	// Create webview window (false = no debug mode)
	w := webview.New(false)
	defer w.Destroy()

	w.SetTitle("保障整理表 Insurance Quote Comparison")
	w.SetSize(1280, 860, webview.HintNone)
	w.Navigate(url)

	// Run blocks until window is closed
	w.Run()

	return nil
}

// runGUI starts the graphical user interface (uses embedded browser)
func runGUI(app *App) error {
	return runEmbeddedUI(app)
}
