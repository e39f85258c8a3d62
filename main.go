package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

func main() {
	// Custom usage message
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Insurance Quote Comparison  保障整理表

Builds a side-by-side comparison of up to four insurance quotes for one
customer and exports it as PDF, Excel or a printable HTML page.

The wizard has four steps:
  1. 客户资料 Customer      Name and date of birth (age is calculated)
  2. 方案配置 Products      Base product and riders for each plan
  3. 保额详情 Benefits      Sums assured, premiums, rider options, advisor
  4. 保障对比 Comparison    The comparison table and exports

Usage:
  %s [options]

Options:
`, os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  %s                           Desktop window (embedded browser)
  %s -console                  Console wizard
  %s -web                      Web server mode (opens external browser)
  %s -web -addr :8080          Web server on specific port
  %s -pdf -xlsx -html          Export the saved session without prompting
  %s -pdf -lang EN -out ./out  English PDF into ./out

Settings:
  Application settings are read from insurepro.yaml (see -settings), a .env
  file and INSUREPRO_* environment variables, e.g.
    INSUREPRO_PROFILES_BACKEND=redis INSUREPRO_REDIS_ADDR=localhost:6379
    INSUREPRO_REPORT_FONT_FILE=/path/to/NotoSansSC.ttf  (Chinese text in PDFs)
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
	}

	// Command line flags
	sessionFile := flag.String("session", "session.yaml", "Path to the YAML quote session")
	settingsFile := flag.String("settings", "insurepro.yaml", "Path to the application settings file")
	consoleMode := flag.Bool("console", false, "Use console interface instead of GUI (default is GUI)")
	webMode := flag.Bool("web", false, "Start web server mode (opens external browser)")
	uiMode := flag.Bool("ui", false, "Start embedded browser mode (webview window)")
	webAddr := flag.String("addr", "", "Web server address (default from settings, use :0 for auto port)")
	exportHTML := flag.Bool("html", false, "Export the session as a printable HTML page")
	exportPDF := flag.Bool("pdf", false, "Export the session as a PDF")
	exportXLSX := flag.Bool("xlsx", false, "Export the session as an Excel workbook")
	lang := flag.String("lang", "", "Report language: CN or EN (default from settings)")
	outDir := flag.String("out", "", "Export directory (default from settings)")
	flag.Parse()

	settings, err := LoadSettings(*settingsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		os.Exit(1)
	}
	if *lang != "" {
		settings.Report.Lang = string(ParseLang(*lang))
	}
	if *outDir != "" {
		settings.Export.Dir = *outDir
	}
	if *webAddr != "" {
		settings.Web.Addr = *webAddr
	}

	logger := NewLogger(settings.Log.Level, settings.Log.Format)
	defer logger.Sync()

	app, err := NewApp(settings, *sessionFile, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Batch export mode
	var formats []ExportFormat
	if *exportPDF {
		formats = append(formats, ExportPDF)
	}
	if *exportXLSX {
		formats = append(formats, ExportXLSX)
	}
	if *exportHTML {
		formats = append(formats, ExportHTML)
	}
	if len(formats) > 0 {
		if err := app.ExportAll(formats); err != nil {
			fmt.Fprintf(os.Stderr, "Export error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Embedded browser mode
	if *uiMode {
		if err := runEmbeddedUI(app); err != nil {
			fmt.Fprintf(os.Stderr, "Embedded UI error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Web server mode (external browser)
	if *webMode {
		server := NewWebServer(app, settings.Web.Addr)
		if err := server.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Web server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *consoleMode {
		runConsoleMode(ctx, app)
		return
	}

	// Default: GUI mode
	err = runGUI(app)
	if err != nil {
		fmt.Fprintf(os.Stderr, "GUI error: %v\n", err)
		// Fall back to console mode if GUI fails
		fmt.Println("Falling back to console mode...")
		runConsoleMode(ctx, app)
	}
}

// App wires the wizard to its collaborators
type App struct {
	Settings    *Settings
	Logger      *zap.Logger
	Wizard      *Wizard
	Exporter    *Exporter
	Profiles    *ProfileLibrary
	SessionFile string

	closeStore func() error
}

// NewApp loads the session (or the built-in default) and opens the profile store
func NewApp(settings *Settings, sessionFile string, logger *zap.Logger) (*App, error) {
	session, err := LoadSession(sessionFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load session: %w", err)
		}
		logger.Info("no saved session, starting from defaults", zap.String("file", sessionFile))
		session, err = LoadDefaultSession()
		if err != nil {
			return nil, fmt.Errorf("load default session: %w", err)
		}
	}

	store, closeStore, err := NewProfileStore(settings)
	if err != nil {
		return nil, err
	}

	wizardLog := logger.Named("wizard")
	wizard := NewWizard(session, WithTransitionHook(func(from, to WizardStep) {
		wizardLog.Debug("step changed", zap.Stringer("from", from), zap.Stringer("to", to))
	}))

	return &App{
		Settings:    settings,
		Logger:      logger,
		Wizard:      wizard,
		Exporter:    NewExporter(settings, logger.Named("export")),
		Profiles:    NewProfileLibrary(store, logger.Named("profiles")),
		SessionFile: sessionFile,
		closeStore:  closeStore,
	}, nil
}

// Close releases the profile store
func (a *App) Close() {
	if a.closeStore == nil {
		return
	}
	if err := a.closeStore(); err != nil {
		a.Logger.Warn("failed to close profile store", zap.Error(err))
	}
}

// ExportAll renders the current session in every format into the export directory
func (a *App) ExportAll(formats []ExportFormat) error {
	state := a.Wizard.Snapshot()
	if len(state.Slots) == 0 {
		return ValidationError{Field: "slots", Message: ErrNoConfiguredSlot.Error(), Err: ErrNoConfiguredSlot}
	}

	var failed []string
	for _, format := range formats {
		path, err := a.Exporter.ExportToDir(format, state, a.Settings.Export.Dir)
		if err != nil {
			failed = append(failed, err.Error())
			continue
		}
		fmt.Printf("  ✓ %s\n", path)
	}
	if len(failed) > 0 {
		return errors.New(strings.Join(failed, "; "))
	}
	return nil
}

// runConsoleMode runs the application in console/terminal mode
func runConsoleMode(ctx context.Context, app *App) {
	console := NewConsoleWizard(os.Stdin, os.Stdout, app.Wizard, app.Exporter, app.Profiles)
	console.exportDir = app.Settings.Export.Dir
	console.sessionFile = app.SessionFile
	console.logger = app.Logger.Named("console")

	if err := console.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openBrowser opens a file or URL in the default browser
func openBrowser(target string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", target)
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", target)
	default:
		fmt.Fprintf(os.Stderr, "Cannot open browser on %s\n", runtime.GOOS)
		return
	}

	err := cmd.Start()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening browser: %v\n", err)
	}
}
