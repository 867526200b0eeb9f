package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"go.uber.org/zap"

	mdApp "mdnotes/internal/app"
	"mdnotes/internal/config"
	"mdnotes/internal/logging"
	"mdnotes/internal/service"
	"mdnotes/internal/storage"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	dataDir := config.DefaultDataDir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	cfg, err := config.Load(dataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogOptions())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// `mdnotes mcp` serves agents over stdio without opening a window.
	if len(os.Args) > 1 && os.Args[1] == "mcp" {
		if err := mdApp.ServeMCP(cfg, logger.Named("mcp-stdio")); err != nil {
			logger.Error("mcp server", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	app := mdApp.New(cfg, logger)
	size := savedWindowSize(cfg)

	// macOS needs an Edit menu for Cmd+C/V/X/A to reach the WebView
	appMenu := menu.NewMenu()
	appMenu.Append(menu.EditMenu())

	err = wails.Run(&options.App{
		Title:     "mdnotes",
		Width:     size.Width,
		Height:    size.Height,
		MinWidth:  800,
		MinHeight: 600,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 15, G: 15, B: 20, A: 1},
		Menu:             appMenu,
		OnStartup:        app.Startup,
		OnShutdown:       app.Shutdown,
		Bind: []interface{}{
			app,
		},
		Mac: &mac.Options{
			TitleBar: &mac.TitleBar{
				TitlebarAppearsTransparent: true,
				HideTitle:                  true,
				HideTitleBar:               false,
				FullSizeContent:            true,
				UseToolbar:                 true,
				HideToolbarSeparator:       true,
			},
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			About: &mac.AboutInfo{
				Title:   "mdnotes",
				Message: "Hybrid Markdown notes: rendered blocks, raw source on focus",
			},
		},
	})

	if err != nil {
		logger.Error("wails", zap.Error(err))
		println("Error:", err.Error())
	}
}

// savedWindowSize reads the window size stored by the previous session.
func savedWindowSize(cfg *config.Config) service.WindowSize {
	db, err := storage.New(cfg.DBPath())
	if err != nil {
		return service.NewSettingsService(nil).LoadWindowSize()
	}
	defer db.Close()
	return service.NewSettingsService(db).LoadWindowSize()
}
