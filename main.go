package main

import (
	"embed"
	"path/filepath"

	dbsqlite "github.com/bestony/mintranslate/internal/adapters/db/sqlite"
	"github.com/bestony/mintranslate/internal/adapters/kvstore"
	llmfactory "github.com/bestony/mintranslate/internal/adapters/llm/factory"
	apiapp "github.com/bestony/mintranslate/internal/api/app"
	"github.com/bestony/mintranslate/internal/state"
	settingsusecase "github.com/bestony/mintranslate/internal/usecase/settings"
	translateusecase "github.com/bestony/mintranslate/internal/usecase/translate"

	log "github.com/sirupsen/logrus"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

const dataDir = "data"

func main() {
	// Local settings mirror (providers, default id, lang pair, prompt copy)
	kv := kvstore.Open(filepath.Join(dataDir, "settings.json"))

	// Durable storage for the system prompt and translation history
	db, dberr := dbsqlite.Init(filepath.Join(dataDir, "mintranslate.db"))
	if dberr != nil {
		log.WithError(dberr).Fatal("open database")
	}
	settingsRepo := dbsqlite.NewSettingsRepo(db)
	historyRepo := dbsqlite.NewHistoryRepo(db)

	// State store seeded with the locally mirrored prompt; the durable copy
	// replaces it during startup hydration.
	store := state.NewStore(settingsusecase.ReadOptimisticSystemPrompt(kv))
	settingsSvc := settingsusecase.New(store, kv, settingsRepo)

	orch := translateusecase.NewOrchestrator(translateusecase.Deps{
		Store:       store,
		History:     historyRepo,
		BuildClient: llmfactory.FromProvider,
	})

	app := NewApp(store, settingsSvc, orch)

	// API bindings
	translateAPI := apiapp.NewTranslateAPI(store, settingsSvc)
	providerAPI := apiapp.NewProviderAPI(store, settingsSvc)
	settingsAPI := apiapp.NewSettingsAPI(store, settingsSvc)
	historyAPI := apiapp.NewHistoryAPI(historyRepo)

	// Create application with options
	err := wails.Run(&options.App{
		Title:  "mintranslate",
		Width:  1024,
		Height: 768,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup:        app.startup,
		OnShutdown:       app.shutdown,
		Bind: []interface{}{
			app,
			translateAPI,
			providerAPI,
			settingsAPI,
			historyAPI,
		},
	})

	if err != nil {
		println("Error:", err.Error())
	}
}
