// Package main is the entry point of the application
package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pvoicu/chessroom/pkg/config"
	"github.com/pvoicu/chessroom/pkg/events"
	"github.com/pvoicu/chessroom/pkg/game"
	"github.com/pvoicu/chessroom/pkg/rules"
	"github.com/pvoicu/chessroom/pkg/server"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,

	CheckOrigin: func(r *http.Request) bool {
		path := os.Getenv("FRONTEND_PATH")
		return path == "" || path == r.Header.Get("Origin")
	},
}

// application encapsulates global dependencies
type application struct {
	Logger    *zap.Logger
	Config    *config.Config
	Publisher *events.Publisher
	Hub       *server.Hub
	Server    *http.Server

	StartTime time.Time
}

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	port := flag.String("port", "", "server port (overrides config)")
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// Initialize logger
	logger := initLogger(*debug)
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", zap.Error(err))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("loading config error", zap.Error(err))
	}
	cfg.Debug = cfg.Debug || *debug
	if *port != "" {
		cfg.Port = *port
	}

	// Initialize event publisher and its logging subscriber
	publisher := events.NewPublisher()
	publisher.SubscribeAll(func(event events.Event) {
		logger.Debug("event",
			zap.String("type", string(event.Type)),
			zap.String("session_id", event.SessionID))
	})

	// Initialize the rules oracle and the session manager
	oracle := rules.NewChessOracle()
	manager := game.NewManager(cfg, oracle, clockwork.NewRealClock(), publisher, logger)

	hub := server.NewHub(manager, logger)

	app := &application{
		Logger:    logger,
		Config:    cfg,
		Publisher: publisher,
		Hub:       hub,
		StartTime: time.Now(),
	}

	go app.Hub.Run()

	if err := app.serve(); err != nil {
		logger.Fatal("error serving", zap.Error(err))
	}
}

func initLogger(debug bool) *zap.Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	return logger
}

// Shutdown cleans up resources
func (app *application) Shutdown() {
	if app.Hub != nil {
		app.Hub.Shutdown()
	}

	app.Logger.Info("All components shut down successfully")
}
