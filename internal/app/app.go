package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	server "breach-and-block/server"
	"breach-and-block/server/internal/net/ws"
)

// Config is read from the environment at startup.
type Config struct {
	Addr         string `env:"ADDR" envDefault:":8080"`
	CommandsFile string `env:"COMMANDS_FILE"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON      bool   `env:"LOG_JSON" envDefault:"false"`
}

// Run wires the hub, the websocket handler and the HTTP endpoints, then
// serves until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	catalog := server.DefaultCatalog()
	if cfg.CommandsFile != "" {
		catalog, err = server.LoadCatalog(cfg.CommandsFile)
		if err != nil {
			return err
		}
		logger.Info().Str("path", cfg.CommandsFile).Msg("loaded command catalog override")
	}

	hub := server.NewHub(server.HubConfig{Logger: logger, Catalog: catalog})
	handler := ws.NewHandler(hub, ws.HandlerConfig{Logger: logger})

	mux := http.NewServeMux()
	mux.HandleFunc("/game", handler.Handle)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w http.ResponseWriter, r *http.Request) {
		payload := struct {
			Status     string            `json:"status"`
			ServerTime int64             `json:"serverTime"`
			Rooms      []server.RoomInfo `json:"rooms"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Rooms:      hub.DiagnosticsSnapshot(),
		}
		data, err := json.Marshal(payload)
		if err != nil {
			http.Error(w, "failed to encode", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<h1>Hacker vs Defender Server</h1>"))
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", cfg.Addr).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func newLogger(cfg Config) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	if cfg.LogJSON {
		return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger(), nil
	}
	writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger(), nil
}
