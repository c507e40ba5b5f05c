package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/loremIpsum6321/roomplanner/internal/auth"
	"github.com/loremIpsum6321/roomplanner/internal/config"
	mw "github.com/loremIpsum6321/roomplanner/internal/middleware"
	"github.com/loremIpsum6321/roomplanner/internal/planapi"
	"github.com/loremIpsum6321/roomplanner/internal/render"
	"github.com/loremIpsum6321/roomplanner/internal/session"
	"github.com/loremIpsum6321/roomplanner/internal/store"
	"github.com/loremIpsum6321/roomplanner/internal/typeid"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	renderer, err := render.New()
	if err != nil {
		slog.Error("init renderer", "error", err)
		os.Exit(1)
	}

	authService := auth.NewService(st, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	planService := planapi.NewService(st, cfg.MaxCanvasWidth, cfg.MaxCanvasHeight)

	hub := session.NewHub(func(ctx context.Context, planID string) (*session.Session, error) {
		return session.New(ctx, planID, st, cfg.MaxCanvasWidth, cfg.MaxCanvasHeight, typeid.NewObjectID)
	})
	go hub.Run()

	planHandler := planapi.NewHandler(planService, hub, renderer)

	r := mux.NewRouter()

	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.AllowedOrigins))

	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.Middleware)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/catalog", planHandler.Catalog).Methods("GET")
	api.HandleFunc("/plans", planHandler.List).Methods("GET")
	api.HandleFunc("/plans", planHandler.Create).Methods("POST")
	api.HandleFunc("/plans/{planId}", planHandler.Get).Methods("GET")
	api.HandleFunc("/plans/{planId}", planHandler.Delete).Methods("DELETE")
	api.HandleFunc("/plans/{planId}/layout", planHandler.GetLayout).Methods("GET")
	api.HandleFunc("/plans/{planId}/render", planHandler.RenderPNG).Methods("GET")

	r.HandleFunc("/ws/plan/{planId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, planService, cfg)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop the hub first so every open session flushes its layout.
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "store", cfg.StoreDriver)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		return store.OpenSQLite(cfg.SQLitePath)
	case "postgres":
		return store.OpenPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *session.Hub, authSvc *auth.Service, planSvc *planapi.Service, cfg *config.Config) {
	planID := mux.Vars(r)["planId"]

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	userID, err := authSvc.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	if err := planSvc.CheckAccess(r.Context(), planID, userID); err != nil {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(cfg.AllowedOrigins),
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := session.NewClient(hub, conn, userID, planID, uuid.New().String())
	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

func originPatterns(allowedOrigins string) []string {
	var patterns []string
	for _, origin := range strings.Split(allowedOrigins, ",") {
		origin = strings.TrimSpace(origin)
		origin = strings.TrimPrefix(origin, "http://")
		origin = strings.TrimPrefix(origin, "https://")
		if origin != "" {
			patterns = append(patterns, origin)
		}
	}
	return patterns
}
