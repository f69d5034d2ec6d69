package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"netlens/internal/clock"
	"netlens/internal/config"
	"netlens/internal/engine"
	"netlens/internal/handler"
	"netlens/internal/hub"
	"netlens/internal/loader"
	"netlens/internal/logging"
	"netlens/internal/observability"
	"netlens/internal/remote"
	"netlens/internal/render"
	"netlens/internal/repository/sqlite"
	"netlens/internal/service"
	"netlens/internal/source"
	"netlens/internal/watcher"
)

func serveCmd(root *rootOptions) *cobra.Command {
	var (
		addr      string
		dbPath    string
		remoteURL string
		topology  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard, API and event streams",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cfgPath, log, err := root.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("db") {
				cfg.Database.Path = dbPath
			}
			if cmd.Flags().Changed("remote") {
				cfg.Remote.BaseURL = remoteURL
			}
			if cmd.Flags().Changed("topology") {
				cfg.Topology = topology
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, cfgPath, log)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":3000", "HTTP listen address")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path for saved topologies")
	cmd.Flags().StringVar(&remoteURL, "remote", "", "Base URL of the routing simulation service")
	cmd.Flags().StringVar(&topology, "topology", "", "Initial library topology")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, cfgPath string, log logging.Logger) error {
	log.Info(ctx, "starting netlens", logging.String("version", version), logging.String("config", cfgPath))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewCollector(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	eng, err := engine.New(cfg.Render, clock.New(clock.RealSource()), log)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	eng.SetRecorder(metrics)
	eng.SetAnimateAll(cfg.Render.AnimateAll)

	eventBus := service.NewEventBus()
	svc := service.NewTopologyService(eng, loader.New(log).WithRecorder(metrics), eventBus, log).
		WithGauges(metrics)

	if cfg.Database.Path != "" {
		repo, err := sqlite.New(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer repo.Close()
		svc.WithRepository(repo)
		log.Info(ctx, "database opened", logging.String("path", cfg.Database.Path))
	}

	if cfg.Remote.BaseURL != "" {
		client, err := remote.New(cfg.Remote.BaseURL, cfg.Remote.Timeout.Duration(), log)
		if err != nil {
			return fmt.Errorf("configure remote: %w", err)
		}
		svc.WithRemote(client.WithRecorder(metrics))
		log.Info(ctx, "using simulation service", logging.String("base_url", client.BaseURL()))
	}

	// Server-Sent Events: bus events and, while anyone listens, frames
	sseHub := hub.New(log)
	frames := &frameStream{eng: eng, hub: sseHub}
	sseHub.OnClientsChanged(func(n int) {
		metrics.SetStreamClients(n)
		frames.clients(n)
	})
	go sseHub.Run(ctx)

	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go func() {
		for {
			select {
			case event := <-eventChan:
				sseHub.Broadcast(string(event.Type), event.Payload)
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error(ctx, "render loop stopped", logging.Err(err))
		}
	}()

	if err := svc.Switch(ctx, cfg.Topology); err != nil {
		log.Warn(ctx, "initial topology not loaded", logging.String("topology", cfg.Topology), logging.Err(err))
	}

	sources, err := registerSources(cfg, svc, log)
	if err != nil {
		return fmt.Errorf("register sources: %w", err)
	}
	if len(cfg.Watch.Files) > 0 {
		if err := sources.TriggerSync(ctx, fileSource(cfg.Watch.Files[0])); err != nil {
			log.Warn(ctx, "watched topology not loaded", logging.Err(err))
		}
		w := watcher.New(cfg.Watch.Files, func(ctx context.Context, path string) error {
			return sources.TriggerSync(ctx, fileSource(path))
		}, log).WithDebounce(cfg.Watch.Debounce.Duration())
		go runWatcher(ctx, w, log)
	}
	sources.Start(ctx)
	defer sources.Stop()

	if cfgPath != "" {
		w := watcher.New([]string{cfgPath}, func(ctx context.Context, path string) error {
			next, _, err := config.LoadFromPath(path)
			if err != nil {
				return err
			}
			return eng.UpdateConfig(next.Render)
		}, log)
		go runWatcher(ctx, w, log)
	}

	webContent, err := fs.Sub(webFS, "web")
	if err != nil {
		return fmt.Errorf("embedded web content: %w", err)
	}

	mux := http.NewServeMux()
	api := handler.NewTopologyHandler(svc, log)
	api.SetSources(sources)
	api.Register(mux)
	mux.Handle("GET /events", sseHub)
	mux.Handle("GET /ws", handler.NewWSHandler(svc, log))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("/", http.FileServer(http.FS(webContent)))

	finalHandler := handler.Chain(mux,
		handler.RequestID,
		handler.Recover(log),
		handler.CORS,
		handler.Logger(log),
		metrics.Middleware,
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      finalHandler,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:  cfg.Server.IdleTimeout.Duration(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server listening", logging.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown error", logging.Err(err))
	}
	log.Info(shutdownCtx, "server stopped")
	return nil
}

// registerSources exposes every configured topology origin as a source. The
// remote service polls when an interval is set; files sync on demand and on
// change.
func registerSources(cfg *config.Config, svc *service.TopologyService, log logging.Logger) (*source.Registry, error) {
	reg := source.NewRegistry(log)

	if svc.HasRemote() {
		kind := source.KindOneShot
		if cfg.Remote.PollInterval > 0 {
			kind = source.KindPolling
		}
		err := reg.Register(source.Func{
			SourceName: "remote",
			SourceKind: kind,
			SyncFunc:   svc.Refresh,
		}, source.Config{Enabled: true, PollInterval: cfg.Remote.PollInterval.Duration()})
		if err != nil {
			return nil, err
		}
	}

	for _, path := range cfg.Watch.Files {
		path := path
		err := reg.Register(source.Func{
			SourceName: fileSource(path),
			SourceKind: source.KindOneShot,
			SyncFunc: func(ctx context.Context) error {
				return svc.ReloadFile(ctx, path)
			},
		}, source.Config{Enabled: true})
		if err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func fileSource(path string) string {
	return "file:" + filepath.Base(path)
}

func runWatcher(ctx context.Context, w *watcher.Watcher, log logging.Logger) {
	if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn(ctx, "file watch stopped", logging.Err(err))
	}
}

// frameStream subscribes the SSE hub to engine frames only while at least
// one client is connected, so an idle server does not repaint
type frameStream struct {
	eng *engine.Engine
	hub *hub.Hub

	mu          sync.Mutex
	unsubscribe func()
}

func (s *frameStream) clients(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case n > 0 && s.unsubscribe == nil:
		s.unsubscribe = s.eng.Subscribe(func(f render.Frame) {
			s.hub.Broadcast("frame", handler.NewFramePayload(f))
		})
		s.eng.MarkDirty()
	case n == 0 && s.unsubscribe != nil:
		s.unsubscribe()
		s.unsubscribe = nil
	}
}
