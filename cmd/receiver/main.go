package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"

	clipboardhandler "github.com/duoduojuzi/fastsync-receiver/internal/api/handlers/clipboard"
	photohandler "github.com/duoduojuzi/fastsync-receiver/internal/api/handlers/photo"
	smshandler "github.com/duoduojuzi/fastsync-receiver/internal/api/handlers/sms"
	"github.com/duoduojuzi/fastsync-receiver/internal/api/router"
	"github.com/duoduojuzi/fastsync-receiver/internal/api/server"
	"github.com/duoduojuzi/fastsync-receiver/internal/appid"
	"github.com/duoduojuzi/fastsync-receiver/internal/config"
	"github.com/duoduojuzi/fastsync-receiver/internal/discovery"
	"github.com/duoduojuzi/fastsync-receiver/internal/dispatch"
	"github.com/duoduojuzi/fastsync-receiver/internal/netutil"
	"github.com/duoduojuzi/fastsync-receiver/internal/notify"
	"github.com/duoduojuzi/fastsync-receiver/internal/platform"
	"github.com/duoduojuzi/fastsync-receiver/internal/tray"
)

func main() {
	// Faults on the UI path are fatal and the one place failure is surfaced
	// to the user synchronously.
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("A fatal error occurred:\n%v", r)
			platform.ShowError("FastSync Error", msg)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()
	cfg := config.Must()
	val := validator.New()

	if err := appid.Register(); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to register application identity")
	}

	registry := notify.NewRegistry()

	var surface notify.Surface = notify.Discard{}
	dbusSurface, err := notify.NewDBusSurface(cfg.Notify.AppName, appid.DesktopEntry)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("notification surface unavailable, content will be accepted but not displayed")
	} else {
		surface = dbusSurface
	}

	manager := notify.NewManager(surface, registry)

	clip := platform.NewSystemClipboard()
	dispatcher := dispatch.New(registry, clip, platform.FileDialog{}, cfg.Retry)

	events := make(chan notify.Activation, 32)
	if dbusSurface != nil {
		go dbusSurface.Listen(ctx, events)
	}
	go dispatcher.Run(ctx, events, cfg.Workers.Count)

	photoHandler := photohandler.NewHandler(manager)
	smsHandler := smshandler.NewHandler(manager, val)
	clipboardHandler := clipboardhandler.NewHandler(manager, val)

	r := router.New(photoHandler, smsHandler, clipboardHandler, cfg.Server.MaxBodyBytes)
	s := server.New(cfg.Server.HTTPPort, r)

	go func() {
		zlog.Logger.Info().Str("addr", cfg.Server.HTTPPort).Msg("server listening")
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	broadcaster := discovery.New(cfg.Discovery.Service, cfg.Discovery.Port)
	if err := broadcaster.Register(); err != nil {
		zlog.Logger.Warn().Err(err).Msg("discovery disabled, receiver reachable by direct ip only")
	}

	// A signal stops the tray loop; quitting the tray cancels the context.
	go func() {
		<-ctx.Done()
		tray.Quit()
	}()

	tray.Run(currentIP, stop)

	zlog.Logger.Info().Msg("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}
}

// currentIP reports the address shown in the tray status dialog, using the
// same selection policy as the discovery broadcaster.
func currentIP() string {
	ip, err := netutil.PreferredIP()
	if err != nil {
		return "unknown"
	}
	return ip.String()
}
