// Package main boots the Luxvia shop bot: the Discord gateway connection,
// the command worker and the read-only ops HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-faster/errors"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"go.uber.org/zap"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/auth"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/catalog"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/channel"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/config"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/discord"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/display"
	httpapi "github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/http"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/obs"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/queue"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/snapshot"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/store"
)

func main() {
	cfg := config.MustLoad()
	if err := obs.InitLogger(cfg.LogLevel, cfg.Env); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	obs.Logger.Info("service_starting", zap.String("env", cfg.Env), zap.String("store_backend", cfg.Store.Backend))

	ctx := context.Background()

	snap, err := snapshot.Open(cfg.Store)
	if err != nil {
		obs.Logger.Fatal("snapshot_open_failed", zap.Error(err))
	}
	st := store.Open(ctx, snap)

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		obs.Logger.Fatal("discord_session_failed", zap.Error(err))
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	guild := discord.NewGuild(session, cfg.Discord.GuildID)
	svc := catalog.NewService(st,
		channel.NewProvisioner(guild),
		display.NewSynchronizer(guild),
		display.Renderer{Currency: cfg.Currency},
	)
	handler := catalog.NewHandler(svc, auth.New(cfg.Discord.AdminRoles), guild)

	mgr := queue.NewManager(cfg, queue.New(cfg.QueueBuffer), handler)
	mgr.Start(ctx)

	intake := discord.NewIntake(session, guild, mgr)
	session.AddHandler(intake.OnInteractionCreate)
	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		obs.Logger.Info("discord_ready", zap.String("user", r.User.Username), zap.Int("products", st.Len()))
	})
	if err := session.Open(); err != nil {
		obs.Logger.Fatal("discord_open_failed", zap.Error(err))
	}
	if cfg.Discord.RegisterCommands {
		if err := discord.Register(ctx, session, cfg.Discord.AppID, cfg.Discord.GuildID); err != nil {
			obs.Logger.Error("command_registration_failed", zap.Error(err))
		}
	}

	app := httpapi.NewApp(cfg, st, mgr)
	srv := newOpsServer(cfg, app)
	if srv != nil {
		go func() {
			obs.Logger.Info("http_listen", zap.String("addr", cfg.HTTPAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				obs.Logger.Fatal("http_server_error", zap.Error(err))
			}
		}()
	} else {
		obs.Logger.Info("ops_http_disabled")
	}

	wait := gfshutdown.GracefulShutdown(ctx, cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		"luxvia-shop-bot": func(ctx context.Context) error {
			return shutdown(ctx, app, mgr, srv, session, snap)
		},
	})
	exitCode := <-wait
	obs.Logger.Info("service_stopped", zap.Int("exit_code", exitCode))
	_ = obs.Logger.Sync()
	os.Exit(exitCode)
}

// newOpsServer returns the ops HTTP server, or nil when HTTP_ADDR is empty.
func newOpsServer(cfg config.Config, app *httpapi.App) *http.Server {
	if !cfg.OpsHTTPEnabled() {
		return nil
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// shutdown stops intake, lets the queued commands finish while the gateway is
// still connected so their replies are delivered, then releases everything.
// srv is nil when the ops server is disabled.
func shutdown(ctx context.Context, app *httpapi.App, mgr *queue.Manager, srv *http.Server, session *discordgo.Session, snap snapshot.Adapter) error {
	app.StartShutdown()
	obs.Logger.Info("shutdown_drain_begin", zap.Int("backlog_size", mgr.BacklogSize()))
	if mgr.DrainUntil(ctx) {
		obs.Logger.Info("shutdown_drain_complete")
	} else {
		obs.Logger.Warn("shutdown_drain_timeout", zap.Int("queue_depth", mgr.QueueDepth()))
	}
	mgr.Stop()

	var first error
	check := func(what string, err error) {
		if err == nil {
			return
		}
		obs.Logger.Error("shutdown_step_failed", zap.String("step", what), zap.Error(err))
		if first == nil {
			first = errors.Wrap(err, what)
		}
	}
	if srv != nil {
		check("http shutdown", srv.Shutdown(ctx))
	}
	check("discord close", session.Close())
	check("snapshot close", snap.Close())
	return first
}
