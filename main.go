package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/DevForge-BG/discord-bot/migrations"
	"github.com/DevForge-BG/discord-bot/pkg/auth"
	"github.com/DevForge-BG/discord-bot/pkg/config"
	"github.com/DevForge-BG/discord-bot/pkg/discord"
	"github.com/DevForge-BG/discord-bot/pkg/github"
	"github.com/DevForge-BG/discord-bot/pkg/lifecycle"
	"github.com/DevForge-BG/discord-bot/pkg/provision"
	"github.com/DevForge-BG/discord-bot/pkg/router"
	"github.com/DevForge-BG/discord-bot/pkg/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	community, err := config.LoadCommunity(cfg.CommunityFile)
	if err != nil {
		log.WithError(err).Fatal("invalid community file")
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("error opening database")
	}
	defer db.Close()
	if err := migrations.Migrate(db); err != nil {
		log.WithError(err).Fatal("error migrating database")
	}
	st := store.New(db)

	session, err := discord.Create(cfg.Token)
	if err != nil {
		log.WithError(err).Fatal("error creating Discord session")
	}
	if err := session.Open(); err != nil {
		log.WithError(err).Fatal("error opening Discord connection")
	}

	roles, err := discord.EnsureCoreRoles(session, cfg.GuildID, community)
	if err != nil {
		log.WithError(err).Fatal("error bootstrapping core roles")
	}

	guard := auth.New(roles.AdminID)
	adapter := discord.NewAdapter(session, cfg.GuildID)
	// The @everyone role id equals the guild id.
	spaces := provision.NewManager(adapter, cfg.GuildID)

	var hooks lifecycle.HookRegistrar
	if cfg.GithubConfigured() {
		gh, err := github.New(cfg.GithubAppID, cfg.GithubInstallationID, cfg.GithubCreds, cfg.PublicURL+"/github")
		if err != nil {
			log.WithError(err).Fatal("invalid GitHub App credentials")
		}
		hooks = gh
	}

	projects := lifecycle.New(st, spaces, adapter, guard, hooks)
	bot := discord.NewBot(session, cfg.GuildID, community, roles, guard, st, spaces, projects)
	bot.Start()

	mux := http.NewServeMux()
	mux.Handle("/github", router.New(st, adapter))
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("webhook server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("webhook server failed")
		}
	}()

	log.Info("Bot is now running. Press CTRL-C to exit.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("error shutting down webhook server")
	}
	if err := session.Close(); err != nil {
		log.WithError(err).Warn("error closing Discord session")
	}
}
