package main

import (
	"context"

	"github.com/bookobot/booko/pkg/books"
	"github.com/bookobot/booko/pkg/config"
	"github.com/bookobot/booko/pkg/coordinator"
	"github.com/bookobot/booko/pkg/database"
	"github.com/bookobot/booko/pkg/migrations"
	"github.com/bookobot/booko/pkg/providers"
	"github.com/bookobot/booko/pkg/ratings"
	"github.com/bookobot/booko/pkg/records"
	"github.com/bookobot/booko/pkg/resolve"
	"github.com/bookobot/booko/pkg/session"
	"github.com/bookobot/booko/pkg/version"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting booko", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		log.Err(err).Fatal("migrations error")
	}
	if group.ID == 0 {
		log.Info("no new migrations to run")
	} else {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}

	token, err := cfg.GatewayToken()
	if err != nil {
		log.Err(err).Fatal("gateway token error")
	}
	googleKey, err := cfg.GoogleBooksKey()
	if err != nil {
		log.Err(err).Fatal("google books key error")
	}

	client := providers.NewClient(cfg.ProviderTimeout, cfg.VerboseAPI)
	pipeline := resolve.NewPipeline(
		providers.NewGoogleBooks(googleKey, client),
		providers.NewOpenLibrary(client),
		providers.NewGoodreads(client),
		cfg.TargetLanguage,
	)

	gateway, err := dialGateway(ctx, cfg, token)
	if err != nil {
		log.Err(err).Fatal("gateway error")
	}

	bookService := books.NewService(db)
	recordManager := records.NewManager(gateway, bookService, ratings.NewService(db), cfg.CancelCleanupDelay)
	sessionManager := session.NewManager(gateway, recordManager, cfg.EditTimeout, cfg.CancelCleanupDelay)
	coord := coordinator.New(cfg, gateway, pipeline, sessionManager, recordManager, bookService)

	graceful := signals.Setup()

	if err := coord.Start(ctx); err != nil {
		log.Err(err).Fatal("coordinator error")
	}
	log.Info("booko running", logger.Data{"guild_id": cfg.GuildID})

	<-graceful
	log.Info("starting graceful shutdown")

	coord.Shutdown()
	log.Info("coordinator shutdown")

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}
