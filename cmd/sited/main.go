package main

import (
	"context"
	"database/sql"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/synca-ui/builder-quantum-landing-sub001/common/database"
	"github.com/synca-ui/builder-quantum-landing-sub001/common/logger"
	commonmqtt "github.com/synca-ui/builder-quantum-landing-sub001/common/mqtt"
	commonredis "github.com/synca-ui/builder-quantum-landing-sub001/common/redis"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/address"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/auth"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/config"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/deploy"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/hostresolver"
	httpapi "github.com/synca-ui/builder-quantum-landing-sub001/internal/http"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/render"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/repository"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/service"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/store"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/theme"
)

// siteRepo 配置 + 地址命名空间（Postgres 与内存实现都满足）
type siteRepo interface {
	repository.ConfigurationsRepository
	repository.AddressRepository
}

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "sited")
	if err != nil {
		log = zap.NewExample()
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 存储：DB 未启用或连接失败时使用内存 repo
	var (
		db     *sql.DB
		repo   siteRepo
		owners repository.OwnersRepository
	)
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(ctx, &cfg.Database); err == nil {
			if applied, err := repository.Migrate(ctx, d, log); err != nil {
				log.Fatal("Failed to apply migrations", zap.Error(err))
			} else if len(applied) > 0 {
				log.Info("Migrations applied", zap.Strings("versions", applied))
			}
			db = d
			repo = repository.NewPostgresConfigurationsRepository(d)
			owners = repository.NewPostgresOwnersRepository(d)
			log.Info("DB enabled for sited")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory", zap.Error(err))
		}
	}
	if db == nil {
		repo = repository.NewMemoryConfigurationsRepo()
		owners = repository.NewMemoryOwnersRepo()
	}

	// KV：路由表、认领、发布锁
	var (
		kv          store.KV
		redisClient *redis.Client
		sinks       []store.RouteEvents
	)
	if cfg.RedisEnabled {
		if c, err := commonredis.Connect(ctx, &cfg.Redis); err == nil {
			redisClient = c
		} else {
			log.Warn("Redis enabled but unreachable, falling back to memory", zap.Error(err))
		}
	}
	if redisClient != nil {
		kv = store.NewRedisKV(redisClient)
		sinks = append(sinks, store.NewStreamRouteEvents(redisClient, cfg.RouteStream.Name, cfg.RouteStream.MaxLen))
	} else {
		kv = store.NewMemoryKV()
	}

	var mqttClient *commonmqtt.Client
	if cfg.MQTTEnabled {
		if c, err := commonmqtt.NewClient(&cfg.MQTT, log); err == nil {
			mqttClient = c
			sinks = append(sinks, store.NewMQTTRouteEvents(c, cfg.MQTT.Topic, cfg.MQTT.QoS))
		} else {
			log.Warn("MQTT enabled but connection failed, route events stay local", zap.Error(err))
		}
	}

	var events store.RouteEvents
	if len(sinks) > 0 {
		events = store.NewFanoutRouteEvents(log, sinks...)
	}
	routes := store.NewRouteTable(kv, events, log)
	claims := store.NewClaims(kv)

	reserved := append(append([]string{}, address.DefaultReserved...), cfg.Site.Reserved...)
	for _, name := range cfg.Site.Reserved {
		if err := repo.ReserveAddress(ctx, address.Normalize(name)); err != nil {
			log.Warn("Failed to record reserved address", zap.String("name", name), zap.Error(err))
		}
	}
	validator := address.NewValidator(cfg.Site.BaseDomain, reserved, repo, claims, log)

	orch := deploy.New(deploy.Deps{
		Configurations: repo,
		Publisher:      repo,
		Validator:      validator,
		Claims:         claims,
		Router:         routes,
		Locker:         store.NewLocker(kv),
	}, deploy.Options{
		Scheme:   cfg.Site.Scheme,
		ClaimTTL: cfg.Publish.ClaimTTL,
		LockTTL:  cfg.Publish.LockTTL,
	}, log)

	tokens := auth.NewTokens(owners, 0, log)
	sites := service.NewSiteService(repo, routes, theme.NewResolver(nil), render.NewRenderer(cfg.Site.PreviewSize), log)
	publish := service.NewPublishService(orch, tokens, cfg.Publish.JobTTL, log)

	if n, err := sites.WarmRoutes(ctx); err != nil {
		log.Warn("Failed to warm route table", zap.Error(err))
	} else {
		log.Info("Route table warmed", zap.Int("routes", n))
	}

	if cfg.SeedDemo {
		seedDemo(ctx, repo, tokens, log)
	}

	resolver := hostresolver.New(hostresolver.Options{
		BaseDomain:      cfg.Site.BaseDomain,
		PrimaryAliases:  cfg.Site.PrimaryAliases,
		PreviewSuffixes: cfg.Site.PreviewSuffixes,
		Reserved:        reserved,
	})
	handlers := httpapi.NewHandlers(sites, publish, validator, tokens, log)
	srv := service.NewServer(cfg.HTTP.Addr, httpapi.NewRouter(handlers, resolver, log), log)

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP 服务与发布记录清理任一失败即整体退出；Run 在退出前等待进行中的发布结束
	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(srv.Start)
	g.Go(func() error { return publish.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down sited")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Stop(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Error("sited stopped with error", zap.Error(err))
	}

	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}

// seedDemo 写入示例 owner 与草稿，便于本地联调
func seedDemo(ctx context.Context, repo siteRepo, tokens *auth.Tokens, log *zap.Logger) {
	token, err := tokens.Issue(ctx, "demo", "Demo owner")
	if err != nil {
		log.Warn("Failed to seed demo owner", zap.Error(err))
		return
	}
	id, err := repo.CreateConfiguration(ctx, &domain.Configuration{
		OwnerID:       "demo",
		BusinessName:  "Bella Vista",
		BusinessType:  "Restaurant",
		Location:      "Hamburg",
		Description:   "Neapolitan pizza and **fresh pasta**, since 1998.",
		Template:      "cozy",
		SelectedPages: []string{"menu", "gallery", "contact"},
		Categories:    domain.NewCategories("Pizza", "Pasta"),
		MenuItems: []domain.MenuItem{
			{Name: "Margherita", Price: "9.00", Category: "Pizza"},
			{Name: "Diavola", Price: "11.50", Category: "Pizza"},
			{Name: "Carbonara", Price: "12.00", Category: "Pasta"},
		},
		OpeningHours: domain.OpeningHours{
			"monday": {Closed: true},
			"friday": {Open: "12:00", Close: "23:00"},
		},
		Contact: domain.ContactMethods{{Type: domain.ContactPhone, Value: "+49 40 123456"}},
	})
	if err != nil {
		log.Warn("Failed to seed demo configuration", zap.Error(err))
		return
	}
	log.Info("Demo data seeded", zap.String("configuration_id", id), zap.String("owner_token", token))
}
