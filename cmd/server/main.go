package main

import (
	"context"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	gomongo "go.mongodb.org/mongo-driver/mongo"

	"github.com/joxgallardo/sparkchat-sub001/internal/api"
	"github.com/joxgallardo/sparkchat-sub001/internal/core/ports"
	"github.com/joxgallardo/sparkchat-sub001/internal/core/service"
	"github.com/joxgallardo/sparkchat-sub001/internal/crypto/keys"
	"github.com/joxgallardo/sparkchat-sub001/internal/crypto/mnemonic"
	"github.com/joxgallardo/sparkchat-sub001/internal/crypto/token"
	"github.com/joxgallardo/sparkchat-sub001/internal/infrastructure/db/memory"
	"github.com/joxgallardo/sparkchat-sub001/internal/infrastructure/db/mongo"
	"github.com/joxgallardo/sparkchat-sub001/internal/infrastructure/db/redis"
	"github.com/joxgallardo/sparkchat-sub001/internal/infrastructure/gateway"
	"github.com/joxgallardo/sparkchat-sub001/internal/infrastructure/queue"
	"github.com/joxgallardo/sparkchat-sub001/internal/pkg/config"
	"github.com/joxgallardo/sparkchat-sub001/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx := context.Background()

	// --- Spend-key derivation (optional) ---
	// The mnemonic is the sole root of spending-key derivation: configured
	// but invalid is fatal, absent just disables the feature.
	if cfg.Wallet.Mnemonic != "" {
		seed, err := mnemonic.DeriveSeed(cfg.Wallet.Mnemonic)
		if err != nil {
			log.Fatal().Err(err).Msg("wallet mnemonic rejected")
		}
		spendKey, err := mnemonic.DeriveSpendKey(seed)
		if err != nil {
			log.Fatal().Err(err).Msg("spend key derivation failed")
		}
		log.Info().
			Str("seed_preview", mnemonic.SeedPreview(seed)).
			Str("spend_pubkey", spendKey.PublicKeyHex()).
			Msg("wallet spend key derived")
	} else {
		log.Warn().Msg("WALLET_MNEMONIC not set, spend-key features disabled")
	}

	// --- Signing key material ---
	// Missing key material blocks credentialed gateway calls only; the
	// identity and session surfaces keep working.
	var keyPair *keys.KeyPair
	if cfg.Signing.PrivateKeyPEM != "" {
		kp, err := keys.Load([]byte(cfg.Signing.PrivateKeyPEM))
		if err != nil {
			log.Fatal().Err(err).Msg("signing key rejected")
		}
		keyPair = kp
		log.Info().Msg("signing key loaded")
	} else {
		log.Warn().Msg("SIGNING_KEY_PEM not set, gateway credentials unavailable")
	}
	issuer := token.New(keyPair, cfg.Signing.Issuer)

	// --- Stores (durable when configured, in-memory otherwise) ---
	var (
		bindingRepo ports.BindingRepository
		walletRepo  ports.WalletConfigRepository
		sessionRepo ports.SessionRepository
		dedup       service.DedupChecker
		mongoDB     *gomongo.Database
		redisClient *goredis.Client
	)

	if cfg.Mongo.URI != "" {
		_, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connection failed")
		}
		mongoDB = db
		bindings := mongo.NewBindingRepository(db)
		if err := bindings.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("mongo index creation failed")
		}
		bindingRepo = bindings
		walletRepo = mongo.NewWalletConfigRepository(db)
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")
	} else {
		bindingRepo = memory.NewBindingRepository()
		walletRepo = memory.NewWalletConfigRepository()
		log.Warn().Msg("MONGO_URI not set, using in-memory binding stores")
	}

	if cfg.Redis.Addr != "" {
		client, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		redisClient = client
		sessionRepo = redis.NewSessionRepository(client)
		dedup = redis.NewDedupChecker(client)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	} else {
		sessionRepo = memory.NewSessionRepository()
		dedup = memory.NewDedupChecker()
		log.Warn().Msg("REDIS_ADDR not set, using in-memory session store")
	}

	// --- Gateway client ---
	tokenTTL := time.Duration(cfg.Signing.TokenTTLSecs) * time.Second
	gatewayClient, err := gateway.New(&cfg.Gateway, issuer, cfg.Signing.Audience, tokenTTL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("gateway configuration rejected")
	}
	if cfg.Gateway.ReadFallback {
		secondaryCfg := cfg.Gateway
		if strings.EqualFold(secondaryCfg.Mode, "rest") {
			secondaryCfg.Mode = "sdk"
		} else {
			secondaryCfg.Mode = "rest"
		}
		secondary, err := gateway.New(&secondaryCfg, issuer, cfg.Signing.Audience, tokenTTL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("gateway fallback configuration rejected")
		}
		gatewayClient = gateway.NewFallback(gatewayClient, secondary, log)
		log.Info().Msg("read-only gateway fallback enabled")
	}

	// --- Services ---
	identityService := service.NewIdentityService(bindingRepo, walletRepo, log)
	sessionService := service.NewSessionService(sessionRepo, bindingRepo, log)
	walletService := service.NewWalletService(identityService, gatewayClient, log)
	messageService := service.NewMessageService(identityService, sessionService, dedup, log)

	// --- Dispatcher ---
	dispatcher := queue.NewDispatcher(cfg.Workers, messageService, log)
	dispatcher.Start(ctx)

	// --- HTTP server ---
	e := api.NewRouter(api.Deps{
		Identity:      identityService,
		Sessions:      sessionService,
		Wallet:        walletService,
		Dispatcher:    dispatcher,
		SessionWindow: time.Duration(cfg.Session.WindowSecs) * time.Second,
		WebhookSecret: cfg.WebhookSecret,
		Mongo:         mongoDB,
		Redis:         redisClient,
		Logger:        log,
	})

	log.Info().
		Str("port", cfg.Port).
		Str("gateway_mode", cfg.Gateway.Mode).
		Msg("starting server")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
