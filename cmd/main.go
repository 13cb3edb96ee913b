package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/muhammadchandra19/exchange-core/internal/app/engine"
	ledgerv1 "github.com/muhammadchandra19/exchange-core/internal/domain/ledger/v1"
	"github.com/muhammadchandra19/exchange-core/internal/usecase/ledger"
	orderreader "github.com/muhammadchandra19/exchange-core/internal/usecase/order-reader"
	"github.com/muhammadchandra19/exchange-core/internal/usecase/orderbook"
	"github.com/muhammadchandra19/exchange-core/internal/usecase/settlement"
	"github.com/muhammadchandra19/exchange-core/internal/usecase/snapshot"
	tradepublisher "github.com/muhammadchandra19/exchange-core/internal/usecase/trade-publisher"
	"github.com/muhammadchandra19/exchange-core/pkg/config"
	"github.com/muhammadchandra19/exchange-core/pkg/logger"
	"github.com/muhammadchandra19/exchange-core/pkg/redis"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	cfg = &config.Config{}
	if err := config.Load(cfg); err != nil {
		panic(err)
	}

	l, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}

	log = l
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	redisConfig := redis.DefaultConfig()
	redisConfig.Addr = cfg.RedisConfig.Addr
	redisConfig.Username = cfg.RedisConfig.Username
	redisConfig.Password = cfg.RedisConfig.Password
	redisConfig.DB = cfg.RedisConfig.DB

	rclient := redis.NewClient(log, redisConfig)
	if err := rclient.Connect(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "connect_redis",
		})
		return
	}
	defer rclient.Close()

	book := orderbook.NewBook()
	accounts := ledger.NewLedger()
	coordinator := settlement.NewCoordinator(
		accounts,
		ledgerv1.NewAsset(cfg.BaseAsset),
		ledgerv1.NewAsset(cfg.QuoteAsset),
		log,
	)
	reader := orderreader.NewReader(cfg.KafkaConfig, log)
	publisher := tradepublisher.NewPublisher(cfg.KafkaConfig, log)
	store := snapshot.NewSnapshotStore(rclient, cfg.Pair, log)

	engine := app.NewEngine(book, accounts, coordinator, reader, publisher, store, log, cfg)

	if err := engine.Start(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "start_engine",
		})
		return
	}

	<-sigChan
	log.Info("Shutdown signal received")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()

	if err := engine.Stop(stopCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "stop_engine",
		})
	}
}
