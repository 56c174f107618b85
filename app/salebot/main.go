package main

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	bCtx "github.com/x-xyz/salebot/base/ctx"
	"github.com/x-xyz/salebot/base/goroutine"
	"github.com/x-xyz/salebot/base/log"
	"github.com/x-xyz/salebot/base/metrics"
	pricefomatter "github.com/x-xyz/salebot/base/price_fomatter"
	"github.com/x-xyz/salebot/domain"
	"github.com/x-xyz/salebot/service/opensea"
	"github.com/x-xyz/salebot/stores/sale/usecase"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run performs one check of the sales window and returns the process exit code
func run(args []string, out io.Writer) int {
	defer log.Sync()
	ctx := bCtx.WithValue(bCtx.Background(), bCtx.KeyRunId, uuid.NewString())

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		ctx.WithField("err", err).Error("fs.Parse failed")
		return 1
	}
	v, err := newViper(fs)
	if err != nil {
		ctx.WithField("err", err).Error("newViper failed")
		return 1
	}
	cfg, err := loadConfig(v)
	if err != nil {
		ctx.WithField("err", err).Error("loadConfig failed")
		return 1
	}
	log.SetDebug(cfg.Debug)
	if cfg.Debug {
		ctx.Info("Service RUN on DEBUG mode")
	}

	ctx.WithFields(log.Fields{
		"collectionSlug":  cfg.CollectionSlug,
		"contractAddress": cfg.ContractAddress,
		"policy":          cfg.Window.Policy,
		"seconds":         cfg.Window.Seconds,
		"publisher":       cfg.Publisher,
		"workers":         cfg.Publish.Workers,
	}).Info("config")

	m, err := metrics.New("salebot", cfg.Metrics)
	if err != nil {
		ctx.WithField("err", err).Error("metrics.New failed")
		return 1
	}
	defer m.Close()

	publisher, err := newPublisher(cfg, out)
	if err != nil {
		ctx.WithField("err", err).Error("newPublisher failed")
		return 1
	}

	saleUseCase := usecase.NewSaleUseCase(&usecase.SaleUseCaseCfg{
		Client: opensea.NewClient(&opensea.ClientCfg{
			HttpClient: http.Client{},
			Timeout:    cfg.Opensea.Timeout,
			Apikey:     cfg.Opensea.ApiKey,
			BaseUrl:    cfg.Opensea.Url,
		}),
		Publisher:       publisher,
		PriceFormatter:  pricefomatter.NewPriceFormatter(),
		Metrics:         m,
		Window:          cfg.Window,
		CollectionSlug:  cfg.CollectionSlug,
		ContractAddress: domain.Address(cfg.ContractAddress),
		Limit:           cfg.Opensea.Limit,
		Workers:         cfg.Publish.Workers,
		PublishTimeout:  cfg.Publish.Timeout,
	})

	var runErr error
	panicked := <-goroutine.RecoverableGo(func() {
		_, runErr = saleUseCase.CheckSales(ctx, time.Now())
	}, goroutine.WithLogger(ctx.Logger), goroutine.WithAfterRecovered(func(interface{}, []byte) {
		m.BumpSum("run.panic", 1)
	}))
	if panicked != nil {
		return 1
	}
	if runErr != nil {
		ctx.WithField("err", runErr).Error("saleUseCase.CheckSales failed")
		return 1
	}
	return 0
}
