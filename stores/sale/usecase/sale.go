package usecase

import (
	"errors"
	"fmt"
	"time"

	"github.com/viney-shih/goroutines"

	"github.com/x-xyz/salebot/base/announcement"
	bCtx "github.com/x-xyz/salebot/base/ctx"
	"github.com/x-xyz/salebot/base/goroutine"
	"github.com/x-xyz/salebot/base/log"
	"github.com/x-xyz/salebot/base/metrics"
	pricefomatter "github.com/x-xyz/salebot/base/price_fomatter"
	"github.com/x-xyz/salebot/base/window"
	"github.com/x-xyz/salebot/domain"
	"github.com/x-xyz/salebot/service/opensea"
)

const (
	defaultLimit   = 100
	defaultWorkers = 8

	tagReason        = "reason"
	tagKind          = "kind"
	reasonConversion = "conversion"
	reasonFormat     = "format"
)

var errNoAck = errors.New("publisher returned no ack")

type SaleUseCaseCfg struct {
	Client          opensea.Client
	Publisher       domain.Publisher
	PriceFormatter  pricefomatter.PriceFormatter
	Metrics         metrics.Service
	Window          window.Window
	CollectionSlug  string
	ContractAddress domain.Address
	Limit           int
	Workers         int
	// PublishTimeout bounds each publish call, zero means only the transport timeout applies
	PublishTimeout time.Duration
}

type impl struct {
	client          opensea.Client
	publisher       domain.Publisher
	priceFormatter  pricefomatter.PriceFormatter
	metrics         metrics.Service
	window          window.Window
	collectionSlug  string
	contractAddress domain.Address
	limit           int
	workers         int
	publishTimeout  time.Duration
}

func NewSaleUseCase(cfg *SaleUseCaseCfg) domain.SaleUseCase {
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &impl{
		client:          cfg.Client,
		publisher:       cfg.Publisher,
		priceFormatter:  cfg.PriceFormatter,
		metrics:         cfg.Metrics,
		window:          cfg.Window,
		collectionSlug:  cfg.CollectionSlug,
		contractAddress: cfg.ContractAddress,
		limit:           limit,
		workers:         workers,
		publishTimeout:  cfg.PublishTimeout,
	}
}

type publishResult struct {
	eventId int64
	ack     *domain.Ack
	err     error
}

func (im *impl) CheckSales(c bCtx.Ctx, now time.Time) (*domain.SaleReport, error) {
	defer im.metrics.BumpTime("sale.run.time").End()

	c = bCtx.WithFields(c, log.Fields{
		"boundary": im.window.Boundary(now),
		"policy":   im.window.Policy,
	})

	events, err := im.fetch(c, now)
	if err != nil {
		c.WithField("err", err).Error("im.fetch failed")
		return nil, err
	}

	report := &domain.SaleReport{Fetched: len(events)}
	im.metrics.BumpSum("sale.fetched", float64(report.Fetched))

	// upstream is newest first, announce oldest first
	announcements := []domain.Announcement{}
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if !im.window.Contains(now, ev.OccurredAt) {
			c.WithFields(log.Fields{
				"eventId":    ev.Id,
				"occurredAt": ev.OccurredAt,
			}).Debug("sale outside window")
			continue
		}
		report.InWindow++

		text, err := im.compose(ev)
		if err != nil {
			c.WithFields(log.Fields{
				"eventId": ev.Id,
				"err":     err,
			}).Warn("im.compose failed")
			if errors.Is(err, domain.ErrConversion) {
				report.ConversionFailed++
			} else {
				report.FormatFailed++
			}
			continue
		}
		announcements = append(announcements, domain.Announcement{Event: ev, Text: text})
	}
	im.metrics.BumpSum("sale.skipped", float64(report.ConversionFailed), tagReason, reasonConversion)
	im.metrics.BumpSum("sale.skipped", float64(report.FormatFailed), tagReason, reasonFormat)

	for _, res := range im.publishAll(c, announcements) {
		if res.err == nil {
			report.Published++
			continue
		}
		switch domain.ClassifyPublishError(res.err).Kind {
		case domain.PublishErrorAuth:
			report.AuthFailed++
		case domain.PublishErrorRateLimit:
			report.RateLimited++
		default:
			report.TransientFailed++
		}
	}
	im.metrics.BumpSum("sale.published", float64(report.Published))
	im.metrics.BumpSum("sale.failed", float64(report.AuthFailed), tagKind, string(domain.PublishErrorAuth))
	im.metrics.BumpSum("sale.failed", float64(report.RateLimited), tagKind, string(domain.PublishErrorRateLimit))
	im.metrics.BumpSum("sale.failed", float64(report.TransientFailed), tagKind, string(domain.PublishErrorTransient))

	c.WithFields(log.Fields{
		"fetched":       report.Fetched,
		"inWindow":      report.InWindow,
		"published":     report.Published,
		"skipped":       report.Skipped(),
		"publishFailed": report.PublishFailed(),
	}).Info("sales checked")
	return report, nil
}

func (im *impl) fetch(c bCtx.Ctx, now time.Time) ([]domain.SaleEvent, error) {
	opts := []opensea.GetEventOptionsFunc{
		opensea.WithCollectionSlug(im.collectionSlug),
		opensea.WithContractAddress(im.contractAddress),
		opensea.WithEventType(opensea.EventTypeSuccessful),
		opensea.WithOnlyOpensea(false),
		opensea.WithOffset(0),
		opensea.WithLimit(im.limit),
	}
	if after := im.window.QueryAfter(now); after != nil {
		opts = append(opts, opensea.WithAfter(*after))
	}

	resp, err := im.client.GetEvent(c, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	return resp.SaleEvents(c), nil
}

func (im *impl) compose(ev domain.SaleEvent) (string, error) {
	prices := pricefomatter.Prices{}
	// without a payment token the formatter reports the missing field
	if ev.PaymentToken != nil {
		p, err := im.priceFormatter.GetPrices(ev.TotalPrice, ev.PaymentToken.UsdPrice)
		if err != nil {
			return "", err
		}
		prices = p
	}
	return announcement.Format(ev, prices)
}

// publishAll queues announcements in order and waits for every one of them to settle
func (im *impl) publishAll(c bCtx.Ctx, announcements []domain.Announcement) []publishResult {
	if len(announcements) == 0 {
		return nil
	}

	b := goroutines.NewBatch(im.workers, goroutines.WithBatchSize(len(announcements)))
	defer b.Close()
	for i := 0; i < len(announcements); i++ {
		a := announcements[i]
		b.Queue(func() (interface{}, error) {
			return im.publish(c, a), nil
		})
	}
	b.QueueComplete()

	results := make([]publishResult, 0, len(announcements))
	for ret := range b.Results() {
		if ret.Error() != nil {
			c.WithField("err", ret.Error()).Error("publish task error result")
			results = append(results, publishResult{err: ret.Error()})
			continue
		}
		results = append(results, ret.Value().(publishResult))
	}
	return results
}

func (im *impl) publish(c bCtx.Ctx, a domain.Announcement) (res publishResult) {
	res.eventId = a.Event.Id
	c = bCtx.WithValue(c, bCtx.KeyEventId, a.Event.Id)

	panicked := goroutine.Recover(func() {
		ctx, cancel := bCtx.WithTimeout(c, im.publishTimeout)
		defer cancel()
		res.ack, res.err = im.publisher.Publish(ctx, a.Text)
	}, goroutine.WithLogger(c.Logger), goroutine.WithAfterRecovered(func(interface{}, []byte) {
		im.metrics.BumpSum("sale.panic", 1)
	}))
	if panicked != nil {
		res.ack = nil
		res.err = domain.NewTransientError(fmt.Errorf("publish panic: %v", panicked.Panic))
	} else if res.err == nil && res.ack == nil {
		res.err = domain.NewTransientError(errNoAck)
	}

	if res.err != nil {
		pErr := domain.ClassifyPublishError(res.err)
		fields := log.Fields{
			"kind": pErr.Kind,
			"err":  res.err,
		}
		if !pErr.ResetAt.IsZero() {
			fields["resetAt"] = pErr.ResetAt
		}
		c.WithFields(fields).Error("publisher.Publish failed")
		return res
	}

	c.WithField("ackId", res.ack.Id).Info("sale published")
	return res
}
