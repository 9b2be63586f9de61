package internal

import (
	"github.com/ranxi2001/Fluctuate-Portfolio/config"
	"github.com/ranxi2001/Fluctuate-Portfolio/internal/notifier"
	"github.com/ranxi2001/Fluctuate-Portfolio/internal/prices"
	"github.com/ranxi2001/Fluctuate-Portfolio/internal/valuation"
	"github.com/ranxi2001/Fluctuate-Portfolio/ledger"
	"github.com/ranxi2001/Fluctuate-Portfolio/pkg/log"
	"github.com/ranxi2001/Fluctuate-Portfolio/store"
)

type Services struct {
	Ledger    *ledger.Service
	Cache     *store.Cache
	Prices    *prices.Service
	Valuation *valuation.Service
	Notifier  *notifier.Service
}

func New(cfg *config.Config) (*Services, error) {
	var backend store.Backend
	if cfg.HasDatabase() {
		pg, err := store.NewPostgresBackend(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, err
		}
		backend = pg
	} else {
		log.Warn("no database configured, local cache will not survive restarts")
		backend = store.NewMemoryBackend()
	}

	cache := store.NewCache(cfg.Owner, backend)

	ledgerSvc := ledger.NewService()
	client := ledger.NewInProcClient(ledgerSvc)

	priceSvc := prices.NewService()
	priceSvc.AddSource(prices.NewCryptoCompareSource("BTC", "ETH", "MNT"), cfg.PriceRefreshInterval)
	priceSvc.AddSource(prices.NewMetalsSource(), cfg.PriceRefreshInterval)

	valuationSvc := valuation.NewService(ledger.Owner(cfg.Owner), cache, priceSvc, client)

	svcs := &Services{
		Ledger:    ledgerSvc,
		Cache:     cache,
		Prices:    priceSvc,
		Valuation: valuationSvc,
	}

	if cfg.HasTelegram() {
		n, err := notifier.New(cfg.TelegramBotToken, cfg.TelegramChatID, ledgerSvc)
		if err != nil {
			return nil, err
		}
		svcs.Notifier = n
		log.Info("internal: telegram notifier enabled")
	}

	return svcs, nil
}
