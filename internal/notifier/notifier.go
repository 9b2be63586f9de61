package notifier

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ranxi2001/Fluctuate-Portfolio/ledger"
	"github.com/ranxi2001/Fluctuate-Portfolio/pkg/log"
)

// Service forwards ledger change events to a Telegram chat. It is an
// observer only: a failed send is logged and the event dropped.
type Service struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	events <-chan ledger.Event
	cancel func()
	done   chan struct{}
}

func New(token string, chatID int64, src *ledger.Service) (*Service, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	events, cancel := src.Subscribe()
	return &Service{
		bot:    bot,
		chatID: chatID,
		events: events,
		cancel: cancel,
		done:   make(chan struct{}),
	}, nil
}

// Run consumes ledger events until Stop is called.
func (s *Service) Run() {
	log.Infof("notifier: authorized on account %s", s.bot.Self.UserName)

	defer close(s.done)
	for ev := range s.events {
		msg := tgbotapi.NewMessage(s.chatID, format(ev))
		if _, err := s.bot.Send(msg); err != nil {
			log.Error("notifier: send failed:", err)
		}
	}
}

func format(ev ledger.Event) string {
	at := time.Unix(ev.Timestamp, 0).UTC().Format(time.RFC822)
	switch ev.Kind {
	case ledger.EventPortfolioDeleted:
		return fmt.Sprintf("Portfolio deleted for %s at %s", ev.Owner, at)
	default:
		return fmt.Sprintf("Portfolio updated for %s: %d assets at %s", ev.Owner, ev.AssetCount, at)
	}
}

// Stop unsubscribes and waits for the event loop to drain.
func (s *Service) Stop() {
	s.cancel()
	<-s.done
}
