package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/MeepoTu/rooch/internal/logger"
	"github.com/MeepoTu/rooch/internal/rooch"
	"github.com/MeepoTu/rooch/internal/session"
	"github.com/MeepoTu/rooch/internal/transfer"
	"github.com/MeepoTu/rooch/internal/ui/state"
)

// ErrNoOwner is returned when balances are requested without an owner address.
var ErrNoOwner = errors.New("no owner address configured")

// SessionSettings describes the session the portal asks the user to authorize.
type SessionSettings struct {
	AppName     string
	Scopes      []string
	MaxInactive time.Duration
}

// Services provides the portal's backends to UI screens
type Services struct {
	Balances         rooch.BalanceSource
	Wallet           transfer.Wallet
	Sessions         *session.Manager
	Recorder         transfer.Recorder
	Activity         *logger.Ring
	Cache            *state.BalanceCache
	Owner            string
	DisplayPrecision int32
	Session          SessionSettings
	RequestTimeout   time.Duration
	Logger           *zap.Logger
}

func (s *Services) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger.Named("ui_services")
}

// fetch loads the owner's balances and stores the result in the cache.
func (s *Services) fetch(ctx context.Context) BalancesMsg {
	if s.Owner == "" || s.Balances == nil {
		return BalancesMsg{Err: ErrNoOwner, FetchedAt: time.Now()}
	}

	if s.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.RequestTimeout)
		defer cancel()
	}

	balances, err := s.Balances.GetBalances(ctx, s.Owner)
	msg := BalancesMsg{Balances: balances, Err: err, FetchedAt: time.Now()}

	if s.Cache != nil {
		if err != nil {
			s.Cache.SetError(err)
		} else {
			s.Cache.Set(balances, msg.FetchedAt)
		}
	}
	if err != nil {
		s.log().Warn("Failed to load balances", zap.Error(err))
	} else {
		s.log().Debug("Balances loaded", zap.Int("tokens", len(balances)))
	}
	return msg
}

// FetchBalancesCmd returns a command that loads balances for the owner.
func (s *Services) FetchBalancesCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		return s.fetch(ctx)
	}
}

// Refetch reloads balances and publishes the result on the bus.
// It runs off the UI goroutine after a successful transfer.
func (s *Services) Refetch(ctx context.Context) error {
	msg := s.fetch(ctx)
	Publish(msg)
	return msg.Err
}

// AuthorizeSession grants a new session with the configured scopes.
func (s *Services) AuthorizeSession() (session.Session, error) {
	if s.Sessions == nil {
		return session.Session{}, session.ErrNoSession
	}
	return s.Sessions.Authorize(s.Session.AppName, s.Session.Scopes, s.Session.MaxInactive), nil
}

// RevokeSession drops the current session.
func (s *Services) RevokeSession() {
	if s.Sessions != nil {
		s.Sessions.Revoke()
	}
}

// CurrentSession returns the active session, if any.
func (s *Services) CurrentSession() (session.Session, bool) {
	if s.Sessions == nil {
		return session.Session{}, false
	}
	return s.Sessions.Current()
}

// NewTransferController wires a controller for one transfer dialog.
// Closing the dialog after success is requested through the bus.
func (s *Services) NewTransferController(token transfer.TokenBalance, dialogID int) *transfer.Controller {
	opts := transfer.Options{
		Wallet:   s.Wallet,
		Close:    func() { Publish(CloseDialogMsg{DialogID: dialogID}) },
		Refetch:  s.Refetch,
		Notifier: BusNotifier{},
		Recorder: s.Recorder,
		Logger:   s.Logger,
	}
	if s.Sessions != nil {
		opts.Gate = s.Sessions
	}
	return transfer.NewController(token, opts)
}
