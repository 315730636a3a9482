package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"menu-telegram/menuapi"
	"menu-telegram/models"
	"menu-telegram/services"
)

const inboxSize = 32

var errEmptyProfile = errors.New("empty profile")

// ErrIdle is returned by Run when no user event arrived within Options.IdleTimeout.
var ErrIdle = errors.New("session idle")

// API is the subset of *menuapi.Client a session uses.
type API interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.Token, error)
	BecomeMaster(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	ListMenu(ctx context.Context) ([]models.MenuItem, error)
	CreateMenuItem(ctx context.Context, in models.MenuItemInput) (*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id int64, in models.MenuItemInput) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id int64) error
	ClearMenu(ctx context.Context) error
	CreateOrder(ctx context.Context, in models.OrderInput) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	MarkServed(ctx context.Context, id int64) error
	ClearOrders(ctx context.Context) error
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type Options struct {
	PollInterval time.Duration
	// Ticker overrides the poll ticker; tests use it to drive polls by hand.
	Ticker   services.TickerFunc
	Logger   *zap.Logger
	Location *time.Location
	// IdleTimeout makes Run return ErrIdle after this long without a user
	// event. Poll ticks do not count. Zero disables it.
	IdleTimeout time.Duration
}

// Session is one chat's client. All state changes happen on the goroutine
// running Run (or the caller of Dispatch); everything else talks to it
// through Post.
type Session struct {
	api    API
	tokens services.TokenStore
	ui     UI
	poller *services.Poller
	log    *zap.Logger

	inbox chan Event
	state *State
	seq   int
	idle  time.Duration
}

func NewSession(chatID int64, api API, tokens services.TokenStore, ui UI, opts Options) *Session {
	poller := services.NewPoller(opts.PollInterval)
	if opts.Ticker != nil {
		poller.WithTicker(opts.Ticker)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	state := NewState(chatID)
	if opts.Location != nil {
		state.Location = opts.Location
	}
	return &Session{
		api:    api,
		tokens: tokens,
		ui:     ui,
		poller: poller,
		log:    logger.With(zap.Int64("chat_id", chatID)),
		inbox:  make(chan Event, inboxSize),
		state:  state,
		idle:   opts.IdleTimeout,
	}
}

// Post queues ev, blocking until there is room or ctx is done.
func (s *Session) Post(ctx context.Context, ev Event) error {
	select {
	case s.inbox <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPost queues ev without blocking and reports whether it was accepted.
func (s *Session) TryPost(ev Event) bool {
	select {
	case s.inbox <- ev:
		return true
	default:
		return false
	}
}

// Run handles queued events one at a time until ctx is done or the session
// goes idle. ErrIdle leaves the poller running; the caller either calls Run
// again (Pending > 0) or Close.
func (s *Session) Run(ctx context.Context) error {
	var idle <-chan time.Time
	var timer *time.Timer
	if s.idle > 0 {
		timer = time.NewTimer(s.idle)
		defer timer.Stop()
		idle = timer.C
	}
	for {
		select {
		case <-ctx.Done():
			s.poller.Stop()
			return ctx.Err()
		case <-idle:
			return ErrIdle
		case ev := <-s.inbox:
			s.Dispatch(ctx, ev)
			if _, tick := ev.(PollOrders); !tick && timer != nil {
				timer.Reset(s.idle)
			}
		}
	}
}

// Pending reports how many events are queued and not yet handled.
func (s *Session) Pending() int {
	return len(s.inbox)
}

// Close stops the poll loop.
func (s *Session) Close() {
	s.poller.Stop()
}

func (s *Session) State() *State {
	return s.state
}

func (s *Session) Polling() bool {
	return s.poller.Running()
}

// Dispatch handles ev synchronously, reports any failure and re-renders.
func (s *Session) Dispatch(ctx context.Context, ev Event) {
	if err := s.handle(ctx, ev); err != nil {
		if _, ok := ev.(PollOrders); ok {
			s.log.Warn("poll orders failed", zap.Error(err))
		} else {
			s.report(ctx, err)
		}
	}
	if err := s.ui.Render(ctx, Render(s.state)); err != nil {
		s.log.Error("render failed", zap.Error(err))
	}
}

func (s *Session) report(ctx context.Context, err error) {
	kind := services.KindOf(err)
	text := services.UserMessage(err)
	switch kind {
	case services.KindSessionInvalid:
		s.log.Info("stored session discarded", zap.Error(err))
		return
	case services.KindUnknown:
		s.log.Error("request failed", zap.Error(err))
		text = msg("request_failed")
	default:
		s.log.Debug("action failed", zap.Stringer("kind", kind), zap.String("message", text))
	}
	s.notify(ctx, LevelError, text)
}

func (s *Session) notify(ctx context.Context, level Level, text string) {
	if err := s.ui.Notify(ctx, Notice{Level: level, Text: text}); err != nil {
		s.log.Error("notify failed", zap.Error(err))
	}
}

func (s *Session) handle(ctx context.Context, ev Event) error {
	st := s.state
	switch e := ev.(type) {
	case Init:
		if err := s.refreshUser(ctx); err != nil {
			s.report(ctx, err)
		}
		return s.loadMenu(ctx)
	case Refresh:
		return s.loadMenu(ctx)

	case Login:
		return s.login(ctx, e.Email, e.Password)
	case Register:
		if _, err := s.api.Register(ctx, e.Email, e.Password); err != nil {
			return err
		}
		return s.login(ctx, e.Email, e.Password)
	case Logout:
		s.clearToken(ctx)
		return s.enter(ctx, nil)
	case BecomeMaster:
		return s.becomeMaster(ctx)

	case OpenItem:
		item, ok := st.menuItem(e.ItemID)
		if !ok {
			return services.NewValidation(msg("item_unavailable"))
		}
		st.Modal = newModal(item)
	case SelectChoice:
		if st.Modal == nil || e.Group < 0 || e.Group >= len(st.Modal.Item.Options) {
			return nil
		}
		g := st.Modal.Item.Options[e.Group]
		if e.Choice >= 0 && e.Choice < len(g.Choices) {
			st.Modal.Selected[g.Name] = g.Choices[e.Choice].Label
		}
	case ClearChoice:
		if st.Modal == nil || e.Group < 0 || e.Group >= len(st.Modal.Item.Options) {
			return nil
		}
		if g := st.Modal.Item.Options[e.Group]; !g.Required {
			delete(st.Modal.Selected, g.Name)
		}
	case AdjustQuantity:
		if st.Modal != nil {
			st.Modal.Quantity = services.ClampQuantity(st.Modal.Quantity + max(min(e.Delta, services.MaxQuantity), -services.MaxQuantity))
		}
	case SetQuantity:
		if st.Modal != nil {
			st.Modal.Quantity = services.ClampQuantity(e.Quantity)
		}
	case AddToCart:
		if st.Modal != nil {
			st.Cart.Add(st.Modal.Item, st.Modal.Quantity, st.Modal.Selected)
			st.Modal = nil
		}
	case CloseModal:
		st.Modal = nil

	case RemoveFromCart:
		if err := st.Cart.Remove(e.Index); err != nil {
			s.log.Debug("stale cart index", zap.Int("index", e.Index))
		}
	case PlaceOrder:
		return s.placeOrder(ctx, e.Name)

	case StartEdit:
		item, ok := st.menuItem(e.ItemID)
		if !ok {
			return services.NewValidation(msg("item_unavailable"))
		}
		st.Form.Editing = &item
	case CancelEdit:
		st.Form.Reset()
	case SubmitMenuForm:
		return s.submitMenuForm(ctx, e.Raw)
	case DeleteItem:
		item, ok := st.menuItem(e.ItemID)
		if !ok {
			return services.NewValidation(msg("item_unavailable"))
		}
		return s.confirm(ctx, msg("confirm_delete_item", item.Name), func(ctx context.Context) error {
			if err := s.api.DeleteMenuItem(s.authed(ctx), item.ID); err != nil {
				return err
			}
			if st.Form.Editing != nil && st.Form.Editing.ID == item.ID {
				st.Form.Reset()
			}
			return s.loadMenu(ctx)
		})
	case ClearMenu:
		return s.confirm(ctx, msg("confirm_clear_menu"), func(ctx context.Context) error {
			if err := s.api.ClearMenu(s.authed(ctx)); err != nil {
				return err
			}
			st.Form.Reset()
			return s.loadMenu(ctx)
		})

	case MarkServed:
		if err := s.api.MarkServed(s.authed(ctx), e.OrderID); err != nil {
			return err
		}
		return s.loadOrders(ctx)
	case ClearOrders:
		return s.confirm(ctx, msg("confirm_clear_orders"), func(ctx context.Context) error {
			if err := s.api.ClearOrders(s.authed(ctx)); err != nil {
				return err
			}
			return s.loadOrders(ctx)
		})
	case DeleteUser:
		u, ok := st.user(e.UserID)
		if !ok {
			return nil
		}
		return s.confirm(ctx, msg("confirm_delete_user", u.Email), func(ctx context.Context) error {
			if err := s.api.DeleteUser(s.authed(ctx), u.ID); err != nil {
				return err
			}
			return s.loadUsers(ctx)
		})

	case PollOrders:
		if !st.Gate.IsMaster() {
			return nil
		}
		return s.loadOrders(ctx)
	case Decision:
		run, ok := st.pending[e.ID]
		if !ok {
			return nil
		}
		delete(st.pending, e.ID)
		if !e.Accepted {
			return nil
		}
		return run(ctx)

	default:
		return fmt.Errorf("unhandled event %T", ev)
	}
	return nil
}

// confirm asks the user and parks run until the matching Decision arrives.
func (s *Session) confirm(ctx context.Context, prompt string, run func(context.Context) error) error {
	s.seq++
	id := fmt.Sprintf("c%d", s.seq)
	s.state.pending[id] = run
	if err := s.ui.Confirm(ctx, Confirmation{ID: id, Prompt: prompt}); err != nil {
		delete(s.state.pending, id)
		return err
	}
	return nil
}

func (s *Session) token(ctx context.Context) string {
	tok, err := s.tokens.Get(ctx, s.state.ChatID)
	if err != nil {
		s.log.Error("read token", zap.Error(err))
		return ""
	}
	return tok
}

func (s *Session) setToken(ctx context.Context, token string) error {
	if err := s.tokens.Set(ctx, s.state.ChatID, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

func (s *Session) clearToken(ctx context.Context) {
	if err := s.tokens.Clear(ctx, s.state.ChatID); err != nil {
		s.log.Error("clear token", zap.Error(err))
	}
}

// authed attaches the stored token, if any, to ctx.
func (s *Session) authed(ctx context.Context) context.Context {
	return menuapi.WithToken(ctx, s.token(ctx))
}

func (s *Session) login(ctx context.Context, email, password string) error {
	tok, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := s.setToken(ctx, tok.AccessToken); err != nil {
		return err
	}
	return s.refreshUser(ctx)
}

// refreshUser re-reads the profile for the stored token. A failure discards
// the token and drops the session to Guest.
func (s *Session) refreshUser(ctx context.Context) error {
	token := s.token(ctx)
	if token == "" {
		return s.enter(ctx, nil)
	}
	u, err := s.api.Me(menuapi.WithToken(ctx, token))
	if err == nil && u == nil {
		err = errEmptyProfile
	}
	if err != nil {
		s.clearToken(ctx)
		if enterErr := s.enter(ctx, nil); enterErr != nil {
			s.log.Error("enter guest", zap.Error(enterErr))
		}
		return services.NewSessionInvalid(err)
	}
	return s.enter(ctx, u)
}

func (s *Session) enter(ctx context.Context, u *models.User) error {
	tr := s.state.Gate.Enter(u)
	if tr.Changed() {
		s.log.Info("role changed", zap.Stringer("from", tr.From), zap.Stringer("to", tr.To))
	}
	if tr.To != services.RoleMaster {
		s.poller.Stop()
		s.state.Orders, s.state.Users = nil, nil
		s.state.Form.Reset()
		return nil
	}
	err := s.loadMasterPanels(ctx)
	s.poller.Start(func() { s.TryPost(PollOrders{}) })
	return err
}

func (s *Session) becomeMaster(ctx context.Context) error {
	token := s.token(ctx)
	if token == "" {
		return services.NewAuthRequired(msg("login_to_master"))
	}
	if err := s.api.BecomeMaster(menuapi.WithToken(ctx, token)); err != nil {
		return err
	}
	if err := s.refreshUser(ctx); err != nil {
		return err
	}
	s.notify(ctx, LevelInfo, msg("master_enabled"))
	return nil
}

func (s *Session) placeOrder(ctx context.Context, name string) error {
	if s.state.Cart.Len() == 0 {
		return services.NewValidation(msg("cart_is_empty"))
	}
	token := s.token(ctx)
	if token == "" {
		return services.NewAuthRequired(msg("login_to_order"))
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return services.NewValidation(msg("order_name_required"))
	}
	in := models.OrderInput{Name: name, Items: s.state.Cart.OrderItems()}
	order, err := s.api.CreateOrder(menuapi.WithToken(ctx, token), in)
	if err != nil {
		return err
	}
	s.state.Cart.Clear()
	s.log.Info("order placed", zap.Int64("order_id", order.ID), zap.Int64("total_cents", order.TotalCents))
	if err := s.loadOrders(ctx); err != nil {
		s.report(ctx, err)
	}
	s.notify(ctx, LevelInfo, msg("order_placed"))
	return nil
}

func (s *Session) submitMenuForm(ctx context.Context, raw string) error {
	in, err := ParseMenuForm(raw)
	if err != nil {
		return err
	}
	actx := s.authed(ctx)
	if editing := s.state.Form.Editing; editing != nil {
		_, err = s.api.UpdateMenuItem(actx, editing.ID, in)
	} else {
		_, err = s.api.CreateMenuItem(actx, in)
	}
	if err != nil {
		return err
	}
	s.state.Form.Reset()
	return s.loadMenu(ctx)
}

func (s *Session) loadMenu(ctx context.Context) error {
	items, err := s.api.ListMenu(s.authed(ctx))
	if err != nil {
		return err
	}
	s.state.Menu = items
	return nil
}

func (s *Session) loadOrders(ctx context.Context) error {
	if !s.state.Gate.IsMaster() {
		return nil
	}
	orders, err := s.api.ListOrders(s.authed(ctx))
	if err != nil {
		return err
	}
	s.state.Orders = orders
	return nil
}

func (s *Session) loadUsers(ctx context.Context) error {
	if !s.state.Gate.IsMaster() {
		return nil
	}
	users, err := s.api.ListUsers(s.authed(ctx))
	if err != nil {
		return err
	}
	s.state.Users = users
	return nil
}

// loadMasterPanels fetches orders and users concurrently. Each panel keeps
// whatever loaded even if the other fails.
func (s *Session) loadMasterPanels(ctx context.Context) error {
	actx := s.authed(ctx)
	var orders []models.Order
	var users []models.User
	var ordersErr, usersErr error

	var g errgroup.Group
	g.Go(func() error {
		orders, ordersErr = s.api.ListOrders(actx)
		return ordersErr
	})
	g.Go(func() error {
		users, usersErr = s.api.ListUsers(actx)
		return usersErr
	})
	err := g.Wait()

	if ordersErr == nil {
		s.state.Orders = orders
	}
	if usersErr == nil {
		s.state.Users = users
	}
	return err
}
