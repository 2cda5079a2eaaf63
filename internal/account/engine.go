package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/storage"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned when login fails the credential check.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Engine manages the single logged-in user record and its session
// persistence. Every mutator is a silent no-op when no user is
// authenticated; that is a deliberate guard, not an error condition.
type Engine struct {
	mu          sync.Mutex
	user        *models.User
	loading     bool
	store       storage.Store
	logger      *zap.Logger
	delay       time.Duration
	subscribers []func()
}

// NewEngine creates an unauthenticated session engine. The delay models
// the network round-trip of login and signup; tests pass zero.
func NewEngine(store storage.Store, delay time.Duration) *Engine {
	return &Engine{
		store:  store,
		logger: util.GetLogger(),
		delay:  delay,
	}
}

// Subscribe registers a callback invoked after every session mutation.
func (e *Engine) Subscribe(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers = append(e.subscribers, fn)
}

// Current returns a snapshot of the logged-in user, or nil.
func (e *Engine) Current() *models.User {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyUser(e.user)
}

// IsAuthenticated reports whether a user is logged in.
func (e *Engine) IsAuthenticated() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.user != nil
}

// IsLoading reports whether a login or signup is in flight, so callers
// can suppress duplicate submissions.
func (e *Engine) IsLoading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// Login checks the email and password against the seeded credential set,
// standing in for a real authentication service. On success the session
// becomes authenticated and is persisted.
func (e *Engine) Login(ctx context.Context, email, password string) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "AccountEngine.Login")
	defer span.End()

	util.LoginAttemptsTotal.Inc()
	e.setLoading(true)
	defer e.setLoading(false)

	e.sleep(ctx)

	seeded := findSeedUser(email)
	if seeded == nil || password != seedPassword {
		e.logger.Warn("Login rejected", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	e.mu.Lock()
	e.user = copyUser(seeded)
	e.persistLocked(ctx)
	user := copyUser(e.user)
	e.notifyLocked()
	e.mu.Unlock()

	util.LoginSuccessTotal.Inc()
	e.logger.Info("User logged in", zap.String("user_id", user.ID))
	return user, nil
}

// Signup creates a fresh account with empty addresses, wishlist and
// orders, and authenticates it immediately. The mock never fails.
func (e *Engine) Signup(ctx context.Context, name, email, _ string) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "AccountEngine.Signup")
	defer span.End()

	e.setLoading(true)
	defer e.setLoading(false)

	e.sleep(ctx)

	user := &models.User{
		ID:        fmt.Sprintf("%d", time.Now().UnixMilli()),
		Name:      name,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Addresses: []models.Address{},
		Wishlist:  []string{},
		Orders:    []models.Order{},
	}

	e.mu.Lock()
	e.user = user
	e.persistLocked(ctx)
	out := copyUser(e.user)
	e.notifyLocked()
	e.mu.Unlock()

	util.SignupsTotal.Inc()
	e.logger.Info("User signed up", zap.String("user_id", out.ID))
	return out, nil
}

// Logout clears the session and removes the persisted record.
func (e *Engine) Logout(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.user = nil
	if err := e.store.Delete(ctx, storage.KeySessionUser); err != nil {
		e.logger.Error("Failed to delete persisted session", zap.Error(err))
	}
	e.notifyLocked()
}

// ProfileUpdate carries optional profile fields; nil fields are left
// untouched.
type ProfileUpdate struct {
	Name  *string
	Email *string
	Phone *string
}

// UpdateProfile merges the given fields into the current user.
func (e *Engine) UpdateProfile(ctx context.Context, update ProfileUpdate) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.user == nil {
		return
	}

	if update.Name != nil {
		e.user.Name = *update.Name
	}
	if update.Email != nil {
		e.user.Email = *update.Email
	}
	if update.Phone != nil {
		e.user.Phone = *update.Phone
	}

	e.persistLocked(ctx)
	e.notifyLocked()
}

// AddAddress assigns a unique id and appends the address. Nothing
// enforces a single default address; the stored flags are kept as given.
func (e *Engine) AddAddress(ctx context.Context, address models.Address) *models.Address {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.user == nil {
		return nil
	}

	address.ID = uuid.New().String()
	e.user.Addresses = append(e.user.Addresses, address)

	e.persistLocked(ctx)
	e.notifyLocked()
	return &address
}

// AddressUpdate carries optional address fields; nil fields are left
// untouched.
type AddressUpdate struct {
	Name         *string
	Phone        *string
	AddressLine1 *string
	AddressLine2 *string
	City         *string
	State        *string
	Pincode      *string
	IsDefault    *bool
}

// UpdateAddress merges fields into the matching address. Unknown ids are
// a no-op.
func (e *Engine) UpdateAddress(ctx context.Context, id string, update AddressUpdate) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.user == nil {
		return
	}

	for i := range e.user.Addresses {
		if e.user.Addresses[i].ID != id {
			continue
		}
		addr := &e.user.Addresses[i]
		if update.Name != nil {
			addr.Name = *update.Name
		}
		if update.Phone != nil {
			addr.Phone = *update.Phone
		}
		if update.AddressLine1 != nil {
			addr.AddressLine1 = *update.AddressLine1
		}
		if update.AddressLine2 != nil {
			addr.AddressLine2 = *update.AddressLine2
		}
		if update.City != nil {
			addr.City = *update.City
		}
		if update.State != nil {
			addr.State = *update.State
		}
		if update.Pincode != nil {
			addr.Pincode = *update.Pincode
		}
		if update.IsDefault != nil {
			addr.IsDefault = *update.IsDefault
		}

		e.persistLocked(ctx)
		e.notifyLocked()
		return
	}
}

// DeleteAddress removes the matching address. Unknown ids are a no-op.
func (e *Engine) DeleteAddress(ctx context.Context, id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.user == nil {
		return
	}

	for i := range e.user.Addresses {
		if e.user.Addresses[i].ID == id {
			e.user.Addresses = append(e.user.Addresses[:i], e.user.Addresses[i+1:]...)
			e.persistLocked(ctx)
			e.notifyLocked()
			return
		}
	}
}

// AddToWishlist adds a product id to the wishlist. Adding an id already
// present is a no-op, so the wishlist behaves as a set.
func (e *Engine) AddToWishlist(ctx context.Context, productID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.user == nil {
		return
	}

	for _, id := range e.user.Wishlist {
		if id == productID {
			return
		}
	}
	e.user.Wishlist = append(e.user.Wishlist, productID)

	e.persistLocked(ctx)
	e.notifyLocked()
}

// RemoveFromWishlist removes a product id from the wishlist.
func (e *Engine) RemoveFromWishlist(ctx context.Context, productID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.user == nil {
		return
	}

	filtered := e.user.Wishlist[:0]
	for _, id := range e.user.Wishlist {
		if id != productID {
			filtered = append(filtered, id)
		}
	}
	e.user.Wishlist = filtered

	e.persistLocked(ctx)
	e.notifyLocked()
}

// AddOrder assigns the order id and creation date and prepends the order,
// keeping the list newest-first. Returns nil when unauthenticated.
func (e *Engine) AddOrder(ctx context.Context, order models.Order) *models.Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.user == nil {
		return nil
	}

	now := time.Now()
	order.ID = fmt.Sprintf("ORD%d", now.UnixMilli())
	order.Date = now.Format("2006-01-02")

	e.user.Orders = append([]models.Order{order}, e.user.Orders...)

	e.persistLocked(ctx)
	e.notifyLocked()

	e.logger.Info("Order recorded",
		zap.String("order_id", order.ID),
		zap.Int64("total", order.Total))
	return &order
}

// Rehydrate restores the session from the persisted snapshot, if any.
func (e *Engine) Rehydrate(ctx context.Context) error {
	raw, err := e.store.Get(ctx, storage.KeySessionUser)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return fmt.Errorf("failed to parse session: %w", err)
	}

	e.mu.Lock()
	e.user = &user
	e.notifyLocked()
	e.mu.Unlock()

	e.logger.Info("Session rehydrated", zap.String("user_id", user.ID))
	return nil
}

// persistLocked writes the full user snapshot through to the store. Must
// be called with the lock held. A write failure is logged, never fatal.
func (e *Engine) persistLocked(ctx context.Context) {
	raw, err := json.Marshal(e.user)
	if err != nil {
		e.logger.Error("Failed to marshal session", zap.Error(err))
		return
	}
	if err := e.store.Set(ctx, storage.KeySessionUser, raw); err != nil {
		util.StateWriteFailuresTotal.WithLabelValues(storage.KeySessionUser).Inc()
		e.logger.Error("Failed to persist session", zap.Error(err))
	}
}

func (e *Engine) notifyLocked() {
	for _, fn := range e.subscribers {
		fn()
	}
}

func (e *Engine) setLoading(v bool) {
	e.mu.Lock()
	e.loading = v
	e.mu.Unlock()
}

func (e *Engine) sleep(ctx context.Context) {
	if e.delay <= 0 {
		return
	}
	select {
	case <-time.After(e.delay):
	case <-ctx.Done():
	}
}

func copyUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Addresses = append([]models.Address(nil), u.Addresses...)
	cp.Wishlist = append([]string(nil), u.Wishlist...)
	cp.Orders = append([]models.Order(nil), u.Orders...)
	return &cp
}
