package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"storefront-service/internal/catalog"
	"storefront-service/internal/models"
	"storefront-service/internal/storage"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

var (
	// ErrInvalidQuantity is returned when an add is attempted with a
	// non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrVariantNotFound is returned when the requested weight does not
	// match any variant of the product. State is left unchanged.
	ErrVariantNotFound = errors.New("variant not found")
)

// LineID builds the composite cart line id, one line per product-variant
// pair.
func LineID(productID, variantWeight string) string {
	return fmt.Sprintf("%s-%s", productID, variantWeight)
}

// Engine maintains the cart line items and keeps total and itemCount in
// sync with them. Every mutation writes the full state through to the
// store.
type Engine struct {
	mu          sync.Mutex
	state       models.CartState
	store       storage.Store
	logger      *zap.Logger
	subscribers []func()
}

// NewEngine creates an empty cart engine backed by the given store.
func NewEngine(store storage.Store) *Engine {
	return &Engine{
		store:  store,
		logger: util.GetLogger(),
	}
}

// Subscribe registers a callback invoked after every mutation, so the
// presentation layer can re-render from a fresh snapshot.
func (e *Engine) Subscribe(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers = append(e.subscribers, fn)
}

// State returns a snapshot of the current cart state.
func (e *Engine) State() models.CartState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyState(e.state)
}

// Add resolves the variant by weight and either merges into the existing
// line for the same product+variant or appends a new line with the unit
// price captured from the variant at this moment.
func (e *Engine) Add(ctx context.Context, product *models.Product, variantWeight string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	variant, ok := catalog.Variant(product, variantWeight)
	if !ok {
		return ErrVariantNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	lineID := LineID(product.ID, variantWeight)
	merged := false
	for i := range e.state.Items {
		if e.state.Items[i].ID == lineID {
			e.state.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		e.state.Items = append(e.state.Items, models.CartItem{
			ID:       lineID,
			Product:  *product,
			Variant:  variantWeight,
			Quantity: quantity,
			Price:    variant.Price,
		})
	}

	e.recompute()
	e.persist(ctx)
	util.CartItemsAddedTotal.Inc()
	e.notify()

	e.logger.Info("Cart item added",
		zap.String("line_id", lineID),
		zap.Int("quantity", quantity),
		zap.Int64("total", e.state.Total))
	return nil
}

// Remove deletes the line with the given id. Removing an unknown line is
// a no-op.
func (e *Engine) Remove(ctx context.Context, lineID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeLocked(ctx, lineID)
}

// UpdateQuantity replaces the quantity of a line. A quantity of zero or
// less removes the line. Updating an unknown line is a no-op.
func (e *Engine) UpdateQuantity(ctx context.Context, lineID string, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if quantity <= 0 {
		e.removeLocked(ctx, lineID)
		return
	}

	for i := range e.state.Items {
		if e.state.Items[i].ID == lineID {
			e.state.Items[i].Quantity = quantity
			e.recompute()
			e.persist(ctx)
			e.notify()
			return
		}
	}
}

// Clear resets the cart to its empty state.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = models.CartState{}
	e.persist(ctx)
	util.CartClearedTotal.Inc()
	e.notify()
}

// Load replaces the whole state, recomputing total and itemCount from the
// items rather than trusting the snapshot. A hand-edited persisted blob
// cannot desynchronize the totals.
func (e *Engine) Load(ctx context.Context, state models.CartState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = copyState(state)
	e.recompute()
	e.persist(ctx)
	e.notify()
}

// Rehydrate restores the cart from the persisted snapshot, if any.
func (e *Engine) Rehydrate(ctx context.Context) error {
	raw, err := e.store.Get(ctx, storage.KeyCartState)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load cart state: %w", err)
	}

	var state models.CartState
	if err := json.Unmarshal(raw, &state); err != nil {
		return fmt.Errorf("failed to parse cart state: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = state
	e.recompute()
	e.notify()

	e.logger.Info("Cart rehydrated",
		zap.Int("lines", len(state.Items)),
		zap.Int64("total", e.state.Total))
	return nil
}

func (e *Engine) removeLocked(ctx context.Context, lineID string) {
	for i := range e.state.Items {
		if e.state.Items[i].ID == lineID {
			e.state.Items = append(e.state.Items[:i], e.state.Items[i+1:]...)
			e.recompute()
			e.persist(ctx)
			util.CartItemsRemovedTotal.Inc()
			e.notify()
			return
		}
	}
}

// recompute derives total and itemCount from the lines. Must be called
// after every change to Items, with the lock held.
func (e *Engine) recompute() {
	var total int64
	var count int
	for _, item := range e.state.Items {
		total += item.Price * int64(item.Quantity)
		count += item.Quantity
	}
	e.state.Total = total
	e.state.ItemCount = count
}

// persist writes the full state through to the store. A write failure is
// logged and counted but never fails the mutation.
func (e *Engine) persist(ctx context.Context) {
	raw, err := json.Marshal(e.state)
	if err != nil {
		e.logger.Error("Failed to marshal cart state", zap.Error(err))
		return
	}
	if err := e.store.Set(ctx, storage.KeyCartState, raw); err != nil {
		util.StateWriteFailuresTotal.WithLabelValues(storage.KeyCartState).Inc()
		e.logger.Error("Failed to persist cart state", zap.Error(err))
	}
}

func (e *Engine) notify() {
	for _, fn := range e.subscribers {
		fn()
	}
}

func copyState(state models.CartState) models.CartState {
	cp := state
	cp.Items = make([]models.CartItem, len(state.Items))
	copy(cp.Items, state.Items)
	return cp
}
