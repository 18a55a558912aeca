package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Kaosethi/MerchantApp-sub000/shared/models"
	sharedredis "github.com/Kaosethi/MerchantApp-sub000/shared/redis"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const receiptKeyPrefix = "pos:receipt:"

var ErrReceiptNotFound = errors.New("receipt not found")

type receiptCache interface {
	Get(ctx context.Context, id string) (*models.ReceiptView, bool)
	Set(ctx context.Context, id string, view *models.ReceiptView)
}

// ReceiptRepository serves receipts of successful transfers. Receipts are only
// ever cached; the backend stays the source of truth for the transfer itself.
type ReceiptRepository struct {
	cache receiptCache
}

func NewRedisReceiptRepository(client goredis.Cmdable, ttl time.Duration, logger *zap.Logger) *ReceiptRepository {
	return &ReceiptRepository{
		cache: sharedredis.NewViewCache[models.ReceiptView](client, receiptKeyPrefix, ttl, logger),
	}
}

// NewMemoryReceiptRepository keeps receipts in process memory for ttl.
func NewMemoryReceiptRepository(ttl time.Duration) *ReceiptRepository {
	return &ReceiptRepository{cache: newMemoryReceipts(ttl)}
}

// Save caches the receipt. Called by the command service right after a
// successful transfer.
func (r *ReceiptRepository) Save(ctx context.Context, view *models.ReceiptView) {
	r.cache.Set(ctx, view.TransactionID, view)
}

func (r *ReceiptRepository) GetByID(ctx context.Context, transactionID, merchantID string) (*models.ReceiptView, error) {
	view, ok := r.cache.Get(ctx, transactionID)
	if !ok {
		return nil, ErrReceiptNotFound
	}
	if view.MerchantID != merchantID {
		return nil, ErrForbidden
	}
	return view, nil
}

type memoryReceipt struct {
	view    models.ReceiptView
	expires time.Time
}

type memoryReceipts struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memoryReceipt
	now   func() time.Time
}

func newMemoryReceipts(ttl time.Duration) *memoryReceipts {
	return &memoryReceipts{ttl: ttl, items: make(map[string]memoryReceipt), now: time.Now}
}

func (m *memoryReceipts) Get(_ context.Context, id string) (*models.ReceiptView, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return nil, false
	}
	if m.ttl > 0 && m.now().After(item.expires) {
		delete(m.items, id)
		return nil, false
	}
	view := item.view
	return &view, true
}

func (m *memoryReceipts) Set(_ context.Context, id string, view *models.ReceiptView) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[id] = memoryReceipt{view: *view, expires: m.now().Add(m.ttl)}
}
