package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/egannguyen/go-storefront/internal/entity"
	"github.com/egannguyen/go-storefront/internal/repository"
	"github.com/egannguyen/go-storefront/internal/repository/gormdb"
)

type testEnv struct {
	db        *gorm.DB
	products  repository.ProductRepository
	orders    repository.OrderRepository
	payments  repository.PaymentRepository
	customers repository.CustomerRepository
	reviews   repository.ReviewRepository
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gormdb.Migrate(db))

	return &testEnv{
		db:        db,
		products:  gormdb.NewProductRepository(db),
		orders:    gormdb.NewOrderRepository(db),
		payments:  gormdb.NewPaymentRepository(db),
		customers: gormdb.NewCustomerRepository(db),
		reviews:   gormdb.NewReviewRepository(db),
	}
}

func (e *testEnv) createCustomer(t *testing.T, username, phone string) *entity.Customer {
	t.Helper()
	customer := &entity.Customer{
		Username:    username,
		Email:       username + "@example.com",
		FullName:    "Test " + username,
		PhoneNumber: phone,
		Address:     "12 Cane Street",
	}
	require.NoError(t, e.db.Create(customer).Error)
	return customer
}

func (e *testEnv) createProduct(t *testing.T, name, price string, discount *uint, stock int, packSizes ...entity.ProductPackSize) *entity.Product {
	t.Helper()
	category := &entity.Category{Name: "Test Category"}
	require.NoError(t, e.db.FirstOrCreate(category, entity.Category{Name: "Test Category"}).Error)

	product := &entity.Product{
		CategoryID:         category.ID,
		Name:               name,
		OriginalPrice:      decimal.RequireFromString(price),
		DiscountPercentage: discount,
		Stock:              stock,
		Available:          true,
		PackSizes:          packSizes,
	}
	require.NoError(t, e.products.Create(context.Background(), product))
	return product
}

func pct(v uint) *uint { return &v }

// fakePublisher records published events instead of talking to a broker.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

type publishedEvent struct {
	topic string
	key   string
	event any
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{topic: topic, key: key, event: event})
	return nil
}

func (p *fakePublisher) byTopic(topic string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.topic == topic {
			out = append(out, e)
		}
	}
	return out
}

// fakeNotifier counts produced notifications.
type fakeNotifier struct {
	mu        sync.Mutex
	approvals int
	summaries int
	err       error
}

func (n *fakeNotifier) PaymentApproved(_ context.Context, _ *entity.Payment, _ *entity.Order, _ []entity.OrderItem, _ *entity.Customer) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return "", n.err
	}
	n.approvals++
	return "https://api.whatsapp.com/send?phone=919016247243&text=approved", nil
}

func (n *fakeNotifier) OrderSummaryLink(_ *entity.Order, _ []entity.OrderItem, _ string, _ *entity.Customer) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return "", n.err
	}
	n.summaries++
	return "https://api.whatsapp.com/send?phone=919016247243&text=summary", nil
}
