package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/catalog"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/logging"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
)

// Discount percentage bounds. Earned codes reward a completed tasting or a
// guided purchase; unearned codes are a flat courtesy discount.
const (
	earnedDiscountMin  = 10
	earnedDiscountMax  = 19
	unearnedDiscount   = 5
	discountCodePrefix = "FORTUNA"
)

// SalesService handles the purchase-assistance flow: discount codes, store
// links, shipping collection, and simulated payment links.
type SalesService interface {
	// GenerateDiscountCode issues a code. Earned codes carry 10-19%,
	// unearned a flat 5%.
	GenerateDiscountCode(ctx context.Context, session *models.TastingSession, earned bool) (*models.DiscountCode, error)

	// PreparePurchase builds an order with a store link per requested beer.
	PreparePurchase(ctx context.Context, beerIDs []string, discountCode string) (*models.Order, error)

	// CollectShipping validates shipping details for an order.
	CollectShipping(ctx context.Context, orderID string, info models.ShippingInfo) error

	// GeneratePaymentLink creates a simulated checkout link for the order.
	GeneratePaymentLink(ctx context.Context, orderID string, amount float64) (*models.PaymentLink, error)
}

type salesService struct {
	catalog  CatalogService
	storeURL string
	logger   *zap.Logger
}

// NewSalesService creates a sales service. storeURL is the brewery store
// base; product links are derived from it per beer.
func NewSalesService(catalogSvc CatalogService, storeURL string, logger *zap.Logger) SalesService {
	return &salesService{
		catalog:  catalogSvc,
		storeURL: strings.TrimRight(storeURL, "/"),
		logger:   logger.Named("sales"),
	}
}

var _ SalesService = (*salesService)(nil)

func (s *salesService) GenerateDiscountCode(ctx context.Context, session *models.TastingSession, earned bool) (*models.DiscountCode, error) {
	percentage := unearnedDiscount
	if earned {
		n, err := rand.Int(rand.Reader, big.NewInt(earnedDiscountMax-earnedDiscountMin+1))
		if err != nil {
			return nil, fmt.Errorf("generate discount percentage: %w", err)
		}
		percentage = earnedDiscountMin + int(n.Int64())
	}

	code := &models.DiscountCode{
		Code:       fmt.Sprintf("%s%d-%s", discountCodePrefix, percentage, shortToken()),
		Percentage: percentage,
		Earned:     earned,
	}

	s.logger.Info("Discount code issued",
		zap.String("session_id", session.ID),
		zap.Int("percentage", percentage),
		zap.Bool("earned", earned))
	return code, nil
}

func (s *salesService) PreparePurchase(ctx context.Context, beerIDs []string, discountCode string) (*models.Order, error) {
	if len(beerIDs) == 0 {
		return nil, fmt.Errorf("purchase requires at least one beer")
	}

	order := &models.Order{
		ID:            uuid.New().String(),
		Beers:         make([]string, 0, len(beerIDs)),
		PurchaseLinks: make(map[string]string, len(beerIDs)),
		DiscountCode:  discountCode,
	}

	for _, id := range beerIDs {
		beer, err := s.catalog.GetBeer(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("prepare purchase: %w", err)
		}
		order.Beers = append(order.Beers, beer.Name)
		order.PurchaseLinks[beer.Name] = s.productLink(beer)
	}

	s.logger.Info("Purchase prepared",
		zap.String("order_id", order.ID),
		zap.Int("beers", len(order.Beers)))
	return order, nil
}

func (s *salesService) CollectShipping(ctx context.Context, orderID string, info models.ShippingInfo) error {
	if err := info.Validate(); err != nil {
		return fmt.Errorf("shipping details: %w", err)
	}

	// Shipping details are PII; only sanitized fragments reach the log.
	s.logger.Info("Shipping details collected",
		zap.String("order_id", orderID),
		zap.String("city", info.City),
		zap.String("contact", logging.SanitizePII(info.Email)))
	return nil
}

func (s *salesService) GeneratePaymentLink(ctx context.Context, orderID string, amount float64) (*models.PaymentLink, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}

	link := &models.PaymentLink{
		OrderID:   orderID,
		URL:       fmt.Sprintf("https://pay.cervezafortuna.com/checkout/cs_%s", shortToken()),
		Amount:    amount,
		Currency:  "MXN",
		ExpiresIn: "24 hours",
	}

	s.logger.Info("Payment link generated",
		zap.String("order_id", orderID),
		zap.Float64("amount", amount))
	return link, nil
}

// productLink builds the store URL for one beer from its id slug.
func (s *salesService) productLink(beer *models.Beer) string {
	return fmt.Sprintf("%s/producto/%s/", s.storeURL, url.PathEscape(catalog.Slug(beer.Name)))
}

// shortToken returns an 8-character random token for codes and links.
func shortToken() string {
	return strings.ToUpper(uuid.New().String()[:8])
}
