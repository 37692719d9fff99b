package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/request"
	"github.com/SCRMS-FPT/court-booking-service/internal/promotion"
)

// PromotionTag is the compact form attached to availability slots.
type PromotionTag struct {
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
}

// NewPromotionTag returns nil when d is nil, so the field renders as null.
func NewPromotionTag(d *promotion.Descriptor) *PromotionTag {
	if d == nil {
		return nil
	}
	return &PromotionTag{DiscountType: string(d.DiscountType), DiscountValue: d.DiscountValue}
}

type PromotionResponse struct {
	ID            string          `json:"id"`
	CourtID       string          `json:"court_id"`
	Description   string          `json:"description"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	ValidFrom     string          `json:"valid_from"`
	ValidTo       string          `json:"valid_to"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func NewPromotionResponse(p *promotion.Promotion) PromotionResponse {
	return PromotionResponse{
		ID:            p.ID,
		CourtID:       p.CourtID,
		Description:   p.Description,
		DiscountType:  string(p.DiscountType),
		DiscountValue: p.DiscountValue,
		ValidFrom:     p.ValidFrom.Format(request.DateLayout),
		ValidTo:       p.ValidTo.Format(request.DateLayout),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

type PromotionBody struct {
	Description   string           `json:"description" binding:"max=500"`
	DiscountType  string           `json:"discount_type" binding:"required,oneof=Percentage Fixed"`
	DiscountValue *decimal.Decimal `json:"discount_value" binding:"required"`
	ValidFrom     string           `json:"valid_from" binding:"required,isodate"`
	ValidTo       string           `json:"valid_to" binding:"required,isodate"`
}

func (b *PromotionBody) Params() (promotion.Params, error) {
	from, err := request.ParseDate(b.ValidFrom)
	if err != nil {
		return promotion.Params{}, err
	}
	to, err := request.ParseDate(b.ValidTo)
	if err != nil {
		return promotion.Params{}, err
	}
	return promotion.Params{
		Description:   b.Description,
		DiscountType:  promotion.DiscountType(b.DiscountType),
		DiscountValue: *b.DiscountValue,
		ValidFrom:     from,
		ValidTo:       to,
	}, nil
}
