package promotion

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, apperror.KindNotFound, "promotion not found")
	ErrInvalidType       = apperror.New(http.StatusBadRequest, apperror.KindValidation, "discount type must be Percentage or Fixed")
	ErrInvalidValue      = apperror.New(http.StatusBadRequest, apperror.KindValidation, "discount value must be positive and a percentage must not exceed 100")
	ErrInvalidValidRange = apperror.New(http.StatusBadRequest, apperror.KindValidation, "valid_from must not be after valid_to")
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "Percentage"
	DiscountFixed      DiscountType = "Fixed"
)

var hundred = decimal.NewFromInt(100)

// Promotion is a date-bounded discount on a court's prices.
// ValidFrom and ValidTo are inclusive calendar dates at UTC midnight.
type Promotion struct {
	ID            string
	CourtID       string
	Description   string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	ValidFrom     time.Time
	ValidTo       time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Descriptor is the part of a promotion shown next to a slot.
type Descriptor struct {
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
}

type Params struct {
	Description   string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	ValidFrom     time.Time
	ValidTo       time.Time
}

func New(courtID string, p Params) (Promotion, error) {
	return Promotion{CourtID: courtID}.apply(p)
}

// Update returns a copy of p with every attribute in params applied.
func (p Promotion) Update(params Params) (Promotion, error) {
	return p.apply(params)
}

func (p Promotion) apply(params Params) (Promotion, error) {
	switch params.DiscountType {
	case DiscountPercentage:
		if params.DiscountValue.GreaterThan(hundred) {
			return Promotion{}, ErrInvalidValue
		}
	case DiscountFixed:
	default:
		return Promotion{}, ErrInvalidType
	}
	if !params.DiscountValue.IsPositive() {
		return Promotion{}, ErrInvalidValue
	}
	from, to := dateOnly(params.ValidFrom), dateOnly(params.ValidTo)
	if from.After(to) {
		return Promotion{}, ErrInvalidValidRange
	}

	p.Description = params.Description
	p.DiscountType = params.DiscountType
	p.DiscountValue = params.DiscountValue
	p.ValidFrom = from
	p.ValidTo = to
	return p, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidOn reports whether date falls within [ValidFrom, ValidTo].
func (p Promotion) ValidOn(date time.Time) bool {
	d := dateOnly(date)
	return !d.Before(p.ValidFrom) && !d.After(p.ValidTo)
}

// Apply returns amount after the discount. Fixed discounts floor at zero.
// The result is not rounded.
func (p Promotion) Apply(amount decimal.Decimal) decimal.Decimal {
	switch p.DiscountType {
	case DiscountPercentage:
		return amount.Mul(hundred.Sub(p.DiscountValue)).Div(hundred)
	case DiscountFixed:
		out := amount.Sub(p.DiscountValue)
		if out.IsNegative() {
			return decimal.Zero
		}
		return out
	}
	return amount
}

func (p Promotion) Descriptor() Descriptor {
	return Descriptor{DiscountType: p.DiscountType, DiscountValue: p.DiscountValue}
}

// Best picks the one promotion that applies to a court on date. The choice
// never depends on the amount priced, so every slot of the day and every
// detail booked on it carry the same promotion.
// Percentage beats Fixed, then the larger value wins, then the latest
// ValidFrom, then the lowest ID.
func Best(promotions []Promotion, date time.Time) (Promotion, bool) {
	var (
		best  Promotion
		found bool
	)
	for _, p := range promotions {
		if !p.ValidOn(date) {
			continue
		}
		if !found || outranks(p, best) {
			best, found = p, true
		}
	}
	return best, found
}

func outranks(p, cur Promotion) bool {
	if p.DiscountType != cur.DiscountType {
		return p.DiscountType == DiscountPercentage
	}
	if c := p.DiscountValue.Cmp(cur.DiscountValue); c != 0 {
		return c > 0
	}
	if !p.ValidFrom.Equal(cur.ValidFrom) {
		return p.ValidFrom.After(cur.ValidFrom)
	}
	return p.ID < cur.ID
}
