package domain

import "time"

// TransactionKind distinguishes ledger entries that add points from entries
// that spend them. Points on a transaction are always positive; the kind
// carries the sign.
type TransactionKind string

const (
	TransactionEarned   TransactionKind = "earned"
	TransactionRedeemed TransactionKind = "redeemed"
)

// ReferenceType links a ledger entry back to the operation that produced it.
type ReferenceType string

const (
	ReferenceBooking  ReferenceType = "booking"
	ReferencePurchase ReferenceType = "purchase"
	ReferenceManual   ReferenceType = "manual"
	ReferenceBonus    ReferenceType = "bonus"
)

func ParseReferenceType(s string) (ReferenceType, bool) {
	switch ReferenceType(s) {
	case ReferenceBooking, ReferencePurchase, ReferenceManual, ReferenceBonus:
		return ReferenceType(s), true
	default:
		return "", false
	}
}

// LoyaltyTransaction is an append-only ledger entry. Entries are immutable
// once written and never deleted; the client balance is kept in sync with the
// ledger inside the same database transaction.
type LoyaltyTransaction struct {
	ID            int64           `json:"id"`
	ClientID      int64           `json:"client_id"`
	Kind          TransactionKind `json:"kind"`
	Points        int             `json:"points"`
	Reason        string          `json:"reason"`
	ReferenceID   *int64          `json:"reference_id,omitempty"`
	ReferenceType ReferenceType   `json:"reference_type,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// LoyaltyStats aggregates a client's ledger history.
type LoyaltyStats struct {
	TotalPointsEarned   int                 `json:"total_points_earned"`
	TotalPointsRedeemed int                 `json:"total_points_redeemed"`
	CurrentBalance      int                 `json:"current_balance"`
	TransactionCount    int                 `json:"transaction_count"`
	LastTransaction     *LoyaltyTransaction `json:"last_transaction,omitempty"`
}

// LoyaltyTier is a named band of point balances conferring benefits. MinPoints
// is an inclusive lower bound.
type LoyaltyTier struct {
	Name      string   `json:"name"`
	MinPoints int      `json:"min_points"`
	Benefits  []string `json:"benefits"`
}

// tiers is ordered ascending by MinPoints and covers [0, inf) with no gaps.
var tiers = []LoyaltyTier{
	{Name: "Bronze", MinPoints: 0, Benefits: []string{
		"Acumulación de puntos en cada compra",
		"Ofertas especiales",
	}},
	{Name: "Silver", MinPoints: 1000, Benefits: []string{
		"5% de descuento adicional",
		"Acceso prioritario a citas",
		"Bonus de cumpleaños",
	}},
	{Name: "Gold", MinPoints: 5000, Benefits: []string{
		"10% de descuento adicional",
		"Servicios exclusivos",
		"Consultas gratuitas",
	}},
	{Name: "Platinum", MinPoints: 10000, Benefits: []string{
		"15% de descuento adicional",
		"Servicios VIP",
		"Atención personalizada",
	}},
}

// Tiers returns the tier table in ascending order.
func Tiers() []LoyaltyTier {
	out := make([]LoyaltyTier, len(tiers))
	copy(out, tiers)
	return out
}

// TierForBalance returns the highest tier whose MinPoints <= balance. Exact
// equality to a threshold qualifies for that tier. Any non-negative balance
// falls back to Bronze.
func TierForBalance(balance int) LoyaltyTier {
	for i := len(tiers) - 1; i >= 0; i-- {
		if balance >= tiers[i].MinPoints {
			return tiers[i]
		}
	}
	return tiers[0]
}
