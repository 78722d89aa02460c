package lib

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/canopy-network/omniroute/lib/crypto"
)

/* This file defines the types shared by the pools and the router: assets, trades, routes and the pool contract */

// AssetId identifies an asset registered on the ledger
type AssetId uint32

// Bytes() returns the big endian encoding for use in store keys
func (a AssetId) Bytes() []byte { return Uint32ToBytes(uint32(a)) }

// Permill is a fraction expressed in parts per million
type Permill uint32

const PermillDenominator = 1_000_000

// Mul() returns floor(p * b)
func (p Permill) Mul(b Balance) (Balance, ErrorI) {
	return b.MulDiv(NewBalance(uint64(p)), NewBalance(PermillDenominator))
}

// MulCeil() returns ceil(p * b)
func (p Permill) MulCeil(b Balance) (Balance, ErrorI) {
	return b.MulDivCeil(NewBalance(uint64(p)), NewBalance(PermillDenominator))
}

// POOL TYPES BELOW

// PoolKind enumerates the supported AMM families
type PoolKind uint8

const (
	PoolKindOmnipool PoolKind = iota + 1
	PoolKindLBP
	PoolKindXYK
	PoolKindStableswap
)

// String() returns the lower case name of the pool family; also used as the oracle source
func (k PoolKind) String() string {
	switch k {
	case PoolKindOmnipool:
		return "omnipool"
	case PoolKindLBP:
		return "lbp"
	case PoolKindXYK:
		return "xyk"
	case PoolKindStableswap:
		return "stableswap"
	default:
		return "unknown"
	}
}

// PoolType selects the pool a hop executes against
// Stableswap is the only variant with a payload: the pool id, which is also its share asset id
type PoolType struct {
	Kind         PoolKind `json:"kind"`
	StableswapId AssetId  `json:"stableswapId,omitempty"`
}

var (
	OmnipoolPool = PoolType{Kind: PoolKindOmnipool}
	LBPPool      = PoolType{Kind: PoolKindLBP}
	XYKPool      = PoolType{Kind: PoolKindXYK}
)

// StableswapPool() returns the pool type of the stableswap pool with id
func StableswapPool(id AssetId) PoolType { return PoolType{Kind: PoolKindStableswap, StableswapId: id} }

// String() renders the pool type as omnipool, lbp, xyk or stableswap(<id>)
func (p PoolType) String() string {
	if p.Kind == PoolKindStableswap {
		return fmt.Sprintf("stableswap(%d)", p.StableswapId)
	}
	return p.Kind.String()
}

// ParsePoolType() is the inverse of String()
func ParsePoolType(s string) (PoolType, ErrorI) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "omnipool":
		return OmnipoolPool, nil
	case "lbp":
		return LBPPool, nil
	case "xyk":
		return XYKPool, nil
	}
	if strings.HasPrefix(s, "stableswap(") && strings.HasSuffix(s, ")") {
		id, err := strconv.ParseUint(s[len("stableswap("):len(s)-1], 10, 32)
		if err == nil {
			return StableswapPool(AssetId(id)), nil
		}
	}
	return PoolType{}, ErrInvalidPoolType(s)
}

// TRADES AND ROUTES BELOW

// Trade is a single hop of a route
type Trade struct {
	Pool     PoolType `json:"pool"`
	AssetIn  AssetId  `json:"assetIn"`
	AssetOut AssetId  `json:"assetOut"`
}

// Inverse() returns the same hop traded in the opposite direction
func (t Trade) Inverse() Trade { return Trade{Pool: t.Pool, AssetIn: t.AssetOut, AssetOut: t.AssetIn} }

func (t Trade) String() string { return fmt.Sprintf("%s:%d->%d", t.Pool, t.AssetIn, t.AssetOut) }

// Route is an ordered list of hops
type Route []Trade

// Equals() compares hop by hop
func (r Route) Equals(o Route) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if r[i] != o[i] {
			return false
		}
	}
	return true
}

// Inverse() reverses the route: hops in reverse order, each hop's assets swapped
func (r Route) Inverse() Route {
	if r == nil {
		return nil
	}
	inv := make(Route, len(r))
	for i, t := range r {
		inv[len(r)-1-i] = t.Inverse()
	}
	return inv
}

func (r Route) String() string {
	parts := make([]string, len(r))
	for i, t := range r {
		parts[i] = t.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// DefaultRoute() is the implicit single Omnipool hop used when no route is given or stored
func DefaultRoute(assetIn, assetOut AssetId) Route {
	return Route{{Pool: OmnipoolPool, AssetIn: assetIn, AssetOut: assetOut}}
}

// ParseRoute() parses a comma separated list of pool:in->out hops, e.g. "lbp:2->1,omnipool:1->0"
func ParseRoute(s string) (Route, ErrorI) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var route Route
	for _, hop := range strings.Split(s, ",") {
		pool, assets, ok := strings.Cut(strings.TrimSpace(hop), ":")
		if !ok {
			return nil, ErrInvalidArgument(fmt.Errorf("malformed hop %q", hop))
		}
		p, err := ParsePoolType(pool)
		if err != nil {
			return nil, err
		}
		in, out, ok := strings.Cut(assets, "->")
		if !ok {
			return nil, ErrInvalidArgument(fmt.Errorf("malformed hop %q", hop))
		}
		assetIn, e := strconv.ParseUint(strings.TrimSpace(in), 10, 32)
		if e != nil {
			return nil, ErrInvalidArgument(e)
		}
		assetOut, e := strconv.ParseUint(strings.TrimSpace(out), 10, 32)
		if e != nil {
			return nil, ErrInvalidArgument(e)
		}
		route = append(route, Trade{Pool: p, AssetIn: AssetId(assetIn), AssetOut: AssetId(assetOut)})
	}
	return route, nil
}

// AssetPair is an unordered pair of distinct assets
type AssetPair struct {
	AssetA AssetId `json:"assetA"`
	AssetB AssetId `json:"assetB"`
}

// NewAssetPair() creates a pair in the given direction
func NewAssetPair(a, b AssetId) AssetPair { return AssetPair{AssetA: a, AssetB: b} }

// IsOrdered() returns true if the lower asset id comes first
func (p AssetPair) IsOrdered() bool { return p.AssetA < p.AssetB }

// Ordered() returns the canonical orientation: lower asset id first
func (p AssetPair) Ordered() AssetPair {
	if p.AssetA > p.AssetB {
		return AssetPair{AssetA: p.AssetB, AssetB: p.AssetA}
	}
	return p
}

// Equals() is independent of orientation
func (p AssetPair) Equals(o AssetPair) bool { return p.Ordered() == o.Ordered() }

// Key() is the orientation independent encoding of the pair
func (p AssetPair) Key() []byte {
	o := p.Ordered()
	return append(o.AssetA.Bytes(), o.AssetB.Bytes()...)
}

func (p AssetPair) String() string { return fmt.Sprintf("(%d, %d)", p.AssetA, p.AssetB) }

// TradeDirection distinguishes exact-in from exact-out trades
type TradeDirection uint8

const (
	DirectionSell TradeDirection = iota
	DirectionBuy
)

func (d TradeDirection) String() string {
	if d == DirectionBuy {
		return "buy"
	}
	return "sell"
}

// Fee is an amount of an asset withheld by a pool
type Fee struct {
	Asset  AssetId `json:"asset"`
	Amount Balance `json:"amount"`
}

// AMMTransfer is a validated trade ready to be executed
// It is produced by a pool's Validate* call and consumed by the matching Execute* call within the same atomic scope
type AMMTransfer struct {
	Origin         crypto.AddressI `json:"origin"`
	Pool           PoolType        `json:"pool"`
	Direction      TradeDirection  `json:"direction"`
	AssetIn        AssetId         `json:"assetIn"`
	AssetOut       AssetId         `json:"assetOut"`
	AmountIn       Balance         `json:"amountIn"`
	AmountOut      Balance         `json:"amountOut"`
	Fee            Fee             `json:"fee"`
	Discount       bool            `json:"discount"`
	DiscountAmount Balance         `json:"discountAmount"`
}

// Weight is the execution cost of an operation
type Weight struct {
	RefTime   uint64 `json:"refTime"`
	ProofSize uint64 `json:"proofSize"`
}

// Add() is saturating addition of two weights
func (w Weight) Add(o Weight) Weight {
	return Weight{RefTime: saturatingAdd(w.RefTime, o.RefTime), ProofSize: saturatingAdd(w.ProofSize, o.ProofSize)}
}

// IsZero() returns true if both components are zero
func (w Weight) IsZero() bool { return w.RefTime == 0 && w.ProofSize == 0 }

func saturatingAdd(a, b uint64) uint64 {
	if c := a + b; c >= a {
		return c
	}
	return ^uint64(0)
}

// PoolI is the contract every AMM implements so the router can execute a hop without knowing its math
type PoolI interface {
	// Kind() returns the pool family served
	Kind() PoolKind
	// Exists() returns true if a pool serves the hop
	Exists(t Trade) bool
	// PoolAccount() returns the deterministic account holding the pool's reserves
	PoolAccount(t Trade) (crypto.AddressI, ErrorI)
	// IsTradable() returns true if the hop can currently be traded in the direction
	IsTradable(t Trade, d TradeDirection) bool
	// CalculateSell() returns the amount out for an exact amount in; pure
	CalculateSell(t Trade, amountIn Balance) (Balance, ErrorI)
	// CalculateBuy() returns the amount in for an exact amount out; pure
	CalculateBuy(t Trade, amountOut Balance) (Balance, ErrorI)
	// ValidateSell() checks an exact-in trade and returns the transfer to execute
	ValidateSell(who crypto.AddressI, t Trade, amountIn, minAmountOut Balance, discount bool) (*AMMTransfer, ErrorI)
	// ValidateBuy() checks an exact-out trade and returns the transfer to execute
	ValidateBuy(who crypto.AddressI, t Trade, amountOut, maxAmountIn Balance, discount bool) (*AMMTransfer, ErrorI)
	// ExecuteSell() applies a transfer returned by ValidateSell()
	ExecuteSell(transfer *AMMTransfer) ErrorI
	// ExecuteBuy() applies a transfer returned by ValidateBuy()
	ExecuteBuy(transfer *AMMTransfer) ErrorI
	// SpotPrice() returns the cost of one unit of AssetOut in AssetIn at current reserves, without fees
	SpotPrice(t Trade) (Price, ErrorI)
	// SpotPriceUnchecked() returns the amount of AssetOut received for amount of AssetIn at spot price; 0 on any failure
	SpotPriceUnchecked(t Trade, amount Balance) Balance
	// Fee() returns the total fee fraction charged on the hop, in parts per million
	Fee(t Trade) Permill
	// SellWeight() returns the execution cost of a sell on the hop
	SellWeight(t Trade) Weight
	// BuyWeight() returns the execution cost of a buy on the hop
	BuyWeight(t Trade) Weight
}

// Price is the exchange rate N/D: N units of one asset per D units of another
// Kept as a ratio of balances so pools can report reserves without rounding
type Price struct {
	N Balance `json:"n"`
	D Balance `json:"d"`
}

// NewPrice() creates the price n/d
func NewPrice(n, d Balance) Price { return Price{N: n, D: d} }

// IsValid() returns true if both sides are non zero
func (p Price) IsValid() bool { return !p.N.IsZero() && !p.D.IsZero() }

// Inverse() returns d/n
func (p Price) Inverse() Price { return Price{N: p.D, D: p.N} }

func (p Price) String() string { return p.N.String() + "/" + p.D.String() }

// PriceObserverI receives the spot price of a pair after every executed trade; source names the pool family
type PriceObserverI interface {
	OnTrade(source string, assetIn, assetOut AssetId, price Price) ErrorI
}
