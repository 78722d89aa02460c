package xyk

import (
	"github.com/canopy-network/omniroute/dex"
	"github.com/canopy-network/omniroute/fsm"
	"github.com/canopy-network/omniroute/lib"
	"github.com/canopy-network/omniroute/lib/crypto"
)

/*
	XYK implements constant product pools of two assets.

	The reserves are the balances of the pool account, the invariant is x * y = k, and the fee is withheld
	from the output of a sell and added on top of the input of a buy:

		sell: out = rOut * in / (rIn + in) - fee          fee = out * 0.3%
		buy:  in  = ceil(rIn * out / (rOut - out)) + fee   fee = in * 0.3%

	A single trade may not move more than a third of either reserve.
*/

const (
	MinTradingLimit  = 1_000 // smallest amount that may be traded
	MinPoolLiquidity = 1_000 // smallest initial reserve
	MaxInRatio       = 3     // amount in <= reserve in / MaxInRatio
	MaxOutRatio      = 3     // amount out <= reserve out / MaxOutRatio

	FeeRate         lib.Permill = 3_000 // 0.3%
	DiscountFeeRate lib.Permill = 700   // 0.07%

	moduleName = "xyk"
)

var (
	poolPrefix  = []byte{18} // store key prefix for xyk pools
	sharePrefix = []byte{19} // store key prefix for xyk liquidity shares
)

var (
	sellWeight = lib.Weight{RefTime: 98_500_000, ProofSize: 6_100}
	buyWeight  = lib.Weight{RefTime: 99_200_000, ProofSize: 6_100}
)

var _ lib.PoolI = &XYK{}

// Pool is the persisted record of a constant product pool
type Pool struct {
	Assets      lib.AssetPair `json:"assets"` // ordered
	TotalShares lib.Balance   `json:"totalShares"`
}

// XYK is the constant product pool family
type XYK struct {
	sm       *fsm.StateMachine
	observer lib.PriceObserverI
	shares   dex.Shares
	log      lib.LoggerI
}

// New() creates the pool family; the observer receives the spot price after every trade
func New(sm *fsm.StateMachine, observer lib.PriceObserverI) *XYK {
	return &XYK{
		sm:       sm,
		observer: observer,
		shares:   dex.NewShares(sm, sharePrefix),
		log:      sm.Log().With(moduleName),
	}
}

// Kind() returns lib.PoolKindXYK
func (x *XYK) Kind() lib.PoolKind { return lib.PoolKindXYK }

// PoolAddress() is the deterministic account holding the reserves of a pair
func PoolAddress(pair lib.AssetPair) crypto.AddressI {
	return crypto.ModuleAddress(moduleName, pair.Key())
}

// GetPool() returns the pool of a pair in either orientation
func (x *XYK) GetPool(pair lib.AssetPair) (*Pool, lib.ErrorI) {
	p := new(Pool)
	found, err := x.sm.GetJSON(keyForPool(pair), p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrTokenPoolNotFound()
	}
	return p, nil
}

func (x *XYK) setPool(p *Pool) lib.ErrorI { return x.sm.SetJSON(keyForPool(p.Assets), p) }

// GetShares() returns the liquidity shares an account holds in a pool
func (x *XYK) GetShares(pair lib.AssetPair, who crypto.AddressI) (lib.Balance, lib.ErrorI) {
	return x.shares.Get(pair.Key(), who)
}

// GetReserves() returns the reserves of a pair in the order given
func (x *XYK) GetReserves(pair lib.AssetPair) (reserveA, reserveB lib.Balance, err lib.ErrorI) {
	account := PoolAddress(pair)
	if reserveA, err = x.sm.GetBalance(account, pair.AssetA); err != nil {
		return
	}
	reserveB, err = x.sm.GetBalance(account, pair.AssetB)
	return
}

// CreatePool() creates the pool of two assets with its initial liquidity; the creator receives shares
// equal to the initial reserve of the lower asset id
func (x *XYK) CreatePool(who crypto.AddressI, assetA lib.AssetId, amountA lib.Balance, assetB lib.AssetId, amountB lib.Balance) lib.ErrorI {
	if assetA == assetB {
		return ErrCannotCreatePoolSameAssets()
	}
	pair := lib.NewAssetPair(assetA, assetB)
	if _, err := x.GetPool(pair); err == nil {
		return ErrTokenPoolAlreadyExists()
	}
	if amountA.Lt(lib.NewBalance(MinPoolLiquidity)) || amountB.Lt(lib.NewBalance(MinPoolLiquidity)) {
		return ErrInsufficientLiquidity()
	}
	account := PoolAddress(pair)
	if err := x.sm.RegisterModuleAccount(account); err != nil {
		return err
	}
	if err := x.sm.Transfer(who, account, assetA, amountA); err != nil {
		return err
	}
	if err := x.sm.Transfer(who, account, assetB, amountB); err != nil {
		return err
	}
	shares := amountA
	if assetB < assetA {
		shares = amountB
	}
	if err := x.shares.Add(pair.Key(), who, shares); err != nil {
		return err
	}
	if err := x.setPool(&Pool{Assets: pair.Ordered(), TotalShares: shares}); err != nil {
		return err
	}
	x.log.Debugf("Created xyk pool %s", pair)
	return x.sm.EventPool(lib.EventTypePoolCreated, who, lib.XYKPool, []lib.AssetAmount{
		{Asset: assetA, Amount: amountA}, {Asset: assetB, Amount: amountB},
	}, shares)
}

// AddLiquidity() deposits amountA of assetA and the matching amount of assetB at the current ratio
func (x *XYK) AddLiquidity(who crypto.AddressI, assetA, assetB lib.AssetId, amountA, maxAmountB lib.Balance) lib.ErrorI {
	pair := lib.NewAssetPair(assetA, assetB)
	p, err := x.GetPool(pair)
	if err != nil {
		return err
	}
	if amountA.IsZero() {
		return ErrZeroAmount()
	}
	reserveA, reserveB, err := x.GetReserves(pair)
	if err != nil {
		return err
	}
	if reserveA.IsZero() || reserveB.IsZero() {
		return ErrInsufficientLiquidity()
	}
	amountB, err := amountA.MulDivCeil(reserveB, reserveA)
	if err != nil {
		return err
	}
	if amountB.Gt(maxAmountB) {
		return ErrTradingLimitReached()
	}
	shares, err := amountA.MulDiv(p.TotalShares, reserveA)
	if err != nil {
		return err
	}
	if shares.IsZero() {
		return ErrInsufficientLiquidity()
	}
	account := PoolAddress(pair)
	if err = x.sm.Transfer(who, account, assetA, amountA); err != nil {
		return err
	}
	if err = x.sm.Transfer(who, account, assetB, amountB); err != nil {
		return err
	}
	if err = x.shares.Add(pair.Key(), who, shares); err != nil {
		return err
	}
	if p.TotalShares, err = p.TotalShares.Add(shares); err != nil {
		return err
	}
	if err = x.setPool(p); err != nil {
		return err
	}
	return x.sm.EventPool(lib.EventTypeLiquidityAdded, who, lib.XYKPool, []lib.AssetAmount{
		{Asset: assetA, Amount: amountA}, {Asset: assetB, Amount: amountB},
	}, shares)
}

// RemoveLiquidity() burns shares for the proportional part of both reserves; the pool is destroyed
// when the last share is removed
func (x *XYK) RemoveLiquidity(who crypto.AddressI, assetA, assetB lib.AssetId, shares lib.Balance) lib.ErrorI {
	pair := lib.NewAssetPair(assetA, assetB)
	p, err := x.GetPool(pair)
	if err != nil {
		return err
	}
	if shares.IsZero() {
		return ErrZeroAmount()
	}
	held, err := x.shares.Get(pair.Key(), who)
	if err != nil {
		return err
	}
	if held.Lt(shares) {
		return ErrInsufficientShares()
	}
	reserveA, reserveB, err := x.GetReserves(pair)
	if err != nil {
		return err
	}
	amountA, err := reserveA.MulDiv(shares, p.TotalShares)
	if err != nil {
		return err
	}
	amountB, err := reserveB.MulDiv(shares, p.TotalShares)
	if err != nil {
		return err
	}
	account := PoolAddress(pair)
	if err = x.sm.Transfer(account, who, assetA, amountA); err != nil {
		return err
	}
	if err = x.sm.Transfer(account, who, assetB, amountB); err != nil {
		return err
	}
	if err = x.shares.Sub(pair.Key(), who, shares); err != nil {
		return err
	}
	if p.TotalShares, err = p.TotalShares.Sub(shares); err != nil {
		return err
	}
	if p.TotalShares.IsZero() {
		x.log.Debugf("Destroyed xyk pool %s", pair)
		err = x.sm.Delete(keyForPool(pair))
	} else {
		err = x.setPool(p)
	}
	if err != nil {
		return err
	}
	return x.sm.EventPool(lib.EventTypeLiquidityRemoved, who, lib.XYKPool, []lib.AssetAmount{
		{Asset: assetA, Amount: amountA}, {Asset: assetB, Amount: amountB},
	}, shares)
}

// TRADING BELOW

// Exists() returns true if a pool exists for the pair of the hop
func (x *XYK) Exists(t lib.Trade) bool {
	_, err := x.GetPool(lib.NewAssetPair(t.AssetIn, t.AssetOut))
	return err == nil
}

// PoolAccount() returns the account holding the reserves of the hop
func (x *XYK) PoolAccount(t lib.Trade) (crypto.AddressI, lib.ErrorI) {
	if !x.Exists(t) {
		return nil, ErrTokenPoolNotFound()
	}
	return PoolAddress(lib.NewAssetPair(t.AssetIn, t.AssetOut)), nil
}

// IsTradable() xyk pools trade in both directions for as long as they exist
func (x *XYK) IsTradable(t lib.Trade, _ lib.TradeDirection) bool { return x.Exists(t) }

// CalculateSell() returns the amount out net of fee for an exact amount in
func (x *XYK) CalculateSell(t lib.Trade, amountIn lib.Balance) (lib.Balance, lib.ErrorI) {
	out, _, err := x.sell(t, amountIn, FeeRate)
	return out, err
}

// CalculateBuy() returns the amount in including fee for an exact amount out
func (x *XYK) CalculateBuy(t lib.Trade, amountOut lib.Balance) (lib.Balance, lib.ErrorI) {
	in, _, err := x.buy(t, amountOut, FeeRate)
	return in, err
}

// ValidateSell() checks an exact-in trade against the pool limits and the trader's balance
func (x *XYK) ValidateSell(who crypto.AddressI, t lib.Trade, amountIn, minAmountOut lib.Balance, discount bool) (*lib.AMMTransfer, lib.ErrorI) {
	if err := x.checkBalance(who, t.AssetIn, amountIn); err != nil {
		return nil, err
	}
	out, fee, err := x.sell(t, amountIn, feeRate(discount))
	if err != nil {
		return nil, err
	}
	if out.Lt(minAmountOut) {
		return nil, ErrTradingLimitReached()
	}
	return dex.NewTransfer(who, lib.XYKPool, lib.DirectionSell, t, amountIn, out, lib.Fee{Asset: t.AssetOut, Amount: fee}, discount), nil
}

// ValidateBuy() checks an exact-out trade against the pool limits and the trader's balance
func (x *XYK) ValidateBuy(who crypto.AddressI, t lib.Trade, amountOut, maxAmountIn lib.Balance, discount bool) (*lib.AMMTransfer, lib.ErrorI) {
	in, fee, err := x.buy(t, amountOut, feeRate(discount))
	if err != nil {
		return nil, err
	}
	if in.Gt(maxAmountIn) {
		return nil, ErrTradingLimitReached()
	}
	if err = x.checkBalance(who, t.AssetIn, in); err != nil {
		return nil, err
	}
	return dex.NewTransfer(who, lib.XYKPool, lib.DirectionBuy, t, in, amountOut, lib.Fee{Asset: t.AssetIn, Amount: fee}, discount), nil
}

// ExecuteSell() settles a validated sell; the fee stays in the pool
func (x *XYK) ExecuteSell(tr *lib.AMMTransfer) lib.ErrorI { return x.execute(tr) }

// ExecuteBuy() settles a validated buy; the fee stays in the pool
func (x *XYK) ExecuteBuy(tr *lib.AMMTransfer) lib.ErrorI { return x.execute(tr) }

func (x *XYK) execute(tr *lib.AMMTransfer) lib.ErrorI {
	pair := lib.NewAssetPair(tr.AssetIn, tr.AssetOut)
	account := PoolAddress(pair)
	if err := dex.Swap(x.sm, tr, account, lib.FeeAmount{Asset: tr.Fee.Asset, Amount: tr.Fee.Amount, Destination: account.String()}); err != nil {
		return err
	}
	reserveIn, reserveOut, err := x.GetReserves(pair)
	if err != nil {
		return err
	}
	return dex.Observe(x.observer, lib.PoolKindXYK, tr.AssetIn, tr.AssetOut, lib.NewPrice(reserveIn, reserveOut))
}

// SpotPrice() returns reserve in / reserve out
func (x *XYK) SpotPrice(t lib.Trade) (lib.Price, lib.ErrorI) {
	_, reserveIn, reserveOut, err := x.reserves(t)
	if err != nil {
		return lib.Price{}, err
	}
	return lib.NewPrice(reserveIn, reserveOut), nil
}

// SpotPriceUnchecked() returns amount * reserve out / reserve in, or zero
func (x *XYK) SpotPriceUnchecked(t lib.Trade, amount lib.Balance) lib.Balance {
	_, reserveIn, reserveOut, err := x.reserves(t)
	if err != nil {
		return lib.ZeroBalance()
	}
	out, err := amount.MulDiv(reserveOut, reserveIn)
	if err != nil {
		return lib.ZeroBalance()
	}
	return out
}

// Fee() returns the trade fee without discount
func (x *XYK) Fee(lib.Trade) lib.Permill { return FeeRate }

func (x *XYK) SellWeight(lib.Trade) lib.Weight { return sellWeight }
func (x *XYK) BuyWeight(lib.Trade) lib.Weight  { return buyWeight }

// sell() computes the output and output fee of an exact-in trade
func (x *XYK) sell(t lib.Trade, amountIn lib.Balance, rate lib.Permill) (out, fee lib.Balance, err lib.ErrorI) {
	_, reserveIn, reserveOut, err := x.reserves(t)
	if err != nil {
		return
	}
	if amountIn.Lt(lib.NewBalance(MinTradingLimit)) {
		return out, fee, ErrInsufficientTradingAmount()
	}
	maxIn, err := reserveIn.Div(lib.NewBalance(MaxInRatio))
	if err != nil {
		return
	}
	if amountIn.Gt(maxIn) {
		return out, fee, ErrMaxInRatioExceeded()
	}
	denominator, err := reserveIn.Add(amountIn)
	if err != nil {
		return
	}
	gross, err := reserveOut.MulDiv(amountIn, denominator)
	if err != nil {
		return
	}
	if fee, err = rate.Mul(gross); err != nil {
		return
	}
	if out, err = gross.Sub(fee); err != nil {
		return
	}
	if out.IsZero() {
		return out, fee, ErrInsufficientTradingAmount()
	}
	return
}

// buy() computes the input and input fee of an exact-out trade
func (x *XYK) buy(t lib.Trade, amountOut lib.Balance, rate lib.Permill) (in, fee lib.Balance, err lib.ErrorI) {
	_, reserveIn, reserveOut, err := x.reserves(t)
	if err != nil {
		return
	}
	if amountOut.Lt(lib.NewBalance(MinTradingLimit)) {
		return in, fee, ErrInsufficientTradingAmount()
	}
	maxOut, err := reserveOut.Div(lib.NewBalance(MaxOutRatio))
	if err != nil {
		return
	}
	if amountOut.Gt(maxOut) {
		return in, fee, ErrMaxOutRatioExceeded()
	}
	remaining, err := reserveOut.Sub(amountOut)
	if err != nil {
		return
	}
	net, err := reserveIn.MulDivCeil(amountOut, remaining)
	if err != nil {
		return
	}
	if fee, err = rate.Mul(net); err != nil {
		return
	}
	in, err = net.Add(fee)
	return
}

// reserves() returns the pool account and the reserves oriented to the hop
func (x *XYK) reserves(t lib.Trade) (account crypto.AddressI, reserveIn, reserveOut lib.Balance, err lib.ErrorI) {
	pair := lib.NewAssetPair(t.AssetIn, t.AssetOut)
	if _, err = x.GetPool(pair); err != nil {
		return
	}
	account = PoolAddress(pair)
	if reserveIn, reserveOut, err = x.GetReserves(pair); err != nil {
		return
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		err = ErrInsufficientLiquidity()
	}
	return
}

func (x *XYK) checkBalance(who crypto.AddressI, id lib.AssetId, amount lib.Balance) lib.ErrorI {
	balance, err := x.sm.GetBalance(who, id)
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return ErrInsufficientAssetBalance()
	}
	return nil
}

func feeRate(discount bool) lib.Permill {
	if discount {
		return DiscountFeeRate
	}
	return FeeRate
}

func keyForPool(pair lib.AssetPair) []byte { return lib.JoinLenPrefix(poolPrefix, pair.Key()) }
