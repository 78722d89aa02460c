package omnipool

import (
	"github.com/canopy-network/omniroute/dex"
	"github.com/canopy-network/omniroute/fsm"
	"github.com/canopy-network/omniroute/lib"
	"github.com/canopy-network/omniroute/lib/crypto"
)

/*
	The Omnipool is a single pool where every asset is paired with the hub asset (LRNA).

	Each asset keeps its reserve (the pool account's balance) and the hub reserve backing it.
	A trade from asset i to asset j sells i for hub into the i sub-pool and sells that hub for j into the
	j sub-pool, both at constant product:

		hubIn  = hubReserve_i * amount / (reserve_i + amount)
		hubOut = hubIn - protocol fee                       (burned)
		out    = reserve_j * hubOut / (hubReserve_j + hubOut) - asset fee   (stays in the pool)

	Selling hub for an asset only runs the second step. Buying hub or selling an asset for hub is not allowed.
*/

const (
	MinTradingLimit = 1_000 // smallest amount that may be traded
	MaxInRatio      = 3     // amount in <= reserve in / MaxInRatio
	MaxOutRatio     = 3     // amount out <= reserve out / MaxOutRatio

	AssetFeeRate    lib.Permill = 2_500 // 0.25%, withheld from the output
	ProtocolFeeRate lib.Permill = 500   // 0.05%, withheld from the hub amount and burned

	moduleName = "omnipool"
)

var (
	assetPrefix = []byte{21} // store key prefix for the omnipool asset states
	sharePrefix = []byte{22} // store key prefix for omnipool liquidity shares
)

var (
	sellWeight    = lib.Weight{RefTime: 262_000_000, ProofSize: 13_300}
	buyWeight     = lib.Weight{RefTime: 265_700_000, ProofSize: 13_300}
	hubSellWeight = lib.Weight{RefTime: 180_100_000, ProofSize: 8_900}
)

// Tradability is the set of operations allowed on an asset
type Tradability uint8

const (
	TradableSell Tradability = 1 << iota
	TradableBuy
	TradableAddLiquidity
	TradableRemoveLiquidity

	TradableAll = TradableSell | TradableBuy | TradableAddLiquidity | TradableRemoveLiquidity
)

// Has() returns true if every flag of f is set
func (t Tradability) Has(f Tradability) bool { return t&f == f }

var _ lib.PoolI = &Omnipool{}

// AssetState is the persisted sub-pool of one asset
type AssetState struct {
	Asset      lib.AssetId `json:"asset"`
	HubReserve lib.Balance `json:"hubReserve"`
	Shares     lib.Balance `json:"shares"`
	Tradable   Tradability `json:"tradable"`
}

// Omnipool is the hub asset pool
type Omnipool struct {
	sm       *fsm.StateMachine
	observer lib.PriceObserverI
	shares   dex.Shares
	log      lib.LoggerI
}

// New() creates the omnipool; the observer receives the hub price of every asset touched by a trade
func New(sm *fsm.StateMachine, observer lib.PriceObserverI) *Omnipool {
	return &Omnipool{
		sm:       sm,
		observer: observer,
		shares:   dex.NewShares(sm, sharePrefix),
		log:      sm.Log().With(moduleName),
	}
}

// Address() is the account holding every reserve of the omnipool
func Address() crypto.AddressI { return crypto.ModuleAddress(moduleName) }

// Kind() returns lib.PoolKindOmnipool
func (o *Omnipool) Kind() lib.PoolKind { return lib.PoolKindOmnipool }

// HubAsset() returns the configured hub asset id
func (o *Omnipool) HubAsset() lib.AssetId { return lib.AssetId(o.sm.Config.HubAssetId) }

// GetAssetState() returns the sub-pool of an asset
func (o *Omnipool) GetAssetState(id lib.AssetId) (*AssetState, lib.ErrorI) {
	state := new(AssetState)
	found, err := o.sm.GetJSON(keyForAsset(id), state)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrAssetNotFound(id)
	}
	return state, nil
}

func (o *Omnipool) setAssetState(state *AssetState) lib.ErrorI {
	return o.sm.SetJSON(keyForAsset(state.Asset), state)
}

// Reserve() returns the pool account's balance of an asset
func (o *Omnipool) Reserve(id lib.AssetId) (lib.Balance, lib.ErrorI) {
	return o.sm.GetBalance(Address(), id)
}

// GetShares() returns the liquidity shares an account holds in the sub-pool of an asset
func (o *Omnipool) GetShares(id lib.AssetId, who crypto.AddressI) (lib.Balance, lib.ErrorI) {
	return o.shares.Get(id.Bytes(), who)
}

// AddToken() lists an asset with its initial liquidity; price is the number of hub units per asset unit
func (o *Omnipool) AddToken(who crypto.AddressI, id lib.AssetId, amount lib.Balance, price lib.Price) lib.ErrorI {
	if id == o.HubAsset() {
		return ErrNotAllowed()
	}
	if _, err := o.GetAssetState(id); err == nil {
		return ErrAssetAlreadyAdded(id)
	}
	if amount.IsZero() {
		return ErrZeroAmount()
	}
	if !price.IsValid() {
		return ErrInvalidInitialPrice()
	}
	hubReserve, err := amount.MulDiv(price.N, price.D)
	if err != nil {
		return err
	}
	if hubReserve.IsZero() {
		return ErrInvalidInitialPrice()
	}
	account := Address()
	if err = o.sm.RegisterModuleAccount(account); err != nil {
		return err
	}
	if err = o.sm.Transfer(who, account, id, amount); err != nil {
		return err
	}
	if err = o.sm.Mint(account, o.HubAsset(), hubReserve); err != nil {
		return err
	}
	if err = o.shares.Add(id.Bytes(), who, amount); err != nil {
		return err
	}
	if err = o.setAssetState(&AssetState{Asset: id, HubReserve: hubReserve, Shares: amount, Tradable: TradableAll}); err != nil {
		return err
	}
	o.log.Debugf("Added asset %d to the omnipool with hub reserve %s", id, hubReserve)
	if err = o.sm.EventPool(lib.EventTypePoolCreated, who, lib.OmnipoolPool, []lib.AssetAmount{
		{Asset: id, Amount: amount}, {Asset: o.HubAsset(), Amount: hubReserve},
	}, amount); err != nil {
		return err
	}
	return o.observe(id)
}

// AddLiquidity() deposits an asset at the current price; hub is minted to keep the price unchanged
func (o *Omnipool) AddLiquidity(who crypto.AddressI, id lib.AssetId, amount lib.Balance) lib.ErrorI {
	state, reserve, err := o.liquidityState(id, TradableAddLiquidity)
	if err != nil {
		return err
	}
	if amount.IsZero() {
		return ErrZeroAmount()
	}
	hubDelta, err := state.HubReserve.MulDiv(amount, reserve)
	if err != nil {
		return err
	}
	shares, err := state.Shares.MulDiv(amount, reserve)
	if err != nil {
		return err
	}
	if shares.IsZero() {
		return ErrInsufficientLiquidity()
	}
	if err = o.sm.Transfer(who, Address(), id, amount); err != nil {
		return err
	}
	if err = o.sm.Mint(Address(), o.HubAsset(), hubDelta); err != nil {
		return err
	}
	if err = o.shares.Add(id.Bytes(), who, shares); err != nil {
		return err
	}
	if state.HubReserve, err = state.HubReserve.Add(hubDelta); err != nil {
		return err
	}
	if state.Shares, err = state.Shares.Add(shares); err != nil {
		return err
	}
	if err = o.setAssetState(state); err != nil {
		return err
	}
	return o.sm.EventPool(lib.EventTypeLiquidityAdded, who, lib.OmnipoolPool, []lib.AssetAmount{{Asset: id, Amount: amount}}, shares)
}

// RemoveLiquidity() burns shares for the proportional part of the asset reserve; the backing hub is burned
func (o *Omnipool) RemoveLiquidity(who crypto.AddressI, id lib.AssetId, shares lib.Balance) lib.ErrorI {
	state, reserve, err := o.liquidityState(id, TradableRemoveLiquidity)
	if err != nil {
		return err
	}
	if shares.IsZero() {
		return ErrZeroAmount()
	}
	held, err := o.shares.Get(id.Bytes(), who)
	if err != nil {
		return err
	}
	if held.Lt(shares) {
		return ErrInsufficientShares()
	}
	amount, err := reserve.MulDiv(shares, state.Shares)
	if err != nil {
		return err
	}
	hubDelta, err := state.HubReserve.MulDiv(shares, state.Shares)
	if err != nil {
		return err
	}
	if err = o.sm.Transfer(Address(), who, id, amount); err != nil {
		return err
	}
	if err = o.sm.Burn(Address(), o.HubAsset(), hubDelta); err != nil {
		return err
	}
	if err = o.shares.Sub(id.Bytes(), who, shares); err != nil {
		return err
	}
	if state.HubReserve, err = state.HubReserve.Sub(hubDelta); err != nil {
		return err
	}
	if state.Shares, err = state.Shares.Sub(shares); err != nil {
		return err
	}
	if err = o.setAssetState(state); err != nil {
		return err
	}
	return o.sm.EventPool(lib.EventTypeLiquidityRemoved, who, lib.OmnipoolPool, []lib.AssetAmount{{Asset: id, Amount: amount}}, shares)
}

// SetAssetTradableState() replaces the operations allowed on an asset
func (o *Omnipool) SetAssetTradableState(who crypto.AddressI, id lib.AssetId, tradable Tradability) lib.ErrorI {
	state, err := o.GetAssetState(id)
	if err != nil {
		return err
	}
	state.Tradable = tradable
	if err = o.setAssetState(state); err != nil {
		return err
	}
	o.log.Infof("Asset %d tradable state set to %04b", id, tradable)
	return o.sm.EventPool(lib.EventTypeTradableStateUpdated, who, lib.OmnipoolPool, []lib.AssetAmount{{Asset: id}}, lib.ZeroBalance())
}

func (o *Omnipool) liquidityState(id lib.AssetId, flag Tradability) (*AssetState, lib.Balance, lib.ErrorI) {
	state, err := o.GetAssetState(id)
	if err != nil {
		return nil, lib.ZeroBalance(), err
	}
	if !state.Tradable.Has(flag) {
		return nil, lib.ZeroBalance(), ErrAssetNotTradable(id)
	}
	reserve, err := o.Reserve(id)
	if err != nil {
		return nil, lib.ZeroBalance(), err
	}
	if reserve.IsZero() || state.Shares.IsZero() {
		return nil, lib.ZeroBalance(), ErrInsufficientLiquidity()
	}
	return state, reserve, nil
}

// TRADING BELOW

// Exists() returns true if both assets of the hop are listed; the hub asset is always listed
func (o *Omnipool) Exists(t lib.Trade) bool {
	return t.AssetIn != t.AssetOut && o.listed(t.AssetIn) && o.listed(t.AssetOut)
}

func (o *Omnipool) listed(id lib.AssetId) bool {
	if id == o.HubAsset() {
		return true
	}
	_, err := o.GetAssetState(id)
	return err == nil
}

// PoolAccount() returns the omnipool account
func (o *Omnipool) PoolAccount(t lib.Trade) (crypto.AddressI, lib.ErrorI) {
	if !o.Exists(t) {
		return nil, ErrAssetNotFound(t.AssetIn)
	}
	return Address(), nil
}

// IsTradable() checks the sell flag of the asset in and the buy flag of the asset out; hub can't be bought
func (o *Omnipool) IsTradable(t lib.Trade, _ lib.TradeDirection) bool {
	_, _, err := o.load(t)
	return err == nil
}

// CalculateSell() returns the amount out net of fees for an exact amount in
func (o *Omnipool) CalculateSell(t lib.Trade, amountIn lib.Balance) (lib.Balance, lib.ErrorI) {
	q, err := o.sell(t, amountIn)
	if err != nil {
		return lib.ZeroBalance(), err
	}
	return q.amountOut, nil
}

// CalculateBuy() returns the amount in including fees for an exact amount out
func (o *Omnipool) CalculateBuy(t lib.Trade, amountOut lib.Balance) (lib.Balance, lib.ErrorI) {
	q, err := o.buy(t, amountOut)
	if err != nil {
		return lib.ZeroBalance(), err
	}
	return q.amountIn, nil
}

// ValidateSell() checks an exact-in trade against tradability, the pool limits and the trader's balance
func (o *Omnipool) ValidateSell(who crypto.AddressI, t lib.Trade, amountIn, minAmountOut lib.Balance, discount bool) (*lib.AMMTransfer, lib.ErrorI) {
	if err := o.checkBalance(who, t.AssetIn, amountIn); err != nil {
		return nil, err
	}
	q, err := o.sell(t, amountIn)
	if err != nil {
		return nil, err
	}
	if q.amountOut.Lt(minAmountOut) {
		return nil, ErrTradingLimitReached()
	}
	return dex.NewTransfer(who, lib.OmnipoolPool, lib.DirectionSell, t, q.amountIn, q.amountOut, lib.Fee{Asset: t.AssetOut, Amount: q.assetFee}, discount), nil
}

// ValidateBuy() checks an exact-out trade against tradability, the pool limits and the trader's balance
func (o *Omnipool) ValidateBuy(who crypto.AddressI, t lib.Trade, amountOut, maxAmountIn lib.Balance, discount bool) (*lib.AMMTransfer, lib.ErrorI) {
	q, err := o.buy(t, amountOut)
	if err != nil {
		return nil, err
	}
	if q.amountIn.Gt(maxAmountIn) {
		return nil, ErrTradingLimitReached()
	}
	if err = o.checkBalance(who, t.AssetIn, q.amountIn); err != nil {
		return nil, err
	}
	return dex.NewTransfer(who, lib.OmnipoolPool, lib.DirectionBuy, t, q.amountIn, q.amountOut, lib.Fee{Asset: t.AssetOut, Amount: q.assetFee}, discount), nil
}

// ExecuteSell() settles a validated sell
func (o *Omnipool) ExecuteSell(tr *lib.AMMTransfer) lib.ErrorI {
	q, err := o.sell(lib.Trade{Pool: lib.OmnipoolPool, AssetIn: tr.AssetIn, AssetOut: tr.AssetOut}, tr.AmountIn)
	if err != nil {
		return err
	}
	return o.execute(tr, q)
}

// ExecuteBuy() settles a validated buy
func (o *Omnipool) ExecuteBuy(tr *lib.AMMTransfer) lib.ErrorI {
	q, err := o.buy(lib.Trade{Pool: lib.OmnipoolPool, AssetIn: tr.AssetIn, AssetOut: tr.AssetOut}, tr.AmountOut)
	if err != nil {
		return err
	}
	return o.execute(tr, q)
}

// execute() moves the hub reserves between the sub-pools, settles the trader and burns the protocol fee
func (o *Omnipool) execute(tr *lib.AMMTransfer, q *quote) lib.ErrorI {
	// the pool state may not have moved since the transfer was validated
	if !q.amountIn.Eq(tr.AmountIn) || !q.amountOut.Eq(tr.AmountOut) {
		return ErrTradingLimitReached()
	}
	hub, account := o.HubAsset(), Address()
	if tr.AssetIn != hub {
		stateIn, err := o.GetAssetState(tr.AssetIn)
		if err != nil {
			return err
		}
		if stateIn.HubReserve, err = stateIn.HubReserve.Sub(q.hubIn); err != nil {
			return err
		}
		if err = o.setAssetState(stateIn); err != nil {
			return err
		}
	}
	stateOut, err := o.GetAssetState(tr.AssetOut)
	if err != nil {
		return err
	}
	if stateOut.HubReserve, err = stateOut.HubReserve.Add(q.hubOut); err != nil {
		return err
	}
	if err = o.setAssetState(stateOut); err != nil {
		return err
	}
	if err = o.sm.Transfer(tr.Origin, account, tr.AssetIn, tr.AmountIn); err != nil {
		return err
	}
	if err = o.sm.Transfer(account, tr.Origin, tr.AssetOut, tr.AmountOut); err != nil {
		return err
	}
	if err = o.sm.Burn(account, hub, q.protocolFee); err != nil {
		return err
	}
	fees := []lib.FeeAmount{{Asset: tr.AssetOut, Amount: q.assetFee, Destination: account.String()}}
	if !q.protocolFee.IsZero() {
		fees = append(fees, lib.FeeAmount{Asset: hub, Amount: q.protocolFee})
	}
	if err = dex.Swapped(o.sm, tr, account, fees...); err != nil {
		return err
	}
	if tr.AssetIn != hub {
		if err = o.observe(tr.AssetIn); err != nil {
			return err
		}
	}
	return o.observe(tr.AssetOut)
}

// observe() reports the hub price of an asset: hub reserve / reserve
func (o *Omnipool) observe(id lib.AssetId) lib.ErrorI {
	state, err := o.GetAssetState(id)
	if err != nil {
		return err
	}
	reserve, err := o.Reserve(id)
	if err != nil {
		return err
	}
	return dex.Observe(o.observer, lib.PoolKindOmnipool, o.HubAsset(), id, lib.NewPrice(state.HubReserve, reserve))
}

// SpotPrice() returns the cost of one asset out in asset in, composed through the hub prices of both assets
func (o *Omnipool) SpotPrice(t lib.Trade) (lib.Price, lib.ErrorI) {
	priceIn, err := o.hubPrice(t.AssetIn)
	if err != nil {
		return lib.Price{}, err
	}
	priceOut, err := o.hubPrice(t.AssetOut)
	if err != nil {
		return lib.Price{}, err
	}
	// (hubOut / reserveOut) / (hubIn / reserveIn)
	n, err := priceOut.N.Mul(priceIn.D)
	if err != nil {
		return lib.Price{}, err
	}
	d, err := priceOut.D.Mul(priceIn.N)
	if err != nil {
		return lib.Price{}, err
	}
	return lib.NewPrice(n, d), nil
}

// hubPrice() returns the hub cost of one unit of an asset; the hub itself costs 1/1
func (o *Omnipool) hubPrice(id lib.AssetId) (lib.Price, lib.ErrorI) {
	if id == o.HubAsset() {
		return lib.NewPrice(lib.NewBalance(1), lib.NewBalance(1)), nil
	}
	state, err := o.GetAssetState(id)
	if err != nil {
		return lib.Price{}, err
	}
	reserve, err := o.Reserve(id)
	if err != nil {
		return lib.Price{}, err
	}
	if reserve.IsZero() || state.HubReserve.IsZero() {
		return lib.Price{}, ErrInsufficientLiquidity()
	}
	return lib.NewPrice(state.HubReserve, reserve), nil
}

// SpotPriceUnchecked() converts an amount in at spot price, or returns zero
func (o *Omnipool) SpotPriceUnchecked(t lib.Trade, amount lib.Balance) lib.Balance {
	price, err := o.SpotPrice(t)
	if err != nil || !price.IsValid() {
		return lib.ZeroBalance()
	}
	out, err := amount.MulDiv(price.D, price.N)
	if err != nil {
		return lib.ZeroBalance()
	}
	return out
}

// Fee() returns the asset fee plus the protocol fee unless the hub asset is sold
func (o *Omnipool) Fee(t lib.Trade) lib.Permill {
	if t.AssetIn == o.HubAsset() {
		return AssetFeeRate
	}
	return AssetFeeRate + ProtocolFeeRate
}

func (o *Omnipool) SellWeight(t lib.Trade) lib.Weight {
	if t.AssetIn == o.HubAsset() {
		return hubSellWeight
	}
	return sellWeight
}

func (o *Omnipool) BuyWeight(t lib.Trade) lib.Weight {
	if t.AssetIn == o.HubAsset() {
		return hubSellWeight
	}
	return buyWeight
}

// quote is a computed trade with the hub amounts moved between the sub-pools
type quote struct {
	amountIn, amountOut lib.Balance
	hubIn               lib.Balance // hub leaving the asset in sub-pool
	hubOut              lib.Balance // hub entering the asset out sub-pool
	assetFee            lib.Balance // asset out kept by the pool
	protocolFee         lib.Balance // hub burned
}

// reserves are the sub-pool balances of a hop; the in side is empty when the hub is sold
type reserves struct {
	in, hubIn, out, hubOut lib.Balance
}

// load() checks that the hop is tradable and returns its sub-pool balances
func (o *Omnipool) load(t lib.Trade) (*reserves, bool, lib.ErrorI) {
	hub := o.HubAsset()
	if t.AssetIn == t.AssetOut {
		return nil, false, ErrSameAsset()
	}
	if t.AssetOut == hub {
		return nil, false, ErrNotAllowed()
	}
	r := new(reserves)
	hubSell := t.AssetIn == hub
	if !hubSell {
		stateIn, err := o.GetAssetState(t.AssetIn)
		if err != nil {
			return nil, false, err
		}
		if !stateIn.Tradable.Has(TradableSell) {
			return nil, false, ErrAssetNotTradable(t.AssetIn)
		}
		if r.in, err = o.Reserve(t.AssetIn); err != nil {
			return nil, false, err
		}
		r.hubIn = stateIn.HubReserve
	}
	stateOut, err := o.GetAssetState(t.AssetOut)
	if err != nil {
		return nil, false, err
	}
	if !stateOut.Tradable.Has(TradableBuy) {
		return nil, false, ErrAssetNotTradable(t.AssetOut)
	}
	if r.out, err = o.Reserve(t.AssetOut); err != nil {
		return nil, false, err
	}
	r.hubOut = stateOut.HubReserve
	if r.out.IsZero() || r.hubOut.IsZero() || (!hubSell && (r.in.IsZero() || r.hubIn.IsZero())) {
		return nil, false, ErrInsufficientLiquidity()
	}
	return r, hubSell, nil
}

// sell() quotes an exact-in trade
func (o *Omnipool) sell(t lib.Trade, amountIn lib.Balance) (*quote, lib.ErrorI) {
	r, hubSell, err := o.load(t)
	if err != nil {
		return nil, err
	}
	if amountIn.Lt(lib.NewBalance(MinTradingLimit)) {
		return nil, ErrInsufficientTradingAmount()
	}
	q := &quote{amountIn: amountIn, hubIn: lib.ZeroBalance(), protocolFee: lib.ZeroBalance()}
	if hubSell {
		if err = checkRatio(amountIn, r.hubOut, MaxInRatio, ErrMaxInRatioExceeded()); err != nil {
			return nil, err
		}
		q.hubOut = amountIn
	} else {
		if err = checkRatio(amountIn, r.in, MaxInRatio, ErrMaxInRatioExceeded()); err != nil {
			return nil, err
		}
		total, e := r.in.Add(amountIn)
		if e != nil {
			return nil, e
		}
		if q.hubIn, err = r.hubIn.MulDiv(amountIn, total); err != nil {
			return nil, err
		}
		if q.protocolFee, err = ProtocolFeeRate.Mul(q.hubIn); err != nil {
			return nil, err
		}
		if q.hubOut, err = q.hubIn.Sub(q.protocolFee); err != nil {
			return nil, err
		}
	}
	total, err := r.hubOut.Add(q.hubOut)
	if err != nil {
		return nil, err
	}
	gross, err := r.out.MulDiv(q.hubOut, total)
	if err != nil {
		return nil, err
	}
	if q.assetFee, err = AssetFeeRate.Mul(gross); err != nil {
		return nil, err
	}
	if q.amountOut, err = gross.Sub(q.assetFee); err != nil {
		return nil, err
	}
	if q.amountOut.IsZero() {
		return nil, ErrInsufficientTradingAmount()
	}
	return q, nil
}

// buy() quotes an exact-out trade
func (o *Omnipool) buy(t lib.Trade, amountOut lib.Balance) (*quote, lib.ErrorI) {
	r, hubSell, err := o.load(t)
	if err != nil {
		return nil, err
	}
	if amountOut.Lt(lib.NewBalance(MinTradingLimit)) {
		return nil, ErrInsufficientTradingAmount()
	}
	if err = checkRatio(amountOut, r.out, MaxOutRatio, ErrMaxOutRatioExceeded()); err != nil {
		return nil, err
	}
	q := &quote{amountOut: amountOut, hubIn: lib.ZeroBalance(), protocolFee: lib.ZeroBalance()}
	// gross out such that gross - fee covers the amount out
	gross, err := amountOut.MulDivCeil(lib.NewBalance(lib.PermillDenominator), lib.NewBalance(uint64(lib.PermillDenominator-AssetFeeRate)))
	if err != nil {
		return nil, err
	}
	if q.assetFee, err = gross.Sub(amountOut); err != nil {
		return nil, err
	}
	remaining, err := r.out.Sub(gross)
	if err != nil || remaining.IsZero() {
		return nil, ErrInsufficientLiquidity()
	}
	if q.hubOut, err = r.hubOut.MulDivCeil(gross, remaining); err != nil {
		return nil, err
	}
	if hubSell {
		q.amountIn = q.hubOut
		return q, nil
	}
	if q.hubIn, err = q.hubOut.MulDivCeil(lib.NewBalance(lib.PermillDenominator), lib.NewBalance(uint64(lib.PermillDenominator-ProtocolFeeRate))); err != nil {
		return nil, err
	}
	if q.protocolFee, err = q.hubIn.Sub(q.hubOut); err != nil {
		return nil, err
	}
	left, err := r.hubIn.Sub(q.hubIn)
	if err != nil || left.IsZero() {
		return nil, ErrInsufficientLiquidity()
	}
	if q.amountIn, err = r.in.MulDivCeil(q.hubIn, left); err != nil {
		return nil, err
	}
	if err = checkRatio(q.amountIn, r.in, MaxInRatio, ErrMaxInRatioExceeded()); err != nil {
		return nil, err
	}
	return q, nil
}

// checkRatio() returns fail if amount exceeds reserve / ratio
func checkRatio(amount, reserve lib.Balance, ratio uint64, fail lib.ErrorI) lib.ErrorI {
	limit, err := reserve.Div(lib.NewBalance(ratio))
	if err != nil {
		return err
	}
	if amount.Gt(limit) {
		return fail
	}
	return nil
}

func (o *Omnipool) checkBalance(who crypto.AddressI, id lib.AssetId, amount lib.Balance) lib.ErrorI {
	balance, err := o.sm.GetBalance(who, id)
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return ErrInsufficientAssetBalance()
	}
	return nil
}

func keyForAsset(id lib.AssetId) []byte { return lib.JoinLenPrefix(assetPrefix, id.Bytes()) }
