package lbp

import (
	"github.com/canopy-network/omniroute/dex"
	"github.com/canopy-network/omniroute/fsm"
	"github.com/canopy-network/omniroute/lib"
	"github.com/canopy-network/omniroute/lib/crypto"
	"github.com/canopy-network/omniroute/lib/fixed"
)

/*
	LBP implements liquidity bootstrapping pools: two asset weighted pools whose weights shift linearly over
	a sale window. The pool accumulates asset A and sells asset B.

	Weights are parts of MaxWeight; the weight of the accumulated asset moves from InitialWeight at Start to
	FinalWeight at End and the sold asset holds the remainder. With balances b and weights w:

		sell: out = bOut * (1 - (bIn / (bIn + in)) ^ (wIn / wOut))
		buy:  in  = bIn * ((bOut / (bOut - out)) ^ (wOut / wIn) - 1)

	The fee is always charged in the accumulated asset and paid to the pool's fee collector.
	Trading is only possible while Start <= height <= End.
*/

const (
	MaxWeight       = 100_000_000 // weights are parts of MaxWeight
	MinTradingLimit = 1_000       // smallest amount that may be traded
	MaxInRatio      = 3           // amount in <= balance in / MaxInRatio
	MaxOutRatio     = 3           // amount out <= balance out / MaxOutRatio

	moduleName = "lbp"
)

var poolPrefix = []byte{20} // store key prefix for lbp pools

var (
	sellWeight = lib.Weight{RefTime: 151_000_000, ProofSize: 7_300}
	buyWeight  = lib.Weight{RefTime: 153_600_000, ProofSize: 7_300}
)

var _ lib.PoolI = &LBP{}

// Pool is the persisted record of a liquidity bootstrapping pool
type Pool struct {
	Owner         string        `json:"owner"`
	Assets        lib.AssetPair `json:"assets"` // AssetA is accumulated, AssetB is sold
	Start         uint64        `json:"start"`  // first height of the sale
	End           uint64        `json:"end"`    // last height of the sale
	InitialWeight uint32        `json:"initialWeight"`
	FinalWeight   uint32        `json:"finalWeight"`
	Fee           lib.Permill   `json:"fee"`
	FeeCollector  string        `json:"feeCollector"`
}

// PoolParams are the sale parameters chosen by the pool owner
type PoolParams struct {
	Start         uint64
	End           uint64
	InitialWeight uint32 // weight of the accumulated asset at Start
	FinalWeight   uint32 // weight of the accumulated asset at End
	Fee           lib.Permill
	FeeCollector  crypto.AddressI
}

// LBP is the liquidity bootstrapping pool family
type LBP struct {
	sm       *fsm.StateMachine
	observer lib.PriceObserverI
	log      lib.LoggerI
}

// New() creates the pool family; the observer receives the spot price after every trade
func New(sm *fsm.StateMachine, observer lib.PriceObserverI) *LBP {
	return &LBP{sm: sm, observer: observer, log: sm.Log().With(moduleName)}
}

// Kind() returns lib.PoolKindLBP
func (l *LBP) Kind() lib.PoolKind { return lib.PoolKindLBP }

// PoolAddress() is the deterministic account holding the balances of a pair
func PoolAddress(pair lib.AssetPair) crypto.AddressI {
	return crypto.ModuleAddress(moduleName, pair.Key())
}

// GetPool() returns the pool of a pair in either orientation
func (l *LBP) GetPool(pair lib.AssetPair) (*Pool, lib.ErrorI) {
	p := new(Pool)
	found, err := l.sm.GetJSON(keyForPool(pair), p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrTokenPoolNotFound()
	}
	return p, nil
}

// CreatePool() funds a new sale of amountB of assetB for assetA
func (l *LBP) CreatePool(owner crypto.AddressI, assetA lib.AssetId, amountA lib.Balance, assetB lib.AssetId, amountB lib.Balance, params PoolParams) lib.ErrorI {
	if assetA == assetB {
		return ErrCannotCreatePoolSameAssets()
	}
	pair := lib.NewAssetPair(assetA, assetB)
	if _, err := l.GetPool(pair); err == nil {
		return ErrTokenPoolAlreadyExists()
	}
	if err := validateParams(params, l.sm.Height()); err != nil {
		return err
	}
	if amountA.IsZero() || amountB.IsZero() {
		return ErrInsufficientLiquidity()
	}
	account := PoolAddress(pair)
	if err := l.sm.RegisterModuleAccount(account); err != nil {
		return err
	}
	if err := l.sm.Transfer(owner, account, assetA, amountA); err != nil {
		return err
	}
	if err := l.sm.Transfer(owner, account, assetB, amountB); err != nil {
		return err
	}
	if err := l.sm.SetJSON(keyForPool(pair), &Pool{
		Owner:         owner.String(),
		Assets:        pair,
		Start:         params.Start,
		End:           params.End,
		InitialWeight: params.InitialWeight,
		FinalWeight:   params.FinalWeight,
		Fee:           params.Fee,
		FeeCollector:  params.FeeCollector.String(),
	}); err != nil {
		return err
	}
	l.log.Debugf("Created lbp pool %s running from %d to %d", pair, params.Start, params.End)
	return l.sm.EventPool(lib.EventTypePoolCreated, owner, lib.LBPPool, []lib.AssetAmount{
		{Asset: assetA, Amount: amountA}, {Asset: assetB, Amount: amountB},
	}, lib.ZeroBalance())
}

// AddLiquidity() lets the owner top up either side outside of the sale
func (l *LBP) AddLiquidity(owner crypto.AddressI, pair lib.AssetPair, amountA, amountB lib.Balance) lib.ErrorI {
	p, account, err := l.ownerPool(owner, pair)
	if err != nil {
		return err
	}
	if amountA.IsZero() && amountB.IsZero() {
		return ErrZeroAmount()
	}
	if err = l.sm.Transfer(owner, account, p.Assets.AssetA, amountA); err != nil {
		return err
	}
	if err = l.sm.Transfer(owner, account, p.Assets.AssetB, amountB); err != nil {
		return err
	}
	return l.sm.EventPool(lib.EventTypeLiquidityAdded, owner, lib.LBPPool, []lib.AssetAmount{
		{Asset: p.Assets.AssetA, Amount: amountA}, {Asset: p.Assets.AssetB, Amount: amountB},
	}, lib.ZeroBalance())
}

// RemoveLiquidity() returns both balances to the owner and destroys the pool; not possible during the sale
func (l *LBP) RemoveLiquidity(owner crypto.AddressI, pair lib.AssetPair) lib.ErrorI {
	p, account, err := l.ownerPool(owner, pair)
	if err != nil {
		return err
	}
	amountA, amountB, err := l.balances(p)
	if err != nil {
		return err
	}
	if err = l.sm.Transfer(account, owner, p.Assets.AssetA, amountA); err != nil {
		return err
	}
	if err = l.sm.Transfer(account, owner, p.Assets.AssetB, amountB); err != nil {
		return err
	}
	if err = l.sm.Delete(keyForPool(pair)); err != nil {
		return err
	}
	return l.sm.EventPool(lib.EventTypeLiquidityRemoved, owner, lib.LBPPool, []lib.AssetAmount{
		{Asset: p.Assets.AssetA, Amount: amountA}, {Asset: p.Assets.AssetB, Amount: amountB},
	}, lib.ZeroBalance())
}

// ownerPool() loads a pool for a liquidity change by its owner outside of the sale
func (l *LBP) ownerPool(owner crypto.AddressI, pair lib.AssetPair) (*Pool, crypto.AddressI, lib.ErrorI) {
	p, err := l.GetPool(pair)
	if err != nil {
		return nil, nil, err
	}
	if p.Owner != owner.String() {
		return nil, nil, ErrNotAllowed()
	}
	if p.IsRunning(l.sm.Height()) {
		return nil, nil, ErrSaleStarted()
	}
	return p, PoolAddress(pair), nil
}

// IsRunning() returns true if the sale window contains the height
func (p *Pool) IsRunning(height uint64) bool { return p.Start <= height && height <= p.End }

// Weights() returns the weights of the accumulated and sold assets at a height
func (p *Pool) Weights(height uint64) (accumulated, sold uint64) {
	initial, final := uint64(p.InitialWeight), uint64(p.FinalWeight)
	switch {
	case height <= p.Start || p.End == p.Start:
		accumulated = initial
	case height >= p.End:
		accumulated = final
	case final >= initial:
		accumulated = initial + (final-initial)*(height-p.Start)/(p.End-p.Start)
	default:
		accumulated = initial - (initial-final)*(height-p.Start)/(p.End-p.Start)
	}
	return accumulated, MaxWeight - accumulated
}

// TRADING BELOW

// Exists() returns true if a pool exists for the pair of the hop
func (l *LBP) Exists(t lib.Trade) bool {
	_, err := l.GetPool(lib.NewAssetPair(t.AssetIn, t.AssetOut))
	return err == nil
}

// PoolAccount() returns the account holding the balances of the hop
func (l *LBP) PoolAccount(t lib.Trade) (crypto.AddressI, lib.ErrorI) {
	if !l.Exists(t) {
		return nil, ErrTokenPoolNotFound()
	}
	return PoolAddress(lib.NewAssetPair(t.AssetIn, t.AssetOut)), nil
}

// IsTradable() returns true while the sale of the hop's pool is running
func (l *LBP) IsTradable(t lib.Trade, _ lib.TradeDirection) bool {
	p, err := l.GetPool(lib.NewAssetPair(t.AssetIn, t.AssetOut))
	return err == nil && p.IsRunning(l.sm.Height())
}

// CalculateSell() returns the amount the trader receives for an exact amount in
func (l *LBP) CalculateSell(t lib.Trade, amountIn lib.Balance) (lib.Balance, lib.ErrorI) {
	q, err := l.sell(t, amountIn)
	if err != nil {
		return lib.ZeroBalance(), err
	}
	return q.out, nil
}

// CalculateBuy() returns the amount the trader pays for an exact amount out
func (l *LBP) CalculateBuy(t lib.Trade, amountOut lib.Balance) (lib.Balance, lib.ErrorI) {
	q, err := l.buy(t, amountOut)
	if err != nil {
		return lib.ZeroBalance(), err
	}
	return q.in, nil
}

// ValidateSell() checks an exact-in trade against the sale window, the pool limits and the trader's balance
func (l *LBP) ValidateSell(who crypto.AddressI, t lib.Trade, amountIn, minAmountOut lib.Balance, discount bool) (*lib.AMMTransfer, lib.ErrorI) {
	if err := l.checkBalance(who, t.AssetIn, amountIn); err != nil {
		return nil, err
	}
	q, err := l.sell(t, amountIn)
	if err != nil {
		return nil, err
	}
	if q.out.Lt(minAmountOut) {
		return nil, ErrTradingLimitReached()
	}
	return dex.NewTransfer(who, lib.LBPPool, lib.DirectionSell, t, q.in, q.out, q.fee, discount), nil
}

// ValidateBuy() checks an exact-out trade against the sale window, the pool limits and the trader's balance
func (l *LBP) ValidateBuy(who crypto.AddressI, t lib.Trade, amountOut, maxAmountIn lib.Balance, discount bool) (*lib.AMMTransfer, lib.ErrorI) {
	q, err := l.buy(t, amountOut)
	if err != nil {
		return nil, err
	}
	if q.in.Gt(maxAmountIn) {
		return nil, ErrTradingLimitReached()
	}
	if err = l.checkBalance(who, t.AssetIn, q.in); err != nil {
		return nil, err
	}
	return dex.NewTransfer(who, lib.LBPPool, lib.DirectionBuy, t, q.in, q.out, q.fee, discount), nil
}

func (l *LBP) ExecuteSell(tr *lib.AMMTransfer) lib.ErrorI { return l.execute(tr) }
func (l *LBP) ExecuteBuy(tr *lib.AMMTransfer) lib.ErrorI  { return l.execute(tr) }

// execute() settles a transfer, routing the fee from whichever side holds the accumulated asset
func (l *LBP) execute(tr *lib.AMMTransfer) lib.ErrorI {
	pair := lib.NewAssetPair(tr.AssetIn, tr.AssetOut)
	p, err := l.GetPool(pair)
	if err != nil {
		return err
	}
	collector, e := crypto.NewAddressFromString(p.FeeCollector)
	if e != nil {
		return lib.ErrInvalidAddress()
	}
	account := PoolAddress(pair)
	toPool, fromPool := tr.AmountIn, tr.AmountOut
	// the fee is paid by the trader when it sells the accumulated asset, by the pool when the trader buys it
	payer := account
	if tr.AssetIn == p.Assets.AssetA {
		payer = tr.Origin
		if toPool, err = tr.AmountIn.Sub(tr.Fee.Amount); err != nil {
			return err
		}
	}
	if err = l.sm.Transfer(tr.Origin, account, tr.AssetIn, toPool); err != nil {
		return err
	}
	if err = l.sm.Transfer(account, tr.Origin, tr.AssetOut, fromPool); err != nil {
		return err
	}
	// the collector never pays a deposit for the accumulated asset it is credited
	err = l.sm.WithEDMode(l.sm.EDMode().WithSkipCharge(), func() lib.ErrorI {
		return l.sm.Transfer(payer, collector, tr.Fee.Asset, tr.Fee.Amount)
	})
	if err != nil {
		return err
	}
	if err = dex.Swapped(l.sm, tr, account, lib.FeeAmount{Asset: tr.Fee.Asset, Amount: tr.Fee.Amount, Destination: collector.String()}); err != nil {
		return err
	}
	price, err := l.SpotPrice(lib.Trade{Pool: lib.LBPPool, AssetIn: tr.AssetIn, AssetOut: tr.AssetOut})
	if err != nil {
		return err
	}
	return dex.Observe(l.observer, lib.PoolKindLBP, tr.AssetIn, tr.AssetOut, price)
}

// SpotPrice() returns the weighted price (bIn / wIn) / (bOut / wOut)
func (l *LBP) SpotPrice(t lib.Trade) (lib.Price, lib.ErrorI) {
	s, err := l.state(t)
	if err != nil {
		return lib.Price{}, err
	}
	n, err := s.balanceIn.Mul(lib.NewBalance(s.weightOut))
	if err != nil {
		return lib.Price{}, err
	}
	d, err := s.balanceOut.Mul(lib.NewBalance(s.weightIn))
	if err != nil {
		return lib.Price{}, err
	}
	return lib.NewPrice(n, d), nil
}

// SpotPriceUnchecked() converts an amount in at the weighted spot price, or returns zero
func (l *LBP) SpotPriceUnchecked(t lib.Trade, amount lib.Balance) lib.Balance {
	price, err := l.SpotPrice(t)
	if err != nil {
		return lib.ZeroBalance()
	}
	out, err := amount.MulDiv(price.D, price.N)
	if err != nil {
		return lib.ZeroBalance()
	}
	return out
}

// Fee() returns the pool's sale fee, or zero for an unknown pool
func (l *LBP) Fee(t lib.Trade) lib.Permill {
	p, err := l.GetPool(lib.NewAssetPair(t.AssetIn, t.AssetOut))
	if err != nil {
		return 0
	}
	return p.Fee
}

func (l *LBP) SellWeight(lib.Trade) lib.Weight { return sellWeight }
func (l *LBP) BuyWeight(lib.Trade) lib.Weight  { return buyWeight }

// quote is a computed trade: what the trader pays, what it receives and the fee in the accumulated asset
type quote struct {
	in, out lib.Balance
	fee     lib.Fee
}

// state is a pool snapshot oriented to a hop
type state struct {
	pool                  *Pool
	balanceIn, balanceOut lib.Balance
	weightIn, weightOut   uint64
}

// state() loads the pool of a hop with balances and weights at the current height
func (l *LBP) state(t lib.Trade) (*state, lib.ErrorI) {
	pair := lib.NewAssetPair(t.AssetIn, t.AssetOut)
	p, err := l.GetPool(pair)
	if err != nil {
		return nil, err
	}
	amountA, amountB, err := l.balances(p)
	if err != nil {
		return nil, err
	}
	weightA, weightB := p.Weights(l.sm.Height())
	s := &state{pool: p, balanceIn: amountA, balanceOut: amountB, weightIn: weightA, weightOut: weightB}
	if t.AssetIn != p.Assets.AssetA {
		s.balanceIn, s.balanceOut, s.weightIn, s.weightOut = amountB, amountA, weightB, weightA
	}
	if s.balanceIn.IsZero() || s.balanceOut.IsZero() {
		return nil, ErrInsufficientLiquidity()
	}
	return s, nil
}

// sell() quotes an exact-in trade
func (l *LBP) sell(t lib.Trade, amountIn lib.Balance) (*quote, lib.ErrorI) {
	s, err := l.tradable(t)
	if err != nil {
		return nil, err
	}
	if amountIn.Lt(lib.NewBalance(MinTradingLimit)) {
		return nil, ErrInsufficientTradingAmount()
	}
	maxIn, err := s.balanceIn.Div(lib.NewBalance(MaxInRatio))
	if err != nil {
		return nil, err
	}
	if amountIn.Gt(maxIn) {
		return nil, ErrMaxInRatioExceeded()
	}
	accumulated := s.pool.Assets.AssetA
	q := &quote{in: amountIn, fee: lib.Fee{Asset: accumulated}}
	net := amountIn
	if t.AssetIn == accumulated {
		if q.fee.Amount, err = s.pool.Fee.Mul(amountIn); err != nil {
			return nil, err
		}
		if net, err = amountIn.Sub(q.fee.Amount); err != nil {
			return nil, err
		}
	}
	gross, err := outGivenIn(s, net)
	if err != nil {
		return nil, err
	}
	q.out = gross
	if t.AssetOut == accumulated {
		if q.fee.Amount, err = s.pool.Fee.Mul(gross); err != nil {
			return nil, err
		}
		if q.out, err = gross.Sub(q.fee.Amount); err != nil {
			return nil, err
		}
	}
	if q.out.IsZero() {
		return nil, ErrInsufficientTradingAmount()
	}
	return q, nil
}

// buy() quotes an exact-out trade
func (l *LBP) buy(t lib.Trade, amountOut lib.Balance) (*quote, lib.ErrorI) {
	s, err := l.tradable(t)
	if err != nil {
		return nil, err
	}
	if amountOut.Lt(lib.NewBalance(MinTradingLimit)) {
		return nil, ErrInsufficientTradingAmount()
	}
	accumulated := s.pool.Assets.AssetA
	q := &quote{out: amountOut, fee: lib.Fee{Asset: accumulated}}
	gross := amountOut
	if t.AssetOut == accumulated {
		if q.fee.Amount, err = s.pool.Fee.MulCeil(amountOut); err != nil {
			return nil, err
		}
		if gross, err = amountOut.Add(q.fee.Amount); err != nil {
			return nil, err
		}
	}
	maxOut, err := s.balanceOut.Div(lib.NewBalance(MaxOutRatio))
	if err != nil {
		return nil, err
	}
	if gross.Gt(maxOut) {
		return nil, ErrMaxOutRatioExceeded()
	}
	net, err := inGivenOut(s, gross)
	if err != nil {
		return nil, err
	}
	q.in = net
	if t.AssetIn == accumulated {
		if q.fee.Amount, err = s.pool.Fee.MulCeil(net); err != nil {
			return nil, err
		}
		if q.in, err = net.Add(q.fee.Amount); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// tradable() loads the hop state and enforces the sale window
func (l *LBP) tradable(t lib.Trade) (*state, lib.ErrorI) {
	s, err := l.state(t)
	if err != nil {
		return nil, err
	}
	if !s.pool.IsRunning(l.sm.Height()) {
		return nil, ErrSaleIsNotRunning()
	}
	return s, nil
}

// outGivenIn() returns bOut * (1 - (bIn / (bIn + in)) ^ (wIn / wOut)), rounded down
func outGivenIn(s *state, amountIn lib.Balance) (lib.Balance, lib.ErrorI) {
	total, err := s.balanceIn.Add(amountIn)
	if err != nil {
		return lib.ZeroBalance(), err
	}
	base, err := fixed.FromRational(s.balanceIn, total)
	if err != nil {
		return lib.ZeroBalance(), ErrMath(err)
	}
	exponent, err := fixed.FromRationalUint64(s.weightIn, s.weightOut)
	if err != nil {
		return lib.ZeroBalance(), ErrMath(err)
	}
	power, err := fixed.Pow(base, exponent)
	if err != nil {
		return lib.ZeroBalance(), ErrMath(err)
	}
	complement, err := fixed.One().Sub(power)
	if err != nil {
		return lib.ZeroBalance(), ErrMath(err)
	}
	return complement.MulBalance(s.balanceOut)
}

// inGivenOut() returns bIn * ((bOut / (bOut - out)) ^ (wOut / wIn) - 1), rounded up
func inGivenOut(s *state, amountOut lib.Balance) (lib.Balance, lib.ErrorI) {
	remaining, err := s.balanceOut.Sub(amountOut)
	if err != nil {
		return lib.ZeroBalance(), err
	}
	base, err := fixed.FromRational(s.balanceOut, remaining)
	if err != nil {
		return lib.ZeroBalance(), ErrMath(err)
	}
	exponent, err := fixed.FromRationalUint64(s.weightOut, s.weightIn)
	if err != nil {
		return lib.ZeroBalance(), ErrMath(err)
	}
	power, err := fixed.Pow(base, exponent)
	if err != nil {
		return lib.ZeroBalance(), ErrMath(err)
	}
	growth, err := power.Sub(fixed.One())
	if err != nil {
		return lib.ZeroBalance(), ErrMath(err)
	}
	return growth.MulBalanceCeil(s.balanceIn)
}

// balances() returns the balances of the accumulated and sold assets held by the pool account
func (l *LBP) balances(p *Pool) (amountA, amountB lib.Balance, err lib.ErrorI) {
	account := PoolAddress(p.Assets)
	if amountA, err = l.sm.GetBalance(account, p.Assets.AssetA); err != nil {
		return
	}
	amountB, err = l.sm.GetBalance(account, p.Assets.AssetB)
	return
}

func (l *LBP) checkBalance(who crypto.AddressI, id lib.AssetId, amount lib.Balance) lib.ErrorI {
	balance, err := l.sm.GetBalance(who, id)
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return ErrInsufficientAssetBalance()
	}
	return nil
}

// validateParams() checks the sale window, the weights and the fee of a new pool
func validateParams(p PoolParams, height uint64) lib.ErrorI {
	switch {
	case p.End < p.Start:
		return ErrInvalidPoolParameters("sale ends before it starts")
	case p.End < height:
		return ErrInvalidPoolParameters("sale already ended")
	case p.InitialWeight == 0 || p.InitialWeight >= MaxWeight:
		return ErrInvalidPoolParameters("initial weight out of range")
	case p.FinalWeight == 0 || p.FinalWeight >= MaxWeight:
		return ErrInvalidPoolParameters("final weight out of range")
	case p.Fee >= lib.PermillDenominator:
		return ErrInvalidPoolParameters("fee must be below 100%")
	case p.FeeCollector == nil:
		return ErrInvalidPoolParameters("missing fee collector")
	}
	return nil
}

func keyForPool(pair lib.AssetPair) []byte { return lib.JoinLenPrefix(poolPrefix, pair.Key()) }
