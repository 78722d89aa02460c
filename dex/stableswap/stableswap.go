package stableswap

import (
	"github.com/canopy-network/omniroute/dex"
	"github.com/canopy-network/omniroute/fsm"
	"github.com/canopy-network/omniroute/lib"
	"github.com/canopy-network/omniroute/lib/crypto"
	"github.com/holiman/uint256"
)

/*
	Stableswap implements amplified pools of two to five like-valued assets (same decimals, similar price).

	The pool id is the asset id of its share token, so a hop may also target the shares:
	- asset i -> asset j     swap along the invariant
	- asset i -> pool id     single sided add liquidity, paid in shares
	- pool id -> asset j     single sided remove liquidity, paid in asset j

	The trade fee is withheld from whatever the trader receives.
*/

const (
	MinTradingLimit  = 1_000
	MinAmplification = 2
	MaxAmplification = 10_000
	MinAssets        = 2
	MaxAssets        = 5

	moduleName = "stableswap"
)

var poolPrefix = []byte{23} // store key prefix for stableswap pools

var (
	swapWeight      = lib.Weight{RefTime: 310_400_000, ProofSize: 11_200}
	liquidityWeight = lib.Weight{RefTime: 395_900_000, ProofSize: 13_700}
)

var _ lib.PoolI = &Stableswap{}

// Pool is the persisted record of a stableswap pool
type Pool struct {
	Id            lib.AssetId   `json:"id"` // also the share asset id
	Assets        []lib.AssetId `json:"assets"`
	Amplification uint64        `json:"amplification"`
	Fee           lib.Permill   `json:"fee"`
}

// index() returns the position of an asset in the pool, or -1
func (p *Pool) index(id lib.AssetId) int {
	for i, a := range p.Assets {
		if a == id {
			return i
		}
	}
	return -1
}

// hopKind classifies a hop against a pool
type hopKind uint8

const (
	hopSwap   hopKind = iota // asset -> asset
	hopAdd                   // asset -> shares
	hopRemove                // shares -> asset
)

// classify() returns the kind of the hop and the indexes of the pool assets it touches (-1 for shares)
func (p *Pool) classify(t lib.Trade) (kind hopKind, i, j int, err lib.ErrorI) {
	i, j = p.index(t.AssetIn), p.index(t.AssetOut)
	switch {
	case t.AssetIn == t.AssetOut:
		return kind, i, j, ErrNotAllowed()
	case t.AssetOut == p.Id && i >= 0:
		return hopAdd, i, j, nil
	case t.AssetIn == p.Id && j >= 0:
		return hopRemove, i, j, nil
	case i >= 0 && j >= 0:
		return hopSwap, i, j, nil
	case i < 0:
		return kind, i, j, ErrAssetNotInPool(t.AssetIn)
	default:
		return kind, i, j, ErrAssetNotInPool(t.AssetOut)
	}
}

// Stableswap is the amplified pool family
type Stableswap struct {
	sm       *fsm.StateMachine
	observer lib.PriceObserverI
	log      lib.LoggerI
}

// New() creates the pool family; the observer receives the share price of every pool asset after a trade
func New(sm *fsm.StateMachine, observer lib.PriceObserverI) *Stableswap {
	return &Stableswap{sm: sm, observer: observer, log: sm.Log().With(moduleName)}
}

// Kind() returns lib.PoolKindStableswap
func (s *Stableswap) Kind() lib.PoolKind { return lib.PoolKindStableswap }

// PoolAddress() is the deterministic account holding the reserves of a pool
func PoolAddress(id lib.AssetId) crypto.AddressI { return crypto.ModuleAddress(moduleName, id.Bytes()) }

// GetPool() returns the pool with the share asset id
func (s *Stableswap) GetPool(id lib.AssetId) (*Pool, lib.ErrorI) {
	p := new(Pool)
	found, err := s.sm.GetJSON(keyForPool(id), p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrTokenPoolNotFound(id)
	}
	return p, nil
}

// CreatePool() creates an empty pool; the share asset must already be registered and unissued
func (s *Stableswap) CreatePool(who crypto.AddressI, id lib.AssetId, assets []lib.AssetId, amplification uint64, fee lib.Permill) lib.ErrorI {
	if _, err := s.GetPool(id); err == nil {
		return ErrTokenPoolAlreadyExists(id)
	}
	if err := s.validatePool(id, assets, amplification, fee); err != nil {
		return err
	}
	if err := s.sm.RegisterModuleAccount(PoolAddress(id)); err != nil {
		return err
	}
	p := &Pool{Id: id, Assets: assets, Amplification: amplification, Fee: fee}
	if err := s.sm.SetJSON(keyForPool(id), p); err != nil {
		return err
	}
	s.log.Debugf("Created stableswap pool %d of %v", id, assets)
	amounts := make([]lib.AssetAmount, len(assets))
	for i, a := range assets {
		amounts[i] = lib.AssetAmount{Asset: a, Amount: lib.ZeroBalance()}
	}
	return s.sm.EventPool(lib.EventTypePoolCreated, who, lib.StableswapPool(id), amounts, lib.ZeroBalance())
}

func (s *Stableswap) validatePool(id lib.AssetId, assets []lib.AssetId, amplification uint64, fee lib.Permill) lib.ErrorI {
	if len(assets) < MinAssets || len(assets) > MaxAssets {
		return ErrInvalidPoolParameters("pools hold two to five assets")
	}
	if amplification < MinAmplification || amplification > MaxAmplification {
		return ErrInvalidPoolParameters("amplification out of range")
	}
	if fee >= lib.PermillDenominator {
		return ErrInvalidPoolParameters("fee must be below 100%")
	}
	issuance, err := s.sm.TotalIssuance(id)
	if err != nil {
		return err
	}
	if !s.sm.AssetExists(id) || !issuance.IsZero() {
		return ErrInvalidPoolParameters("share asset must be registered and unissued")
	}
	seen := make(map[lib.AssetId]struct{}, len(assets))
	for _, a := range assets {
		if _, dup := seen[a]; dup || a == id {
			return ErrInvalidPoolParameters("assets must be distinct from each other and from the share asset")
		}
		if !s.sm.AssetExists(a) {
			return ErrInvalidPoolParameters("unknown asset")
		}
		seen[a] = struct{}{}
	}
	return nil
}

// AddLiquidity() deposits any mix of pool assets for shares; the first deposit must include every asset
func (s *Stableswap) AddLiquidity(who crypto.AddressI, id lib.AssetId, amounts []lib.AssetAmount, minShares lib.Balance) lib.ErrorI {
	st, err := s.load(id)
	if err != nil {
		return err
	}
	updated := st.clone()
	for _, a := range amounts {
		i := st.pool.index(a.Asset)
		if i < 0 {
			return ErrAssetNotInPool(a.Asset)
		}
		updated[i].Add(updated[i], a.Amount.Uint256())
	}
	d1, ok := calculateD(updated, st.pool.Amplification)
	if !ok {
		return ErrInsufficientLiquidity()
	}
	shares := d1
	if !st.issuance.IsZero() {
		if d1.Cmp(st.d) <= 0 {
			return ErrInsufficientTradingAmount()
		}
		shares = new(uint256.Int).Div(new(uint256.Int).Mul(st.issuance.Uint256(), new(uint256.Int).Sub(d1, st.d)), st.d)
	}
	minted, err := lib.NewBalanceFromUint256(shares)
	if err != nil {
		return err
	}
	if minted.IsZero() || minted.Lt(minShares) {
		return ErrTradingLimitReached()
	}
	for _, a := range amounts {
		if err = s.sm.Transfer(who, PoolAddress(id), a.Asset, a.Amount); err != nil {
			return err
		}
	}
	if err = s.sm.Mint(who, id, minted); err != nil {
		return err
	}
	if err = s.sm.EventPool(lib.EventTypeLiquidityAdded, who, lib.StableswapPool(id), amounts, minted); err != nil {
		return err
	}
	return s.observe(id)
}

// RemoveLiquidity() burns shares for the proportional part of every reserve
func (s *Stableswap) RemoveLiquidity(who crypto.AddressI, id lib.AssetId, shares lib.Balance) lib.ErrorI {
	st, err := s.load(id)
	if err != nil {
		return err
	}
	held, err := s.sm.GetBalance(who, id)
	if err != nil {
		return err
	}
	if shares.IsZero() || held.Lt(shares) {
		return ErrInsufficientShares()
	}
	amounts := make([]lib.AssetAmount, len(st.pool.Assets))
	for i, a := range st.pool.Assets {
		reserve, e := lib.NewBalanceFromUint256(st.reserves[i])
		if e != nil {
			return e
		}
		amount, e := reserve.MulDiv(shares, st.issuance)
		if e != nil {
			return e
		}
		amounts[i] = lib.AssetAmount{Asset: a, Amount: amount}
	}
	if err = s.sm.Burn(who, id, shares); err != nil {
		return err
	}
	for _, a := range amounts {
		if err = s.sm.Transfer(PoolAddress(id), who, a.Asset, a.Amount); err != nil {
			return err
		}
	}
	if err = s.sm.EventPool(lib.EventTypeLiquidityRemoved, who, lib.StableswapPool(id), amounts, shares); err != nil {
		return err
	}
	return s.observe(id)
}

// TRADING BELOW

// Exists() returns true if the hop's pool exists and holds both of its assets, counting the share asset
func (s *Stableswap) Exists(t lib.Trade) bool {
	p, err := s.GetPool(t.Pool.StableswapId)
	if err != nil {
		return false
	}
	_, _, _, err = p.classify(t)
	return err == nil
}

// PoolAccount() returns the account holding the reserves of the hop's pool
func (s *Stableswap) PoolAccount(t lib.Trade) (crypto.AddressI, lib.ErrorI) {
	if _, err := s.GetPool(t.Pool.StableswapId); err != nil {
		return nil, err
	}
	return PoolAddress(t.Pool.StableswapId), nil
}

// IsTradable() returns true once the pool holds liquidity
func (s *Stableswap) IsTradable(t lib.Trade, _ lib.TradeDirection) bool {
	if !s.Exists(t) {
		return false
	}
	issuance, err := s.sm.TotalIssuance(t.Pool.StableswapId)
	return err == nil && !issuance.IsZero()
}

// CalculateSell() returns the amount out net of fee for an exact amount in
func (s *Stableswap) CalculateSell(t lib.Trade, amountIn lib.Balance) (lib.Balance, lib.ErrorI) {
	q, err := s.sell(t, amountIn)
	if err != nil {
		return lib.ZeroBalance(), err
	}
	return q.out, nil
}

// CalculateBuy() returns the amount in for an exact amount out
func (s *Stableswap) CalculateBuy(t lib.Trade, amountOut lib.Balance) (lib.Balance, lib.ErrorI) {
	q, err := s.buy(t, amountOut)
	if err != nil {
		return lib.ZeroBalance(), err
	}
	return q.in, nil
}

// ValidateSell() checks an exact-in trade against the pool and the trader's balance
func (s *Stableswap) ValidateSell(who crypto.AddressI, t lib.Trade, amountIn, minAmountOut lib.Balance, discount bool) (*lib.AMMTransfer, lib.ErrorI) {
	if err := s.checkBalance(who, t.AssetIn, amountIn); err != nil {
		return nil, err
	}
	q, err := s.sell(t, amountIn)
	if err != nil {
		return nil, err
	}
	if q.out.Lt(minAmountOut) {
		return nil, ErrTradingLimitReached()
	}
	return dex.NewTransfer(who, t.Pool, lib.DirectionSell, t, q.in, q.out, lib.Fee{Asset: t.AssetOut, Amount: q.fee}, discount), nil
}

// ValidateBuy() checks an exact-out trade against the pool and the trader's balance
func (s *Stableswap) ValidateBuy(who crypto.AddressI, t lib.Trade, amountOut, maxAmountIn lib.Balance, discount bool) (*lib.AMMTransfer, lib.ErrorI) {
	q, err := s.buy(t, amountOut)
	if err != nil {
		return nil, err
	}
	if q.in.Gt(maxAmountIn) {
		return nil, ErrTradingLimitReached()
	}
	if err = s.checkBalance(who, t.AssetIn, q.in); err != nil {
		return nil, err
	}
	return dex.NewTransfer(who, t.Pool, lib.DirectionBuy, t, q.in, q.out, lib.Fee{Asset: t.AssetOut, Amount: q.fee}, discount), nil
}

func (s *Stableswap) ExecuteSell(tr *lib.AMMTransfer) lib.ErrorI { return s.execute(tr) }
func (s *Stableswap) ExecuteBuy(tr *lib.AMMTransfer) lib.ErrorI  { return s.execute(tr) }

// execute() settles a transfer: swaps move reserves, liquidity hops mint or burn shares
func (s *Stableswap) execute(tr *lib.AMMTransfer) lib.ErrorI {
	id := tr.Pool.StableswapId
	p, err := s.GetPool(id)
	if err != nil {
		return err
	}
	kind, _, _, err := p.classify(lib.Trade{Pool: tr.Pool, AssetIn: tr.AssetIn, AssetOut: tr.AssetOut})
	if err != nil {
		return err
	}
	account := PoolAddress(id)
	fee := lib.FeeAmount{Asset: tr.Fee.Asset, Amount: tr.Fee.Amount, Destination: account.String()}
	switch kind {
	case hopSwap:
		err = dex.Swap(s.sm, tr, account, fee)
	case hopAdd:
		if err = s.sm.Transfer(tr.Origin, account, tr.AssetIn, tr.AmountIn); err != nil {
			return err
		}
		if err = s.sm.Mint(tr.Origin, id, tr.AmountOut); err != nil {
			return err
		}
		err = dex.Swapped(s.sm, tr, account, fee)
	case hopRemove:
		if err = s.sm.Burn(tr.Origin, id, tr.AmountIn); err != nil {
			return err
		}
		if err = s.sm.Transfer(account, tr.Origin, tr.AssetOut, tr.AmountOut); err != nil {
			return err
		}
		err = dex.Swapped(s.sm, tr, account, fee)
	}
	if err != nil {
		return err
	}
	return s.observe(id)
}

// observe() reports the share price D / issuance against every pool asset
func (s *Stableswap) observe(id lib.AssetId) lib.ErrorI {
	st, err := s.load(id)
	if err != nil {
		return err
	}
	if st.d == nil || st.issuance.IsZero() {
		return nil
	}
	d, err := lib.NewBalanceFromUint256(st.d)
	if err != nil {
		return nil
	}
	for _, a := range st.pool.Assets {
		if err = dex.Observe(s.observer, lib.PoolKindStableswap, a, id, lib.NewPrice(d, st.issuance)); err != nil {
			return err
		}
	}
	return nil
}

// SpotPrice() returns the cost of one asset out in asset in: the marginal swap rate, or D / issuance for shares
func (s *Stableswap) SpotPrice(t lib.Trade) (lib.Price, lib.ErrorI) {
	st, err := s.load(t.Pool.StableswapId)
	if err != nil {
		return lib.Price{}, err
	}
	kind, i, j, err := st.pool.classify(t)
	if err != nil {
		return lib.Price{}, err
	}
	if st.d == nil || st.issuance.IsZero() {
		return lib.Price{}, ErrInsufficientLiquidity()
	}
	d, err := lib.NewBalanceFromUint256(st.d)
	if err != nil {
		return lib.Price{}, err
	}
	switch kind {
	case hopAdd:
		return lib.NewPrice(d, st.issuance), nil
	case hopRemove:
		return lib.NewPrice(st.issuance, d), nil
	}
	// a trade of a millionth of the reserve in, without fee
	dx := new(uint256.Int).Div(st.reserves[i], uint256.NewInt(1_000_000))
	if dx.IsZero() {
		dx.SetOne()
	}
	updated := st.clone()
	updated[i].Add(updated[i], dx)
	y, ok := calculateY(updated, j, st.d, st.pool.Amplification)
	if !ok || y.Cmp(st.reserves[j]) >= 0 {
		return lib.Price{}, ErrMath()
	}
	dy := new(uint256.Int).Sub(st.reserves[j], y)
	n, err := lib.NewBalanceFromUint256(dx)
	if err != nil {
		return lib.Price{}, err
	}
	m, err := lib.NewBalanceFromUint256(dy)
	if err != nil {
		return lib.Price{}, err
	}
	return lib.NewPrice(n, m), nil
}

// SpotPriceUnchecked() converts an amount in at spot price, or returns zero
func (s *Stableswap) SpotPriceUnchecked(t lib.Trade, amount lib.Balance) lib.Balance {
	price, err := s.SpotPrice(t)
	if err != nil || !price.IsValid() {
		return lib.ZeroBalance()
	}
	out, err := amount.MulDiv(price.D, price.N)
	if err != nil {
		return lib.ZeroBalance()
	}
	return out
}

// Fee() returns the pool's trade fee, or zero for an unknown pool
func (s *Stableswap) Fee(t lib.Trade) lib.Permill {
	p, err := s.GetPool(t.Pool.StableswapId)
	if err != nil {
		return 0
	}
	return p.Fee
}

func (s *Stableswap) SellWeight(t lib.Trade) lib.Weight { return weightOf(t) }
func (s *Stableswap) BuyWeight(t lib.Trade) lib.Weight  { return weightOf(t) }

func weightOf(t lib.Trade) lib.Weight {
	if t.AssetIn == t.Pool.StableswapId || t.AssetOut == t.Pool.StableswapId {
		return liquidityWeight
	}
	return swapWeight
}

// snapshot is a pool with its reserves, invariant and share issuance
type snapshot struct {
	pool     *Pool
	reserves []*uint256.Int
	d        *uint256.Int // nil while the pool is empty
	issuance lib.Balance
}

func (st *snapshot) clone() []*uint256.Int {
	out := make([]*uint256.Int, len(st.reserves))
	for i, r := range st.reserves {
		out[i] = new(uint256.Int).Set(r)
	}
	return out
}

// load() reads the pool, its reserves and issuance, and computes D when the pool holds liquidity
func (s *Stableswap) load(id lib.AssetId) (*snapshot, lib.ErrorI) {
	p, err := s.GetPool(id)
	if err != nil {
		return nil, err
	}
	st := &snapshot{pool: p, reserves: make([]*uint256.Int, len(p.Assets))}
	for i, a := range p.Assets {
		reserve, e := s.sm.GetBalance(PoolAddress(id), a)
		if e != nil {
			return nil, e
		}
		st.reserves[i] = reserve.Uint256()
	}
	if st.issuance, err = s.sm.TotalIssuance(id); err != nil {
		return nil, err
	}
	if !st.issuance.IsZero() {
		d, ok := calculateD(st.reserves, p.Amplification)
		if !ok {
			return nil, ErrMath()
		}
		st.d = d
	}
	return st, nil
}

// quote is a computed trade
type quote struct {
	in, out lib.Balance
	fee     lib.Balance // in the asset out
}

// sell() quotes an exact-in hop
func (s *Stableswap) sell(t lib.Trade, amountIn lib.Balance) (*quote, lib.ErrorI) {
	st, kind, i, j, err := s.tradable(t)
	if err != nil {
		return nil, err
	}
	if amountIn.Lt(lib.NewBalance(MinTradingLimit)) {
		return nil, ErrInsufficientTradingAmount()
	}
	in := amountIn.Uint256()
	var gross *uint256.Int
	switch kind {
	case hopSwap:
		updated := st.clone()
		updated[i].Add(updated[i], in)
		y, ok := calculateY(updated, j, st.d, st.pool.Amplification)
		if !ok {
			return nil, ErrMath()
		}
		gross = subOne(st.reserves[j], y)
	case hopAdd:
		updated := st.clone()
		updated[i].Add(updated[i], in)
		d1, ok := calculateD(updated, st.pool.Amplification)
		if !ok || d1.Cmp(st.d) <= 0 {
			return nil, ErrMath()
		}
		gross = new(uint256.Int).Div(new(uint256.Int).Mul(st.issuance.Uint256(), new(uint256.Int).Sub(d1, st.d)), st.d)
	case hopRemove:
		if amountIn.Gte(st.issuance) {
			return nil, ErrInsufficientLiquidity()
		}
		// D1 = D0 - ceil(D0 * shares / issuance)
		burned := mulDivCeil(st.d, in, st.issuance.Uint256())
		if burned.Cmp(st.d) >= 0 {
			return nil, ErrInsufficientLiquidity()
		}
		d1 := new(uint256.Int).Sub(st.d, burned)
		y, ok := calculateY(st.reserves, j, d1, st.pool.Amplification)
		if !ok {
			return nil, ErrMath()
		}
		gross = subOne(st.reserves[j], y)
	}
	if gross == nil || gross.IsZero() {
		return nil, ErrInsufficientLiquidity()
	}
	g, err := lib.NewBalanceFromUint256(gross)
	if err != nil {
		return nil, err
	}
	q := &quote{in: amountIn}
	if q.fee, err = st.pool.Fee.Mul(g); err != nil {
		return nil, err
	}
	if q.out, err = g.Sub(q.fee); err != nil {
		return nil, err
	}
	if q.out.IsZero() {
		return nil, ErrInsufficientTradingAmount()
	}
	return q, nil
}

// buy() quotes an exact-out hop
func (s *Stableswap) buy(t lib.Trade, amountOut lib.Balance) (*quote, lib.ErrorI) {
	st, kind, i, j, err := s.tradable(t)
	if err != nil {
		return nil, err
	}
	if amountOut.Lt(lib.NewBalance(MinTradingLimit)) {
		return nil, ErrInsufficientTradingAmount()
	}
	// gross out such that gross - fee covers the amount out
	g, err := amountOut.MulDivCeil(lib.NewBalance(lib.PermillDenominator), lib.NewBalance(uint64(lib.PermillDenominator-st.pool.Fee)))
	if err != nil {
		return nil, err
	}
	q := &quote{out: amountOut}
	if q.fee, err = g.Sub(amountOut); err != nil {
		return nil, err
	}
	gross := g.Uint256()
	var in *uint256.Int
	switch kind {
	case hopSwap:
		if gross.Cmp(st.reserves[j]) >= 0 {
			return nil, ErrInsufficientLiquidity()
		}
		updated := st.clone()
		updated[j].Sub(updated[j], gross)
		y, ok := calculateY(updated, i, st.d, st.pool.Amplification)
		if !ok || y.Cmp(st.reserves[i]) < 0 {
			return nil, ErrMath()
		}
		in = new(uint256.Int).AddUint64(new(uint256.Int).Sub(y, st.reserves[i]), 1)
	case hopAdd:
		// D1 = D0 + ceil(D0 * shares / issuance)
		d1 := new(uint256.Int).Add(st.d, mulDivCeil(st.d, gross, st.issuance.Uint256()))
		y, ok := calculateY(st.reserves, i, d1, st.pool.Amplification)
		if !ok || y.Cmp(st.reserves[i]) < 0 {
			return nil, ErrMath()
		}
		in = new(uint256.Int).AddUint64(new(uint256.Int).Sub(y, st.reserves[i]), 1)
	case hopRemove:
		if gross.Cmp(st.reserves[j]) >= 0 {
			return nil, ErrInsufficientLiquidity()
		}
		updated := st.clone()
		updated[j].Sub(updated[j], gross)
		d1, ok := calculateD(updated, st.pool.Amplification)
		if !ok || d1.Cmp(st.d) >= 0 {
			return nil, ErrMath()
		}
		in = mulDivCeil(st.issuance.Uint256(), new(uint256.Int).Sub(st.d, d1), st.d)
	}
	if q.in, err = lib.NewBalanceFromUint256(in); err != nil {
		return nil, err
	}
	return q, nil
}

// tradable() loads a hop's pool and requires liquidity
func (s *Stableswap) tradable(t lib.Trade) (st *snapshot, kind hopKind, i, j int, err lib.ErrorI) {
	if st, err = s.load(t.Pool.StableswapId); err != nil {
		return
	}
	if kind, i, j, err = st.pool.classify(t); err != nil {
		return
	}
	if st.d == nil {
		err = ErrInsufficientLiquidity()
	}
	return
}

func (s *Stableswap) checkBalance(who crypto.AddressI, id lib.AssetId, amount lib.Balance) lib.ErrorI {
	balance, err := s.sm.GetBalance(who, id)
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return ErrInsufficientAssetBalance()
	}
	return nil
}

// subOne() returns a - b - 1 rounded in favour of the pool, or nil if that is not positive
func subOne(a, b *uint256.Int) *uint256.Int {
	if a.Cmp(new(uint256.Int).AddUint64(b, 1)) <= 0 {
		return nil
	}
	return new(uint256.Int).SubUint64(new(uint256.Int).Sub(a, b), 1)
}

// mulDivCeil() returns ceil(a * b / c)
func mulDivCeil(a, b, c *uint256.Int) *uint256.Int {
	product := new(uint256.Int).Mul(a, b)
	quotient, remainder := new(uint256.Int).DivMod(product, c, new(uint256.Int))
	if !remainder.IsZero() {
		quotient.AddUint64(quotient, 1)
	}
	return quotient
}

func keyForPool(id lib.AssetId) []byte { return lib.JoinLenPrefix(poolPrefix, id.Bytes()) }
