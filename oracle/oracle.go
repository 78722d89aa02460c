package oracle

import (
	"github.com/canopy-network/omniroute/fsm"
	"github.com/canopy-network/omniroute/lib"
	"github.com/canopy-network/omniroute/lib/fixed"
)

/*
	The oracle keeps exponential moving averages of the spot prices reported by the pools.

	During a block, every trade overwrites the accumulator of its (source, pair) with the latest spot price.
	At the end of the block each accumulator is folded into one entry per period:

		ema' = ema * (1-a)^k + price * (1 - (1-a)^k),    a = 2 / (period + 1)

	where k is the number of blocks since the entry was last updated.
	Prices are kept for the ordered pair (A < B) as the cost of one B in A.
*/

var (
	accumulatorPrefix = []byte{16} // store key prefix for the prices of the current block
	entryPrefix       = []byte{17} // store key prefix for the moving averages
)

var _ lib.PriceObserverI = &Oracle{}

// Oracle is the on-chain EMA price oracle
type Oracle struct {
	sm  *fsm.StateMachine
	log lib.LoggerI
}

// Entry is a moving average and the height it was last updated at
type Entry struct {
	Price     fixed.Fixed `json:"price"`
	UpdatedAt uint64      `json:"updatedAt"`
}

// accumulator is the last price reported in the current block
type accumulator struct {
	Source string        `json:"source"`
	Pair   lib.AssetPair `json:"pair"`
	Price  fixed.Fixed   `json:"price"`
}

// New() creates an oracle over the ledger
func New(sm *fsm.StateMachine) *Oracle {
	return &Oracle{sm: sm, log: sm.Log().With("oracle")}
}

// OnTrade() records the spot price after a trade; price is the cost of one assetOut in assetIn
// prices that can't be represented are ignored so they never fail a trade
func (o *Oracle) OnTrade(source string, assetIn, assetOut lib.AssetId, price lib.Price) lib.ErrorI {
	if source == "" {
		return ErrInvalidSource()
	}
	if !price.IsValid() || assetIn == assetOut {
		return nil
	}
	pair := lib.NewAssetPair(assetIn, assetOut).Ordered()
	// orient to the cost of one B in A
	if assetIn != pair.AssetA {
		price = price.Inverse()
	}
	p, err := fixed.FromRational(price.N, price.D)
	if err != nil || p.IsZero() {
		o.log.Debugf("Ignoring %s price %s for %s", source, price, pair)
		return nil
	}
	return o.sm.SetJSON(keyForAccumulator(source, pair), &accumulator{Source: source, Pair: pair, Price: p})
}

// EndBlock() folds the prices of the block into the moving averages
func (o *Oracle) EndBlock() lib.ErrorI {
	var pending []*accumulator
	var keys [][]byte
	if err := o.sm.IterateAndExecute(lib.JoinLenPrefix(accumulatorPrefix), func(key, value []byte) lib.ErrorI {
		acc := new(accumulator)
		if err := lib.UnmarshalJSON(value, acc); err != nil {
			return err
		}
		pending, keys = append(pending, acc), append(keys, key)
		return nil
	}); err != nil {
		return err
	}
	for i, acc := range pending {
		for _, period := range Periods {
			if err := o.update(acc, period); err != nil {
				return err
			}
		}
		if err := o.sm.Delete(keys[i]); err != nil {
			return err
		}
	}
	return nil
}

// update() applies one block price to the moving average of a period
func (o *Oracle) update(acc *accumulator, period Period) lib.ErrorI {
	key, height := keyForEntry(acc.Source, acc.Pair, period), o.sm.Height()
	entry := new(Entry)
	found, err := o.sm.GetJSON(key, entry)
	if err != nil {
		return err
	}
	if !found || height <= entry.UpdatedAt {
		return o.sm.SetJSON(key, &Entry{Price: acc.Price, UpdatedAt: height})
	}
	ema, err := decay(entry.Price, acc.Price, period, height-entry.UpdatedAt)
	if err != nil {
		return err
	}
	return o.sm.SetJSON(key, &Entry{Price: ema, UpdatedAt: height})
}

// decay() returns ema * (1-a)^k + price * (1 - (1-a)^k)
func decay(ema, price fixed.Fixed, period Period, k uint64) (fixed.Fixed, lib.ErrorI) {
	n := period.Blocks()
	complement, err := fixed.FromRationalUint64(n-1, n+1)
	if err != nil {
		return fixed.Fixed{}, err
	}
	w, err := fixed.Pow(complement, fixed.FromUint64(k))
	if err != nil {
		return fixed.Fixed{}, err
	}
	old, err := ema.Mul(w)
	if err != nil {
		return fixed.Fixed{}, err
	}
	rest, err := fixed.One().Sub(w)
	if err != nil {
		return fixed.Fixed{}, err
	}
	recent, err := price.Mul(rest)
	if err != nil {
		return fixed.Fixed{}, err
	}
	return old.Add(recent)
}

// Get() returns the cost of one assetOut in assetIn for the period
func (o *Oracle) Get(source string, assetIn, assetOut lib.AssetId, period Period) (fixed.Fixed, lib.ErrorI) {
	entry, err := o.GetEntry(source, lib.NewAssetPair(assetIn, assetOut), period)
	if err != nil {
		return fixed.Fixed{}, err
	}
	if assetIn < assetOut {
		return entry.Price, nil
	}
	if entry.Price.IsZero() {
		return fixed.Fixed{}, ErrOraclePriceZero()
	}
	return entry.Price.Recip()
}

// Has() returns true if an entry exists for the pair and period
func (o *Oracle) Has(source string, assetA, assetB lib.AssetId, period Period) bool {
	_, err := o.GetEntry(source, lib.NewAssetPair(assetA, assetB), period)
	return err == nil
}

// GetEntry() returns the stored moving average of the ordered pair
func (o *Oracle) GetEntry(source string, pair lib.AssetPair, period Period) (*Entry, lib.ErrorI) {
	pair = pair.Ordered()
	entry := new(Entry)
	found, err := o.sm.GetJSON(keyForEntry(source, pair, period), entry)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrOracleNotFound(source, pair.AssetA, pair.AssetB)
	}
	return entry, nil
}

func keyForAccumulator(source string, pair lib.AssetPair) []byte {
	return lib.JoinLenPrefix(accumulatorPrefix, []byte(source), pair.Key())
}

func keyForEntry(source string, pair lib.AssetPair, period Period) []byte {
	return lib.JoinLenPrefix(entryPrefix, []byte(source), pair.Key(), []byte{byte(period)})
}
