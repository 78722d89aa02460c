package dex

import (
	"github.com/canopy-network/omniroute/fsm"
	"github.com/canopy-network/omniroute/lib"
	"github.com/canopy-network/omniroute/lib/crypto"
)

/* Dex.go implements the plumbing shared by the AMM pools: settlement, price reporting and share ledgers */

// Swap() settles a validated transfer: the input moves into the pool account, the output to the trader,
// and the trade is recorded as a Swapped event
func Swap(sm *fsm.StateMachine, tr *lib.AMMTransfer, pool crypto.AddressI, fees ...lib.FeeAmount) lib.ErrorI {
	if err := sm.Transfer(tr.Origin, pool, tr.AssetIn, tr.AmountIn); err != nil {
		return err
	}
	if err := sm.Transfer(pool, tr.Origin, tr.AssetOut, tr.AmountOut); err != nil {
		return err
	}
	return Swapped(sm, tr, pool, fees...)
}

// Swapped() records a trade that was settled by the pool itself
func Swapped(sm *fsm.StateMachine, tr *lib.AMMTransfer, pool crypto.AddressI, fees ...lib.FeeAmount) lib.ErrorI {
	if fees == nil {
		fees = []lib.FeeAmount{}
	}
	return sm.EventSwapped(tr.Origin, pool, tr.Pool, tr.Direction,
		[]lib.AssetAmount{{Asset: tr.AssetIn, Amount: tr.AmountIn}},
		[]lib.AssetAmount{{Asset: tr.AssetOut, Amount: tr.AmountOut}},
		fees)
}

// Observe() reports a post trade spot price; a nil observer is allowed
func Observe(observer lib.PriceObserverI, kind lib.PoolKind, assetIn, assetOut lib.AssetId, price lib.Price) lib.ErrorI {
	if observer == nil {
		return nil
	}
	return observer.OnTrade(kind.String(), assetIn, assetOut, price)
}

// NewTransfer() populates the transfer returned by a pool's Validate* call
func NewTransfer(who crypto.AddressI, pool lib.PoolType, d lib.TradeDirection, t lib.Trade, in, out lib.Balance, fee lib.Fee, discount bool) *lib.AMMTransfer {
	return &lib.AMMTransfer{
		Origin:    who,
		Pool:      pool,
		Direction: d,
		AssetIn:   t.AssetIn,
		AssetOut:  t.AssetOut,
		AmountIn:  in,
		AmountOut: out,
		Fee:       fee,
		Discount:  discount,
	}
}

// Shares is a ledger of liquidity shares kept under its own store prefix, one namespace per pool
type Shares struct {
	sm     *fsm.StateMachine
	prefix []byte
}

// NewShares() creates a share ledger under prefix
func NewShares(sm *fsm.StateMachine, prefix []byte) Shares { return Shares{sm: sm, prefix: prefix} }

// Get() returns the shares an account holds in a pool
func (s Shares) Get(pool []byte, who crypto.AddressI) (lib.Balance, lib.ErrorI) {
	bz, err := s.sm.Get(s.key(pool, who))
	if err != nil || bz == nil {
		return lib.ZeroBalance(), err
	}
	return lib.NewBalanceFromBytes(bz)
}

// Add() credits shares to an account
func (s Shares) Add(pool []byte, who crypto.AddressI, amount lib.Balance) lib.ErrorI {
	held, err := s.Get(pool, who)
	if err != nil {
		return err
	}
	if held, err = held.Add(amount); err != nil {
		return err
	}
	return s.set(pool, who, held)
}

// Sub() debits shares from an account
func (s Shares) Sub(pool []byte, who crypto.AddressI, amount lib.Balance) lib.ErrorI {
	held, err := s.Get(pool, who)
	if err != nil {
		return err
	}
	if held, err = held.Sub(amount); err != nil {
		return err
	}
	return s.set(pool, who, held)
}

func (s Shares) set(pool []byte, who crypto.AddressI, amount lib.Balance) lib.ErrorI {
	if amount.IsZero() {
		return s.sm.Delete(s.key(pool, who))
	}
	return s.sm.Set(s.key(pool, who), amount.Bytes())
}

func (s Shares) key(pool []byte, who crypto.AddressI) []byte {
	return lib.JoinLenPrefix(s.prefix, pool, who.Bytes())
}
