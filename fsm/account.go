package fsm

import (
	"github.com/canopy-network/omniroute/lib"
	"github.com/canopy-network/omniroute/lib/crypto"
)

/*
	Balances are kept per (account, asset). Accounts additionally track two reference counters:
	- providers: the number of sufficient assets held
	- consumers: the number of insufficient assets held

	An account may not drop its last sufficient asset while it still holds insufficient ones.
	The first time a regular account receives an insufficient asset, a native deposit is moved to the treasury;
	when that balance is fully removed the deposit is refunded minus the extra charge.
	Module accounts (treasury, pools) are exempt from counters and deposits.
*/

const treasuryModule = "treasury"

// AccountInfo holds the reference counters of an account
type AccountInfo struct {
	Providers uint32 `json:"providers"`
	Consumers uint32 `json:"consumers"`
}

// TreasuryAddress() is the module account that receives insufficient asset deposits
func TreasuryAddress() crypto.AddressI { return crypto.ModuleAddress(treasuryModule) }

// GetAccountInfo() returns the reference counters of an account; zero counters if unknown
func (s *StateMachine) GetAccountInfo(address crypto.AddressI) (*AccountInfo, lib.ErrorI) {
	info := new(AccountInfo)
	if _, err := s.GetJSON(KeyForAccount(address), info); err != nil {
		return nil, err
	}
	return info, nil
}

func (s *StateMachine) setAccountInfo(address crypto.AddressI, info *AccountInfo) lib.ErrorI {
	if info.Providers == 0 && info.Consumers == 0 {
		return s.Delete(KeyForAccount(address))
	}
	return s.SetJSON(KeyForAccount(address), info)
}

// RegisterModuleAccount() marks a keyless account as exempt from reference counting and deposits
func (s *StateMachine) RegisterModuleAccount(address crypto.AddressI) lib.ErrorI {
	return s.Set(KeyForModuleAccount(address), []byte{1})
}

// IsModuleAccount() returns true if the address belongs to a runtime module
func (s *StateMachine) IsModuleAccount(address crypto.AddressI) (bool, lib.ErrorI) {
	bz, err := s.Get(KeyForModuleAccount(address))
	return bz != nil, err
}

// GetBalance() returns the free balance of an account in an asset
func (s *StateMachine) GetBalance(address crypto.AddressI, id lib.AssetId) (lib.Balance, lib.ErrorI) {
	bz, err := s.Get(KeyForBalance(address, id))
	if err != nil || bz == nil {
		return lib.ZeroBalance(), err
	}
	return lib.NewBalanceFromBytes(bz)
}

// GetBalances() returns every non zero balance of an account ordered by asset id
func (s *StateMachine) GetBalances(address crypto.AddressI) (balances []lib.AssetAmount, err lib.ErrorI) {
	err = s.IterateAndExecute(BalancesPrefixForAccount(address), func(key, value []byte) lib.ErrorI {
		segments := lib.DecodeLengthPrefixed(key)
		amount, e := lib.NewBalanceFromBytes(value)
		if e != nil {
			return e
		}
		id := lib.AssetId(lib.BytesToUint32(segments[len(segments)-1]))
		balances = append(balances, lib.AssetAmount{Asset: id, Amount: amount})
		return nil
	})
	return
}

// ReducibleBalance() returns how much of an asset the account may spend without breaking its
// reference counters: the existential deposit stays behind when the asset is the account's only
// provider and insufficient assets depend on it
func (s *StateMachine) ReducibleBalance(address crypto.AddressI, id lib.AssetId) (lib.Balance, lib.ErrorI) {
	free, err := s.GetBalance(address, id)
	if err != nil {
		return lib.ZeroBalance(), err
	}
	if module, e := s.IsModuleAccount(address); e != nil || module {
		return free, e
	}
	asset, err := s.GetAsset(id)
	if err != nil {
		return lib.ZeroBalance(), err
	}
	if !asset.Sufficient {
		return free, nil
	}
	info, err := s.GetAccountInfo(address)
	if err != nil {
		return lib.ZeroBalance(), err
	}
	if info.Consumers > 0 && info.Providers <= 1 {
		return free.SaturatingSub(asset.ExistentialDeposit), nil
	}
	return free, nil
}

// DepositReserve() returns the native amount an account must keep so that first receiving an insufficient
// asset can be paid for: the deposit, plus the native existential deposit when native is the account's only
// provider. Zero when no deposit would be charged.
func (s *StateMachine) DepositReserve(address crypto.AddressI, id lib.AssetId) (lib.Balance, lib.ErrorI) {
	zero := lib.ZeroBalance()
	if module, err := s.IsModuleAccount(address); err != nil || module {
		return zero, err
	}
	asset, err := s.GetAsset(id)
	if err != nil {
		return zero, err
	}
	if asset.Sufficient || s.Config.InsufficientAssetED.IsZero() {
		return zero, nil
	}
	if held, e := s.GetBalance(address, id); e != nil || !held.IsZero() {
		return zero, e
	}
	if _, found, e := s.GetDeposit(address, id); e != nil || found {
		return zero, e
	}
	info, err := s.GetAccountInfo(address)
	if err != nil {
		return zero, err
	}
	reserve := s.Config.InsufficientAssetED
	// with consumers already present ReducibleBalance keeps the existential deposit back
	if info.Providers <= 1 && info.Consumers == 0 {
		native, e := s.GetAsset(s.NativeAssetId())
		if e != nil {
			return zero, e
		}
		return reserve.Add(native.ExistentialDeposit)
	}
	return reserve, nil
}

// Transfer() moves an amount of an asset between two accounts
func (s *StateMachine) Transfer(from, to crypto.AddressI, id lib.AssetId, amount lib.Balance) lib.ErrorI {
	if amount.IsZero() {
		return nil
	}
	asset, err := s.GetAsset(id)
	if err != nil {
		return err
	}
	if from.Equals(to) {
		balance, e := s.GetBalance(from, id)
		if e != nil {
			return e
		}
		if balance.Lt(amount) {
			return ErrInsufficientFunds()
		}
		return nil
	}
	if err = s.subBalance(from, asset, amount); err != nil {
		return err
	}
	return s.addBalance(to, asset, amount)
}

// Mint() creates an amount of an asset in an account
func (s *StateMachine) Mint(to crypto.AddressI, id lib.AssetId, amount lib.Balance) lib.ErrorI {
	if amount.IsZero() {
		return nil
	}
	asset, err := s.GetAsset(id)
	if err != nil {
		return err
	}
	issuance, err := s.TotalIssuance(id)
	if err != nil {
		return err
	}
	if issuance, err = issuance.Add(amount); err != nil {
		return err
	}
	if err = s.setTotalIssuance(id, issuance); err != nil {
		return err
	}
	return s.addBalance(to, asset, amount)
}

// Burn() destroys an amount of an asset held by an account
func (s *StateMachine) Burn(from crypto.AddressI, id lib.AssetId, amount lib.Balance) lib.ErrorI {
	if amount.IsZero() {
		return nil
	}
	asset, err := s.GetAsset(id)
	if err != nil {
		return err
	}
	if err = s.subBalance(from, asset, amount); err != nil {
		return err
	}
	issuance, err := s.TotalIssuance(id)
	if err != nil {
		return err
	}
	return s.setTotalIssuance(id, issuance.SaturatingSub(amount))
}

// addBalance() credits an account and runs the receive hook if the account didn't hold the asset
func (s *StateMachine) addBalance(address crypto.AddressI, asset *Asset, amount lib.Balance) lib.ErrorI {
	old, err := s.GetBalance(address, asset.Id)
	if err != nil {
		return err
	}
	updated, err := old.Add(amount)
	if err != nil {
		return err
	}
	if err = s.setBalance(address, asset.Id, updated); err != nil {
		return err
	}
	if old.IsZero() {
		return s.onReceive(address, asset)
	}
	return nil
}

// subBalance() debits an account and runs the removal hook if the balance reaches zero
func (s *StateMachine) subBalance(address crypto.AddressI, asset *Asset, amount lib.Balance) lib.ErrorI {
	old, err := s.GetBalance(address, asset.Id)
	if err != nil {
		return err
	}
	if old.Lt(amount) {
		return ErrInsufficientFunds()
	}
	updated, err := old.Sub(amount)
	if err != nil {
		return err
	}
	if err = s.setBalance(address, asset.Id, updated); err != nil {
		return err
	}
	if updated.IsZero() {
		return s.onRemove(address, asset)
	}
	return nil
}

func (s *StateMachine) setBalance(address crypto.AddressI, id lib.AssetId, amount lib.Balance) lib.ErrorI {
	if amount.IsZero() {
		return s.Delete(KeyForBalance(address, id))
	}
	return s.Set(KeyForBalance(address, id), amount.Bytes())
}

// onReceive() updates the counters when an account starts holding an asset and charges the deposit
// of an insufficient asset
func (s *StateMachine) onReceive(address crypto.AddressI, asset *Asset) lib.ErrorI {
	if module, err := s.IsModuleAccount(address); err != nil || module {
		return err
	}
	info, err := s.GetAccountInfo(address)
	if err != nil {
		return err
	}
	if asset.Sufficient {
		info.Providers++
		return s.setAccountInfo(address, info)
	}
	info.Consumers++
	if err = s.setAccountInfo(address, info); err != nil {
		return err
	}
	if s.edMode.skipCharge() {
		return nil
	}
	// a deposit charged earlier and never refunded still covers the asset
	if _, found, e := s.GetDeposit(address, asset.Id); e != nil || found {
		return e
	}
	return s.chargeDeposit(address, asset.Id)
}

// onRemove() updates the counters when an account no longer holds an asset and refunds the deposit
// of an insufficient asset
func (s *StateMachine) onRemove(address crypto.AddressI, asset *Asset) lib.ErrorI {
	if module, err := s.IsModuleAccount(address); err != nil || module {
		return err
	}
	info, err := s.GetAccountInfo(address)
	if err != nil {
		return err
	}
	if asset.Sufficient {
		if info.Providers == 0 {
			return ErrProviderUnderflow()
		}
		info.Providers--
		if info.Providers == 0 && info.Consumers > 0 {
			return ErrConsumerRemaining()
		}
		return s.setAccountInfo(address, info)
	}
	if info.Consumers == 0 {
		return ErrProviderUnderflow()
	}
	info.Consumers--
	if err = s.setAccountInfo(address, info); err != nil {
		return err
	}
	if s.edMode.skipRefund() {
		return nil
	}
	return s.refundDeposit(address, asset.Id)
}

// INSUFFICIENT ASSET DEPOSITS BELOW

// GetDeposit() returns the native deposit charged to an account for holding an insufficient asset
func (s *StateMachine) GetDeposit(address crypto.AddressI, id lib.AssetId) (amount lib.Balance, found bool, err lib.ErrorI) {
	bz, err := s.Get(KeyForDeposit(address, id))
	if err != nil || bz == nil {
		return lib.ZeroBalance(), false, err
	}
	amount, err = lib.NewBalanceFromBytes(bz)
	return amount, err == nil, err
}

// chargeDeposit() moves the configured deposit from the account to the treasury and records it
func (s *StateMachine) chargeDeposit(address crypto.AddressI, id lib.AssetId) lib.ErrorI {
	amount := s.Config.InsufficientAssetED
	if amount.IsZero() {
		return nil
	}
	native := s.NativeAssetId()
	if !s.AssetExists(native) {
		return ErrNativeAssetUnregistered(native)
	}
	if err := s.Transfer(address, TreasuryAddress(), native, amount); err != nil {
		return err
	}
	if err := s.Set(KeyForDeposit(address, id), amount.Bytes()); err != nil {
		return err
	}
	s.metrics.UpdateEDMetrics(true)
	return s.addEvent(lib.EventTypeInsufficientEDCharged, &lib.EventInsufficientED{
		Asset:         id,
		DepositAsset:  native,
		DepositAmount: amount,
	}, address)
}

// refundDeposit() returns a recorded deposit minus the extra charge, which stays with the treasury
func (s *StateMachine) refundDeposit(address crypto.AddressI, id lib.AssetId) lib.ErrorI {
	deposit, found, err := s.GetDeposit(address, id)
	if err != nil || !found {
		return err
	}
	if err = s.Delete(KeyForDeposit(address, id)); err != nil {
		return err
	}
	extra, err := s.Config.InsufficientAssetED.MulDiv(lib.NewBalance(s.Config.ExtraEDChargePercent), lib.NewBalance(100))
	if err != nil {
		return err
	}
	refund, native := deposit.SaturatingSub(extra), s.NativeAssetId()
	if err = s.Transfer(TreasuryAddress(), address, native, refund); err != nil {
		return err
	}
	s.metrics.UpdateEDMetrics(false)
	return s.addEvent(lib.EventTypeInsufficientEDRefunded, &lib.EventInsufficientED{
		Asset:         id,
		DepositAsset:  native,
		DepositAmount: refund,
	}, address)
}
