package fsm

import (
	"github.com/canopy-network/omniroute/lib"
)

// Asset is an entry of the asset registry
// Sufficient assets keep an account alive on their own; insufficient assets require a native deposit
type Asset struct {
	Id                 lib.AssetId `json:"id"`
	Name               string      `json:"name"`
	Symbol             string      `json:"symbol"`
	Decimals           uint8       `json:"decimals"`
	ExistentialDeposit lib.Balance `json:"existentialDeposit"`
	Sufficient         bool        `json:"sufficient"`
}

// RegisterAsset() adds an asset to the registry
func (s *StateMachine) RegisterAsset(asset *Asset) lib.ErrorI {
	if asset == nil {
		return ErrInvalidAsset("nil")
	}
	if asset.ExistentialDeposit.IsZero() {
		return ErrInvalidExistentialDeposit()
	}
	if _, err := s.GetAsset(asset.Id); err == nil {
		return ErrAssetAlreadyExists(asset.Id)
	} else if !lib.Is(err, ErrAssetNotFound(asset.Id)) {
		return err
	}
	return s.SetJSON(KeyForAsset(asset.Id), asset)
}

// GetAsset() returns the registry entry of an asset
func (s *StateMachine) GetAsset(id lib.AssetId) (*Asset, lib.ErrorI) {
	asset := new(Asset)
	found, err := s.GetJSON(KeyForAsset(id), asset)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrAssetNotFound(id)
	}
	return asset, nil
}

// GetAssets() returns every registered asset ordered by id
func (s *StateMachine) GetAssets() (assets []*Asset, err lib.ErrorI) {
	err = s.IterateAndExecute(AssetPrefix(), func(_, value []byte) lib.ErrorI {
		asset := new(Asset)
		if e := lib.UnmarshalJSON(value, asset); e != nil {
			return e
		}
		assets = append(assets, asset)
		return nil
	})
	return
}

// AssetExists() returns true if the asset is registered
func (s *StateMachine) AssetExists(id lib.AssetId) bool {
	_, err := s.GetAsset(id)
	return err == nil
}

// IsSufficient() returns true if the asset keeps an account alive on its own
func (s *StateMachine) IsSufficient(id lib.AssetId) (bool, lib.ErrorI) {
	asset, err := s.GetAsset(id)
	if err != nil {
		return false, err
	}
	return asset.Sufficient, nil
}

// TotalIssuance() returns the amount of the asset in existence
func (s *StateMachine) TotalIssuance(id lib.AssetId) (lib.Balance, lib.ErrorI) {
	bz, err := s.Get(KeyForIssuance(id))
	if err != nil || bz == nil {
		return lib.ZeroBalance(), err
	}
	return lib.NewBalanceFromBytes(bz)
}

func (s *StateMachine) setTotalIssuance(id lib.AssetId, amount lib.Balance) lib.ErrorI {
	if amount.IsZero() {
		return s.Delete(KeyForIssuance(id))
	}
	return s.Set(KeyForIssuance(id), amount.Bytes())
}

// NativeAssetId() is the asset insufficient asset deposits are paid in
func (s *StateMachine) NativeAssetId() lib.AssetId { return lib.AssetId(s.Config.NativeAssetId) }
