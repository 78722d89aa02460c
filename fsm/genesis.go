package fsm

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/canopy-network/omniroute/lib"
	"github.com/canopy-network/omniroute/lib/crypto"
)

// GenesisState is the initial ledger: the asset registry, funded accounts and module accounts
type GenesisState struct {
	Assets         []*Asset          `json:"assets"`
	Accounts       []*GenesisAccount `json:"accounts"`
	ModuleAccounts []string          `json:"moduleAccounts"` // names of additional module accounts
}

// GenesisAccount is an account funded at genesis
type GenesisAccount struct {
	Address  string            `json:"address"` // hex address, or a name that derives one
	Balances []lib.AssetAmount `json:"balances"`
}

// AddressOf() resolves the account address
func (g *GenesisAccount) AddressOf() crypto.AddressI { return AddressOf(g.Address) }

// AddressOf() resolves an address string: hex if it decodes to 20 bytes, otherwise derived from the name
func AddressOf(s string) crypto.AddressI {
	if address, err := crypto.NewAddressFromString(s); err == nil {
		return address
	}
	return crypto.AddressFromName(s)
}

// ReadGenesisFromFile() reads a GenesisState object from the data directory
func ReadGenesisFromFile(dataDirPath string) (genesis *GenesisState, e lib.ErrorI) {
	genesis = new(GenesisState)
	bz, err := os.ReadFile(filepath.Join(dataDirPath, lib.GenesisFilePath))
	if err != nil {
		return nil, ErrReadGenesisFile(err)
	}
	if err = json.Unmarshal(bz, genesis); err != nil {
		return nil, lib.ErrJSONUnmarshal(err)
	}
	return
}

// NewStateFromGenesis() creates the beginning state; genesis balances are not charged deposits
func (s *StateMachine) NewStateFromGenesis(genesis *GenesisState) lib.ErrorI {
	if err := s.ValidateGenesisState(genesis); err != nil {
		return err
	}
	if err := s.RegisterModuleAccount(TreasuryAddress()); err != nil {
		return err
	}
	for _, name := range genesis.ModuleAccounts {
		if err := s.RegisterModuleAccount(crypto.ModuleAddress(name)); err != nil {
			return err
		}
	}
	for _, asset := range genesis.Assets {
		if err := s.RegisterAsset(asset); err != nil {
			return err
		}
	}
	return s.WithEDMode(EDModeSkipBoth, func() lib.ErrorI {
		for _, account := range genesis.Accounts {
			address := account.AddressOf()
			for _, b := range account.Balances {
				if err := s.Mint(address, b.Asset, b.Amount); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// ValidateGenesisState() validates a GenesisState object
func (s *StateMachine) ValidateGenesisState(genesis *GenesisState) lib.ErrorI {
	if genesis == nil {
		return ErrInvalidGenesis("empty genesis")
	}
	seen := make(map[lib.AssetId]*Asset, len(genesis.Assets))
	for _, asset := range genesis.Assets {
		if asset == nil {
			return ErrInvalidGenesis("nil asset")
		}
		if _, found := seen[asset.Id]; found {
			return ErrInvalidGenesis("duplicate asset")
		}
		seen[asset.Id] = asset
	}
	if native, found := seen[s.NativeAssetId()]; !found || !native.Sufficient {
		return ErrNativeAssetUnregistered(s.NativeAssetId())
	}
	for _, account := range genesis.Accounts {
		if account.Address == "" {
			return ErrInvalidGenesis("empty account address")
		}
		for _, b := range account.Balances {
			if _, found := seen[b.Asset]; !found {
				return ErrAssetNotFound(b.Asset)
			}
		}
	}
	return nil
}
