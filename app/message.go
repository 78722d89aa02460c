package app

import (
	"encoding/json"

	"github.com/canopy-network/omniroute/dex/omnipool"
	"github.com/canopy-network/omniroute/fsm"
	"github.com/canopy-network/omniroute/lib"
)

const (
	MessageSellName         = "sell"
	MessageBuyName          = "buy"
	MessageSellAllName      = "sellAll"
	MessageSetRouteName     = "setRoute"
	MessageSetTradableName  = "setTradableState"
	MessageXYKLiquidityName = "xykAddLiquidity"
)

// MessageI is a user operation applied in a block
type MessageI interface {
	Name() string      // the type tag of the message envelope
	Check() lib.ErrorI // stateless validation
}

// Message is the JSON envelope of a MessageI
type Message struct {
	Type string          `json:"type"`
	Msg  json.RawMessage `json:"msg"`
}

// NewMessage() wraps a message in its envelope
func NewMessage(m MessageI) (*Message, lib.ErrorI) {
	bz, err := lib.MarshalJSON(m)
	if err != nil {
		return nil, err
	}
	return &Message{Type: m.Name(), Msg: bz}, nil
}

// Decode() unwraps the envelope into the message its type names
func (m *Message) Decode() (MessageI, lib.ErrorI) {
	var msg MessageI
	switch m.Type {
	case MessageSellName:
		msg = new(MessageSell)
	case MessageBuyName:
		msg = new(MessageBuy)
	case MessageSellAllName:
		msg = new(MessageSellAll)
	case MessageSetRouteName:
		msg = new(MessageSetRoute)
	case MessageSetTradableName:
		msg = new(MessageSetTradableState)
	case MessageXYKLiquidityName:
		msg = new(MessageXYKAddLiquidity)
	default:
		return nil, ErrUnknownMessageType(m.Type)
	}
	if err := lib.UnmarshalJSON(m.Msg, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// MessageSell sells an exact amount in; an empty route uses the stored route or the omnipool
type MessageSell struct {
	Signer       string      `json:"signer"`
	AssetIn      lib.AssetId `json:"assetIn"`
	AssetOut     lib.AssetId `json:"assetOut"`
	AmountIn     lib.Balance `json:"amountIn"`
	MinAmountOut lib.Balance `json:"minAmountOut"`
	Route        lib.Route   `json:"route,omitempty"`
}

// MessageBuy buys an exact amount out
type MessageBuy struct {
	Signer      string      `json:"signer"`
	AssetIn     lib.AssetId `json:"assetIn"`
	AssetOut    lib.AssetId `json:"assetOut"`
	AmountOut   lib.Balance `json:"amountOut"`
	MaxAmountIn lib.Balance `json:"maxAmountIn"`
	Route       lib.Route   `json:"route,omitempty"`
}

// MessageSellAll sells the whole spendable balance of the asset in
type MessageSellAll struct {
	Signer       string      `json:"signer"`
	AssetIn      lib.AssetId `json:"assetIn"`
	AssetOut     lib.AssetId `json:"assetOut"`
	MinAmountOut lib.Balance `json:"minAmountOut"`
	Route        lib.Route   `json:"route,omitempty"`
}

// MessageSetRoute proposes a default route for a pair
type MessageSetRoute struct {
	Signer string        `json:"signer"`
	Pair   lib.AssetPair `json:"pair"`
	Route  lib.Route     `json:"route"`
}

// MessageSetTradableState replaces the omnipool tradability flags of an asset
type MessageSetTradableState struct {
	Signer   string               `json:"signer"`
	Asset    lib.AssetId          `json:"asset"`
	Tradable omnipool.Tradability `json:"tradable"`
}

// MessageXYKAddLiquidity deposits into an xyk pool at the pool ratio
type MessageXYKAddLiquidity struct {
	Signer     string      `json:"signer"`
	AssetA     lib.AssetId `json:"assetA"`
	AssetB     lib.AssetId `json:"assetB"`
	AmountA    lib.Balance `json:"amountA"`
	MaxAmountB lib.Balance `json:"maxAmountB"`
}

func (m *MessageSell) Name() string             { return MessageSellName }
func (m *MessageBuy) Name() string              { return MessageBuyName }
func (m *MessageSellAll) Name() string          { return MessageSellAllName }
func (m *MessageSetRoute) Name() string         { return MessageSetRouteName }
func (m *MessageSetTradableState) Name() string { return MessageSetTradableName }
func (m *MessageXYKAddLiquidity) Name() string  { return MessageXYKLiquidityName }

func (m *MessageSell) Check() lib.ErrorI {
	if m.AmountIn.IsZero() {
		return ErrInvalidMessage("zero amount in")
	}
	return checkTrade(m.Signer, m.AssetIn, m.AssetOut)
}

func (m *MessageBuy) Check() lib.ErrorI {
	if m.AmountOut.IsZero() {
		return ErrInvalidMessage("zero amount out")
	}
	return checkTrade(m.Signer, m.AssetIn, m.AssetOut)
}

func (m *MessageSellAll) Check() lib.ErrorI { return checkTrade(m.Signer, m.AssetIn, m.AssetOut) }

func (m *MessageSetRoute) Check() lib.ErrorI {
	if len(m.Route) == 0 {
		return ErrInvalidMessage("empty route")
	}
	return checkTrade(m.Signer, m.Pair.AssetA, m.Pair.AssetB)
}

func (m *MessageSetTradableState) Check() lib.ErrorI {
	if m.Signer == "" {
		return ErrInvalidMessage("missing signer")
	}
	if m.Tradable&^omnipool.TradableAll != 0 {
		return ErrInvalidMessage("unknown tradable flags")
	}
	return nil
}

func (m *MessageXYKAddLiquidity) Check() lib.ErrorI {
	if m.AmountA.IsZero() {
		return ErrInvalidMessage("zero amount")
	}
	return checkTrade(m.Signer, m.AssetA, m.AssetB)
}

func checkTrade(signer string, a, b lib.AssetId) lib.ErrorI {
	if signer == "" {
		return ErrInvalidMessage("missing signer")
	}
	if a == b {
		return ErrInvalidMessage("same asset on both sides")
	}
	return nil
}

// HandleMessage() routes the MessageI to the correct `handler` based on its `type`
func (a *App) HandleMessage(msg MessageI) lib.ErrorI {
	switch x := msg.(type) {
	case *MessageSell:
		return a.router.Sell(fsm.AddressOf(x.Signer), x.AssetIn, x.AssetOut, x.AmountIn, x.MinAmountOut, x.Route)
	case *MessageBuy:
		return a.router.Buy(fsm.AddressOf(x.Signer), x.AssetIn, x.AssetOut, x.AmountOut, x.MaxAmountIn, x.Route)
	case *MessageSellAll:
		return a.router.SellAll(fsm.AddressOf(x.Signer), x.AssetIn, x.AssetOut, x.MinAmountOut, x.Route)
	case *MessageSetRoute:
		return a.router.SetRoute(fsm.AddressOf(x.Signer), x.Pair, x.Route)
	case *MessageSetTradableState:
		return a.sm.Atomic(func() lib.ErrorI {
			return a.omnipool.SetAssetTradableState(fsm.AddressOf(x.Signer), x.Asset, x.Tradable)
		})
	case *MessageXYKAddLiquidity:
		return a.sm.Atomic(func() lib.ErrorI {
			return a.xyk.AddLiquidity(fsm.AddressOf(x.Signer), x.AssetA, x.AssetB, x.AmountA, x.MaxAmountB)
		})
	default:
		return ErrUnknownMessageType(msg.Name())
	}
}

// WeightOf() returns the declared execution cost of a message; zero for messages outside the router
func (a *App) WeightOf(msg MessageI) lib.Weight {
	switch x := msg.(type) {
	case *MessageSell:
		return a.router.SellWeight(x.Route)
	case *MessageBuy:
		return a.router.BuyWeight(x.Route)
	case *MessageSellAll:
		return a.router.SellAllWeight(x.Route)
	case *MessageSetRoute:
		return a.router.SetRouteWeight(x.Route)
	default:
		return lib.Weight{}
	}
}
