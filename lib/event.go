package lib

/* This file defines the events emitted by the ledger, the pools and the router */

type EventType string

const (
	EventTypeSwapped                EventType = "swapped"
	EventTypeExecuted               EventType = "executed"
	EventTypeRouteUpdated           EventType = "route-updated"
	EventTypeInsufficientEDCharged  EventType = "insufficient-ed-charged"
	EventTypeInsufficientEDRefunded EventType = "insufficient-ed-refunded"
	EventTypePoolCreated            EventType = "pool-created"
	EventTypeLiquidityAdded         EventType = "liquidity-added"
	EventTypeLiquidityRemoved       EventType = "liquidity-removed"
	EventTypeTradableStateUpdated   EventType = "tradable-state-updated"
)

// Event is a single ledger event; exactly one of the message fields is set, matching EventType
type Event struct {
	EventType EventType `json:"eventType"`
	Height    uint64    `json:"height"`
	Index     uint64    `json:"index"`   // position of the event within the block
	Address   string    `json:"address"` // the account that caused the event

	Swapped        *EventSwapped        `json:"swapped,omitempty"`
	Executed       *EventExecuted       `json:"executed,omitempty"`
	RouteUpdated   *EventRouteUpdated   `json:"routeUpdated,omitempty"`
	InsufficientED *EventInsufficientED `json:"insufficientED,omitempty"`
	Pool           *EventPool           `json:"pool,omitempty"`
}

type Events []*Event

// OfType() filters the events by type, preserving order
func (e Events) OfType(t EventType) (out Events) {
	for _, ev := range e {
		if ev.EventType == t {
			out = append(out, ev)
		}
	}
	return
}

// ExecutionKind names the caller that opened an execution context
type ExecutionKind string

const (
	ExecutionRouter   ExecutionKind = "router"
	ExecutionOmnipool ExecutionKind = "omnipool"
	ExecutionBatch    ExecutionKind = "batch"
)

// ExecutionType tags a swap with the operation that triggered it, e.g. Router(0)
type ExecutionType struct {
	Kind ExecutionKind `json:"kind"`
	Id   uint32        `json:"id"`
}

// Router() is the execution tag of the router call with event id
func Router(eventId uint32) ExecutionType { return ExecutionType{Kind: ExecutionRouter, Id: eventId} }

// AssetAmount is an amount of a specific asset
type AssetAmount struct {
	Asset  AssetId `json:"asset"`
	Amount Balance `json:"amount"`
}

// FeeAmount is a fee taken during a swap and where it went
type FeeAmount struct {
	Asset       AssetId `json:"asset"`
	Amount      Balance `json:"amount"`
	Destination string  `json:"destination"`
}

// EventSwapped is emitted by a pool for every executed trade
type EventSwapped struct {
	Swapper        string          `json:"swapper"`
	Filler         string          `json:"filler"`     // the pool account that filled the trade
	FillerType     PoolType        `json:"fillerType"` // the pool family that filled the trade
	Operation      TradeDirection  `json:"operation"`
	Inputs         []AssetAmount   `json:"inputs"`
	Outputs        []AssetAmount   `json:"outputs"`
	Fees           []FeeAmount     `json:"fees"`
	OperationStack []ExecutionType `json:"operationStack"`
}

// EventExecuted is emitted once per successful router trade
type EventExecuted struct {
	AssetIn   AssetId `json:"assetIn"`
	AssetOut  AssetId `json:"assetOut"`
	AmountIn  Balance `json:"amountIn"`
	AmountOut Balance `json:"amountOut"`
	EventId   uint32  `json:"eventId"`
}

// EventRouteUpdated is emitted when a stored route is inserted or replaced
type EventRouteUpdated struct {
	AssetIds []AssetId `json:"assetIds"`
	Route    Route     `json:"route"`
}

// EventInsufficientED records the charge or refund of an insufficient asset deposit
type EventInsufficientED struct {
	Asset         AssetId `json:"asset"`         // the insufficient asset
	DepositAsset  AssetId `json:"depositAsset"`  // the asset the deposit is paid in
	DepositAmount Balance `json:"depositAmount"` // charged or refunded amount
}

// EventPool records pool lifecycle and liquidity changes
type EventPool struct {
	Pool   PoolType      `json:"pool"`
	Assets []AssetAmount `json:"assets"`
	Shares Balance       `json:"shares"`
}
