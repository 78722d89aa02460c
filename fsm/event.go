package fsm

import (
	"github.com/canopy-network/omniroute/lib"
	"github.com/canopy-network/omniroute/lib/crypto"
)

// Events are written to the store under (height, index), so a rolled back scope drops its events too

// EventSwapped() records a pool trade tagged with the open execution contexts
func (s *StateMachine) EventSwapped(swapper, filler crypto.AddressI, fillerType lib.PoolType, operation lib.TradeDirection,
	inputs, outputs []lib.AssetAmount, fees []lib.FeeAmount) lib.ErrorI {
	return s.addEvent(lib.EventTypeSwapped, &lib.EventSwapped{
		Swapper:        swapper.String(),
		Filler:         filler.String(),
		FillerType:     fillerType,
		Operation:      operation,
		Inputs:         inputs,
		Outputs:        outputs,
		Fees:           fees,
		OperationStack: s.ExecutionStack(),
	}, swapper)
}

// EventExecuted() records a completed router trade
func (s *StateMachine) EventExecuted(who crypto.AddressI, assetIn, assetOut lib.AssetId, amountIn, amountOut lib.Balance, eventId uint32) lib.ErrorI {
	return s.addEvent(lib.EventTypeExecuted, &lib.EventExecuted{
		AssetIn:   assetIn,
		AssetOut:  assetOut,
		AmountIn:  amountIn,
		AmountOut: amountOut,
		EventId:   eventId,
	}, who)
}

// EventRouteUpdated() records a stored route insert or replacement
func (s *StateMachine) EventRouteUpdated(who crypto.AddressI, pair lib.AssetPair, route lib.Route) lib.ErrorI {
	return s.addEvent(lib.EventTypeRouteUpdated, &lib.EventRouteUpdated{
		AssetIds: []lib.AssetId{pair.AssetA, pair.AssetB},
		Route:    route,
	}, who)
}

// EventPool() records a pool lifecycle or liquidity change
func (s *StateMachine) EventPool(eventType lib.EventType, who crypto.AddressI, pool lib.PoolType, assets []lib.AssetAmount, shares lib.Balance) lib.ErrorI {
	return s.addEvent(eventType, &lib.EventPool{Pool: pool, Assets: assets, Shares: shares}, who)
}

// GetEvents() returns the events emitted at a height in emission order
func (s *StateMachine) GetEvents(height uint64) (events lib.Events, err lib.ErrorI) {
	err = s.IterateAndExecute(EventPrefixForHeight(height), func(_, value []byte) lib.ErrorI {
		e := new(lib.Event)
		if er := lib.UnmarshalJSON(value, e); er != nil {
			return er
		}
		events = append(events, e)
		return nil
	})
	return
}

// addEvent() is a helper function that creates an event with common fields set and appends it to the log of the height
func (s *StateMachine) addEvent(eventType lib.EventType, msg interface{}, address crypto.AddressI) lib.ErrorI {
	countKey := KeyForEventCount(s.Height())
	bz, err := s.Get(countKey)
	if err != nil {
		return err
	}
	e := &lib.Event{
		EventType: eventType,
		Height:    s.Height(),
		Index:     lib.BytesToUint64(bz),
		Address:   address.String(),
	}
	// set the message field based on event type
	switch eventType {
	case lib.EventTypeSwapped:
		e.Swapped = msg.(*lib.EventSwapped)
	case lib.EventTypeExecuted:
		e.Executed = msg.(*lib.EventExecuted)
	case lib.EventTypeRouteUpdated:
		e.RouteUpdated = msg.(*lib.EventRouteUpdated)
	case lib.EventTypeInsufficientEDCharged, lib.EventTypeInsufficientEDRefunded:
		e.InsufficientED = msg.(*lib.EventInsufficientED)
	case lib.EventTypePoolCreated, lib.EventTypeLiquidityAdded, lib.EventTypeLiquidityRemoved, lib.EventTypeTradableStateUpdated:
		e.Pool = msg.(*lib.EventPool)
	}
	if err = s.SetJSON(KeyForEvent(e.Height, e.Index), e); err != nil {
		return err
	}
	return s.Set(countKey, lib.Uint64ToBytes(e.Index+1))
}
