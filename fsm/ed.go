package fsm

import "github.com/canopy-network/omniroute/lib"

// EDMode controls the insufficient asset deposit hooks of balance changes
// The router relaxes them for intermediate assets of a multi hop route
type EDMode uint8

const (
	EDModeNone       EDMode = iota // charge on first receipt, refund on full removal
	EDModeSkipCharge               // do not charge when an insufficient asset is first received
	EDModeSkipRefund               // do not refund when an insufficient asset balance is removed
	EDModeSkipBoth                 // neither charge nor refund
)

func (m EDMode) skipCharge() bool { return m == EDModeSkipCharge || m == EDModeSkipBoth }
func (m EDMode) skipRefund() bool { return m == EDModeSkipRefund || m == EDModeSkipBoth }

// WithEDMode() runs fn with the deposit hooks relaxed to mode and restores the previous mode afterwards
func (s *StateMachine) WithEDMode(mode EDMode, fn func() lib.ErrorI) lib.ErrorI {
	previous := s.edMode
	s.edMode = mode
	defer func() { s.edMode = previous }()
	return fn()
}

// EDMode() returns the mode currently in effect
func (s *StateMachine) EDMode() EDMode { return s.edMode }

// WithSkipCharge() returns the mode that also skips charging, keeping whether refunds are skipped
func (m EDMode) WithSkipCharge() EDMode {
	if m.skipRefund() {
		return EDModeSkipBoth
	}
	return EDModeSkipCharge
}
