package app

import (
	"encoding/json"
	"os"
	"time"

	"github.com/canopy-network/omniroute/lib"
)

// Block is an ordered list of messages applied at one height
type Block struct {
	Messages []*Message `json:"messages"`
}

// BlockResult is the outcome of applying a block
type BlockResult struct {
	Height  uint64           `json:"height"` // the height the events were recorded at
	Results []*MessageResult `json:"results"`
	Events  lib.Events       `json:"events"`
}

// MessageResult is the outcome of a single message; a failed message leaves no trace in the state
type MessageResult struct {
	Index  int        `json:"index"`
	Type   string     `json:"type"`
	Weight lib.Weight `json:"weight"`
	Error  string     `json:"error,omitempty"`
}

// Failed() returns the number of messages that were rolled back
func (b *BlockResult) Failed() (n int) {
	for _, r := range b.Results {
		if r.Error != "" {
			n++
		}
	}
	return
}

// ApplyBlock() runs a block against the ledger and commits it:
//   - begin block restarts the router event id
//   - every message runs in its own atomic scope; a failure is recorded and the block continues
//   - the oracle folds the prices observed during the block
//   - the height advances on commit
func (a *App) ApplyBlock(b *Block) (*BlockResult, lib.ErrorI) {
	a.Lock()
	defer a.Unlock()
	if !a.Initialized() {
		return nil, ErrInvalidBlock("genesis not committed")
	}
	if b == nil {
		return nil, ErrInvalidBlock("nil block")
	}
	start := time.Now()
	if err := a.sm.BeginBlock(); err != nil {
		return nil, err
	}
	result := &BlockResult{Height: a.sm.Height()}
	for i, m := range b.Messages {
		r := &MessageResult{Index: i}
		if err := a.applyMessage(m, r); err != nil {
			r.Error = err.Error()
			a.log.Warnf("Message %d (%s) at height %d failed: %s", i, r.Type, result.Height, err.Error())
		}
		result.Results = append(result.Results, r)
	}
	if err := a.oracle.EndBlock(); err != nil {
		a.sm.Discard()
		return nil, err
	}
	events, err := a.sm.GetEvents(result.Height)
	if err != nil {
		a.sm.Discard()
		return nil, err
	}
	result.Events = events
	if err = a.sm.Commit(); err != nil {
		return nil, err
	}
	a.metrics.UpdateBlockMetrics(a.sm.Height(), time.Since(start))
	a.log.Infof("Applied block %d with %d messages (%d failed) and %d events",
		result.Height, len(b.Messages), result.Failed(), len(result.Events))
	return result, nil
}

func (a *App) applyMessage(m *Message, r *MessageResult) lib.ErrorI {
	if m == nil {
		return ErrInvalidMessage("nil message")
	}
	r.Type = m.Type
	msg, err := m.Decode()
	if err != nil {
		return err
	}
	r.Weight = a.WeightOf(msg)
	if err = msg.Check(); err != nil {
		return err
	}
	return a.HandleMessage(msg)
}

// ReadBlocksFromFile() reads a JSON array of blocks
func ReadBlocksFromFile(path string) ([]*Block, lib.ErrorI) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return nil, lib.ErrReadFile(err)
	}
	var blocks []*Block
	if err = json.Unmarshal(bz, &blocks); err != nil {
		return nil, lib.ErrJSONUnmarshal(err)
	}
	return blocks, nil
}
