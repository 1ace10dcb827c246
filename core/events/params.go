package events

import "checkinchain/core/types"

const (
	TypeParametersSet = "params.parameters_set"
	TypeContractsSet  = "params.contracts_set"
)

// ParametersSet is emitted after a successful atomic replace of the fee
// schedule, payments info and staking reward table.
type ParametersSet struct {
	Owner   [20]byte
	PoolKey [32]byte
}

func (ParametersSet) EventType() string { return TypeParametersSet }

func (e ParametersSet) Event() *types.Event {
	return &types.Event{
		Type: TypeParametersSet,
		Attributes: map[string]string{
			"owner":   formatAddress(e.Owner),
			"poolKey": hexHash(e.PoolKey),
		},
	}
}

// ContractsSet is emitted after the collaborator address set is replaced.
type ContractsSet struct {
	Owner [20]byte
}

func (ContractsSet) EventType() string { return TypeContractsSet }

func (e ContractsSet) Event() *types.Event {
	return &types.Event{
		Type:       TypeContractsSet,
		Attributes: map[string]string{"owner": formatAddress(e.Owner)},
	}
}
