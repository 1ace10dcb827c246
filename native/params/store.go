package params

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"checkinchain/core/events"
)

// ErrUnauthorized indicates a caller other than the owner attempted a write.
var ErrUnauthorized = errors.New("params: unauthorized")

const (
	keyParameters = "checkin.parameters"
	keyContracts  = "checkin.contracts"
)

// StoreState captures the subset of state manager capabilities required by the
// parameter store.
type StoreState interface {
	ParamStoreSet(name string, value []byte) error
	ParamStoreGet(name string) ([]byte, bool, error)
}

// Store provides owner-gated, atomic replace-all access to the engine
// configuration. Values are marshalled as JSON to align with operator tooling.
type Store struct {
	state   StoreState
	owner   [20]byte
	emitter events.Emitter
}

// NewStore constructs a parameter store wrapper using the supplied state
// backend and owner identity.
func NewStore(state StoreState, owner [20]byte) *Store {
	return &Store{state: state, owner: owner, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter. Passing nil resets to a no-op.
func (s *Store) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		s.emitter = events.NoopEmitter{}
		return
	}
	s.emitter = emitter
}

func (s *Store) withState() (StoreState, error) {
	if s == nil || s.state == nil {
		return nil, fmt.Errorf("params: state not configured")
	}
	return s.state, nil
}

func (s *Store) requireOwner(caller [20]byte) error {
	if caller != s.owner {
		return ErrUnauthorized
	}
	return nil
}

// SetParameters validates and persists the full parameter record under a
// single key. Validation happens before any write so a rejected record leaves
// the previous configuration intact.
func (s *Store) SetParameters(caller [20]byte, parameters Parameters) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	if err := parameters.Validate(); err != nil {
		return err
	}
	encoded, err := json.Marshal(parameters)
	if err != nil {
		return fmt.Errorf("params: encode parameters: %w", err)
	}
	if err := state.ParamStoreSet(keyParameters, encoded); err != nil {
		return err
	}
	s.emitter.Emit(events.ParametersSet{Owner: caller, PoolKey: parameters.Payments.PoolKey})
	return nil
}

// Parameters loads the persisted configuration. When unset, a zero-value
// record is returned.
func (s *Store) Parameters() (Parameters, error) {
	state, err := s.withState()
	if err != nil {
		return Parameters{}, err
	}
	raw, ok, err := state.ParamStoreGet(keyParameters)
	if err != nil {
		return Parameters{}, err
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return Parameters{}, nil
	}
	var parameters Parameters
	if err := json.Unmarshal(raw, &parameters); err != nil {
		return Parameters{}, fmt.Errorf("params: decode parameters: %w", err)
	}
	return parameters, nil
}

// SetContracts replaces the collaborator address set as one unit.
func (s *Store) SetContracts(caller [20]byte, contracts ContractsConfig) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	encoded, err := json.Marshal(contracts)
	if err != nil {
		return fmt.Errorf("params: encode contracts: %w", err)
	}
	if err := state.ParamStoreSet(keyContracts, encoded); err != nil {
		return err
	}
	s.emitter.Emit(events.ContractsSet{Owner: caller})
	return nil
}

// Contracts loads the persisted collaborator address set.
func (s *Store) Contracts() (ContractsConfig, error) {
	state, err := s.withState()
	if err != nil {
		return ContractsConfig{}, err
	}
	raw, ok, err := state.ParamStoreGet(keyContracts)
	if err != nil {
		return ContractsConfig{}, err
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return ContractsConfig{}, nil
	}
	var contracts ContractsConfig
	if err := json.Unmarshal(raw, &contracts); err != nil {
		return ContractsConfig{}, fmt.Errorf("params: decode contracts: %w", err)
	}
	return contracts, nil
}
