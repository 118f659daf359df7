package bridge

import (
	"context"
	"errors"
	"fmt"
)

var (
	errNoAccount    = errors.New("token account does not exist")
	errInsufficient = errors.New("insufficient balance")
	errNotAuthority = errors.New("authority does not own source account")
)

// memState backs the in-memory store and ledger fakes. memTx snapshots it
// so rollback semantics match the real transactional stores.
type memState struct {
	params    map[InstanceKey]Params
	chains    map[string]ChainData
	nonces    map[string]uint64
	sends     map[string][]*SendTx
	fulfilled map[string]bool

	accounts map[Address]Address
	balances map[Address]uint64
	height   uint64
}

func newMemState() *memState {
	return &memState{
		params:    make(map[InstanceKey]Params),
		chains:    make(map[string]ChainData),
		nonces:    make(map[string]uint64),
		sends:     make(map[string][]*SendTx),
		fulfilled: make(map[string]bool),
		accounts:  make(map[Address]Address),
		balances:  make(map[Address]uint64),
	}
}

func (st *memState) clone() *memState {
	c := newMemState()
	for k, v := range st.params {
		c.params[k] = v
	}
	for k, v := range st.chains {
		c.chains[k] = v
	}
	for k, v := range st.nonces {
		c.nonces[k] = v
	}
	for k, v := range st.sends {
		c.sends[k] = append([]*SendTx(nil), v...)
	}
	for k, v := range st.fulfilled {
		c.fulfilled[k] = v
	}
	for k, v := range st.accounts {
		c.accounts[k] = v
	}
	for k, v := range st.balances {
		c.balances[k] = v
	}
	c.height = st.height
	return c
}

func chainKey(key InstanceKey, chain Bytes32) string {
	return fmt.Sprintf("%v|%s", key, chain.Hex())
}

func userKey(key InstanceKey, user Address) string {
	return fmt.Sprintf("%v|%s", key, user.Hex())
}

func fulfillKey(key InstanceKey, fromChain Bytes32, remoteNonce uint64) string {
	return fmt.Sprintf("%v|%s|%d", key, fromChain.Hex(), remoteNonce)
}

type memStore struct {
	st *memState
}

func (s *memStore) CreateParams(_ context.Context, key InstanceKey, p Params) error {
	if _, ok := s.st.params[key]; ok {
		return ErrInstanceExists
	}
	s.st.params[key] = p
	return nil
}

func (s *memStore) GetParams(_ context.Context, key InstanceKey) (*Params, error) {
	p, ok := s.st.params[key]
	if !ok {
		return nil, ErrInstanceNotFound
	}
	return &p, nil
}

func (s *memStore) UpdateParams(_ context.Context, key InstanceKey, p Params) error {
	if _, ok := s.st.params[key]; !ok {
		return ErrInstanceNotFound
	}
	s.st.params[key] = p
	return nil
}

func (s *memStore) UpsertChainData(_ context.Context, key InstanceKey, chain Bytes32, cd ChainData) error {
	s.st.chains[chainKey(key, chain)] = cd
	return nil
}

func (s *memStore) GetChainData(_ context.Context, key InstanceKey, chain Bytes32) (*ChainData, error) {
	cd, ok := s.st.chains[chainKey(key, chain)]
	if !ok {
		return nil, ErrChainNotFound
	}
	return &cd, nil
}

func (s *memStore) GetNonce(_ context.Context, key InstanceKey, user Address) (uint64, error) {
	return s.st.nonces[userKey(key, user)], nil
}

func (s *memStore) CreateSendTx(_ context.Context, key InstanceKey, user Address, tx *SendTx) error {
	k := userKey(key, user)
	if s.st.nonces[k] != tx.Nonce {
		return ErrNonceMismatch
	}
	s.st.sends[k] = append(s.st.sends[k], tx)
	s.st.nonces[k] = tx.Nonce + 1
	return nil
}

func (s *memStore) ListSendTxs(_ context.Context, key InstanceKey, user Address) ([]*SendTx, error) {
	return append([]*SendTx(nil), s.st.sends[userKey(key, user)]...), nil
}

func (s *memStore) CreateFulfillment(_ context.Context, key InstanceKey, fromChain Bytes32, remoteNonce uint64) error {
	k := fulfillKey(key, fromChain, remoteNonce)
	if s.st.fulfilled[k] {
		return ErrDuplicateFulfillment
	}
	s.st.fulfilled[k] = true
	return nil
}

type memLedger struct {
	st *memState
}

func (l *memLedger) CreateAccount(_ context.Context, addr, owner Address) error {
	if _, ok := l.st.accounts[addr]; ok {
		return nil
	}
	l.st.accounts[addr] = owner
	l.st.balances[addr] = 0
	return nil
}

func (l *memLedger) Exists(_ context.Context, addr Address) (bool, error) {
	_, ok := l.st.accounts[addr]
	return ok, nil
}

func (l *memLedger) Transfer(_ context.Context, from, to, authority Address, amount uint64) error {
	owner, ok := l.st.accounts[from]
	if !ok {
		return errNoAccount
	}
	if owner != authority {
		return errNotAuthority
	}
	if _, ok := l.st.accounts[to]; !ok {
		return errNoAccount
	}
	if l.st.balances[from] < amount {
		return errInsufficient
	}
	l.st.balances[from] -= amount
	l.st.balances[to] += amount
	l.st.height++
	return nil
}

func (l *memLedger) Balance(_ context.Context, addr Address) (uint64, error) {
	if _, ok := l.st.accounts[addr]; !ok {
		return 0, errNoAccount
	}
	return l.st.balances[addr], nil
}

func (l *memLedger) Height(_ context.Context) (uint64, error) {
	return l.st.height, nil
}

// mint credits an account out of band, standing in for the token issuer.
func (l *memLedger) mint(addr Address, amount uint64) {
	l.st.balances[addr] += amount
}

type memTx struct {
	st *memState
}

func (t *memTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := t.st.clone()
	if err := fn(ctx); err != nil {
		*t.st = *snap
		return err
	}
	return nil
}
