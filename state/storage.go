// Copyright (c) 2026 The Lode developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/lodeworks/lode/lode"
)

// StorageEncoder implement it to customize encoding process for storage data.
type StorageEncoder interface {
	Encode() ([]byte, error)
}

// StorageDecoder implement it to customize decoding process for storage data.
type StorageDecoder interface {
	Decode([]byte) error
}

// GetStructuredStorage get and decode storage value for the given address and key.
// If val does not implement StorageDecoder, RLP decoding is used, leaving val
// untouched for an unset slot.
func (s *State) GetStructuredStorage(addr lode.Address, key lode.Bytes32, val interface{}) error {
	return s.DecodeStorage(addr, key, func(data []byte) error {
		if dec, ok := val.(StorageDecoder); ok {
			return dec.Decode(data)
		}
		if len(data) == 0 {
			return nil
		}
		return rlp.DecodeBytes(data, val)
	})
}

// SetStructuredStorage encode and set storage value for the given address and key.
// If val does not implement StorageEncoder, RLP encoding is used.
func (s *State) SetStructuredStorage(addr lode.Address, key lode.Bytes32, val interface{}) error {
	return s.EncodeStorage(addr, key, func() ([]byte, error) {
		if enc, ok := val.(StorageEncoder); ok {
			return enc.Encode()
		}
		return rlp.EncodeToBytes(val)
	})
}

type stgBytes32 lode.Bytes32

var (
	_ StorageEncoder = (*stgBytes32)(nil)
	_ StorageDecoder = (*stgBytes32)(nil)
)

// Encode implements StorageEncoder.
func (b *stgBytes32) Encode() ([]byte, error) {
	if (*lode.Bytes32)(b).IsZero() {
		return nil, nil
	}
	trimmed, err := rlp.EncodeToBytes(bytes.TrimLeft(b[:], "\x00"))
	if err != nil {
		return nil, err
	}
	return trimmed, nil
}

// Decode implements StorageDecoder.
func (b *stgBytes32) Decode(data []byte) error {
	if len(data) == 0 {
		*b = stgBytes32{}
		return nil
	}
	_, content, _, err := rlp.Split(data)
	if err != nil {
		return err
	}
	*b = stgBytes32(lode.BytesToBytes32(content))
	return nil
}
