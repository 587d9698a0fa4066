package htlc

import (
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/iov-one/tradelock"
)

// TradeIDSize is the size of a derived trade id in bytes.
const TradeIDSize = 32

// TradeID derives the content address of a trade from its full parameter
// tuple. Two creation requests with identical tuples always collide on the
// same id; requests differing in any field, the hashlock included, never
// do. Pure function, safe to call before the trade exists.
//
// The packed encoding is fixed width throughout: 20-byte addresses, 8-byte
// big-endian quantity and timelock, 32-byte hashlock. Keccak-256 keeps the
// ids compatible with the content-address convention of the ledgers this
// mirrors.
func TradeID(sender, receiver tradelock.Address, asset AssetRef, hashlock []byte, timelock tradelock.UnixTime) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(sender)
	h.Write(receiver)
	h.Write(asset.Token)

	var qty [8]byte
	binary.BigEndian.PutUint64(qty[:], uint64(asset.Qty))
	h.Write(qty[:])

	h.Write(hashlock)

	var lock [8]byte
	binary.BigEndian.PutUint64(lock[:], uint64(timelock))
	h.Write(lock[:])

	return h.Sum(nil)
}

// HashBytes computes the hashlock commitment of a preimage.
func HashBytes(preimage []byte) []byte {
	hash := sha256.Sum256(preimage)
	return hash[:]
}
