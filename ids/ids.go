// Package ids defines Medley's fixed-width identifier and fingerprint types
// and the stable 64-bit hash they are built from (component C8 of the
// design: "DSL types & fixed-width codecs").
//
// Two runs of this package over identical bytes always produce identical
// Hash values — that stability is the only thing letting an index built by
// one run be queried against later, and letting two separate build
// processes agree on fingerprints for the same input.
package ids

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/hpcc-systems/Medley/errors"
)

// ID is a caller-supplied entity identifier. Only the low 48 bits are
// significant; Encode/DecodeID reject anything outside that range.
type ID uint64

// MaxID is the largest value representable in 48 bits.
const MaxID ID = (1 << 48) - 1

// Hash is a 64-bit fingerprint produced by H64 (below).
type Hash uint64

// MatchID is a densely-numbered canonical cluster identifier assigned by
// the cluster builder. Valid matching ids start at 1; 0 is never assigned.
type MatchID uint32

// SentinelHash is the fixed "empty element" value used throughout the
// group-neighborhood and required-hash computations (§6, normative).
const SentinelHash Hash = math.MaxUint64

// H64Seed is the fixed seed every H64 fold starts from. Any implementation
// computing fingerprints for the same dataset must use this exact value,
// or its indexes will not agree with ones built elsewhere.
const H64Seed uint64 = 0x9E3779B97F4A7C15 // golden-ratio constant, fixed once

// EmptySequenceHash is H64 of a zero-length sequence: the fold never
// executes, so it is simply the seed. Group hashing uses this to detect
// "this field group had no non-empty members".
const EmptySequenceHash Hash = Hash(H64Seed)

// combine64 mixes one length-prefixed byte string into a running H64
// state. This is the H64_MIX primitive from §6: a streaming 64-bit hash
// (xxhash, which carries the same mixing strength as FNV-1a-64/Murmur64)
// reseeded with the accumulator on every step.
func combine64(state uint64, b []byte) uint64 {
	h := xxhash.NewWithSeed(state)
	var lenPrefix [8]byte
	binary.LittleEndian.PutUint64(lenPrefix[:], uint64(len(b)))
	_, _ = h.Write(lenPrefix[:])
	_, _ = h.Write(b)
	return h.Sum64()
}

// H64Bytes folds a sequence of byte strings into one Hash via the
// normative left-fold: reduce(acc=SEED, x -> combine64(acc, bytes(x))).
func H64Bytes(items ...[]byte) Hash {
	acc := H64Seed
	for _, item := range items {
		acc = combine64(acc, item)
	}
	return Hash(acc)
}

// H64Strings is H64Bytes for string inputs, the common case when hashing
// "fieldName:value" tagged tokens.
func H64Strings(items ...string) Hash {
	acc := H64Seed
	for _, item := range items {
		acc = combine64(acc, []byte(item))
	}
	return Hash(acc)
}

// H64Hashes folds a sequence of already-computed Hash values, each
// represented as its little-endian byte encoding. This is how group
// hashes are aggregated into a required-hash or a group-neighborhood
// aggregate.
func H64Hashes(items ...Hash) Hash {
	acc := H64Seed
	for _, item := range items {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(item))
		acc = combine64(acc, buf[:])
	}
	return Hash(acc)
}

// EncodeID writes id's 6-byte little-endian form to dst, which must be at
// least 6 bytes.
func EncodeID(dst []byte, id ID) error {
	if id > MaxID {
		return errors.Newf("ids: id %d exceeds 48-bit range", uint64(id))
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(id))
	copy(dst[:6], buf[:6])
	return nil
}

// DecodeID reads a 6-byte little-endian ID from src.
func DecodeID(src []byte) (ID, error) {
	if len(src) < 6 {
		return 0, errors.Newf("ids: id buffer too short (%d bytes)", len(src))
	}
	var buf [8]byte
	copy(buf[:6], src[:6])
	return ID(binary.LittleEndian.Uint64(buf[:])), nil
}

// EncodeHash writes h's 8-byte little-endian form to dst.
func EncodeHash(dst []byte, h Hash) {
	binary.LittleEndian.PutUint64(dst[:8], uint64(h))
}

// DecodeHash reads an 8-byte little-endian Hash from src.
func DecodeHash(src []byte) (Hash, error) {
	if len(src) < 8 {
		return 0, errors.Newf("ids: hash buffer too short (%d bytes)", len(src))
	}
	return Hash(binary.LittleEndian.Uint64(src[:8])), nil
}

// EncodeMatchID writes m's 4-byte little-endian form to dst.
func EncodeMatchID(dst []byte, m MatchID) {
	binary.LittleEndian.PutUint32(dst[:4], uint32(m))
}

// DecodeMatchID reads a 4-byte little-endian MatchID from src.
func DecodeMatchID(src []byte) (MatchID, error) {
	if len(src) < 4 {
		return 0, errors.Newf("ids: matchid buffer too short (%d bytes)", len(src))
	}
	return MatchID(binary.LittleEndian.Uint32(src[:4])), nil
}

const (
	// IDSize is the encoded width of an ID (48 bits).
	IDSize = 6
	// HashSize is the encoded width of a Hash (64 bits).
	HashSize = 8
	// MatchIDSize is the encoded width of a MatchID (32 bits).
	MatchIDSize = 4
)
