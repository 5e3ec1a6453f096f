// Package index implements the index writer (component C6): the four
// sorted key/value files the query engine joins through. Every row is
// encoded as leadingKey || payload and stored as a store.Writer key with
// an empty value, which gives row-level dedup for free and makes a
// leading-key lookup a simple prefix scan.
package index

import (
	"sync"

	"github.com/hpcc-systems/Medley/errors"
	"github.com/hpcc-systems/Medley/ids"
	"github.com/hpcc-systems/Medley/store"
)

// Paths bundles the four index file locations a build publishes to and
// a query reads from.
type Paths struct {
	Hash2ID  string
	ID2Hash  string
	Match2ID string
	ID2Match string
}

// HashIDRow is one (id, fingerprint) pair, the shape shared by Hash2ID
// and ID2Hash.
type HashIDRow struct {
	ID   ids.ID
	Hash ids.Hash
}

// MatchIDRow is one (matchingId, id) pair, the shape shared by Match2ID
// and ID2Match.
type MatchIDRow struct {
	MatchID ids.MatchID
	ID      ids.ID
}

// BuildAll writes all four indexes from the cluster builder's output.
// hashRows is the deduped (id, fingerprint) relation from the record
// hasher; matchRows is the (matchingId, id) relation from the cluster
// builder. Hash2ID/ID2Hash and Match2ID/ID2Match are each published in
// parallel, since neither pair depends on the other's file.
func BuildAll(paths Paths, hashRows []HashIDRow, matchRows []MatchIDRow) error {
	var wg sync.WaitGroup
	errs := make([]error, 4)

	wg.Add(4)
	go func() { defer wg.Done(); errs[0] = BuildHash2ID(paths.Hash2ID, hashRows) }()
	go func() { defer wg.Done(); errs[1] = BuildID2Hash(paths.ID2Hash, hashRows) }()
	go func() { defer wg.Done(); errs[2] = BuildMatch2ID(paths.Match2ID, matchRows) }()
	go func() { defer wg.Done(); errs[3] = BuildID2Match(paths.ID2Match, matchRows) }()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// BuildHash2ID writes the Hash2ID index: leading key hashValue, payload
// {id, hashValue}.
func BuildHash2ID(path string, rows []HashIDRow) error {
	keys := make([][]byte, len(rows))
	for i, r := range rows {
		key := make([]byte, ids.HashSize+ids.IDSize+ids.HashSize)
		ids.EncodeHash(key[0:ids.HashSize], r.Hash)
		if err := ids.EncodeID(key[ids.HashSize:ids.HashSize+ids.IDSize], r.ID); err != nil {
			return errors.Wrap(err, "index: encoding Hash2ID row")
		}
		ids.EncodeHash(key[ids.HashSize+ids.IDSize:], r.Hash)
		keys[i] = key
	}
	return publish(path, keys)
}

// BuildID2Hash writes the ID2Hash index: leading key id, payload {id,
// hashValue}.
func BuildID2Hash(path string, rows []HashIDRow) error {
	keys := make([][]byte, len(rows))
	for i, r := range rows {
		key := make([]byte, ids.IDSize+ids.IDSize+ids.HashSize)
		if err := ids.EncodeID(key[0:ids.IDSize], r.ID); err != nil {
			return errors.Wrap(err, "index: encoding ID2Hash row")
		}
		if err := ids.EncodeID(key[ids.IDSize:2*ids.IDSize], r.ID); err != nil {
			return errors.Wrap(err, "index: encoding ID2Hash row")
		}
		ids.EncodeHash(key[2*ids.IDSize:], r.Hash)
		keys[i] = key
	}
	return publish(path, keys)
}

// BuildMatch2ID writes the Match2ID index: leading key matchingId,
// payload {matchingId, id}.
func BuildMatch2ID(path string, rows []MatchIDRow) error {
	keys := make([][]byte, len(rows))
	for i, r := range rows {
		key := make([]byte, ids.MatchIDSize+ids.MatchIDSize+ids.IDSize)
		ids.EncodeMatchID(key[0:ids.MatchIDSize], r.MatchID)
		ids.EncodeMatchID(key[ids.MatchIDSize:2*ids.MatchIDSize], r.MatchID)
		if err := ids.EncodeID(key[2*ids.MatchIDSize:], r.ID); err != nil {
			return errors.Wrap(err, "index: encoding Match2ID row")
		}
		keys[i] = key
	}
	return publish(path, keys)
}

// BuildID2Match writes the ID2Match index: leading key id, payload
// {matchingId, id}.
func BuildID2Match(path string, rows []MatchIDRow) error {
	keys := make([][]byte, len(rows))
	for i, r := range rows {
		key := make([]byte, ids.IDSize+ids.MatchIDSize+ids.IDSize)
		if err := ids.EncodeID(key[0:ids.IDSize], r.ID); err != nil {
			return errors.Wrap(err, "index: encoding ID2Match row")
		}
		ids.EncodeMatchID(key[ids.IDSize:ids.IDSize+ids.MatchIDSize], r.MatchID)
		if err := ids.EncodeID(key[ids.IDSize+ids.MatchIDSize:], r.ID); err != nil {
			return errors.Wrap(err, "index: encoding ID2Match row")
		}
		keys[i] = key
	}
	return publish(path, keys)
}

func publish(path string, keys [][]byte) error {
	w, err := store.NewWriter(path)
	if err != nil {
		return err
	}
	if err := w.PutBatch(keys); err != nil {
		_ = w.Abort()
		return err
	}
	return w.Publish()
}

// ReadHash2ID returns every id associated with hash.
func ReadHash2ID(path string, hash ids.Hash) ([]ids.ID, error) {
	r, err := store.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	prefix := make([]byte, ids.HashSize)
	ids.EncodeHash(prefix, hash)

	var out []ids.ID
	err = r.ScanPrefix(prefix, func(key []byte) error {
		id, err := ids.DecodeID(key[ids.HashSize : ids.HashSize+ids.IDSize])
		if err != nil {
			return err
		}
		out = append(out, id)
		return nil
	})
	return out, err
}

// ReadID2Hash returns every hash associated with id.
func ReadID2Hash(path string, id ids.ID) ([]ids.Hash, error) {
	r, err := store.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	prefix := make([]byte, ids.IDSize)
	if err := ids.EncodeID(prefix, id); err != nil {
		return nil, err
	}

	var out []ids.Hash
	err = r.ScanPrefix(prefix, func(key []byte) error {
		h, err := ids.DecodeHash(key[2*ids.IDSize:])
		if err != nil {
			return err
		}
		out = append(out, h)
		return nil
	})
	return out, err
}

// ReadMatch2ID returns every id associated with matchID.
func ReadMatch2ID(path string, matchID ids.MatchID) ([]ids.ID, error) {
	r, err := store.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	prefix := make([]byte, ids.MatchIDSize)
	ids.EncodeMatchID(prefix, matchID)

	var out []ids.ID
	err = r.ScanPrefix(prefix, func(key []byte) error {
		id, err := ids.DecodeID(key[2*ids.MatchIDSize:])
		if err != nil {
			return err
		}
		out = append(out, id)
		return nil
	})
	return out, err
}

// ReadID2Match returns every matchingId associated with id.
func ReadID2Match(path string, id ids.ID) ([]ids.MatchID, error) {
	r, err := store.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	prefix := make([]byte, ids.IDSize)
	if err := ids.EncodeID(prefix, id); err != nil {
		return nil, err
	}

	var out []ids.MatchID
	err = r.ScanPrefix(prefix, func(key []byte) error {
		m, err := ids.DecodeMatchID(key[ids.IDSize : ids.IDSize+ids.MatchIDSize])
		if err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	return out, err
}
