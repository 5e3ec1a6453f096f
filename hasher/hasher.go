// Package hasher implements the record hasher (component C4): the heart
// of the engine, turning a source record and a directive plan into the
// set of (entity id, fingerprint) pairs that the cluster builder
// consumes.
package hasher

import (
	"strings"

	"github.com/hpcc-systems/Medley/directive"
	"github.com/hpcc-systems/Medley/ids"
	"github.com/hpcc-systems/Medley/neighborhood"
)

// Record is anything the hasher can pull named string fields out of. An
// absent or unreadable field must report ok=false; the hasher treats
// that identically to an explicit empty string.
type Record interface {
	Value(field string) (value string, ok bool)
}

// MapRecord is a map-backed Record, convenient for tests and for sources
// that already materialize rows as string maps.
type MapRecord map[string]string

// Value implements Record.
func (m MapRecord) Value(field string) (string, bool) {
	v, ok := m[field]
	return v, ok
}

// Fingerprint is one (entity id, hash) pair emitted by HashRecord.
type Fingerprint struct {
	EntityID ids.ID
	Hash     ids.Hash
}

// HashRecord runs the full C4 pipeline for one record against every
// alternative in plan, and returns the deduped union of fingerprints
// across all alternatives.
func HashRecord(entityID ids.ID, rec Record, plan directive.Plan, maxEditDistance int) []Fingerprint {
	if maxEditDistance < 0 {
		maxEditDistance = 0
	}

	seen := make(map[ids.Hash]struct{})
	var out []Fingerprint
	emit := func(h ids.Hash) {
		if _, ok := seen[h]; ok {
			return
		}
		seen[h] = struct{}{}
		out = append(out, Fingerprint{EntityID: entityID, Hash: h})
	}

	for _, alt := range plan {
		hashAlternative(rec, alt, maxEditDistance, emit)
	}
	return out
}

// variant is one field-assignment produced by expanding a record through
// its directive's string-deletion neighborhoods.
type variant map[string]string

func hashAlternative(rec Record, alt directive.Alternative, maxEditDistance int, emit func(ids.Hash)) {
	fieldNames := alt.FieldNames()

	base := make(variant, len(fieldNames))
	for _, name := range fieldNames {
		v, ok := rec.Value(name)
		if !ok {
			v = ""
		}
		base[name] = strings.TrimSpace(v)
	}

	expandDistance := make(map[string]int, len(fieldNames))
	for _, g := range alt.Groups {
		for _, f := range g.Fields {
			expandDistance[f.Name] = f.Expand
		}
	}

	variants := map[string]variant{variantKey(base, fieldNames): base}
	for _, name := range fieldNames {
		k := expandDistance[name]
		if k <= 0 {
			continue
		}
		next := make(map[string]variant)
		for _, v := range variants {
			for nv := range neighborhood.StringNeighborhood(v[name], k) {
				candidate := cloneVariant(v)
				candidate[name] = nv
				next[variantKey(candidate, fieldNames)] = candidate
			}
		}
		variants = next
	}

	for _, v := range variants {
		hReq, groupOthers := splitGroups(alt, v)
		for h := range neighborhood.GroupNeighborhood(groupOthers, maxEditDistance) {
			emit(ids.H64Hashes(hReq, h))
		}
	}
}

// splitGroups computes H_req (the required-group aggregate, or the
// sentinel when there are no required groups) and Go (the non-empty
// other-group hashes, substituting the sentinel when every other group
// is empty so a record variant always emits at least one fingerprint).
func splitGroups(alt directive.Alternative, v variant) (ids.Hash, []ids.Hash) {
	var required []ids.Hash
	var other []ids.Hash
	for _, g := range alt.Groups {
		h := groupHash(g, v)
		if g.Required {
			required = append(required, h)
		} else {
			other = append(other, h)
		}
	}

	hReq := ids.SentinelHash
	if len(required) > 0 {
		hReq = ids.H64Hashes(required...)
	}

	other_ := other[:0:0]
	for _, h := range other {
		if h == ids.EmptySequenceHash {
			continue
		}
		other_ = append(other_, h)
	}
	if len(other_) == 0 {
		other_ = []ids.Hash{ids.SentinelHash}
	}
	return hReq, other_
}

// groupHash is H64 of "fieldName:value" tokens for every non-empty field
// in g, in directive order. Fields that are empty after trimming are
// omitted from the member list rather than hashed as an empty value.
func groupHash(g directive.Group, v variant) ids.Hash {
	var members []string
	for _, f := range g.Fields {
		val := v[f.Name]
		if val == "" {
			continue
		}
		members = append(members, f.Name+":"+val)
	}
	return ids.H64Strings(members...)
}

func cloneVariant(v variant) variant {
	out := make(variant, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// variantKey produces a canonical, order-stable encoding of a variant so
// equal field assignments dedupe regardless of which expansion path
// produced them.
func variantKey(v variant, fieldNames []string) string {
	var b strings.Builder
	for _, name := range fieldNames {
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(v[name])
		b.WriteByte(0)
	}
	return b.String()
}
