// Package beacon maps session tokens to iBeacon payloads and back.
//
// The payload is a single deployment-wide namespace UUID plus two 16-bit
// fields: major carries the organization code, minor carries a 16-bit hash of
// the session token. The token itself is never broadcast; the receive side
// re-derives candidate matches by re-hashing known active tokens.
package beacon

import "github.com/google/uuid"

// Payload is one iBeacon advertisement frame as this system uses it.
// It is derived fresh from a session on every encode and never persisted.
type Payload struct {
	Namespace uuid.UUID
	Major     uint16 // organization code
	Minor     uint16 // Hash16 of the session token
}

// Hash16 returns the 16-bit rolling hash of token.
//
// The arithmetic is fixed by the wire format and must stay bit-identical on
// every encoder and decoder: h = ((h<<5) - h + byte) & 0xFFFF over the
// token's bytes in order. Any token produces a value in range by
// construction; there is no error path.
func Hash16(token string) uint16 {
	var h uint16
	for i := 0; i < len(token); i++ {
		h = (h<<5 - h) + uint16(token[i])
	}
	return h
}

// Codec encodes sessions into beacon payloads for one deployment namespace.
type Codec struct {
	namespace uuid.UUID
}

// NewCodec returns a Codec for the given deployment namespace UUID.
// Organization disambiguation happens entirely via the major field; the
// namespace is never per-organization, because scanning multiple UUIDs
// multiplies receive-side cost.
func NewCodec(namespace uuid.UUID) *Codec {
	return &Codec{namespace: namespace}
}

// Namespace returns the deployment namespace UUID this codec encodes with.
func (c *Codec) Namespace() uuid.UUID {
	return c.namespace
}

// Encode returns the beacon payload for the given organization code and token.
func (c *Codec) Encode(orgCode uint16, token string) Payload {
	return Payload{
		Namespace: c.namespace,
		Major:     orgCode,
		Minor:     Hash16(token),
	}
}

// IsCandidate reports whether a sighted advertisement could belong to the
// given organization. It is a cheap pre-filter: callers must not touch the
// store when it returns false.
func (c *Codec) IsCandidate(namespace uuid.UUID, major uint16, orgCode uint16) bool {
	return namespace == c.namespace && major == orgCode
}
