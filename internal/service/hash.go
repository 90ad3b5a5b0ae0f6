package service

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// DeriveAlbumID maps a human-readable album name to a stable identifier:
// the first 8 bytes of the name's BLAKE2b-256 digest, hex encoded. The same
// name always yields the same id, which makes album creation by name
// idempotent: two albums created under one name collapse into one record.
func DeriveAlbumID(name string) string {
	sum := blake2b.Sum256([]byte(name))
	return hex.EncodeToString(sum[:8])
}
