// Package idhash derives deterministic record identifiers so replayed
// runs produce byte-identical stores.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// TradeID computes a deterministic trade identifier.
// Formula: SHA256(pool_id|day|seq), hex-encoded (64 characters).
func TradeID(poolID string, day, seq int) string {
	data := fmt.Sprintf("%s|%d|%d", poolID, day, seq)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// DayRecordID computes a deterministic day-record identifier.
// Formula: SHA256(pool_id|day), hex-encoded.
func DayRecordID(poolID string, day int) string {
	data := fmt.Sprintf("%s|%d", poolID, day)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// RunID computes a deterministic run identifier from the seed and the
// participating pool IDs, in order.
func RunID(seed int64, poolIDs []string) string {
	data := fmt.Sprintf("%d|%s", seed, strings.Join(poolIDs, ","))
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
