package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hash returns the hex SHA-256 digest of data. Graph hashes and file cache
// names both use it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON hashes the JSON encoding of v. Struct fields encode in
// declaration order and map keys sorted, so equal values hash equally.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return Hash(data), nil
}

// stageKey joins a pipeline stage name with the digest of the stage input
// and its options, e.g. "report:9f2c...".
func stageKey(stage, inputHash string, opts any) string {
	data, _ := json.Marshal(struct {
		Input string `json:"input"`
		Opts  any    `json:"opts"`
	}{inputHash, opts})
	return stage + ":" + Hash(data)
}
