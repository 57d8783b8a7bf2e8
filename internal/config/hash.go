package config

import (
	"encoding/hex"
	"encoding/json"

	"github.com/zeebo/blake3"
)

// Hash returns a content hash of cfg, or "" when cfg is nil.
func Hash(cfg *Config) string {
	if cfg == nil {
		return ""
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}
