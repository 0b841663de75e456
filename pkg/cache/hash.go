package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds prefix:sha256(json(parts)).
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashJSON returns the hex SHA-256 of the JSON encoding of v.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return Hash(data), nil
}

// Keyer derives cache keys for the stages of a floorplan run.
type Keyer interface {
	// FloorplanKey identifies the result of placing a module list with a
	// configuration.
	FloorplanKey(configHash, modulesHash string) string
	// ArtifactKey identifies a rendering of a floorplan result.
	ArtifactKey(resultHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Hier   bool   `json:"hier,omitempty"`
	Labels bool   `json:"labels,omitempty"`
	NoPins bool   `json:"no_pins,omitempty"`
}

// DefaultKeyer is the standard key scheme. A non-empty prefix namespaces
// every key, so several tools can share one Redis instance.
type DefaultKeyer struct {
	prefix string
}

// NewDefaultKeyer returns the unprefixed key scheme.
func NewDefaultKeyer() *DefaultKeyer { return &DefaultKeyer{} }

// NewScopedKeyer returns the key scheme with every key prefixed.
func NewScopedKeyer(prefix string) *DefaultKeyer { return &DefaultKeyer{prefix: prefix} }

func (k *DefaultKeyer) FloorplanKey(configHash, modulesHash string) string {
	return k.prefix + hashKey("floorplan", configHash, modulesHash)
}

func (k *DefaultKeyer) ArtifactKey(resultHash string, opts ArtifactKeyOpts) string {
	return k.prefix + hashKey("artifact", resultHash, opts)
}

var _ Keyer = (*DefaultKeyer)(nil)
