package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// keySchemaVersion is bumped whenever the signature payload layout changes,
// invalidating all previously cached results.
const keySchemaVersion = 1

// Signature identifies every configuration field that can change extraction
// output. Two runs with identical document bytes and identical signatures are
// guaranteed to produce the same cache key; any relevant config change yields
// a different key and therefore a guaranteed miss.
type Signature struct {
	Model         string            `json:"model"`
	Temperature   float64           `json:"temperature"`
	MaxTokens     int               `json:"max_tokens"`
	ScaleFactor   float64           `json:"scale_factor"`
	TolerancePx   float64           `json:"tolerance_px"`
	ColumnHeaders map[string]string `json:"column_headers"`
	Mock          bool              `json:"mock"`
}

// HashContent returns the hex sha256 of the document bytes.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// HashReader returns the hex sha256 of everything read from r.
func HashReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to hash content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Key builds a cache key from a content hash and a config signature.
// The signature is serialized with sorted keys so the result is stable across
// processes.
func Key(contentHash string, sig Signature) string {
	return contentHash + ":" + sig.hash()
}

func (s Signature) hash() string {
	payload := map[string]any{
		"schema_version": keySchemaVersion,
		"model":          s.Model,
		"temperature":    s.Temperature,
		"max_tokens":     s.MaxTokens,
		"scale_factor":   s.ScaleFactor,
		"tolerance_px":   s.TolerancePx,
		"column_headers": sortedHeaders(s.ColumnHeaders),
		"mock":           s.Mock,
	}
	// encoding/json sorts map keys, giving a canonical form.
	raw, err := json.Marshal(payload)
	if err != nil {
		// Only reachable with unmarshalable values, which Signature cannot hold.
		raw = []byte(fmt.Sprintf("%+v", payload))
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func sortedHeaders(headers map[string]string) [][2]string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, headers[k]})
	}
	return out
}
