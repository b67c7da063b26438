package runtime

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/AnEntrypoint/sandboxbox/internal/constants"
)

// buildCacheKey derives the idempotency cache key for one batch call.
// The payload hash is canonical: map keys are emitted in sorted order so
// semantically identical batches produce identical keys.
func buildCacheKey(toolName, correlationID string, providedID bool, payload any, strategy string) (string, error) {
	keyStrategy := strings.ToLower(strings.TrimSpace(strategy))
	if keyStrategy == "" {
		keyStrategy = constants.CacheKeyStrategyAuto
	}

	var key string
	switch keyStrategy {
	case constants.CacheKeyStrategyCorrelationID:
		key = correlationID
	case constants.CacheKeyStrategyArgumentsHash:
		hash, err := hashPayload(payload)
		if err != nil {
			return "", err
		}
		key = hash
	case constants.CacheKeyStrategyAuto:
		if providedID && correlationID != "" {
			key = correlationID
		} else {
			hash, err := hashPayload(payload)
			if err != nil {
				return "", err
			}
			key = hash
		}
	default:
		return "", fmt.Errorf("unsupported cache key strategy: %s", strategy)
	}
	if strings.TrimSpace(key) == "" {
		return "", nil
	}
	return fmt.Sprintf("%s:%s", toolName, key), nil
}

func hashPayload(payload any) (string, error) {
	data, err := canonicalJSON(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func canonicalJSON(value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return []byte("null"), nil
	case string:
		return []byte(strconv.Quote(v)), nil
	case json.Number:
		return []byte(v.String()), nil
	case bool, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return json.Marshal(v)
	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, err := canonicalJSON(item)
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case map[string]any:
		return canonicalMapJSON(v)
	default:
		// encoding/json already sorts map keys and emits struct fields
		// in declaration order, which is stable.
		return json.Marshal(v)
	}
}

func canonicalMapJSON(value map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(value))
	for key := range value {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(key))
		buf.WriteByte(':')
		data, err := canonicalJSON(value[key])
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
