package kv

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// envelopePrefix 标记带过期时间的值；没有前缀的值永不过期.
// NATS KV 与 groupcache 没有逐键 TTL，过期时间随值一起保存.
var envelopePrefix = []byte("studio.ttl/1:")

type envelope struct {
	Value     []byte `json:"value"`
	ExpiresAt int64  `json:"expires_at_ms"`
}

// sealTTL 在 ttl>0 时把值包装为带过期时间的信封，否则原样返回.
func sealTTL(value []byte, ttl time.Duration, now time.Time) ([]byte, error) {
	if ttl <= 0 {
		return value, nil
	}

	b, err := sonic.Marshal(envelope{Value: value, ExpiresAt: now.Add(ttl).UnixMilli()})
	if err != nil {
		return nil, fmt.Errorf("seal kv value: %w", err)
	}

	return append(bytes.Clone(envelopePrefix), b...), nil
}

// openTTL 拆开信封，expired 为 true 时调用方应当把键视为不存在.
func openTTL(b []byte, now time.Time) (value []byte, expired bool, err error) {
	raw, ok := bytes.CutPrefix(b, envelopePrefix)
	if !ok {
		return b, false, nil
	}

	var env envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return nil, false, fmt.Errorf("open kv value: %w", err)
	}

	if env.ExpiresAt > 0 && now.UnixMilli() >= env.ExpiresAt {
		return nil, true, nil
	}

	return env.Value, false, nil
}
