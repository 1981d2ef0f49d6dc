package kv

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/feyabloom/studio/pkg/configs"
)

// NATSKV 基于 JetStream KV 的实现；过期时间保存在值的信封里.
type NATSKV struct {
	kv   nats.KeyValue
	conn *nats.Conn
	now  func() time.Time
}

// NewNATSKV 连接 NATS 并创建（或打开）KV bucket.
func NewNATSKV(_ context.Context, config any) (KVStore, error) {
	cfg, ok := config.(*configs.NATSKVConfig)
	if !ok {
		return nil, fmt.Errorf("invalid NATS kv config")
	}

	opts := []nats.Option{nats.Name("studio-kv")}
	if cfg.User != "" {
		opts = append(opts, nats.UserInfo(cfg.User, cfg.Password))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	kv, err := js.KeyValue(cfg.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{Bucket: cfg.Bucket, Description: "studio role and response cache"})
	}

	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("open kv bucket %s: %w", cfg.Bucket, err)
	}

	return &NATSKV{kv: kv, conn: nc, now: time.Now}, nil
}

// NATS KV 键只允许 [-/_=.a-zA-Z0-9]，其余字符（包括缓存键里的 ':'）按 =XX 转义.
func escapeKey(key string) string {
	var b strings.Builder

	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == '-' || c == '/' || c == '_' || c == '.' ||
			'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' {
			b.WriteByte(c)
			continue
		}

		fmt.Fprintf(&b, "=%02X", c)
	}

	return b.String()
}

func unescapeKey(key string) string {
	if !strings.Contains(key, "=") {
		return key
	}

	var b strings.Builder

	for i := 0; i < len(key); i++ {
		if key[i] == '=' && i+3 <= len(key) {
			if v, err := strconv.ParseUint(key[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 2

				continue
			}
		}

		b.WriteByte(key[i])
	}

	return b.String()
}

// load 读取并拆开信封，过期的键顺手删除.
func (n *NATSKV) load(key string) ([]byte, error) {
	entry, err := n.kv.Get(escapeKey(key))
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, notFound(key)
	}

	if err != nil {
		return nil, fmt.Errorf("nats kv get %s: %w", key, err)
	}

	val, expired, err := openTTL(entry.Value(), n.now())
	if err != nil {
		return nil, err
	}

	if expired {
		_ = n.kv.Delete(escapeKey(key))
		return nil, notFound(key)
	}

	return val, nil
}

// Get 获取键的值.
func (n *NATSKV) Get(_ context.Context, key string) ([]byte, error) {
	return n.load(key)
}

// Set 设置键的值.
func (n *NATSKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	sealed, err := sealTTL(value, ttl, n.now())
	if err != nil {
		return err
	}

	if _, err := n.kv.Put(escapeKey(key), sealed); err != nil {
		return fmt.Errorf("nats kv put %s: %w", key, err)
	}

	return nil
}

// Delete 删除键，键不存在时不报错.
func (n *NATSKV) Delete(_ context.Context, key string) error {
	if err := n.kv.Delete(escapeKey(key)); err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("nats kv delete %s: %w", key, err)
	}

	return nil
}

// Exists 检查键是否存在且未过期.
func (n *NATSKV) Exists(_ context.Context, key string) (bool, error) {
	_, err := n.load(key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}

	return err == nil, err
}

// Keys 列举未过期的键.
func (n *NATSKV) Keys(_ context.Context, pattern string) ([]string, error) {
	raw, err := n.kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return []string{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("nats kv keys: %w", err)
	}

	out := make([]string, 0, len(raw))

	for _, k := range raw {
		key := unescapeKey(k)
		if !matchPattern(key, pattern) {
			continue
		}

		if _, err := n.load(key); err != nil {
			continue
		}

		out = append(out, key)
	}

	return out, nil
}

// Close 关闭 NATS 连接.
func (n *NATSKV) Close() error {
	n.conn.Close()
	return nil
}

func init() {
	RegisterKVFactory(KVTypeNATS, NewNATSKV)
}
