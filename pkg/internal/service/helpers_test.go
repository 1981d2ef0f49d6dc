package service_test

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feyabloom/studio/pkg/configs"
	ctxPkg "github.com/feyabloom/studio/pkg/context"
	"github.com/feyabloom/studio/pkg/internal/model"
	"github.com/feyabloom/studio/pkg/internal/storage"
	"github.com/feyabloom/studio/pkg/internal/storage/db"
	"github.com/feyabloom/studio/pkg/internal/storage/kv"
	"github.com/feyabloom/studio/pkg/internal/storage/mq"
	"github.com/feyabloom/studio/pkg/internal/storage/object"
)

// env 一组内存依赖：对象存储、SQLite、KV 与 gochannel.
type env struct {
	ctx context.Context
	mgr *storage.Manager
	mem *object.Memory
	cfg configs.AppConfig
}

type envOption struct {
	memory []object.MemoryOption
	config func(*configs.AppConfig)
}

func withMemory(opts ...object.MemoryOption) envOption {
	return envOption{memory: opts}
}

func withConfig(fn func(*configs.AppConfig)) envOption {
	return envOption{config: fn}
}

func newEnv(t *testing.T, opts ...envOption) *env {
	t.Helper()

	ctx := context.Background()

	cfg := configs.Default()
	cfg.Storage.Driver = configs.StorageDriverMemory
	cfg.Storage.PublicBaseURL = "https://cdn.test"
	cfg.Metrics.Enabled = false
	cfg.Events.Enabled = true

	var memOpts []object.MemoryOption

	for _, o := range opts {
		memOpts = append(memOpts, o.memory...)
		if o.config != nil {
			o.config(&cfg)
		}
	}

	configs.SetConfig(cfg)

	mem := object.NewMemory(&cfg.Storage, memOpts...)
	for _, b := range cfg.Storage.Buckets {
		require.NoError(t, mem.EnsureBucket(ctx, b))
	}

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dbc, err := db.New(ctx, &configs.DBConfig{
		Type:         configs.SQLite,
		Database:     name,
		DSN:          "file:" + name + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, dbc.Migrate(ctx, model.All()...))

	kvc, err := kv.NewKVClient(ctx, &cfg.KV)
	require.NoError(t, err)

	mqCfg := cfg.MQ
	mqCfg.Type = configs.MQTypeGoChannel

	mqc, err := mq.New(ctx, &mqCfg)
	require.NoError(t, err)

	mgr := &storage.Manager{Objects: mem, DB: dbc, KV: kvc, MQ: mqc, Storage: cfg.Storage}
	t.Cleanup(func() { _ = mgr.Close() })

	return &env{ctx: ctxPkg.WithStorageManager(ctx, mgr), mgr: mgr, mem: mem, cfg: cfg}
}

// put 直接写入对象，不经过服务层.
func (e *env) put(t *testing.T, bucket, key, data string) {
	t.Helper()

	_, err := e.mem.Upload(context.Background(), bucket, key, bytes.NewReader([]byte(data)), int64(len(data)),
		object.UploadOptions{Upsert: true})
	require.NoError(t, err)
}

// keys 返回排序后的对象键.
func (e *env) keys(bucket string) []string {
	keys := e.mem.Keys(bucket)
	sort.Strings(keys)

	return keys
}

func (e *env) has(bucket, key string) bool {
	for _, k := range e.mem.Keys(bucket) {
		if k == key {
			return true
		}
	}

	return false
}
