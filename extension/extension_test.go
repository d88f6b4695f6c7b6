package extension

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/digigate/store/memory"
	redisstore "github.com/xraph/digigate/store/redis"
)

func TestMergeWithDefaults(t *testing.T) {
	cfg := mergeWithDefaults(Config{Timezone: "Africa/Abidjan"})

	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, "Africa/Abidjan", cfg.Timezone)
	assert.Equal(t, 5*time.Second, cfg.PluginTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestMergeConfigurations(t *testing.T) {
	yaml := Config{StoreDriver: DriverRedis, Redis: redisstore.Config{Addr: "cache:6379"}}
	prog := Config{
		StoreDriver:    DriverMemory,
		DisableMigrate: true,
		PlansFile:      "plans.yaml",
		Redis:          redisstore.Config{Addr: "ignored:6379"},
	}

	cfg := mergeConfigurations(yaml, prog)

	assert.Equal(t, DriverRedis, cfg.StoreDriver)
	assert.True(t, cfg.DisableMigrate)
	assert.Equal(t, "plans.yaml", cfg.PlansFile)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, "UTC", cfg.Timezone)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		driver  string
		wantErr string
	}{
		{name: "default", driver: ""},
		{name: "memory", driver: DriverMemory},
		{name: "sqlite without grove", driver: DriverSQLite, wantErr: "needs a grove database"},
		{name: "mongo without grove", driver: DriverMongo, wantErr: "needs a grove database"},
		{name: "unknown", driver: "cassandra", wantErr: "unknown store driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(WithStoreDriver(tt.driver))
			s, err := e.openStore(ctx)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, &memory.Store{}, s)
		})
	}
}

func TestOpenRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	e := New(WithRedis(redisstore.Config{Addr: mr.Addr(), KeyPrefix: "dg:"}))
	s, err := e.openStore(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Set(context.Background(), "user_usage:u1", []byte(`{}`)))
	assert.True(t, mr.Exists("dg:user_usage:u1"))
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plans.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
plans:
  - id: solo
    name: Solo
    price: "4.99"
    max_downloads: 40
`), 0o600))

	e := New(WithStore(memory.New()), WithTimezone("Africa/Abidjan"), WithPlansFile(path))
	e.config = mergeWithDefaults(e.config)
	require.NoError(t, e.build(context.Background()))

	eng := e.Engine()
	require.NotNil(t, eng)
	assert.Equal(t, "Africa/Abidjan", eng.Location().String())

	p, err := eng.Plan("solo")
	require.NoError(t, err)
	assert.Equal(t, 40, p.MaxDownloads)

	require.NoError(t, e.Health(context.Background()))
}

func TestBuildRejectsBadTimezone(t *testing.T) {
	e := New(WithStore(memory.New()), WithTimezone("Mars/Olympus"))
	err := e.build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Mars/Olympus")
}
