package utils

import (
	"context"
	"fmt"

	"github.com/recommend-sdk/currentstate/internal/logging"
	"github.com/sethvargo/go-envconfig"
)

//Backends supported by StoreConfig.
const (
	BackendMemory     = "memory"
	BackendSQLite     = "sqlite"
	BackendRedis      = "redis"
	BackendFirestore  = "firestore"
	BackendRealtimeDB = "realtimedb"
)

//StoreConfig Configuration of the state storage.
type StoreConfig struct {
	Backend             string `env:"RECOMMEND_STATE_BACKEND,default=sqlite" validate:"oneof=memory sqlite redis firestore realtimedb"`
	SQLitePath          string `env:"RECOMMEND_STATE_SQLITE_PATH,default=recommend_state.db"`
	RedisAddr           string `env:"RECOMMEND_STATE_REDIS_ADDR"`
	RedisDB             int    `env:"RECOMMEND_STATE_REDIS_DB,default=0" validate:"min=0"`
	RedisKeyPrefix      string `env:"RECOMMEND_STATE_REDIS_KEY_PREFIX,default=recommend:"`
	FirestoreProjectID  string `env:"RECOMMEND_STATE_FIRESTORE_PROJECT"`
	FirestoreCollection string `env:"RECOMMEND_STATE_FIRESTORE_COLLECTION,default=recommend_state"`
	RealtimeDBURL       string `env:"RECOMMEND_STATE_REALTIMEDB_URL"`
	RealtimeDBRoot      string `env:"RECOMMEND_STATE_REALTIMEDB_ROOT,default=recommend_state"`
	CredentialsFile     string `env:"RECOMMEND_STATE_CREDENTIALS_FILE"`
	LegacyPrefsDir      string `env:"RECOMMEND_STATE_LEGACY_PREFS_DIR"`
	InitLock            bool   `env:"RECOMMEND_STATE_INIT_LOCK,default=false"`
}

//ServerConfig Configuration of the local inspection server.
type ServerConfig struct {
	Port     string `env:"PORT,default=8081" validate:"required,numeric"`
	LogLevel string `env:"RECOMMEND_STATE_LOG_LEVEL,default=info" validate:"oneof=debug info warn error"`
}

func (c *StoreConfig) checkBackend() error {
	switch {
	case c.Backend == BackendSQLite && c.SQLitePath == "":
		return fmt.Errorf("invalid store config: RECOMMEND_STATE_SQLITE_PATH must be set for sqlite backend")
	case c.Backend == BackendRedis && c.RedisAddr == "":
		return fmt.Errorf("invalid store config: RECOMMEND_STATE_REDIS_ADDR must be set for redis backend")
	case c.Backend == BackendFirestore && c.FirestoreProjectID == "":
		return fmt.Errorf("invalid store config: RECOMMEND_STATE_FIRESTORE_PROJECT must be set for firestore backend")
	case c.Backend == BackendRealtimeDB && c.RealtimeDBURL == "":
		return fmt.Errorf("invalid store config: RECOMMEND_STATE_REALTIMEDB_URL must be set for realtimedb backend")
	case c.InitLock && c.Backend != BackendRedis:
		return fmt.Errorf("invalid store config: RECOMMEND_STATE_INIT_LOCK requires redis backend")
	}
	return nil
}

//LoadStoreConfig Load storage config from the environment.
func LoadStoreConfig(ctx context.Context) (*StoreConfig, error) {
	return LoadStoreConfigWith(ctx, envconfig.OsLookuper())
}

//LoadStoreConfigWith Load storage config using given lookuper.
func LoadStoreConfigWith(ctx context.Context, lookuper envconfig.Lookuper) (*StoreConfig, error) {
	logger := logging.FromContext(ctx)

	var storeConfig StoreConfig
	if err := envconfig.ProcessWith(ctx, &storeConfig, lookuper); err != nil {
		logger.Debugf("Could not load StoreConfig: %v", err)
		return nil, err
	}

	if err := Validate.Struct(storeConfig); err != nil {
		logger.Debugf("Invalid StoreConfig: %v", err)
		return nil, fmt.Errorf("invalid store config: %w", err)
	}

	if err := storeConfig.checkBackend(); err != nil {
		logger.Debugf("Invalid StoreConfig: %v", err)
		return nil, err
	}

	return &storeConfig, nil
}

//LoadServerConfig Load server config from the environment.
func LoadServerConfig(ctx context.Context) (*ServerConfig, error) {
	return LoadServerConfigWith(ctx, envconfig.OsLookuper())
}

//LoadServerConfigWith Load server config using given lookuper.
func LoadServerConfigWith(ctx context.Context, lookuper envconfig.Lookuper) (*ServerConfig, error) {
	logger := logging.FromContext(ctx)

	var serverConfig ServerConfig
	if err := envconfig.ProcessWith(ctx, &serverConfig, lookuper); err != nil {
		logger.Debugf("Could not load ServerConfig: %v", err)
		return nil, err
	}

	if err := Validate.Struct(serverConfig); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	return &serverConfig, nil
}
