package datastore

import (
	"github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	leveldb "github.com/ipfs/go-ds-leveldb"
	"go.uber.org/zap"
	"os"
)

// New opens the leveldb datastore under dir, or an in-memory datastore when dir is empty.
func New(dir string) (datastore.Batching, error) {
	if dir == "" {
		zap.L().Warn("Datastore: DATA_DIR not set, listings are kept in memory")
		return NewMemory(), nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	ds, err := leveldb.NewDatastore(dir, nil)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("dir", dir)).Error("Datastore: Failed to open leveldb")
		return nil, err
	}
	zap.L().With(zap.String("dir", dir)).Info("Datastore: Opened leveldb")

	return ds, nil
}

func NewMemory() datastore.Batching {
	return dssync.MutexWrap(datastore.NewMapDatastore())
}
