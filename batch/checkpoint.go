package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
)

// Checkpoint is the durable record of how far a run has progressed (spec
// §6 "Checkpoint file").
type Checkpoint struct {
	LastCompletedIndex int       `json:"last_completed_index"`
	RunID              string    `json:"run_id"`
	StartedAt          time.Time `json:"started_at"`
}

// Store persists and recovers a Checkpoint. Load returns (nil, nil) when no
// checkpoint exists yet.
type Store interface {
	Load(ctx context.Context) (*Checkpoint, error)
	Save(ctx context.Context, cp Checkpoint) error
}

// FileStore persists the checkpoint as a JSON file, written atomically via
// write-temp-then-rename so a crash mid-write never leaves a corrupt
// checkpoint behind (spec §6 "written atomically").
type FileStore struct {
	path string
}

// NewFileStore builds a FileStore backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load(ctx context.Context) (*Checkpoint, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (f *FileStore) Save(ctx context.Context, cp Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(dir, ".checkpoint-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, f.path)
}

// RedisStore persists the checkpoint in Redis, an alternative to FileStore
// for multi-process or networked deployments of the orchestrator.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore builds a RedisStore writing checkpoints under key.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (r *RedisStore) Load(ctx context.Context) (*Checkpoint, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (r *RedisStore) Save(ctx context.Context, cp Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, data, 0).Err()
}
