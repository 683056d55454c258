package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
)

// natsWorking persists working memory in a JetStream key-value bucket so
// pending confirmations survive restarts and follow the session across
// instances. Keys are namespaced as <session>.<key>; session ids must
// therefore stay within the NATS key alphabet (UUIDs do).
type natsWorking struct {
	kv nats.KeyValue
}

// NewNATSWorkingStore connects to NATS and binds (or creates) the
// bucket.
func NewNATSWorkingStore(url, bucket string) (WorkingStore, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}
	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{Bucket: bucket})
	}
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("open KV bucket %s: %w", bucket, err)
	}
	return &natsWorking{kv: kv}, nil
}

func (n *natsWorking) Get(_ context.Context, sessionID, key string) (string, error) {
	entry, err := n.kv.Get(sessionID + "." + key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("kv get %s.%s: %w", sessionID, key, err)
	}
	return string(entry.Value()), nil
}

func (n *natsWorking) Set(_ context.Context, sessionID, key, value string) error {
	full := sessionID + "." + key
	if value == "" {
		err := n.kv.Delete(full)
		if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
			return fmt.Errorf("kv delete %s: %w", full, err)
		}
		return nil
	}
	if _, err := n.kv.Put(full, []byte(value)); err != nil {
		return fmt.Errorf("kv put %s: %w", full, err)
	}
	return nil
}

func (n *natsWorking) All(_ context.Context, sessionID string) (map[string]string, error) {
	keys, err := n.kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("kv keys: %w", err)
	}
	prefix := sessionID + "."
	out := make(map[string]string)
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		entry, err := n.kv.Get(k)
		if errors.Is(err, nats.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("kv get %s: %w", k, err)
		}
		out[strings.TrimPrefix(k, prefix)] = string(entry.Value())
	}
	return out, nil
}
