// internal/vault/vault.go
//
// Vault-backed secret resolver.
//
// Context
// -------
//   - Wraps the HashiCorp Vault Go SDK for KV-v2 reads with a per-key TTL
//     cache.
//   - Implements config.SecretResolver, so a `vault:` value in
//     database.password is swapped for the stored secret at load time.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(zap.S().Infof)            // during boot.
//  2. cfg, err := config.Load(ctx, config.Options{Secrets: cli})
//  3. val, err := cli.GetKV(ctx, path, key, ttl)      // anywhere else.
//
// Reference format
// ----------------
// `<mount>/<path>#<key>`, for example `secret/app/db#password`.  The mount
// is the first path segment.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
)

// ResolveTTL is how long Resolve caches a secret.
const ResolveTTL = 5 * time.Minute

//
// SECTION 1.  Client
//

// kvReader is the slice of the SDK the client needs.
type kvReader interface {
	Get(ctx context.Context, mount, path string) (map[string]any, error)
}

type sdkReader struct{ api *vault.Client }

func (r sdkReader) Get(ctx context.Context, mount, path string) (map[string]any, error) {
	sec, err := r.api.KVv2(mount).Get(ctx, path)
	if err != nil {
		return nil, err
	}
	return sec.Data, nil
}

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	kv    kvReader
	logFn func(string, ...any)
	now   func() time.Time

	cacheMu sync.RWMutex
	cache   map[string]cached // canonical path#key → value + expiry.
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a client from the environment.
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – token used for every request.
func New(logFn func(string, ...any)) (*Client, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	api, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		api.SetToken(tok)
	}
	return newClient(sdkReader{api: api}, logFn), nil
}

func newClient(kv kvReader, logFn func(string, ...any)) *Client {
	if logFn == nil {
		logFn = func(string, ...any) {}
	}
	return &Client{
		kv:    kv,
		logFn: logFn,
		now:   time.Now,
		cache: make(map[string]cached),
	}
}

// GetKV fetches a single key from a KV-v2 secret.  If ttl > 0 the result is
// cached for that duration.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}
	canonical := secretPath + "#" + key

	if ttl > 0 {
		c.cacheMu.RLock()
		cv, ok := c.cache[canonical]
		c.cacheMu.RUnlock()
		if ok && c.now().Before(cv.exp) {
			return cv.val, nil
		}
	}

	mount, rel := splitMount(secretPath)
	if rel == "" {
		return "", fmt.Errorf("secret path %q has no path below the mount", secretPath)
	}
	data, err := c.kv.Get(ctx, mount, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s is not a string", canonical)
	}

	if ttl > 0 {
		c.cacheMu.Lock()
		c.cache[canonical] = cached{val: sval, exp: c.now().Add(ttl)}
		c.cacheMu.Unlock()
	}
	c.logFn("vault: fetched %s", canonical)
	return sval, nil
}

// Resolve reads the secret named by ref.  It satisfies
// config.SecretResolver.
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	path, key, err := splitRef(ref)
	if err != nil {
		return "", err
	}
	return c.GetKV(ctx, path, key, ResolveTTL)
}

//
// SECTION 2.  Helpers
//

// splitRef parses `<mount>/<path>#<key>`.
func splitRef(ref string) (path, key string, err error) {
	i := strings.LastIndexByte(ref, '#')
	if i < 0 {
		return "", "", fmt.Errorf("secret reference %q has no #key", ref)
	}
	path, key = strings.Trim(ref[:i], "/"), ref[i+1:]
	if key == "" {
		return "", "", fmt.Errorf("secret reference %q has an empty key", ref)
	}
	if _, rel := splitMount(path); rel == "" {
		return "", "", fmt.Errorf("secret reference %q needs <mount>/<path>", ref)
	}
	return path, key, nil
}

func splitMount(p string) (mount, rel string) {
	mount, rel, _ = strings.Cut(p, "/")
	return mount, rel
}
