package jwt

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"
	"resty.dev/v3"
)

// BotFrameworkOpenIDURL advertises the signing keys used by the Bot Connector service.
const BotFrameworkOpenIDURL = "https://login.botframework.com/v1/.well-known/openidconfiguration"

const (
	keyCacheTTL = 24 * time.Hour
	// an unknown kid may trigger a refresh at most this often
	minRefreshInterval = 5 * time.Minute
	// failed fetches are not retried sooner than this
	failureBackoff = 10 * time.Second
)

type openIDConfig struct {
	Issuer  string `json:"issuer"`
	JwksURI string `json:"jwks_uri"`
}

type jsonWebKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jsonWebKeySet struct {
	Keys []jsonWebKey `json:"keys"`
}

// KeyCache resolves signing keys by key id from an OpenID metadata document.
// Keys are refreshed after a day, or when an unknown key id is seen and the
// last refresh is older than minRefreshInterval. Concurrent callers share a
// single in-flight refresh.
type KeyCache struct {
	metadataURL string
	http        *resty.Client
	minRefresh  time.Duration

	mu          sync.Mutex
	keys        map[string]*rsa.PublicKey
	fetched     time.Time
	lastAttempt time.Time
	lastErr     error
	refreshing  chan struct{}
}

func NewKeyCache(metadataURL string, http *resty.Client) *KeyCache {
	if http == nil {
		http = resty.New()
	}
	return &KeyCache{metadataURL: metadataURL, http: http, minRefresh: minRefreshInterval}
}

// Key returns the RSA public key registered under kid.
func (k *KeyCache) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	k.mu.Lock()
	if key, ok := k.lookup(kid); ok {
		k.mu.Unlock()
		return key, nil
	}

	if wait := k.refreshing; wait != nil {
		k.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		k.mu.Lock()
		defer k.mu.Unlock()
		return k.resolve(kid)
	}

	if err := k.refreshAllowed(); err != nil {
		k.mu.Unlock()
		return nil, err
	}
	if k.fresh() && time.Since(k.lastAttempt) < k.minRefresh {
		k.mu.Unlock()
		return nil, errors.Errorf("signing key %q not found", kid)
	}

	done := make(chan struct{})
	k.refreshing = done
	k.lastAttempt = time.Now()
	k.mu.Unlock()

	keys, err := k.fetch(ctx)

	k.mu.Lock()
	defer k.mu.Unlock()
	k.lastErr = err
	if err == nil {
		k.keys, k.fetched = keys, time.Now()
	}
	k.refreshing = nil
	close(done)
	return k.resolve(kid)
}

func (k *KeyCache) fresh() bool {
	return !k.fetched.IsZero() && time.Since(k.fetched) < keyCacheTTL
}

func (k *KeyCache) lookup(kid string) (*rsa.PublicKey, bool) {
	key, ok := k.keys[kid]
	return key, ok && k.fresh()
}

// refreshAllowed holds back retries while the last fetch failed recently.
func (k *KeyCache) refreshAllowed() error {
	if k.lastErr != nil && time.Since(k.lastAttempt) < failureBackoff {
		return k.lastErr
	}
	return nil
}

// resolve answers kid from the state left by the latest refresh.
func (k *KeyCache) resolve(kid string) (*rsa.PublicKey, error) {
	if key, ok := k.lookup(kid); ok {
		return key, nil
	}
	if k.lastErr != nil {
		return nil, k.lastErr
	}
	return nil, errors.Errorf("signing key %q not found", kid)
}

func (k *KeyCache) fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	var meta openIDConfig
	resp, err := k.http.R().SetContext(ctx).SetResult(&meta).Get(k.metadataURL)
	if err != nil {
		return nil, errors.Wrap(err, "fetch openid metadata")
	}
	if resp.IsError() || meta.JwksURI == "" {
		return nil, errors.Errorf("openid metadata unavailable: %s", resp.Status())
	}

	var set jsonWebKeySet
	resp, err = k.http.R().SetContext(ctx).SetResult(&set).Get(meta.JwksURI)
	if err != nil {
		return nil, errors.Wrap(err, "fetch signing keys")
	}
	if resp.IsError() {
		return nil, errors.Errorf("signing keys unavailable: %s", resp.Status())
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, jwk := range set.Keys {
		if jwk.Kty != "RSA" {
			continue
		}
		pub, err := rsaPublicKey(jwk.N, jwk.E)
		if err != nil {
			return nil, errors.Wrapf(err, "signing key %q", jwk.Kid)
		}
		keys[jwk.Kid] = pub
	}
	return keys, nil
}

func rsaPublicKey(n, e string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, errors.Wrap(err, "modulus")
	}
	eb, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, errors.Wrap(err, "exponent")
	}
	exp := new(big.Int).SetBytes(eb)
	if !exp.IsInt64() || exp.Int64() < 3 {
		return nil, errors.New("invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: int(exp.Int64())}, nil
}
