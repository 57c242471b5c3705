package notebook

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	directoryKey = "directory"
	templatesKey       = "templates"
)

// Identity is what the application knows about a person when it needs their
// native notebook user id.
type Identity struct {
	NativeId string
	Username string
	Email    string
}

// Directory maps application users onto notebook users and caches listings
// that are expensive to drain.
type Directory struct {
	backend Backend
	cache   *cache.Cache
}

func NewDirectory(backend Backend, ttl time.Duration) *Directory {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Directory{
		backend: backend,
		cache:   cache.New(ttl, 2*ttl),
	}
}

// Resolve returns the native user id for identity. The boolean is false when
// no notebook user matches.
func (d *Directory) Resolve(ctx context.Context, identity Identity) (string, bool, error) {
	if identity.NativeId != "" {
		return d.resolveNative(ctx, identity.NativeId)
	}
	index, err := d.load(ctx)
	if err != nil {
		return "", false, err
	}
	for _, key := range identityKeys(identity) {
		if id, found := index[key]; found {
			return id, true, nil
		}
	}
	return "", false, nil
}

// Templates drains the entry template listing, serving repeated calls from cache.
func (d *Directory) Templates(ctx context.Context) ([]Template, error) {
	if x, found := d.cache.Get(templatesKey); found {
		return x.([]Template), nil
	}
	templates, err := Collect(Templates(ctx, d.backend))
	if err != nil {
		return nil, err
	}
	d.cache.Set(templatesKey, templates, cache.DefaultExpiration)
	return templates, nil
}

func (d *Directory) resolveNative(ctx context.Context, id string) (string, bool, error) {
	key := "native:" + id
	if x, found := d.cache.Get(key); found {
		return x.(string), true, nil
	}
	user, err := d.backend.FindUserByNativeId(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	d.cache.Set(key, user.ReferenceId, cache.DefaultExpiration)
	return user.ReferenceId, true, nil
}

// load returns the email and username index of every notebook user. The index
// is cached as one item so its entries expire together.
func (d *Directory) load(ctx context.Context) (map[string]string, error) {
	if x, found := d.cache.Get(directoryKey); found {
		return x.(map[string]string), nil
	}
	index := make(map[string]string)
	for user, err := range Users(ctx, d.backend) {
		if err != nil {
			return nil, err
		}
		if user.Email != "" {
			index["email:"+strings.ToLower(user.Email)] = user.ReferenceId
		}
		if user.Username != "" {
			index["username:"+strings.ToLower(user.Username)] = user.ReferenceId
		}
	}
	d.cache.Set(directoryKey, index, cache.DefaultExpiration)
	return index, nil
}

func identityKeys(identity Identity) []string {
	var keys []string
	if identity.Email != "" {
		keys = append(keys, "email:"+strings.ToLower(identity.Email))
	}
	if identity.Username != "" {
		keys = append(keys, "username:"+strings.ToLower(identity.Username))
	}
	return keys
}
