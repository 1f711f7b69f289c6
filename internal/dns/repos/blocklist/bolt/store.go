package bolt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	bbolt "go.etcd.io/bbolt"
	bberrors "go.etcd.io/bbolt/errors"

	"github.com/haukened/rdns/internal/dns/domain"
	"github.com/haukened/rdns/internal/dns/repos/blocklist"
)

var (
	bucketExact  = []byte("exact")
	bucketSuffix = []byte("suffix")
	bucketMeta   = []byte("meta")
)

// boltStore implements blocklist.Store using bbolt.
type boltStore struct {
	db *bbolt.DB
}

// bucketCreator is the subset of *bbolt.Tx this package needs to set up
// buckets, narrowed so ensureBuckets can be exercised against a fake in tests.
type bucketCreator interface {
	CreateBucketIfNotExists(name []byte) (*bbolt.Bucket, error)
}

// bucketDeleter is the subset of *bbolt.Tx this package needs to tear down
// buckets ahead of a full rebuild.
type bucketDeleter interface {
	DeleteBucket(name []byte) error
}

// Function-valued seams so error paths that are otherwise unreachable through
// a healthy bbolt.DB can be exercised directly.
var (
	ensureBucketsFn   = ensureBuckets
	deleteBucketsFn   = deleteBuckets
	loadRulesFn       = loadRules
	writeMetaFn       = writeMeta
	decodeRuleValueFn = decodeRuleValue
)

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path string) (blocklist.Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		return ensureBucketsFn(tx)
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func ensureBuckets(bc bucketCreator) error {
	if _, err := bc.CreateBucketIfNotExists(bucketExact); err != nil {
		return err
	}
	if _, err := bc.CreateBucketIfNotExists(bucketSuffix); err != nil {
		return err
	}
	if _, err := bc.CreateBucketIfNotExists(bucketMeta); err != nil {
		return err
	}
	return nil
}

// deleteBuckets removes each named bucket, tolerating ones that don't exist.
func deleteBuckets(bd bucketDeleter, names ...[]byte) error {
	for _, name := range names {
		if err := bd.DeleteBucket(name); err != nil && !errors.Is(err, bberrors.ErrBucketNotFound) {
			return err
		}
	}
	return nil
}

func (s *boltStore) Close() error { return s.db.Close() }

// GetFirstMatch returns the most specific rule matching name: an exact rule
// takes priority, then the longest matching suffix anchor (walking from the
// full name up toward the apex, one label at a time).
func (s *boltStore) GetFirstMatch(name string) (domain.BlockRule, bool, error) {
	var (
		rule  domain.BlockRule
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		if name == "" {
			return nil
		}
		if eb := tx.Bucket(bucketExact); eb != nil {
			if v := eb.Get([]byte(name)); v != nil {
				r, err := decodeRuleValueFn(name, v, domain.BlockRuleExact)
				if err != nil {
					return err
				}
				rule, found = r, true
				return nil
			}
		}
		sb := tx.Bucket(bucketSuffix)
		if sb == nil {
			return nil
		}
		for a := name; a != ""; {
			rev := reverseString(a)
			if v := sb.Get([]byte(rev)); v != nil {
				r, err := decodeRuleValueFn(a, v, domain.BlockRuleSuffix)
				if err != nil {
					return err
				}
				rule, found = r, true
				return nil
			}
			idx := strings.IndexByte(a, '.')
			if idx < 0 {
				break
			}
			a = a[idx+1:]
		}
		return nil
	})
	if err != nil {
		return domain.BlockRule{}, false, err
	}
	return rule, found, nil
}

// RebuildAll atomically replaces the store's contents with rules.
func (s *boltStore) RebuildAll(rules []domain.BlockRule, version uint64, updatedUnix int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := deleteBucketsFn(tx, bucketExact, bucketSuffix, bucketMeta); err != nil {
			return err
		}
		if err := ensureBucketsFn(tx); err != nil {
			return err
		}
		if err := loadRulesFn(tx, rules); err != nil {
			return err
		}
		return writeMetaFn(tx, version, updatedUnix)
	})
}

// Purge empties the store without loading any rules.
func (s *boltStore) Purge() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := deleteBucketsFn(tx, bucketExact, bucketSuffix, bucketMeta); err != nil {
			return err
		}
		return ensureBucketsFn(tx)
	})
}

func loadRules(tx *bbolt.Tx, rules []domain.BlockRule) error {
	eb := tx.Bucket(bucketExact)
	sb := tx.Bucket(bucketSuffix)
	for _, r := range rules {
		switch r.Kind {
		case domain.BlockRuleExact:
			if r.Name == "" {
				return fmt.Errorf("blocklist: blank exact rule name")
			}
			if err := eb.Put([]byte(r.Name), encodeRuleValue(r.Kind, r.AddedAt, r.Source)); err != nil {
				return err
			}
		case domain.BlockRuleSuffix:
			key := reverseString(r.Name)
			if key == "" {
				return fmt.Errorf("blocklist: blank suffix rule name")
			}
			if err := sb.Put([]byte(key), encodeRuleValue(r.Kind, r.AddedAt, r.Source)); err != nil {
				return err
			}
		default:
			// unsupported kinds (reserved for future rule types) are ignored
		}
	}
	return nil
}

func writeMeta(tx *bbolt.Tx, version uint64, updatedUnix int64) error {
	b := tx.Bucket(bucketMeta)
	if b == nil {
		return fmt.Errorf("blocklist: meta bucket missing")
	}
	vbuf := make([]byte, 8)
	ubuf := make([]byte, 8)
	binary.BigEndian.PutUint64(vbuf, version)
	binary.BigEndian.PutUint64(ubuf, uint64(updatedUnix))
	if err := b.Put([]byte("version"), vbuf); err != nil {
		return err
	}
	return b.Put([]byte("updated"), ubuf)
}

// encodeRuleValue packs a rule's kind, ingestion time, and source into the
// bytes stored alongside its key. Layout: kind(1) | addedAt unix(8) |
// len(source)(2) | source.
func encodeRuleValue(kind domain.BlockRuleKind, addedAt time.Time, source string) []byte {
	v := make([]byte, 11+len(source))
	v[0] = byte(kind)
	binary.BigEndian.PutUint64(v[1:9], uint64(addedAt.Unix()))
	binary.BigEndian.PutUint16(v[9:11], uint16(len(source)))
	copy(v[11:], source)
	return v
}

// decodeRuleValue is the inverse of encodeRuleValue. Values shorter than the
// fixed header (written before source tracking existed, or seeded directly
// in tests) fall back to a bare rule carrying only name and kind.
func decodeRuleValue(name string, v []byte, defaultKind domain.BlockRuleKind) (domain.BlockRule, error) {
	if len(v) < 11 {
		return domain.BlockRule{Name: name, Kind: defaultKind}, nil
	}
	kind := domain.BlockRuleKind(v[0])
	switch kind {
	case domain.BlockRuleExact, domain.BlockRuleSuffix:
	default:
		kind = defaultKind
	}
	addedAt := time.Unix(int64(binary.BigEndian.Uint64(v[1:9])), 0)
	srcLen := int(binary.BigEndian.Uint16(v[9:11]))
	available := len(v) - 11
	if srcLen > available {
		srcLen = available
	}
	source := string(v[11 : 11+srcLen])
	return domain.BlockRule{Name: name, Kind: kind, Source: source, AddedAt: addedAt}, nil
}

func (s *boltStore) Stats() blocklist.StoreStats {
	st := blocklist.StoreStats{}
	_ = s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketExact); b != nil {
			st.ExactCount = uint64(b.Stats().KeyN)
		}
		if b := tx.Bucket(bucketSuffix); b != nil {
			st.SuffixCount = uint64(b.Stats().KeyN)
		}
		if b := tx.Bucket(bucketMeta); b != nil {
			if v := b.Get([]byte("version")); len(v) == 8 {
				st.Version = binary.BigEndian.Uint64(v)
			}
			if v := b.Get([]byte("updated")); len(v) == 8 {
				st.UpdatedUnix = int64(binary.BigEndian.Uint64(v))
			}
		}
		return nil
	})
	return st
}

// reverseString reverses the string rune by rune. Must match the reversal logic
// used when writing suffix keys to keep lookups aligned with storage.
func reverseString(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// reverseBytesInPlace reverses b in place and returns it.
func reverseBytesInPlace(b []byte) []byte {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}
