package repositories

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is a process-local Store for development and tests. Documents
// are kept in their BSON form so reads decode exactly as they would from
// MongoDB. Only the query operators the CRM issues are understood.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
	unique      map[string][]string
}

// NewMemoryStore creates an empty store enforcing the same unique indexes as
// the MongoDB setup.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memoryCollection),
		unique: map[string][]string{
			UsersCollection: {"email"},
		},
	}
}

func (s *MemoryStore) Collection(name string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{unique: s.unique[name]}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

type memoryCollection struct {
	mu     sync.RWMutex
	docs   []bson.M
	unique []string
}

func (c *memoryCollection) Find(ctx context.Context, filter bson.M, sortBy bson.D, results interface{}) error {
	out := reflect.ValueOf(results)
	if out.Kind() != reflect.Ptr || out.Elem().Kind() != reflect.Slice {
		return errors.New("results must be a pointer to a slice")
	}

	c.mu.RLock()
	matched, err := c.match(filter)
	c.mu.RUnlock()
	if err != nil {
		return err
	}
	sortDocs(matched, sortBy)

	slice := out.Elem()
	elemType := slice.Type().Elem()
	decoded := reflect.MakeSlice(slice.Type(), 0, len(matched))
	for _, doc := range matched {
		target := reflect.New(elemType)
		if elemType.Kind() == reflect.Ptr {
			target = reflect.New(elemType.Elem())
		}
		if err := decodeDoc(doc, target.Interface()); err != nil {
			return err
		}
		if elemType.Kind() == reflect.Ptr {
			decoded = reflect.Append(decoded, target)
		} else {
			decoded = reflect.Append(decoded, target.Elem())
		}
	}
	slice.Set(decoded)
	return ctx.Err()
}

func (c *memoryCollection) FindOne(ctx context.Context, filter bson.M, result interface{}) error {
	c.mu.RLock()
	matched, err := c.match(filter)
	c.mu.RUnlock()
	if err != nil {
		return err
	}
	if len(matched) == 0 {
		return ErrNotFound
	}
	return decodeDoc(matched[0], result)
}

func (c *memoryCollection) InsertOne(ctx context.Context, doc interface{}) (primitive.ObjectID, error) {
	m, err := encodeDoc(doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := m["_id"].(primitive.ObjectID)
	if !ok || id.IsZero() {
		id = primitive.NewObjectID()
		m["_id"] = id
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conflicts(m, -1) {
		return primitive.NilObjectID, ErrDuplicateKey
	}
	c.docs = append(c.docs, m)
	return id, ctx.Err()
}

func (c *memoryCollection) UpdateOne(ctx context.Context, filter bson.M, set bson.M) (bool, error) {
	n, err := c.update(filter, set, 1)
	return n > 0, err
}

func (c *memoryCollection) UpdateMany(ctx context.Context, filter bson.M, set bson.M) (int64, error) {
	return c.update(filter, set, -1)
}

func (c *memoryCollection) DeleteOne(ctx context.Context, filter bson.M) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, doc := range c.docs {
		ok, err := matches(doc, filter)
		if err != nil {
			return false, err
		}
		if ok {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// update applies set to at most limit matching documents; a negative limit
// means all of them.
func (c *memoryCollection) update(filter bson.M, set bson.M, limit int) (int64, error) {
	values, err := encodeDoc(set)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for i, doc := range c.docs {
		if limit >= 0 && n >= int64(limit) {
			break
		}
		ok, err := matches(doc, filter)
		if err != nil {
			return n, err
		}
		if !ok {
			continue
		}
		updated := make(bson.M, len(doc)+len(values))
		for k, v := range doc {
			updated[k] = v
		}
		for k, v := range values {
			updated[k] = v
		}
		if c.conflicts(updated, i) {
			return n, ErrDuplicateKey
		}
		c.docs[i] = updated
		n++
	}
	return n, nil
}

// match returns the documents satisfying filter. Callers hold the lock.
func (c *memoryCollection) match(filter bson.M) ([]bson.M, error) {
	var out []bson.M
	for _, doc := range c.docs {
		ok, err := matches(doc, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

// conflicts reports whether doc repeats a unique value held by another
// document. skip is the index of doc itself, or -1 on insert.
func (c *memoryCollection) conflicts(doc bson.M, skip int) bool {
	for _, field := range c.unique {
		v, ok := doc[field]
		if !ok || v == nil {
			continue
		}
		for i, other := range c.docs {
			if i != skip && reflect.DeepEqual(other[field], v) {
				return true
			}
		}
	}
	return false
}

func encodeDoc(doc interface{}) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeDoc(doc bson.M, result interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, result)
}

// normalize converts a filter operand to the representation stored documents use.
func normalize(v interface{}) (interface{}, error) {
	m, err := encodeDoc(bson.M{"v": v})
	if err != nil {
		return nil, err
	}
	return m["v"], nil
}

func matches(doc bson.M, filter bson.M) (bool, error) {
	for key, cond := range filter {
		if key == "$or" {
			ok, err := matchesAny(doc, cond)
			if err != nil || !ok {
				return false, err
			}
			continue
		}
		if strings.HasPrefix(key, "$") {
			return false, fmt.Errorf("unsupported operator %s", key)
		}
		ok, err := matchesField(doc[key], cond)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchesAny(doc bson.M, cond interface{}) (bool, error) {
	var branches []bson.M
	switch c := cond.(type) {
	case []bson.M:
		branches = c
	case bson.A:
		for _, b := range c {
			m, ok := b.(bson.M)
			if !ok {
				return false, errors.New("$or expects documents")
			}
			branches = append(branches, m)
		}
	default:
		return false, errors.New("$or expects an array")
	}
	for _, b := range branches {
		ok, err := matches(doc, b)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func matchesField(value interface{}, cond interface{}) (bool, error) {
	if ops, ok := cond.(bson.M); ok {
		for op, operand := range ops {
			switch op {
			case "$ne":
				eq, err := equals(value, operand)
				if err != nil || eq {
					return false, err
				}
			case "$in":
				list, err := normalize(operand)
				if err != nil {
					return false, err
				}
				arr, ok := list.(bson.A)
				if !ok {
					return false, errors.New("$in expects an array")
				}
				found := false
				for _, item := range arr {
					if contains(value, item) {
						found = true
						break
					}
				}
				if !found {
					return false, nil
				}
			default:
				return false, fmt.Errorf("unsupported operator %s", op)
			}
		}
		return true, nil
	}
	return equals(value, cond)
}

func equals(value interface{}, operand interface{}) (bool, error) {
	want, err := normalize(operand)
	if err != nil {
		return false, err
	}
	return contains(value, want), nil
}

// contains compares a stored value with a normalized operand. Arrays match
// when any element does.
func contains(value interface{}, want interface{}) bool {
	if reflect.DeepEqual(value, want) {
		return true
	}
	if arr, ok := value.(bson.A); ok {
		for _, item := range arr {
			if reflect.DeepEqual(item, want) {
				return true
			}
		}
	}
	return false
}

func sortDocs(docs []bson.M, by bson.D) {
	if len(by) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, key := range by {
			c := compareValues(docs[i][key.Key], docs[j][key.Key])
			if c == 0 {
				continue
			}
			if dir, ok := key.Value.(int); ok && dir < 0 {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compareValues(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch av := a.(type) {
	case primitive.DateTime:
		if bv, ok := b.(primitive.DateTime); ok {
			return compareOrdered(av, bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return compareOrdered(av, bv)
		}
	case int32:
		if bv, ok := b.(int32); ok {
			return compareOrdered(av, bv)
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return compareOrdered(av, bv)
		}
	}
	return 0
}

func compareOrdered[T primitive.DateTime | float64 | int32 | int64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
