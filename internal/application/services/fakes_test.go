package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rabbitmq/amqp091-go"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/item"
	"filevault-api/internal/domain/user"
	"filevault-api/internal/infrastructure/mq"
	"filevault-api/internal/upload"
)

func newTestCounter() *prometheus.CounterVec {
	// plain NewCounterVec: promauto would collide on the default registry
	// across test cases
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_counters"}, []string{"result"})
}

// memItemRepo is an in-memory item.Repository with the same uniqueness
// semantics as the real table.
type memItemRepo struct {
	mu        sync.Mutex
	nextID    uint64
	items     map[item.ID]*item.Item
	findCalls int
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{items: make(map[item.ID]*item.Item)}
}

func (m *memItemRepo) FindChild(_ context.Context, ownerID user.ID, parentID *item.ID, name string, kind item.Kind) (*item.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++

	return m.findChildLocked(ownerID, parentID, name, kind), nil
}

func (m *memItemRepo) findChildLocked(ownerID user.ID, parentID *item.ID, name string, kind item.Kind) *item.Item {
	for _, it := range m.items {
		if it.OwnerID != ownerID || it.IsDeleted || it.Name != name || it.Kind != kind {
			continue
		}
		if sameParent(it.ParentID, parentID) {
			cp := *it
			return &cp
		}
	}
	return nil
}

func sameParent(a, b *item.ID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (m *memItemRepo) Insert(_ context.Context, req *item.Item) (*item.Item, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing := m.findChildLocked(req.OwnerID, req.ParentID, req.Name, req.Kind); existing != nil {
		return existing, false, nil
	}

	m.nextID++
	it := *req
	it.ID = item.ID(m.nextID)
	it.UUID = uuid.New()
	it.CreatedAt = time.Now()
	it.UpdatedAt = it.CreatedAt
	m.items[it.ID] = &it

	cp := it
	return &cp, true, nil
}

func (m *memItemRepo) FetchByID(_ context.Context, ownerID user.ID, id item.ID) (*item.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[id]
	if !ok || it.OwnerID != ownerID || it.IsDeleted {
		return nil, item.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (m *memItemRepo) ListChildren(_ context.Context, ownerID user.ID, parentIDs []item.ID) (item.Items, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out item.Items
	for _, pid := range parentIDs {
		pid := pid
		for _, it := range m.items {
			if it.OwnerID == ownerID && !it.IsDeleted && it.ParentID != nil && *it.ParentID == pid {
				cp := *it
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (m *memItemRepo) ListFolderItems(_ context.Context, ownerID user.ID, parentID *item.ID, _ int) (item.Items, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out item.Items
	for _, it := range m.items {
		if it.OwnerID == ownerID && !it.IsDeleted && sameParent(it.ParentID, parentID) {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memItemRepo) BulkDelete(_ context.Context, ownerID user.ID, ids []item.ID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, id := range ids {
		if it, ok := m.items[id]; ok && it.OwnerID == ownerID {
			delete(m.items, id)
			n++
		}
	}
	return n, nil
}

func (m *memItemRepo) SumActualUsage(_ context.Context, ownerID user.ID) (*item.UsageSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sum := &item.UsageSummary{}
	for _, it := range m.items {
		if it.OwnerID != ownerID || it.IsDeleted {
			continue
		}
		sum.TotalCount++
		if it.IsFile() {
			sum.FileCount++
			sum.Bytes += it.SizeBytes
		} else {
			sum.FolderCount++
		}
	}
	return sum, nil
}

// memUserRepo backs the ledger with plain counters.
type memUserRepo struct {
	mu       sync.Mutex
	uuids    map[user.UUID]user.ID
	storage  map[user.ID]*user.Storage
	users    map[string]*user.User
	failNext error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		uuids:   make(map[user.UUID]user.ID),
		storage: make(map[user.ID]*user.Storage),
		users:   make(map[string]*user.User),
	}
}

func (m *memUserRepo) addUser(uuid user.UUID, id user.ID, limit uint64) {
	m.uuids[uuid] = id
	m.storage[id] = &user.Storage{StorageLimit: limit}
}

func (m *memUserRepo) FetchUserByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[email], nil
}

func (m *memUserRepo) FetchInternalID(_ context.Context, uuid user.UUID) (user.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.uuids[uuid]
	if !ok {
		return 0, user.ErrNotFound
	}
	return id, nil
}

func (m *memUserRepo) FetchStorage(_ context.Context, id user.ID) (*user.Storage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return nil, err
	}

	st, ok := m.storage[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (m *memUserRepo) UpdateStorageUsed(_ context.Context, id user.ID, value uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.storage[id]
	if !ok {
		return user.ErrNotFound
	}
	st.StorageUsed = value
	return nil
}

func (m *memUserRepo) AddStorageUsed(_ context.Context, id user.ID, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.storage[id]
	if !ok {
		return user.ErrNotFound
	}
	next := int64(st.StorageUsed) + delta
	if next < 0 {
		next = 0
	}
	st.StorageUsed = uint64(next)
	return nil
}

// fakeBlobStore records calls and lets tests inject per-key delete failures.
type fakeBlobStore struct {
	mu            sync.Mutex
	initCalls     int
	partCalls     []int32
	completed     bool
	aborted       bool
	deletedKeys   []string
	failKeys      map[string]string
	failBatch     error
	completeErr   error
	uploadPartErr error
}

func (f *fakeBlobStore) InitMultipart(_ context.Context, fileName string, ownerID user.ID) (*ports.MultipartInit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initCalls++
	return &ports.MultipartInit{UploadID: "up-1", Key: "users/1/" + fileName}, nil
}

func (f *fakeBlobStore) UploadPart(_ context.Context, _, _ string, partNumber int32, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadPartErr != nil {
		return "", f.uploadPartErr
	}
	f.partCalls = append(f.partCalls, partNumber)
	return "etag-" + string(rune('0'+partNumber)), nil
}

func (f *fakeBlobStore) CompleteMultipart(_ context.Context, _, key string, parts []upload.Part) (*ports.CompletedObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	f.completed = true
	return &ports.CompletedObject{Key: key, URL: "https://blob.example/" + key}, nil
}

func (f *fakeBlobStore) AbortMultipart(_ context.Context, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aborted = true
	return nil
}

func (f *fakeBlobStore) DeleteObjects(_ context.Context, keys []string) (*ports.BlobDeleteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failBatch != nil {
		return nil, f.failBatch
	}

	res := &ports.BlobDeleteResult{}
	for _, k := range keys {
		if reason, bad := f.failKeys[k]; bad {
			res.Failed = append(res.Failed, ports.BlobDeleteError{Key: k, Reason: reason})
			continue
		}
		f.deletedKeys = append(f.deletedKeys, k)
		res.Deleted = append(res.Deleted, k)
	}
	return res, nil
}

func (f *fakeBlobStore) PresignDownload(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://blob.example/presigned/" + key, nil
}

// fakeMQ satisfies ports.RabbitMQ with a buffered channel nobody drains.
type fakeMQ struct {
	in chan mq.Event
}

func newFakeMQ() *fakeMQ {
	return &fakeMQ{in: make(chan mq.Event, 16)}
}

func (f *fakeMQ) Connect(context.Context, string) error { return nil }
func (f *fakeMQ) Init() error                           { return nil }
func (f *fakeMQ) PublisherWorker(context.Context)       {}
func (f *fakeMQ) GetInputChan() chan mq.Event           { return f.in }
func (f *fakeMQ) GetConn() *amqp091.Connection          { return nil }

var errBoom = errors.New("boom")
