package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"github.com/peterbourgon/diskv/v3"
	"go.uber.org/zap"

	"tableflip.dev/tradelog/pkg/operation"
)

var (
	// ErrNotFound is returned when no operation or image has the given id.
	ErrNotFound = errors.New("store: not found")
)

const (
	operationBucket = "op"
	metaBucket      = "meta"
	sequenceName    = "seq"
	uploadsDir      = "uploads"
	uploadsPrefix   = "/uploads/"
)

// Config locates the store on disk.
type Config interface {
	BasePath() string
}

// Persistence defines the persistence contract for journal operations.
type Persistence interface {
	List(ctx context.Context) ([]operation.Operation, error)
	Get(ctx context.Context, id int64) (operation.Operation, error)
	Create(ctx context.Context, op operation.Operation, images []operation.Blob) (operation.Operation, error)
	Delete(ctx context.Context, id int64) error
	OpenImage(name string) (io.ReadCloser, error)
	Watch(ctx context.Context) (<-chan Event, error)
}

// Load creates a Persistence backed by diskv under cfg.BasePath().
func Load(cfg Config, log *zap.Logger) (Persistence, error) {
	basePath, err := expandPath(cfg.BasePath())
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Join(basePath, operationBucket), 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	p := &persistence{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		images: diskv.New(diskv.Options{
			BasePath:     filepath.Join(basePath, uploadsDir),
			Transform:    func(string) []string { return []string{} },
			CacheSizeMax: 0,
		}),
		basePath: basePath,
		log:      log,
	}
	if err := p.loadSequence(); err != nil {
		return nil, err
	}
	return p, nil
}

type persistence struct {
	d        *diskv.Diskv
	images   *diskv.Diskv
	basePath string
	log      *zap.Logger

	mu  sync.Mutex
	seq int64
}

func (p *persistence) read(key string) (operation.Operation, error) {
	var op operation.Operation
	val, err := p.d.Read(key)
	if err != nil {
		return op, err
	}
	if err := json.Unmarshal(val, &op); err != nil {
		return op, err
	}
	if op.ID == 0 {
		op.ID, _ = idFromKey(key)
	}
	return op, nil
}

func (p *persistence) List(ctx context.Context) ([]operation.Operation, error) {
	all := make([]operation.Operation, 0)
	for key := range p.d.KeysPrefix(operationBucket+"-", ctx.Done()) {
		op, err := p.read(key)
		if err != nil {
			p.log.Warn("skipping unreadable operation", zap.String("key", key), zap.Error(err))
			continue
		}
		all = append(all, op)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (p *persistence) Get(_ context.Context, id int64) (operation.Operation, error) {
	key := operationKey(id)
	if !p.d.Has(key) {
		return operation.Operation{}, fmt.Errorf("%w: operation %d", ErrNotFound, id)
	}
	op, err := p.read(key)
	if err != nil {
		return operation.Operation{}, fmt.Errorf("store: read operation %d: %w", id, err)
	}
	return op, nil
}

// Create assigns the next id to op, writes its images and persists it.
func (p *persistence) Create(_ context.Context, op operation.Operation, images []operation.Blob) (operation.Operation, error) {
	id, err := p.nextID()
	if err != nil {
		return operation.Operation{}, err
	}
	op.ID = id
	op.Images = nil
	for _, blob := range images {
		imageID, err := p.nextID()
		if err != nil {
			p.eraseImages(op.Images)
			return operation.Operation{}, err
		}
		name := uuid.NewString() + strings.ToLower(filepath.Ext(blob.Name))
		if err := p.images.Write(name, blob.Data); err != nil {
			p.eraseImages(op.Images)
			return operation.Operation{}, fmt.Errorf("store: write image: %w", err)
		}
		op.Images = append(op.Images, operation.Image{ID: imageID, OperationID: id, Path: uploadsPrefix + name})
	}

	data, err := json.Marshal(op)
	if err != nil {
		p.eraseImages(op.Images)
		return operation.Operation{}, err
	}
	if err := p.d.Write(operationKey(id), data); err != nil {
		p.eraseImages(op.Images)
		return operation.Operation{}, fmt.Errorf("store: write operation %d: %w", id, err)
	}
	return op, nil
}

// Delete removes the operation and its image files.
func (p *persistence) Delete(ctx context.Context, id int64) error {
	op, err := p.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := p.d.Erase(operationKey(id)); err != nil {
		return fmt.Errorf("store: erase operation %d: %w", id, err)
	}
	p.eraseImages(op.Images)
	return nil
}

func (p *persistence) OpenImage(name string) (io.ReadCloser, error) {
	name = filepath.Base(name)
	if !p.images.Has(name) {
		return nil, fmt.Errorf("%w: image %s", ErrNotFound, name)
	}
	return p.images.ReadStream(name, false)
}

func (p *persistence) eraseImages(images []operation.Image) {
	for _, img := range images {
		name := strings.TrimPrefix(img.Path, uploadsPrefix)
		if err := p.images.Erase(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.log.Warn("failed to erase image", zap.String("image", name), zap.Error(err))
		}
	}
}

func (p *persistence) nextID() (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	if err := p.d.Write(metaBucket+"-"+sequenceName, []byte(strconv.FormatInt(p.seq, 10))); err != nil {
		p.seq--
		return 0, fmt.Errorf("store: save sequence: %w", err)
	}
	return p.seq, nil
}

// loadSequence restores the id counter. A store without a saved counter
// continues after its highest operation id.
func (p *persistence) loadSequence() error {
	key := metaBucket + "-" + sequenceName
	if p.d.Has(key) {
		raw, err := p.d.Read(key)
		if err != nil {
			return fmt.Errorf("store: read sequence: %w", err)
		}
		seq, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
		if err != nil {
			return fmt.Errorf("store: parse sequence: %w", err)
		}
		p.seq = seq
		return nil
	}
	for key := range p.d.KeysPrefix(operationBucket+"-", nil) {
		if id, ok := idFromKey(key); ok && id > p.seq {
			p.seq = id
		}
	}
	return nil
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

// operationKey makes `op-id`
func operationKey(id int64) string {
	return fmt.Sprintf("%s-%d", operationBucket, id)
}

func idFromKey(key string) (int64, bool) {
	pk := keyToPathTransform(key)
	id, err := strconv.ParseInt(pk.FileName, 10, 64)
	return id, err == nil
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", errors.New("store: base path required")
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("store: expand base path: %w", err)
	}
	return expanded, nil
}
