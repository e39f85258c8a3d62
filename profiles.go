package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ProfilesRecordName is the name of the stored advisor profile list
const ProfilesRecordName = "insurepro_profiles"

var (
	ErrProfileNameRequired = errors.New("advisor name is required")
	ErrProfileNotFound     = errors.New("advisor profile not found")
)

// AdvisorProfile is a saved advisor identity that can be reused across sessions
type AdvisorProfile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Photo   string `json:"photo,omitempty"`
}

// Info returns the advisor details of the profile
func (p AdvisorProfile) Info() AdvisorInfo {
	return AdvisorInfo{Name: p.Name, Contact: p.Contact, Photo: p.Photo}
}

// ProfileStore persists the whole profile list as one record
type ProfileStore interface {
	Load(ctx context.Context) ([]AdvisorProfile, error)
	Replace(ctx context.Context, profiles []AdvisorProfile) error
}

// FileProfileStore keeps the profile list in a JSON file
type FileProfileStore struct {
	path string
}

// NewFileProfileStore creates a store backed by the given file
func NewFileProfileStore(path string) *FileProfileStore {
	return &FileProfileStore{path: path}
}

// Load reads the list; a missing file is an empty list
func (s *FileProfileStore) Load(ctx context.Context) ([]AdvisorProfile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []AdvisorProfile{}, nil
		}
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []AdvisorProfile{}, nil
	}

	var profiles []AdvisorProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return profiles, nil
}

// Replace writes the whole list, going through a temporary file
func (s *FileProfileStore) Replace(ctx context.Context, profiles []AdvisorProfile) error {
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profiles: %w", err)
	}
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create profile dir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write profiles: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write profiles: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write profiles: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

// RedisProfileStore keeps the profile list as a JSON string under one key
type RedisProfileStore struct {
	client *redis.Client
	key    string
}

// NewRedisProfileStore creates a store using an existing client
func NewRedisProfileStore(client *redis.Client, key string) *RedisProfileStore {
	if key == "" {
		key = ProfilesRecordName
	}
	return &RedisProfileStore{client: client, key: key}
}

// Load reads the list; a missing key is an empty list
func (s *RedisProfileStore) Load(ctx context.Context) ([]AdvisorProfile, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []AdvisorProfile{}, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	var profiles []AdvisorProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return profiles, nil
}

// Replace overwrites the key with the whole list
func (s *RedisProfileStore) Replace(ctx context.Context, profiles []AdvisorProfile) error {
	data, err := json.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("encode profiles: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

// NewProfileStore builds the store selected in the settings
func NewProfileStore(settings *Settings) (ProfileStore, func() error, error) {
	switch settings.Profiles.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     settings.Redis.Addr,
			Password: settings.Redis.Password,
			DB:       settings.Redis.DB,
		})
		return NewRedisProfileStore(client, settings.Profiles.Key), client.Close, nil
	case "file", "":
		return NewFileProfileStore(settings.Profiles.File), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown profile backend %q", settings.Profiles.Backend)
	}
}

// ProfileLibrary is the list of saved advisors, newest first
type ProfileLibrary struct {
	store  ProfileStore
	logger *zap.Logger
	newID  func() string

	// mu serialises the load-modify-replace cycles on the shared list
	mu sync.RWMutex
}

// NewProfileLibrary wraps a store
func NewProfileLibrary(store ProfileStore, logger *zap.Logger) *ProfileLibrary {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileLibrary{
		store:  store,
		logger: logger,
		newID:  func() string { return uuid.NewString() },
	}
}

// List returns all saved profiles, newest first
func (l *ProfileLibrary) List(ctx context.Context) ([]AdvisorProfile, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.Load(ctx)
}

// Save stores the advisor as a new profile at the front of the list
func (l *ProfileLibrary) Save(ctx context.Context, info AdvisorInfo) (AdvisorProfile, error) {
	var err error
	defer func() { recordProfileOp("save", err) }()

	if strings.TrimSpace(info.Name) == "" {
		err = ErrProfileNameRequired
		return AdvisorProfile{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	profiles, err := l.store.Load(ctx)
	if err != nil {
		return AdvisorProfile{}, err
	}
	profile := AdvisorProfile{
		ID:      l.newID(),
		Name:    strings.TrimSpace(info.Name),
		Contact: info.Contact,
		Photo:   info.Photo,
	}
	profiles = append([]AdvisorProfile{profile}, profiles...)
	if err = l.store.Replace(ctx, profiles); err != nil {
		return AdvisorProfile{}, err
	}

	l.logger.Info("advisor profile saved", zap.String("id", profile.ID), zap.String("name", profile.Name))
	return profile, nil
}

// Delete removes a profile by ID
func (l *ProfileLibrary) Delete(ctx context.Context, id string) error {
	var err error
	defer func() { recordProfileOp("delete", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()
	profiles, err := l.store.Load(ctx)
	if err != nil {
		return err
	}
	kept := profiles[:0]
	for _, p := range profiles {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(profiles) {
		err = fmt.Errorf("%w: %s", ErrProfileNotFound, id)
		return err
	}
	if err = l.store.Replace(ctx, kept); err != nil {
		return err
	}

	l.logger.Info("advisor profile deleted", zap.String("id", id))
	return nil
}

// Select returns the advisor details of a saved profile
func (l *ProfileLibrary) Select(ctx context.Context, id string) (AdvisorInfo, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	profiles, err := l.store.Load(ctx)
	if err != nil {
		return AdvisorInfo{}, err
	}
	for _, p := range profiles {
		if p.ID == id {
			return p.Info(), nil
		}
	}
	return AdvisorInfo{}, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
}
