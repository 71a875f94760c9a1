package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/azurescope/explorer/pkg/cache"
	"github.com/azurescope/explorer/pkg/logger"
	"github.com/pkg/errors"
)

// SubscriptionStore holds the subscriptions the server knows about.
type SubscriptionStore interface {
	AddSubscription(sub *Subscription) error
	GetSubscriptions() ([]*Subscription, error)
	GetSubscription(id string) (*Subscription, error)
	RemoveSubscription(id string) error
	AddSubscriptionWithTTL(sub *Subscription, ttl time.Duration) error
	UpdateTTL(id string, ttl time.Duration) error
}

type subscriptionStore struct {
	cache cache.Cache[*Subscription]
}

// NewSubscriptionStore creates an empty SubscriptionStore.
func NewSubscriptionStore() SubscriptionStore {
	return &subscriptionStore{
		cache: cache.New[*Subscription](),
	}
}

func (s *subscriptionStore) AddSubscription(sub *Subscription) error {
	return s.cache.Set(context.Background(), sub.ID, sub)
}

func (s *subscriptionStore) GetSubscriptions() ([]*Subscription, error) {
	subMap, err := s.cache.GetAll(context.Background(), nil)
	if err != nil {
		return nil, err
	}

	subs := make([]*Subscription, 0, len(subMap))
	for _, sub := range subMap {
		subs = append(subs, sub)
	}

	return subs, nil
}

func (s *subscriptionStore) GetSubscription(id string) (*Subscription, error) {
	return s.cache.Get(context.Background(), id)
}

func (s *subscriptionStore) RemoveSubscription(id string) error {
	return s.cache.Delete(context.Background(), id)
}

func (s *subscriptionStore) AddSubscriptionWithTTL(sub *Subscription, ttl time.Duration) error {
	return s.cache.SetWithTTL(context.Background(), sub.ID, sub, ttl)
}

func (s *subscriptionStore) UpdateTTL(id string, ttl time.Duration) error {
	return s.cache.UpdateTTL(context.Background(), id, ttl)
}

// Profile is the Azure CLI profile file (~/.azure/azureProfile.json).
type Profile struct {
	InstallationID string          `json:"installationId"`
	Subscriptions  []*Subscription `json:"subscriptions"`
}

// DefaultProfilePath returns the CLI profile location, honoring
// AZURE_CONFIG_DIR the way az itself does.
func DefaultProfilePath() string {
	configDir := os.Getenv("AZURE_CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ""
		}

		configDir = filepath.Join(homeDir, ".azure")
	}

	return filepath.Join(configDir, "azureProfile.json")
}

// LoadProfile parses the CLI profile file. az writes the file with a
// UTF-8 BOM, which the JSON decoder rejects, so it is stripped first.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading azure profile")
	}

	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, errors.Wrap(err, "decoding azure profile")
	}

	return &profile, nil
}

// LoadAndStoreProfile loads the profile file and adds every enabled
// subscription to the store.
func LoadAndStoreProfile(store SubscriptionStore, path string) error {
	profile, err := LoadProfile(path)
	if err != nil {
		return err
	}

	for _, sub := range profile.Subscriptions {
		if err := store.AddSubscription(sub); err != nil {
			return err
		}
	}

	return nil
}

// syncSubscriptions reconciles the store against the profile file:
// subscriptions gone from the profile are removed, the rest re-added.
func syncSubscriptions(store SubscriptionStore, path string) error {
	profile, err := LoadProfile(path)
	if err != nil {
		return errors.Wrap(err, "reading azure profile")
	}

	existing, err := store.GetSubscriptions()
	if err != nil {
		return errors.Wrap(err, "getting existing subscriptions")
	}

	for _, sub := range existing {
		found := false

		for _, newSub := range profile.Subscriptions {
			if sub.ID == newSub.ID {
				found = true
				break
			}
		}

		if !found {
			if err := store.RemoveSubscription(sub.ID); err != nil {
				logger.Log(logger.LevelError, map[string]string{"subscription": sub.ID},
					err, "error removing subscription")
			}
		}
	}

	return LoadAndStoreProfile(store, path)
}
