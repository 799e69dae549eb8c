package store

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/invoicepro/internal/domain/invoice"
	"github.com/xenking/invoicepro/internal/domain/settings"
)

// Settings returns the stored preferences merged over the defaults.
func (s *Store) Settings(ctx context.Context) (settings.Settings, error) {
	out := settings.Defaults()
	ok, err := s.read(ctx, KeySettings, &out)
	if err != nil {
		return settings.Settings{}, err
	}
	if !ok {
		return settings.Defaults(), nil
	}
	return out, nil
}

// SaveSettings replaces the stored preferences.
func (s *Store) SaveSettings(ctx context.Context, prefs settings.Settings) error {
	return s.write(ctx, KeySettings, prefs)
}

// UpdateSettings applies a partial JSON document to the stored preferences
// and returns the result.
func (s *Store) UpdateSettings(ctx context.Context, patch []byte) (settings.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Settings(ctx)
	if err != nil {
		return settings.Settings{}, err
	}
	merged, err := current.Merge(patch)
	if err != nil {
		return settings.Settings{}, errors.Wrap(err, "merge settings")
	}
	if err := s.write(ctx, KeySettings, merged); err != nil {
		return settings.Settings{}, err
	}
	return merged, nil
}

// CompanyInfo returns the stored company details, empty when none were
// saved.
func (s *Store) CompanyInfo(ctx context.Context) (settings.CompanyInfo, error) {
	var info settings.CompanyInfo
	ok, err := s.read(ctx, KeyCompanyInfo, &info)
	if err != nil || !ok {
		return settings.CompanyInfo{}, err
	}
	return info, nil
}

// SaveCompanyInfo replaces the stored company details.
func (s *Store) SaveCompanyInfo(ctx context.Context, info settings.CompanyInfo) error {
	return s.write(ctx, KeyCompanyInfo, info)
}

// SaveDraftItems persists the rows of an invoice still being edited.
func (s *Store) SaveDraftItems(ctx context.Context, items []invoice.LineItem) error {
	if items == nil {
		items = []invoice.LineItem{}
	}
	return s.write(ctx, KeyDraftItems, items)
}

// DraftItems returns the persisted draft rows.
func (s *Store) DraftItems(ctx context.Context) ([]invoice.LineItem, error) {
	var items []invoice.LineItem
	if _, err := s.read(ctx, KeyDraftItems, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ClearDraftItems drops the persisted draft rows.
func (s *Store) ClearDraftItems(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeyDraftItems); err != nil {
		return errors.Wrap(err, "delete draft items")
	}
	return nil
}

// ClearAll removes every persisted collection.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{KeyInvoices, KeySettings, KeyCompanyInfo, KeyDraftItems} {
		if err := s.kv.Delete(ctx, key); err != nil {
			return errors.Wrapf(err, "delete %s", key)
		}
	}
	return nil
}

// read decodes key into dst. It reports false when the key is absent or
// holds a malformed document.
func (s *Store) read(ctx context.Context, key string, dst any) (bool, error) {
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "read %s", key)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		zctx.From(ctx).Warn("Ignoring malformed document",
			zap.String("key", key),
			zap.Error(err),
		)
		return false, nil
	}
	return true, nil
}

func (s *Store) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	if err := s.kv.Put(ctx, key, data); err != nil {
		return errors.Wrapf(err, "write %s", key)
	}
	return nil
}
