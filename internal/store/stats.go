package store

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/invoicepro/internal/domain/invoice"
	"github.com/xenking/invoicepro/internal/domain/settings"
)

// Stats summarizes the invoice collection.
type Stats struct {
	Total       int               `json:"total"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	ThisMonth   int               `json:"thisMonth"`
	Paid        int               `json:"paid"`
	Pending     int               `json:"pending"`
	Overdue     int               `json:"overdue"`
	Recent      []invoice.Invoice `json:"recentInvoices"`
}

// MarshalJSON writes TotalAmount as a bare number, like invoice totals.
func (st Stats) MarshalJSON() ([]byte, error) {
	type plain Stats
	return json.Marshal(struct {
		plain
		TotalAmount json.RawMessage `json:"totalAmount"`
	}{plain: plain(st), TotalAmount: json.RawMessage(st.TotalAmount.String())})
}

// Stats computes collection statistics relative to the current time. An
// invoice is overdue when it is unpaid and its due date lies before today.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	all, err := s.load(ctx)
	if err != nil {
		return Stats{}, err
	}

	now := s.now()
	today := invoice.DateOf(now)
	st := Stats{Total: len(all), TotalAmount: decimal.Zero}
	for _, inv := range all {
		st.TotalAmount = st.TotalAmount.Add(inv.Totals().Total)

		issued := inv.IssueDate.Time()
		if !inv.IssueDate.IsZero() && issued.Year() == now.Year() && issued.Month() == now.Month() {
			st.ThisMonth++
		}
		switch inv.Status {
		case invoice.StatusPaid:
			st.Paid++
		default:
			st.Pending++
			if !inv.DueDate.IsZero() && inv.DueDate.Before(today) {
				st.Overdue++
			}
		}
	}

	recent := make([]invoice.Invoice, len(all))
	copy(recent, all)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	st.Recent = recent
	return st, nil
}

// Collections is the complete persisted state apart from draft rows.
type Collections struct {
	Invoices    []invoice.Invoice
	Settings    settings.Settings
	CompanyInfo settings.CompanyInfo
}

// Collections reads all collections.
func (s *Store) Collections(ctx context.Context) (Collections, error) {
	all, err := s.load(ctx)
	if err != nil {
		return Collections{}, err
	}
	prefs, err := s.Settings(ctx)
	if err != nil {
		return Collections{}, err
	}
	company, err := s.CompanyInfo(ctx)
	if err != nil {
		return Collections{}, err
	}
	if all == nil {
		all = []invoice.Invoice{}
	}
	return Collections{Invoices: all, Settings: prefs, CompanyInfo: company}, nil
}

// Replacement holds the collections to overwrite. Nil fields are left
// untouched.
type Replacement struct {
	Invoices    []invoice.Invoice
	Settings    *settings.Settings
	CompanyInfo *settings.CompanyInfo
}

// ReplaceCollections overwrites the given collections in a single atomic
// write.
func (s *Store) ReplaceCollections(ctx context.Context, r Replacement) error {
	entries := make(map[string][]byte, 3)
	add := func(key string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return errors.Wrapf(err, "encode %s", key)
		}
		entries[key] = data
		return nil
	}
	if r.Invoices != nil {
		if err := add(KeyInvoices, r.Invoices); err != nil {
			return err
		}
	}
	if r.Settings != nil {
		if err := add(KeySettings, r.Settings); err != nil {
			return err
		}
	}
	if r.CompanyInfo != nil {
		if err := add(KeyCompanyInfo, r.CompanyInfo); err != nil {
			return err
		}
	}
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.PutMany(ctx, entries); err != nil {
		return errors.Wrap(err, "replace collections")
	}
	return nil
}
