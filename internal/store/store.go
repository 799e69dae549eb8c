// Package store persists invoices, preferences and company details in a
// key-value substrate.
package store

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/invoicepro/internal/domain/invoice"
	"github.com/xenking/invoicepro/internal/domain/settings"
)

// Keys of the persisted collections.
const (
	KeyInvoices    = "invoicepro_invoices"
	KeySettings    = "invoicepro_settings"
	KeyCompanyInfo = "invoicepro_company_info"
	KeyDraftItems  = "invoicepro_draft_items"
)

// ErrNotFound is returned when no invoice has the requested id.
var ErrNotFound = errors.New("invoice not found")

// RecentLimit is the number of invoices reported in Stats.Recent.
const RecentLimit = 10

// Store keeps every invoice in a single collection document. Each mutation
// rewrites the whole collection; the last write wins.
type Store struct {
	kv  KV
	now func() time.Time
	// mu serializes read-modify-write cycles within the process.
	mu sync.Mutex
}

// New returns a Store backed by kv.
func New(kv KV) *Store {
	return &Store{kv: kv, now: time.Now}
}

// Ping checks the underlying substrate.
func (s *Store) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}

// List returns all invoices, newest insert first.
func (s *Store) List(ctx context.Context) ([]invoice.Invoice, error) {
	return s.load(ctx)
}

// Get returns the invoice with the given id.
func (s *Store) Get(ctx context.Context, id string) (invoice.Invoice, error) {
	all, err := s.load(ctx)
	if err != nil {
		return invoice.Invoice{}, err
	}
	for _, inv := range all {
		if inv.ID == id {
			return inv, nil
		}
	}
	return invoice.Invoice{}, ErrNotFound
}

// Save validates and upserts inv. A missing id is assigned. The creation
// time belongs to the store: it is set on first save and kept on updates,
// whatever the caller passes. The update time is always refreshed. New
// invoices are placed first.
func (s *Store) Save(ctx context.Context, inv invoice.Invoice) (invoice.Invoice, error) {
	if err := invoice.Validate(&inv); err != nil {
		return invoice.Invoice{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return invoice.Invoice{}, err
	}

	now := s.now().UTC()
	if inv.ID == "" {
		inv.ID = invoice.NewInvoiceID()
	}
	if inv.Status == "" {
		inv.Status = invoice.StatusPending
	}
	inv.UpdatedAt = now

	idx := slices.IndexFunc(all, func(x invoice.Invoice) bool { return x.ID == inv.ID })
	if idx >= 0 {
		inv.CreatedAt = all[idx].CreatedAt
		all[idx] = inv
	} else {
		inv.CreatedAt = now
		all = slices.Insert(all, 0, inv)
	}
	if err := s.storeInvoices(ctx, all); err != nil {
		return invoice.Invoice{}, err
	}

	zctx.From(ctx).Debug("Invoice saved",
		zap.String("id", inv.ID),
		zap.String("number", inv.Number),
		zap.Bool("created", idx < 0),
	)
	return inv, nil
}

// Delete removes the invoice with the given id. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(all, func(x invoice.Invoice) bool { return x.ID == id })
	return s.storeInvoices(ctx, kept)
}

// ToggleStatus flips an invoice between pending and paid.
func (s *Store) ToggleStatus(ctx context.Context, id string) (invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return invoice.Invoice{}, err
	}
	idx := slices.IndexFunc(all, func(x invoice.Invoice) bool { return x.ID == id })
	if idx < 0 {
		return invoice.Invoice{}, ErrNotFound
	}
	all[idx].Status = all[idx].Status.Toggle()
	all[idx].UpdatedAt = s.now().UTC()
	if err := s.storeInvoices(ctx, all); err != nil {
		return invoice.Invoice{}, err
	}
	return all[idx], nil
}

// Duplicate returns an unsaved copy of the invoice with the next number and
// today's dates.
func (s *Store) Duplicate(ctx context.Context, id string) (invoice.Invoice, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return invoice.Invoice{}, err
	}
	number, err := s.NextNumber(ctx)
	if err != nil {
		return invoice.Invoice{}, err
	}
	return invoice.Duplicate(src, number, s.now()), nil
}

// NextNumber suggests a number for the next invoice based on how many exist.
func (s *Store) NextNumber(ctx context.Context) (string, error) {
	all, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	return invoice.NumberFor(len(all) + 1), nil
}

// NewInvoice returns an unsaved invoice prefilled from the stored
// preferences, company details and next number. Saved draft items, if any,
// replace the default row.
func (s *Store) NewInvoice(ctx context.Context) (invoice.Invoice, error) {
	prefs, err := s.Settings(ctx)
	if err != nil {
		return invoice.Invoice{}, err
	}
	company, err := s.CompanyInfo(ctx)
	if err != nil {
		return invoice.Invoice{}, err
	}
	number, err := s.NextNumber(ctx)
	if err != nil {
		return invoice.Invoice{}, err
	}
	items, err := s.DraftItems(ctx)
	if err != nil {
		return invoice.Invoice{}, err
	}

	inv := settings.Draft(s.now(), prefs, company)
	inv.Number = number
	if len(items) > 0 {
		invoice.NewBuilder(&inv).LoadItems(items)
	}
	return inv, nil
}

// Search returns invoices whose number, client name, client email or
// company name contains query, ignoring case. An empty query matches all.
func (s *Store) Search(ctx context.Context, query string) ([]invoice.Invoice, error) {
	q := strings.ToLower(query)
	return s.filter(ctx, func(inv invoice.Invoice) bool { return matches(inv, q) })
}

func matches(inv invoice.Invoice, lowerQuery string) bool {
	for _, field := range []string{
		inv.Number,
		inv.Recipient.Name,
		inv.Recipient.Email,
		inv.Issuer.Name,
	} {
		if strings.Contains(strings.ToLower(field), lowerQuery) {
			return true
		}
	}
	return false
}

// Query combines the list filters. Zero fields do not filter.
type Query struct {
	Text   string
	Status invoice.Status
	From   invoice.Date
	To     invoice.Date
}

// Find returns the invoices matching every set field of q, in stored order.
func (s *Store) Find(ctx context.Context, q Query) ([]invoice.Invoice, error) {
	text := strings.ToLower(q.Text)
	ranged := !q.From.IsZero() || !q.To.IsZero()
	return s.filter(ctx, func(inv invoice.Invoice) bool {
		if text != "" && !matches(inv, text) {
			return false
		}
		if q.Status != "" && inv.Status != q.Status {
			return false
		}
		return !ranged || inRange(inv.IssueDate, q.From, q.To)
	})
}

// FilterByStatus returns invoices with the given status.
func (s *Store) FilterByStatus(ctx context.Context, status invoice.Status) ([]invoice.Invoice, error) {
	return s.filter(ctx, func(inv invoice.Invoice) bool { return inv.Status == status })
}

// FilterByDateRange returns invoices issued within [start, end]. Invoices
// without an issue date never match.
func (s *Store) FilterByDateRange(ctx context.Context, start, end invoice.Date) ([]invoice.Invoice, error) {
	return s.filter(ctx, func(inv invoice.Invoice) bool {
		return inRange(inv.IssueDate, start, end)
	})
}

// ByMonth returns invoices issued in the given calendar month.
func (s *Store) ByMonth(ctx context.Context, year int, month time.Month) ([]invoice.Invoice, error) {
	return s.filter(ctx, func(inv invoice.Invoice) bool {
		t := inv.IssueDate.Time()
		return !inv.IssueDate.IsZero() && t.Year() == year && t.Month() == month
	})
}

func inRange(d, start, end invoice.Date) bool {
	if d.IsZero() {
		return false
	}
	if !start.IsZero() && d.Before(start) {
		return false
	}
	if !end.IsZero() && d.After(end) {
		return false
	}
	return true
}

func (s *Store) filter(ctx context.Context, keep func(invoice.Invoice) bool) ([]invoice.Invoice, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]invoice.Invoice, 0, len(all))
	for _, inv := range all {
		if keep(inv) {
			out = append(out, inv)
		}
	}
	return out, nil
}

// load reads the invoice collection. A collection that fails to decode is
// reported and treated as empty.
func (s *Store) load(ctx context.Context) ([]invoice.Invoice, error) {
	data, err := s.kv.Get(ctx, KeyInvoices)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read invoices")
	}
	var all []invoice.Invoice
	if err := json.Unmarshal(data, &all); err != nil {
		zctx.From(ctx).Warn("Ignoring malformed invoice collection", zap.Error(err))
		return nil, nil
	}
	return all, nil
}

func (s *Store) storeInvoices(ctx context.Context, all []invoice.Invoice) error {
	if all == nil {
		all = []invoice.Invoice{}
	}
	data, err := json.Marshal(all)
	if err != nil {
		return errors.Wrap(err, "encode invoices")
	}
	if err := s.kv.Put(ctx, KeyInvoices, data); err != nil {
		return errors.Wrap(err, "write invoices")
	}
	return nil
}
