// Package backup serializes the whole document store to portable JSON and
// restores it.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	pgzip "github.com/klauspost/pgzip"
	"go.uber.org/zap"

	"github.com/xenking/invoicepro/internal/domain/invoice"
	"github.com/xenking/invoicepro/internal/domain/settings"
	"github.com/xenking/invoicepro/internal/store"
)

// Version is written into every export.
const Version = "2.0"

// ErrInvalidSnapshot is returned by Import when the input has no invoice
// collection or cannot be decoded.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Source reads and replaces the persisted collections.
type Source interface {
	Collections(ctx context.Context) (store.Collections, error)
	ReplaceCollections(ctx context.Context, r store.Replacement) error
}

// Snapshot is the export document.
type Snapshot struct {
	Invoices    []invoice.Invoice    `json:"invoices"`
	Settings    settings.Settings    `json:"settings"`
	CompanyInfo settings.CompanyInfo `json:"companyInfo"`
	ExportDate  time.Time            `json:"exportDate"`
	Version     string               `json:"version"`
}

// Data is the collection payload of a backup document.
type Data struct {
	Invoices    []invoice.Invoice    `json:"invoices"`
	Settings    settings.Settings    `json:"settings"`
	CompanyInfo settings.CompanyInfo `json:"companyInfo"`
}

// Document is the backup shape: a timestamp plus the collections.
type Document struct {
	Timestamp time.Time `json:"timestamp"`
	Data      Data      `json:"data"`
}

// Result describes what an import replaced.
type Result struct {
	Invoices    int  `json:"invoices"`
	Settings    bool `json:"settings"`
	CompanyInfo bool `json:"companyInfo"`
}

// Export reads every collection into a Snapshot stamped with now.
func Export(ctx context.Context, src Source, now time.Time) (Snapshot, error) {
	c, err := src.Collections(ctx)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "read collections")
	}
	return Snapshot{
		Invoices:    c.Invoices,
		Settings:    c.Settings,
		CompanyInfo: c.CompanyInfo,
		ExportDate:  now.UTC(),
		Version:     Version,
	}, nil
}

// Backup reads every collection into the backup shape.
func Backup(ctx context.Context, src Source, now time.Time) (Document, error) {
	c, err := src.Collections(ctx)
	if err != nil {
		return Document{}, errors.Wrap(err, "read collections")
	}
	return Document{
		Timestamp: now.UTC(),
		Data: Data{
			Invoices:    c.Invoices,
			Settings:    c.Settings,
			CompanyInfo: c.CompanyInfo,
		},
	}, nil
}

// Marshal encodes v as indented JSON.
func Marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode snapshot")
	}
	return data, nil
}

// incoming accepts both the export and the backup shapes. Collections are
// kept raw so that absence can be told apart from an empty value.
type incoming struct {
	Invoices    json.RawMessage `json:"invoices"`
	Settings    json.RawMessage `json:"settings"`
	CompanyInfo json.RawMessage `json:"companyInfo"`
	Data        *incoming       `json:"data"`
}

// Import replaces the stored collections with the ones in data, which may
// be an export, a backup, or either of them gzip-compressed. The invoice
// collection is required. Settings and company info are replaced only when
// present. Nothing is written unless the whole document decodes.
func Import(ctx context.Context, dst Source, data []byte) (Result, error) {
	if isGzip(data) {
		plain, err := ReadArchive(bytes.NewReader(data))
		if err != nil {
			return Result{}, errors.Wrap(ErrInvalidSnapshot, err.Error())
		}
		data = plain
	}

	var in incoming
	if err := json.Unmarshal(data, &in); err != nil {
		return Result{}, errors.Wrap(ErrInvalidSnapshot, err.Error())
	}
	if present(in.Data) {
		in = *in.Data
	}
	if !present(&in) {
		return Result{}, errors.Wrap(ErrInvalidSnapshot, "invoices collection is missing")
	}

	var (
		r   store.Replacement
		res Result
	)
	if err := json.Unmarshal(in.Invoices, &r.Invoices); err != nil {
		return Result{}, errors.Wrap(ErrInvalidSnapshot, "decode invoices: "+err.Error())
	}
	if r.Invoices == nil {
		r.Invoices = []invoice.Invoice{}
	}
	res.Invoices = len(r.Invoices)

	if isSet(in.Settings) {
		prefs := settings.Defaults()
		if err := json.Unmarshal(in.Settings, &prefs); err != nil {
			return Result{}, errors.Wrap(ErrInvalidSnapshot, "decode settings: "+err.Error())
		}
		r.Settings = &prefs
		res.Settings = true
	}
	if isSet(in.CompanyInfo) {
		var info settings.CompanyInfo
		if err := json.Unmarshal(in.CompanyInfo, &info); err != nil {
			return Result{}, errors.Wrap(ErrInvalidSnapshot, "decode company info: "+err.Error())
		}
		r.CompanyInfo = &info
		res.CompanyInfo = true
	}

	if err := dst.ReplaceCollections(ctx, r); err != nil {
		return Result{}, errors.Wrap(err, "replace collections")
	}
	zctx.From(ctx).Info("Imported snapshot",
		zap.Int("invoices", res.Invoices),
		zap.Bool("settings", res.Settings),
		zap.Bool("company_info", res.CompanyInfo),
	)
	return res, nil
}

func present(in *incoming) bool {
	if in == nil {
		return false
	}
	s := bytes.TrimSpace(in.Invoices)
	return len(s) > 0 && s[0] == '['
}

func isSet(raw json.RawMessage) bool {
	s := bytes.TrimSpace(raw)
	return len(s) > 0 && !bytes.Equal(s, []byte("null"))
}

func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

// WriteArchive writes v as gzip-compressed indented JSON.
func WriteArchive(w io.Writer, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	gz := pgzip.NewWriter(w)
	if _, err := gz.Write(data); err != nil {
		_ = gz.Close()
		return errors.Wrap(err, "write archive")
	}
	if err := gz.Close(); err != nil {
		return errors.Wrap(err, "close archive")
	}
	return nil
}

// ReadArchive decompresses a gzip archive.
func ReadArchive(r io.Reader) ([]byte, error) {
	gz, err := pgzip.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "create gzip reader")
	}
	defer func() { _ = gz.Close() }()

	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, errors.Wrap(err, "read archive")
	}
	return data, nil
}
