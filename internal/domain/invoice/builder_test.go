package invoice

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func descriptions(items []LineItem) []string {
	out := make([]string, len(items))
	for i, li := range items {
		out[i] = li.Description
	}
	return out
}

func newTestBuilder(t *testing.T, names ...string) (*Builder, []LineItem) {
	t.Helper()
	b := NewBuilder(&Invoice{})
	for _, name := range names {
		b.AddPresetItem(name, decimal.NewFromInt(10))
	}
	return b, b.Items()
}

func TestBuilder_AddItem(t *testing.T) {
	b := NewBuilder(&Invoice{})
	li := b.AddItem()

	assert.True(t, strings.HasPrefix(li.ID, "item_"))
	assert.Empty(t, li.Description)
	assert.Equal(t, "1", li.Quantity.String())
	assert.True(t, li.Rate.IsZero())
	require.Len(t, b.Items(), 1)
}

func TestBuilder_UpdateItem(t *testing.T) {
	b, items := newTestBuilder(t, "a")
	id := items[0].ID

	assert.True(t, b.UpdateItem(id, FieldDescription, "Design"))
	assert.True(t, b.UpdateItem(id, FieldQuantity, "2"))
	assert.True(t, b.UpdateItem(id, FieldRate, "500"))

	got := b.Items()[0]
	assert.Equal(t, "Design", got.Description)
	assert.Equal(t, "1000.00", got.Amount().StringFixed(2))

	t.Run("unparsable number becomes zero", func(t *testing.T) {
		assert.True(t, b.UpdateItem(id, FieldRate, "abc"))
		assert.True(t, b.Items()[0].Rate.IsZero())
	})
	t.Run("unknown field", func(t *testing.T) {
		assert.False(t, b.UpdateItem(id, "amount", "5"))
	})
	t.Run("unknown id", func(t *testing.T) {
		assert.False(t, b.UpdateItem("item_missing", FieldDescription, "x"))
	})
}

func TestBuilder_TotalsFollowEdits(t *testing.T) {
	inv := &Invoice{TaxRate: decimal.NewFromInt(10)}
	b := NewBuilder(inv)
	li := b.AddItem()
	b.SetQuantity(li.ID, decimal.NewFromInt(2))
	b.SetRate(li.ID, decimal.NewFromInt(500))

	assert.Equal(t, "1100.00", b.Totals().Total.StringFixed(2))
	assert.Equal(t, "1100.00", inv.Totals().Total.StringFixed(2))

	b.RemoveItem(li.ID)
	assert.True(t, inv.Totals().Total.IsZero())
}

func TestBuilder_Move(t *testing.T) {
	tests := []struct {
		name    string
		move    func(b *Builder, items []LineItem) bool
		want    []string
		wantMod bool
	}{
		{
			name:    "move middle up",
			move:    func(b *Builder, items []LineItem) bool { return b.MoveUp(items[1].ID) },
			want:    []string{"b", "a", "c"},
			wantMod: true,
		},
		{
			name:    "move middle down",
			move:    func(b *Builder, items []LineItem) bool { return b.MoveDown(items[1].ID) },
			want:    []string{"a", "c", "b"},
			wantMod: true,
		},
		{
			name: "first row up is a no-op",
			move: func(b *Builder, items []LineItem) bool { return b.MoveUp(items[0].ID) },
			want: []string{"a", "b", "c"},
		},
		{
			name: "last row down is a no-op",
			move: func(b *Builder, items []LineItem) bool { return b.MoveDown(items[2].ID) },
			want: []string{"a", "b", "c"},
		},
		{
			name: "unknown id is a no-op",
			move: func(b *Builder, _ []LineItem) bool { return b.MoveUp("item_nope") },
			want: []string{"a", "b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, items := newTestBuilder(t, "a", "b", "c")
			assert.Equal(t, tt.wantMod, tt.move(b, items))
			assert.Equal(t, tt.want, descriptions(b.Items()))
		})
	}
}

func TestBuilder_DuplicateItem(t *testing.T) {
	b, items := newTestBuilder(t, "a", "b")

	dup, ok := b.DuplicateItem(items[0].ID)
	require.True(t, ok)
	assert.NotEqual(t, items[0].ID, dup.ID)
	assert.Equal(t, []string{"a", "b", "a"}, descriptions(b.Items()))

	_, ok = b.DuplicateItem("item_missing")
	assert.False(t, ok)
}

func TestBuilder_LoadAndClear(t *testing.T) {
	b := NewBuilder(&Invoice{})
	b.LoadItems([]LineItem{
		{Description: "x", Quantity: decimal.NewFromInt(1), Rate: decimal.NewFromInt(5)},
		{ID: "item_keep", Description: "y"},
	})

	items := b.Items()
	require.Len(t, items, 2)
	assert.NotEmpty(t, items[0].ID)
	assert.Equal(t, "item_keep", items[1].ID)

	b.ClearItems()
	assert.Empty(t, b.Items())
}

func TestBuilder_ItemsIsACopy(t *testing.T) {
	b, _ := newTestBuilder(t, "a")
	items := b.Items()
	items[0].Description = "changed"
	assert.Equal(t, "a", b.Items()[0].Description)
}

func TestNewDraft(t *testing.T) {
	now := time.Date(2025, 1, 15, 18, 30, 0, 0, time.UTC)
	draft := NewDraft(now, DraftDefaults{
		Issuer:   Party{Name: "Studio"},
		Template: ThemeMinimal,
		TaxRate:  decimal.NewFromInt(5),
	})

	assert.True(t, draft.IsNew())
	assert.Equal(t, "2025-01-15", draft.IssueDate.String())
	assert.Equal(t, "2025-02-14", draft.DueDate.String())
	assert.Equal(t, ThemeMinimal, draft.Template)
	assert.Equal(t, "Studio", draft.Issuer.Name)
	assert.Equal(t, StatusPending, draft.Status)
	require.Len(t, draft.Items, 1)

	t.Run("invalid theme falls back", func(t *testing.T) {
		d := NewDraft(now, DraftDefaults{Template: "neon"})
		assert.Equal(t, DefaultTheme, d.Template)
	})
}

func TestDuplicate(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	src := Invoice{
		ID:        "inv_1",
		Number:    "INV-0001",
		IssueDate: NewDate(2024, 5, 1),
		Recipient: Party{Name: "ACME Corp"},
		Items:     []LineItem{item("Design", "2", "500")},
		Status:    StatusPaid,
		CreatedAt: created,
		UpdatedAt: created,
	}

	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	dup := Duplicate(src, "INV-0002", now)

	assert.True(t, dup.IsNew())
	assert.Equal(t, "INV-0002", dup.Number)
	assert.Equal(t, "2025-03-10", dup.IssueDate.String())
	assert.Equal(t, "2025-04-09", dup.DueDate.String())
	assert.Equal(t, StatusPending, dup.Status)
	assert.True(t, dup.CreatedAt.IsZero())
	assert.Equal(t, "ACME Corp", dup.Recipient.Name)
	require.Len(t, dup.Items, 1)
	assert.NotEqual(t, src.Items[0].ID, dup.Items[0].ID)
	assert.Equal(t, src.Totals().Total.String(), dup.Totals().Total.String())
}

func TestParseTheme(t *testing.T) {
	tests := map[string]Theme{
		"modern":  ThemeModern,
		"ELEGANT": ThemeElegant,
		"classic": ThemeElegant,
		"minimal": ThemeMinimal,
		"":        ThemeModern,
		"neon":    ThemeModern,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseTheme(in), in)
	}
	assert.Len(t, Themes(), 3)
}

func TestNumberFor(t *testing.T) {
	assert.Equal(t, "INV-0001", NumberFor(1))
	assert.Equal(t, "INV-0042", NumberFor(42))
	assert.Equal(t, "INV-12345", NumberFor(12345))
}
