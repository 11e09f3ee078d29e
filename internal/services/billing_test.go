package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"med-field-force/internal/models"
	"med-field-force/internal/repository"
)

func newTestBillingService(stores *testStores, notifier BotNotifier) *BillingService {
	svc := NewBillingService(stores.bills, stores.sales, stores.staff, notifier)
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 12, 30, 0, 0, time.Local) }
	return svc
}

var apollo = models.Shop{Name: "Apollo Pharmacy", Address: "Andheri West", Mobile: "9000000001"}

func TestPriceLine(t *testing.T) {
	tests := []struct {
		name       string
		medicine   string
		quantity   int
		wantValue  float64
		wantProfit float64
	}{
		{name: "ElderVit Plus x2", medicine: "ElderVit Plus", quantity: 2, wantValue: 500, wantProfit: 75},
		{name: "CardioSafe 50 x1", medicine: "CardioSafe 50", quantity: 1, wantValue: 450, wantProfit: 90},
		{name: "Capsules Liquid x3 rounds", medicine: "Capsules Liquid", quantity: 3, wantValue: 57.6, wantProfit: 0.58},
		{name: "Negative delta", medicine: "ElderVit Plus", quantity: -1, wantValue: -250, wantProfit: -37.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			med, ok := models.FindMedicine(tt.medicine)
			if !ok {
				t.Fatalf("medicine %s not in catalog", tt.medicine)
			}
			value, profit := PriceLine(med, tt.quantity)
			if value != tt.wantValue || profit != tt.wantProfit {
				t.Errorf("PriceLine() = (%v, %v), want (%v, %v)", value, profit, tt.wantValue, tt.wantProfit)
			}
		})
	}
}

func TestCommitBillEmitsOneRecordPerItem(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores()
	notifier := newMockNotifier()
	svc := newTestBillingService(stores, notifier)

	if _, err := svc.AddLineItem(ctx, "S101", apollo, "ElderVit Plus", 2); err != nil {
		t.Fatalf("AddLineItem() error = %v", err)
	}
	if _, err := svc.AddLineItem(ctx, "S101", apollo, "CardioSafe 50", 1); err != nil {
		t.Fatalf("AddLineItem() error = %v", err)
	}

	bill, err := svc.CommitBill(ctx, "S101", &office)
	if err != nil {
		t.Fatalf("CommitBill() error = %v", err)
	}
	if bill.Status != models.BillOrdered {
		t.Errorf("bill status = %s, want ordered", bill.Status)
	}

	records, _ := stores.sales.FindByBill(ctx, bill.ID)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	var value, profit float64
	for _, r := range records {
		value += r.Value
		profit += r.Profit
		if !r.Timestamp.Equal(records[0].Timestamp) {
			t.Error("records do not share a timestamp")
		}
		if r.DeliveryDate == nil || !r.DeliveryDate.Equal(r.Timestamp.Add(72*time.Hour)) {
			t.Errorf("delivery date = %v, want timestamp + 3 days", r.DeliveryDate)
		}
		if r.ShopName != apollo.Name || r.SalesmanName != "Rajesh Kumar" || r.Kind != models.RecordSale {
			t.Errorf("record = %+v", r)
		}
	}
	if value != 950 {
		t.Errorf("sum of values = %v, want 950", value)
	}
	if profit != 165 {
		t.Errorf("sum of profits = %v, want 165.00", profit)
	}
	if bill.Totals.Value != 950 || bill.Totals.Profit != 165 {
		t.Errorf("bill totals = %+v", bill.Totals)
	}

	history, _ := svc.History(ctx, "S101")
	if len(history) != 1 || history[0].ID != bill.ID {
		t.Errorf("History() = %+v, want the ordered bill retained", history)
	}
	if len(notifier.admin) != 1 {
		t.Errorf("managers notified %d times, want 1", len(notifier.admin))
	}

	draft, _ := svc.Draft(ctx, "S101")
	if draft.ID != "" || len(draft.Items) != 0 {
		t.Errorf("Draft() after commit = %+v, want empty", draft)
	}
}

func TestCommitBillRetryAfterFailedClose(t *testing.T) {
	tests := []struct {
		name      string
		edit      func(svc *BillingService, draft *BillView)
		wantValue float64
		wantLines int
	}{
		{
			name:      "Retry unchanged",
			edit:      func(svc *BillingService, draft *BillView) {},
			wantValue: 950,
			wantLines: 2,
		},
		{
			name: "Quantity edited before retry",
			edit: func(svc *BillingService, draft *BillView) {
				svc.SetItemQuantity(context.Background(), "S101", draft.ID, draft.Items[0].ID, 3)
			},
			wantValue: 1200,
			wantLines: 2,
		},
		{
			name: "Line removed before retry",
			edit: func(svc *BillingService, draft *BillView) {
				svc.RemoveLineItem(context.Background(), "S101", draft.Items[1].ID)
			},
			wantValue: 500,
			wantLines: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			blobs := &flakyBlobStore{MemoryBlobStore: repository.NewMemoryBlobStore(), key: repository.KeyBills}
			stores := newTestStoresOn(blobs)
			svc := newTestBillingService(stores, newMockNotifier())

			svc.AddLineItem(ctx, "S101", apollo, "ElderVit Plus", 2)
			draft, _ := svc.AddLineItem(ctx, "S101", apollo, "CardioSafe 50", 1)

			blobs.failures = 1
			if _, err := svc.CommitBill(ctx, "S101", &office); err == nil {
				t.Fatal("CommitBill() succeeded with the bill store down")
			}
			tt.edit(svc, draft)

			bill, err := svc.CommitBill(ctx, "S101", &office)
			if err != nil {
				t.Fatalf("retried CommitBill() error = %v", err)
			}

			records, _ := stores.sales.FindByBill(ctx, bill.ID)
			sales := map[string]int{}
			var sum float64
			for _, r := range records {
				sum += r.Value
				if r.Kind == models.RecordSale {
					sales[r.LineItemID]++
				}
			}
			for line, n := range sales {
				if n != 1 {
					t.Errorf("line %s has %d sale records, want 1", line, n)
				}
			}

			view, _ := svc.Bill(ctx, bill.ID)
			if sum != tt.wantValue || view.Totals.Value != tt.wantValue {
				t.Errorf("ledger sum = %v, view total = %v, want %v", sum, view.Totals.Value, tt.wantValue)
			}
			if len(view.Lines) != tt.wantLines {
				t.Errorf("view lines = %d, want %d", len(view.Lines), tt.wantLines)
			}
			if len(bill.RecordIDs) != len(records) {
				t.Errorf("bill references %d records, ledger has %d", len(bill.RecordIDs), len(records))
			}
		})
	}
}

func TestRemoveLineItemBeforeCommit(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores()
	svc := newTestBillingService(stores, newMockNotifier())

	svc.AddLineItem(ctx, "S101", apollo, "ElderVit Plus", 2)
	before, _ := svc.AddLineItem(ctx, "S101", apollo, "CardioSafe 50", 1)

	removed := before.Items[1]
	after, err := svc.RemoveLineItem(ctx, "S101", removed.ID)
	if err != nil {
		t.Fatalf("RemoveLineItem() error = %v", err)
	}
	if got := before.Totals.Value - after.Totals.Value; got != removed.Value {
		t.Errorf("subtotal dropped by %v, want %v", got, removed.Value)
	}

	bill, err := svc.CommitBill(ctx, "S101", &office)
	if err != nil {
		t.Fatalf("CommitBill() error = %v", err)
	}
	records, _ := stores.sales.FindByBill(ctx, bill.ID)
	for _, r := range records {
		if r.LineItemID == removed.ID || r.MedicineName == removed.MedicineName {
			t.Errorf("removed item was committed: %+v", r)
		}
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
}

func TestAddLineItemValidation(t *testing.T) {
	tests := []struct {
		name     string
		shop     models.Shop
		medicine string
		quantity int
		wantErr  error
	}{
		{name: "Missing shop name", shop: models.Shop{Name: "  "}, medicine: "ElderVit Plus", quantity: 1, wantErr: ErrMissingShopName},
		{name: "Unknown medicine", shop: apollo, medicine: "Snake Oil", quantity: 1, wantErr: ErrUnknownMedicine},
		{name: "Zero quantity", shop: apollo, medicine: "ElderVit Plus", quantity: 0, wantErr: ErrInvalidQuantity},
		{name: "Different shop while a draft is open", shop: models.Shop{Name: "MedPlus"}, medicine: "ElderVit Plus", quantity: 1, wantErr: ErrShopMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc := newTestBillingService(newTestStores(), newMockNotifier())
			if _, err := svc.AddLineItem(ctx, "S101", apollo, "GastroCure", 1); err != nil {
				t.Fatalf("seed AddLineItem() error = %v", err)
			}

			_, err := svc.AddLineItem(ctx, "S101", tt.shop, tt.medicine, tt.quantity)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddLineItem() error = %v, want %v", err, tt.wantErr)
			}
			draft, _ := svc.Draft(ctx, "S101")
			if len(draft.Items) != 1 {
				t.Errorf("draft has %d items, want 1", len(draft.Items))
			}
		})
	}
}

func TestCommitBillValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestBillingService(newTestStores(), newMockNotifier())

	if _, err := svc.CommitBill(ctx, "S101", &office); !errors.Is(err, ErrEmptyBill) {
		t.Errorf("CommitBill() without draft error = %v, want ErrEmptyBill", err)
	}

	added, _ := svc.AddLineItem(ctx, "S101", apollo, "GastroCure", 1)
	svc.RemoveLineItem(ctx, "S101", added.Items[0].ID)
	if _, err := svc.CommitBill(ctx, "S101", &office); !errors.Is(err, ErrEmptyBill) {
		t.Errorf("CommitBill() on emptied draft error = %v, want ErrEmptyBill", err)
	}

	svc.AddLineItem(ctx, "S101", apollo, "GastroCure", 1)
	var missing *MissingLocationError
	if _, err := svc.CommitBill(ctx, "S101", nil); !errors.As(err, &missing) {
		t.Errorf("CommitBill() without location error = %v, want MissingLocationError", err)
	}
}

func TestOrderedBillIsImmutable(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores()
	svc := newTestBillingService(stores, newMockNotifier())

	svc.AddLineItem(ctx, "S101", apollo, "ElderVit Plus", 2)
	bill, _ := svc.CommitBill(ctx, "S101", &office)

	_, err := svc.SetItemQuantity(ctx, "S101", bill.ID, bill.Items[0].ID, 5)
	if !errors.Is(err, ErrBillOrdered) {
		t.Errorf("SetItemQuantity() on ordered bill error = %v, want ErrBillOrdered", err)
	}
	stored, _ := stores.bills.Get(ctx, bill.ID)
	if stored.Items[0].Quantity != 2 {
		t.Errorf("ordered bill quantity changed to %d", stored.Items[0].Quantity)
	}
}

func TestCorrectOrderedItem(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores()
	svc := newTestBillingService(stores, newMockNotifier())

	svc.AddLineItem(ctx, "S101", apollo, "ElderVit Plus", 2)
	svc.AddLineItem(ctx, "S101", apollo, "CardioSafe 50", 1)
	bill, _ := svc.CommitBill(ctx, "S101", &office)
	item := bill.Items[0]

	adj, err := svc.CorrectOrderedItem(ctx, "S101", bill.ID, item.ID, 1)
	if err != nil {
		t.Fatalf("CorrectOrderedItem() error = %v", err)
	}
	if adj.Kind != models.RecordAdjustment || adj.Quantity != -1 || adj.Value != -250 || adj.Profit != -37.5 {
		t.Errorf("adjustment = %+v", adj)
	}
	if adj.AdjustsRecordID == "" {
		t.Error("adjustment does not reference the original record")
	}

	// correcting to the current quantity is a no-op
	if again, err := svc.CorrectOrderedItem(ctx, "S101", bill.ID, item.ID, 1); err != nil || again != nil {
		t.Errorf("repeat correction = %+v, %v", again, err)
	}

	view, err := svc.Bill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("Bill() error = %v", err)
	}
	if view.Totals.Value != 700 || view.Totals.Profit != 127.5 {
		t.Errorf("totals after correction = %+v, want value 700 profit 127.5", view.Totals)
	}

	records, _ := stores.sales.FindByBill(ctx, bill.ID)
	var sum float64
	for _, r := range records {
		sum += r.Value
	}
	if sum != view.Totals.Value {
		t.Errorf("records sum to %v but bill view says %v", sum, view.Totals.Value)
	}

	// dropping the line entirely removes it from the view
	svc.CorrectOrderedItem(ctx, "S101", bill.ID, item.ID, 0)
	view, _ = svc.Bill(ctx, bill.ID)
	if len(view.Lines) != 1 || view.Totals.Value != 450 {
		t.Errorf("view after zeroing = %+v", view)
	}

	stored, _ := stores.bills.Get(ctx, bill.ID)
	if stored.Items[0].Quantity != 2 {
		t.Error("correction rewrote the ordered bill")
	}
}

func TestCorrectOrderedItemErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestBillingService(newTestStores(), newMockNotifier())

	draft, _ := svc.AddLineItem(ctx, "S101", apollo, "ElderVit Plus", 2)
	if _, err := svc.CorrectOrderedItem(ctx, "S101", draft.ID, draft.Items[0].ID, 1); !errors.Is(err, ErrBillNotOrdered) {
		t.Errorf("correction on draft error = %v, want ErrBillNotOrdered", err)
	}

	bill, _ := svc.CommitBill(ctx, "S101", &office)
	if _, err := svc.CorrectOrderedItem(ctx, "S102", bill.ID, bill.Items[0].ID, 1); !errors.Is(err, ErrNotBillOwner) {
		t.Errorf("correction by another salesman error = %v, want ErrNotBillOwner", err)
	}
	if _, err := svc.CorrectOrderedItem(ctx, "S101", bill.ID, "nope", 1); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("correction of unknown item error = %v, want ErrItemNotFound", err)
	}
	if _, err := svc.CorrectOrderedItem(ctx, "S101", bill.ID, bill.Items[0].ID, -1); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("negative correction error = %v, want ErrInvalidQuantity", err)
	}
}
