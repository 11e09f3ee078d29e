package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"med-field-force/internal/models"
	"med-field-force/internal/repository"
)

// deliveryLeadTime is how long after ordering a bill is delivered
const deliveryLeadTime = 3 * 24 * time.Hour

// BillTotals is the derived sum over a bill's lines
type BillTotals struct {
	Items  int     `json:"items"`
	Value  float64 `json:"value"`
	Profit float64 `json:"profit"`
}

// BillView is a bill together with its effective lines and totals. For an
// ordered bill the lines are rebuilt from the sales records, corrections
// included.
type BillView struct {
	models.Bill
	Lines  []models.LineItem `json:"lines"`
	Totals BillTotals        `json:"totals"`
}

// PriceLine computes value = price × qty and profit = value × margin,
// each rounded to 2 places. A negative quantity yields negative amounts.
func PriceLine(med models.Medicine, quantity int) (value, profit float64) {
	v := decimal.NewFromFloat(med.Price).Mul(decimal.NewFromInt(int64(quantity))).Round(2)
	p := v.Mul(decimal.NewFromFloat(med.ProfitMargin)).Round(2)
	return v.InexactFloat64(), p.InexactFloat64()
}

// Totals sums value and profit over items
func Totals(items []models.LineItem) BillTotals {
	value, profit := decimal.Zero, decimal.Zero
	for _, it := range items {
		value = value.Add(decimal.NewFromFloat(it.Value))
		profit = profit.Add(decimal.NewFromFloat(it.Profit))
	}
	return BillTotals{
		Items:  len(items),
		Value:  value.Round(2).InexactFloat64(),
		Profit: profit.Round(2).InexactFloat64(),
	}
}

// BillingService builds shop bills and commits them as sales records
type BillingService struct {
	billRepo    repository.BillStore
	salesRepo   repository.SalesStore
	staffRepo   repository.StaffStore
	botNotifier BotNotifier
	now         func() time.Time

	mu sync.Mutex
}

// NewBillingService creates a new billing service
func NewBillingService(
	billRepo repository.BillStore,
	salesRepo repository.SalesStore,
	staffRepo repository.StaffStore,
	botNotifier BotNotifier,
) *BillingService {
	return &BillingService{
		billRepo:    billRepo,
		salesRepo:   salesRepo,
		staffRepo:   staffRepo,
		botNotifier: botNotifier,
		now:         time.Now,
	}
}

func (s *BillingService) findDraft(ctx context.Context, salesmanID string) (*models.Bill, error) {
	draft, err := s.billRepo.FindDraft(ctx, salesmanID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return draft, err
}

// Draft returns the salesman's open bill, or an empty view when there is none
func (s *BillingService) Draft(ctx context.Context, salesmanID string) (*BillView, error) {
	draft, err := s.findDraft(ctx, salesmanID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return &BillView{
			Bill:  models.Bill{SalesmanID: salesmanID, Status: models.BillDraft, Items: []models.LineItem{}},
			Lines: []models.LineItem{},
		}, nil
	}
	return &BillView{Bill: *draft, Lines: draft.Items, Totals: Totals(draft.Items)}, nil
}

// AddLineItem prices a catalog entry and appends it to the salesman's open
// bill, opening one for shop if needed
func (s *BillingService) AddLineItem(ctx context.Context, salesmanID string, shop models.Shop, medicineName string, quantity int) (*BillView, error) {
	shop.Name = strings.TrimSpace(shop.Name)
	if shop.Name == "" {
		return nil, ErrMissingShopName
	}
	med, ok := models.FindMedicine(medicineName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMedicine, medicineName)
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.findDraft(ctx, salesmanID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		draft = &models.Bill{
			ID:         uuid.NewString(),
			SalesmanID: salesmanID,
			Shop:       shop,
			Status:     models.BillDraft,
			CreatedAt:  s.now(),
		}
	} else if !strings.EqualFold(draft.Shop.Name, shop.Name) {
		return nil, fmt.Errorf("%w: %s", ErrShopMismatch, draft.Shop.Name)
	} else {
		if shop.Address != "" {
			draft.Shop.Address = shop.Address
		}
		if shop.Mobile != "" {
			draft.Shop.Mobile = shop.Mobile
		}
	}

	value, profit := PriceLine(med, quantity)
	draft.Items = append(append([]models.LineItem(nil), draft.Items...), models.LineItem{
		ID:           newID(),
		MedicineName: med.Name,
		Quantity:     quantity,
		Price:        med.Price,
		Value:        value,
		Profit:       profit,
	})

	if err := s.billRepo.Save(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}
	return &BillView{Bill: *draft, Lines: draft.Items, Totals: Totals(draft.Items)}, nil
}

// RemoveLineItem drops an item from the salesman's open bill
func (s *BillingService) RemoveLineItem(ctx context.Context, salesmanID, itemID string) (*BillView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.findDraft(ctx, salesmanID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, ErrItemNotFound
	}
	if err := s.editItems(ctx, draft, itemID, func(items []models.LineItem, i int) []models.LineItem {
		return append(items[:i], items[i+1:]...)
	}); err != nil {
		return nil, err
	}
	return &BillView{Bill: *draft, Lines: draft.Items, Totals: Totals(draft.Items)}, nil
}

// SetItemQuantity changes the quantity of a line on a draft bill. Ordered
// bills are rejected with ErrBillOrdered; use CorrectOrderedItem instead.
func (s *BillingService) SetItemQuantity(ctx context.Context, salesmanID, billID, itemID string, quantity int) (*BillView, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bill, err := s.ownedBill(ctx, salesmanID, billID)
	if err != nil {
		return nil, err
	}
	if err := s.editItems(ctx, bill, itemID, func(items []models.LineItem, i int) []models.LineItem {
		med := models.Medicine{Name: items[i].MedicineName, Price: items[i].Price, ProfitMargin: marginOf(items[i])}
		items[i].Quantity = quantity
		items[i].Value, items[i].Profit = PriceLine(med, quantity)
		return items
	}); err != nil {
		return nil, err
	}
	return &BillView{Bill: *bill, Lines: bill.Items, Totals: Totals(bill.Items)}, nil
}

// editItems applies edit to the item with itemID and saves the bill.
// Only draft bills may be edited.
func (s *BillingService) editItems(ctx context.Context, bill *models.Bill, itemID string, edit func([]models.LineItem, int) []models.LineItem) error {
	if bill.Status != models.BillDraft {
		return ErrBillOrdered
	}
	for i := range bill.Items {
		if bill.Items[i].ID == itemID {
			// stored bills share their item arrays, so edit a copy
			items := append([]models.LineItem(nil), bill.Items...)
			bill.Items = edit(items, i)
			if err := s.billRepo.Save(ctx, bill); err != nil {
				return fmt.Errorf("failed to save bill: %w", err)
			}
			return nil
		}
	}
	return ErrItemNotFound
}

func (s *BillingService) ownedBill(ctx context.Context, salesmanID, billID string) (*models.Bill, error) {
	bill, err := s.billRepo.Get(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.SalesmanID != salesmanID {
		return nil, ErrNotBillOwner
	}
	return bill, nil
}

// CommitBill orders the salesman's open bill: one sales record per line,
// all sharing a timestamp and a delivery date three days out
func (s *BillingService) CommitBill(ctx context.Context, salesmanID string, location *models.Location) (*BillView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.findDraft(ctx, salesmanID)
	if err != nil {
		return nil, err
	}
	if draft == nil || len(draft.Items) == 0 {
		return nil, ErrEmptyBill
	}
	if location == nil {
		return nil, &MissingLocationError{Operation: "bill commit"}
	}

	salesmanName := salesmanID
	if staff, err := s.staffRepo.Get(ctx, salesmanID); err == nil {
		salesmanName = staff.Name
	}

	// a previous attempt may have written records before failing to close the bill
	existing, err := s.salesRepo.FindByBill(ctx, draft.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	delivery := now.Add(deliveryLeadTime)
	for _, r := range existing {
		if r.Kind == models.RecordSale && r.DeliveryDate != nil {
			now, delivery = r.Timestamp, *r.DeliveryDate
			break
		}
	}

	template := models.SalesRecord{
		SalesmanID:   salesmanID,
		SalesmanName: salesmanName,
		BillID:       draft.ID,
		ShopName:     draft.Shop.Name,
		ShopAddress:  draft.Shop.Address,
		ShopMobile:   draft.Shop.Mobile,
		Timestamp:    now,
		DeliveryDate: &delivery,
		Location:     *location,
	}
	records := reconcileRecords(template, draft.Items, existing)

	if len(records) > 0 {
		if err := s.salesRepo.Append(ctx, records...); err != nil {
			return nil, fmt.Errorf("failed to record sales: %w", err)
		}
	}
	records = append(existing, records...)

	ordered := *draft
	ordered.Status = models.BillOrdered
	ordered.OrderedAt = &now
	ordered.DeliveryDate = &delivery
	for _, r := range records {
		ordered.RecordIDs = append(ordered.RecordIDs, r.ID)
	}
	if err := s.billRepo.Save(ctx, &ordered); err != nil {
		return nil, fmt.Errorf("sales recorded but failed to close bill %s: %w", ordered.ID, err)
	}

	totals := Totals(ordered.Items)
	log.Printf("🧾 %s ordered bill %s for %s: %d items, ₹%.2f", salesmanName, ordered.ID, ordered.Shop.Name, totals.Items, totals.Value)
	s.botNotifier.SendNotification(fmt.Sprintf(
		"🧾 *New order*\n👤 Salesman: `%s`\n🏪 Shop: `%s`\n📦 Items: %d\n💰 Value: ₹%.2f\n🚚 Delivery: %s",
		salesmanName, ordered.Shop.Name, totals.Items, totals.Value, delivery.Format("2006-01-02"),
	))

	return &BillView{Bill: ordered, Lines: ordered.Items, Totals: totals}, nil
}

// CorrectOrderedItem records a compensating ADJUSTMENT so the line's
// effective quantity becomes newQuantity. The ordered bill itself is not
// touched. Returns nil when the quantity is already newQuantity.
func (s *BillingService) CorrectOrderedItem(ctx context.Context, salesmanID, billID, itemID string, newQuantity int) (*models.SalesRecord, error) {
	if newQuantity < 0 {
		return nil, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bill, err := s.ownedBill(ctx, salesmanID, billID)
	if err != nil {
		return nil, err
	}
	if bill.Status != models.BillOrdered {
		return nil, ErrBillNotOrdered
	}

	var item *models.LineItem
	for i := range bill.Items {
		if bill.Items[i].ID == itemID {
			item = &bill.Items[i]
			break
		}
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	records, err := s.salesRepo.FindByBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	var original *models.SalesRecord
	current := 0
	for i := range records {
		if records[i].LineItemID != itemID {
			continue
		}
		current += records[i].Quantity
		if records[i].Kind == models.RecordSale {
			original = &records[i]
		}
	}
	if original == nil {
		return nil, fmt.Errorf("no sales record for item %s: %w", itemID, ErrItemNotFound)
	}

	delta := newQuantity - current
	if delta == 0 {
		return nil, nil
	}

	adjustment := adjustmentOf(*original, delta, s.now())
	if err := s.salesRepo.Append(ctx, adjustment); err != nil {
		return nil, fmt.Errorf("failed to record adjustment: %w", err)
	}

	log.Printf("✏️ Adjusted %s on bill %s by %+d (now %d)", item.MedicineName, billID, delta, newQuantity)
	return &adjustment, nil
}

// reconcileRecords returns the records still needed so the ledger for a bill
// matches its lines: a SALE per unrecorded line, an ADJUSTMENT where an
// earlier record no longer matches the line's quantity or the line is gone
func reconcileRecords(template models.SalesRecord, items []models.LineItem, existing []models.SalesRecord) []models.SalesRecord {
	recorded := make(map[string]int)
	originals := make(map[string]models.SalesRecord)
	for _, r := range existing {
		recorded[r.LineItemID] += r.Quantity
		if r.Kind == models.RecordSale {
			originals[r.LineItemID] = r
		}
	}

	var out []models.SalesRecord
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		seen[item.ID] = true
		original, ok := originals[item.ID]
		if !ok {
			r := template
			r.ID = newID()
			r.LineItemID = item.ID
			r.Kind = models.RecordSale
			r.MedicineName = item.MedicineName
			r.Quantity = item.Quantity
			r.UnitValue = item.Price
			r.Value = item.Value
			r.Profit = item.Profit
			out = append(out, r)
			continue
		}
		if delta := item.Quantity - recorded[item.ID]; delta != 0 {
			out = append(out, adjustmentOf(original, delta, template.Timestamp))
		}
	}
	for lineID, original := range originals {
		if !seen[lineID] && recorded[lineID] != 0 {
			out = append(out, adjustmentOf(original, -recorded[lineID], template.Timestamp))
		}
	}
	return out
}

// adjustmentOf builds a compensating record moving a line by delta units
func adjustmentOf(original models.SalesRecord, delta int, at time.Time) models.SalesRecord {
	med := models.Medicine{Name: original.MedicineName, Price: original.UnitValue, ProfitMargin: recordMargin(original)}
	value, profit := PriceLine(med, delta)
	adj := original
	adj.ID = newID()
	adj.Kind = models.RecordAdjustment
	adj.AdjustsRecordID = original.ID
	adj.Quantity = delta
	adj.Value = value
	adj.Profit = profit
	adj.Timestamp = at
	return adj
}

func recordMargin(r models.SalesRecord) float64 {
	return marginOf(models.LineItem{MedicineName: r.MedicineName, Value: r.Value, Profit: r.Profit})
}

// marginOf recovers the profit margin of a priced line
func marginOf(item models.LineItem) float64 {
	if med, ok := models.FindMedicine(item.MedicineName); ok {
		return med.ProfitMargin
	}
	if item.Value == 0 {
		return 0
	}
	return decimal.NewFromFloat(item.Profit).Div(decimal.NewFromFloat(item.Value)).InexactFloat64()
}

// History lists a salesman's bills, newest first, with effective lines
func (s *BillingService) History(ctx context.Context, salesmanID string) ([]BillView, error) {
	bills, err := s.billRepo.FindByUser(ctx, salesmanID)
	if err != nil {
		return nil, err
	}
	records, err := s.salesRepo.FindByUser(ctx, salesmanID)
	if err != nil {
		return nil, err
	}

	byBill := make(map[string][]models.SalesRecord)
	for _, r := range records {
		byBill[r.BillID] = append(byBill[r.BillID], r)
	}

	views := make([]BillView, 0, len(bills))
	for _, b := range bills {
		views = append(views, viewOf(b, byBill[b.ID]))
	}
	return views, nil
}

// Bill returns a single bill view
func (s *BillingService) Bill(ctx context.Context, billID string) (*BillView, error) {
	bill, err := s.billRepo.Get(ctx, billID)
	if err != nil {
		return nil, err
	}
	records, err := s.salesRepo.FindByBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	view := viewOf(*bill, records)
	return &view, nil
}

// viewOf folds sales records back into lines for ordered bills
func viewOf(bill models.Bill, records []models.SalesRecord) BillView {
	if bill.Status != models.BillOrdered {
		return BillView{Bill: bill, Lines: bill.Items, Totals: Totals(bill.Items)}
	}

	type acc struct {
		qty           int
		value, profit decimal.Decimal
	}
	sums := make(map[string]*acc)
	for _, r := range records {
		a, ok := sums[r.LineItemID]
		if !ok {
			a = &acc{}
			sums[r.LineItemID] = a
		}
		a.qty += r.Quantity
		a.value = a.value.Add(decimal.NewFromFloat(r.Value))
		a.profit = a.profit.Add(decimal.NewFromFloat(r.Profit))
	}

	lines := make([]models.LineItem, 0, len(bill.Items))
	for _, it := range bill.Items {
		a, ok := sums[it.ID]
		if !ok {
			continue
		}
		if a.qty == 0 {
			continue
		}
		it.Quantity = a.qty
		it.Value = a.value.Round(2).InexactFloat64()
		it.Profit = a.profit.Round(2).InexactFloat64()
		lines = append(lines, it)
	}
	return BillView{Bill: bill, Lines: lines, Totals: Totals(lines)}
}
