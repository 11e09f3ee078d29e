package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"med-field-force/internal/models"
	"med-field-force/internal/repository"
)

// StaffPresence is a staff member's status for the day
type StaffPresence string

const (
	PresenceWorking StaffPresence = "Working"
	PresenceOnLeave StaffPresence = "On Leave"
	PresenceAbsent  StaffPresence = "Absent"
)

const recentSalesLimit = 5

// StaffStatus is one row of the manager's roster view
type StaffStatus struct {
	Staff    models.StaffMember `json:"staff"`
	Presence StaffPresence      `json:"presence"`
	CheckIn  *time.Time         `json:"check_in,omitempty"`
	Place    string             `json:"place,omitempty"`
}

// ManagerDashboard is the manager's view of today
type ManagerDashboard struct {
	Date          string               `json:"date"`
	Staff         []StaffStatus        `json:"staff"`
	RecentSales   []models.SalesRecord `json:"recent_sales"`
	TodayVisits   int                  `json:"today_visits"`
	TodayValue    float64              `json:"today_value"`
	PendingLeaves int                  `json:"pending_leaves"`
}

// SalesmanDashboard is a salesman's view of today
type SalesmanDashboard struct {
	Date       string        `json:"date"`
	TodayValue float64       `json:"today_value"`
	Visits     int           `json:"visits"`
	Tasks      []models.Task `json:"tasks"`
	State      DutyState     `json:"state"`
}

// DashboardService builds the per-role summaries
type DashboardService struct {
	staffRepo      repository.StaffStore
	attendanceRepo repository.AttendanceStore
	salesRepo      repository.SalesStore
	leaveRepo      repository.LeaveStore
	now            func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	staffRepo repository.StaffStore,
	attendanceRepo repository.AttendanceStore,
	salesRepo repository.SalesStore,
	leaveRepo repository.LeaveStore,
) *DashboardService {
	return &DashboardService{
		staffRepo:      staffRepo,
		attendanceRepo: attendanceRepo,
		salesRepo:      salesRepo,
		leaveRepo:      leaveRepo,
		now:            time.Now,
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

// todaySummary counts distinct bills as visits and sums record values
func todaySummary(records []models.SalesRecord, now time.Time) (visits int, value float64) {
	bills := make(map[string]struct{})
	total := decimal.Zero
	for _, r := range records {
		if !sameDay(now, r.Timestamp) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(r.Value))
		if r.Kind == models.RecordSale {
			bills[r.BillID] = struct{}{}
		}
	}
	return len(bills), total.Round(2).InexactFloat64()
}

// Manager builds the roster status for today and the latest shop sales
func (s *DashboardService) Manager(ctx context.Context) (*ManagerDashboard, error) {
	now := s.now()

	staff, err := s.staffRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.attendanceRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	leaves, err := s.leaveRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := s.salesRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	// events are newest first, so the last IN seen per user is the first of the day
	firstIn := make(map[string]models.AttendanceEvent)
	for _, e := range events {
		if e.Type == models.EventIn && sameDay(now, e.Timestamp) {
			firstIn[e.UserID] = e
		}
	}
	onLeave := make(map[string]bool)
	pending := 0
	for _, l := range leaves {
		if l.Status == models.LeaveApproved && coversDay(l, now) {
			onLeave[l.UserID] = true
		}
		if l.Status == models.LeavePending {
			pending++
		}
	}

	dash := &ManagerDashboard{
		Date:          now.Format(dateLayout),
		Staff:         make([]StaffStatus, 0, len(staff)),
		PendingLeaves: pending,
	}
	for _, m := range staff {
		if m.Role == models.RoleManager {
			continue
		}
		row := StaffStatus{Staff: m, Presence: PresenceAbsent}
		if e, ok := firstIn[m.ID]; ok {
			row.Presence = PresenceWorking
			ts := e.Timestamp
			row.CheckIn = &ts
			row.Place = e.Place
		} else if onLeave[m.ID] {
			row.Presence = PresenceOnLeave
		}
		dash.Staff = append(dash.Staff, row)
	}

	if len(sales) > recentSalesLimit {
		dash.RecentSales = sales[:recentSalesLimit]
	} else {
		dash.RecentSales = sales
	}
	dash.TodayVisits, dash.TodayValue = todaySummary(sales, now)
	return dash, nil
}

// Salesman builds the daily summary for one salesman
func (s *DashboardService) Salesman(ctx context.Context, salesmanID string) (*SalesmanDashboard, error) {
	now := s.now()

	staff, err := s.staffRepo.Get(ctx, salesmanID)
	if err != nil {
		return nil, err
	}
	records, err := s.salesRepo.FindByUser(ctx, salesmanID)
	if err != nil {
		return nil, err
	}
	events, err := s.attendanceRepo.FindByUser(ctx, salesmanID)
	if err != nil {
		return nil, err
	}

	dash := &SalesmanDashboard{
		Date:  now.Format(dateLayout),
		Tasks: staff.AssignedTasks,
		State: StateAfter(events),
	}
	if dash.Tasks == nil {
		dash.Tasks = []models.Task{}
	}
	dash.Visits, dash.TodayValue = todaySummary(records, now)
	return dash, nil
}
