package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"med-field-force/internal/models"
	"med-field-force/internal/repository"
)

// Fallback texts when the generator is unavailable
const (
	InsightsUnavailable    = "AI insights currently unavailable."
	InsightsFailed         = "Unable to generate insights at this moment."
	ManagerSummaryFailed   = "Manager summary generation failed."
	insightsRequestTimeout = 30 * time.Second
)

// TextGenerator produces free text from a prompt
type TextGenerator interface {
	Configured() bool
	Generate(ctx context.Context, prompt string) (string, error)
}

// InsightService asks the text generator for coaching tips and summaries
type InsightService struct {
	salesRepo repository.SalesStore
	staffRepo repository.StaffStore
	generator TextGenerator
	now       func() time.Time
}

// NewInsightService creates a new insight service
func NewInsightService(salesRepo repository.SalesStore, staffRepo repository.StaffStore, generator TextGenerator) *InsightService {
	return &InsightService{
		salesRepo: salesRepo,
		staffRepo: staffRepo,
		generator: generator,
		now:       time.Now,
	}
}

// SalesSummary renders records as "medicine: Qty q, Val v; ..."
func SalesSummary(records []models.SalesRecord) string {
	parts := make([]string, 0, len(records))
	for _, r := range records {
		parts = append(parts, fmt.Sprintf("%s: Qty %d, Val %g", r.MedicineName, r.Quantity, r.Value))
	}
	return strings.Join(parts, "; ")
}

// PerformanceInsights returns coaching tips for a salesman. It never fails:
// problems are reported through the fixed fallback texts.
func (s *InsightService) PerformanceInsights(ctx context.Context, salesmanID string) string {
	if s.generator == nil || !s.generator.Configured() {
		return InsightsUnavailable
	}

	staff, err := s.staffRepo.Get(ctx, salesmanID)
	if err != nil {
		log.Printf("❌ Insights: unknown salesman %s: %v", salesmanID, err)
		return InsightsFailed
	}
	records, err := s.salesRepo.FindByUser(ctx, salesmanID)
	if err != nil {
		log.Printf("❌ Insights: failed to read sales: %v", err)
		return InsightsFailed
	}

	prompt := fmt.Sprintf(
		"Analyze this sales performance for %s: %s. Provide 3 short actionable tips to increase sales and profit for Elder Laboratories. Keep it professional and motivational.",
		staff.Name, SalesSummary(records))

	ctx, cancel := context.WithTimeout(ctx, insightsRequestTimeout)
	defer cancel()
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		log.Printf("❌ Gemini error: %v", err)
		return InsightsFailed
	}
	return text
}

// ManagerSummary returns a team summary for today. Without a configured
// generator it returns an empty string.
func (s *InsightService) ManagerSummary(ctx context.Context) string {
	if s.generator == nil || !s.generator.Configured() {
		return ""
	}

	records, err := s.salesRepo.List(ctx)
	if err != nil {
		log.Printf("❌ Manager summary: failed to read sales: %v", err)
		return ManagerSummaryFailed
	}
	visits, _ := todaySummary(records, s.now())

	prompt := fmt.Sprintf(
		"Based on %d total shop visits today, summarize team performance. Focus on high-value products and overall revenue health.",
		visits)

	ctx, cancel := context.WithTimeout(ctx, insightsRequestTimeout)
	defer cancel()
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		log.Printf("❌ Gemini error: %v", err)
		return ManagerSummaryFailed
	}
	return text
}
