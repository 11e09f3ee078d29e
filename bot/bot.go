package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"med-field-force/internal/models"
	"med-field-force/internal/repository"
	"med-field-force/internal/services"
)

const recentSalesShown = 5

var (
	bot          *tgbotapi.BotAPI
	targetChatID int64
	deps         *Services
)

// Services are what the bot commands read and update
type Services struct {
	Staff     *services.StaffService
	Dashboard *services.DashboardService
	Sales     repository.SalesStore
}

// SetServices wires the command handlers to the application services
func SetServices(s *Services) {
	deps = s
}

// Init initializes the Telegram Bot
func Init(token string, authorizedChatIDStr string) error {
	var err error
	bot, err = tgbotapi.NewBotAPI(token)
	if err != nil {
		return err
	}

	bot.Debug = false
	log.Printf("Authorized on account %s", bot.Self.UserName)

	if authorizedChatIDStr != "" {
		id, err := strconv.ParseInt(authorizedChatIDStr, 10, 64)
		if err == nil {
			targetChatID = id
		}
	}

	return nil
}

// StartPolling starts the update loop. It stops when ctx is cancelled.
func StartPolling(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := bot.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		bot.StopReceivingUpdates()
	}()

	go func() {
		for update := range updates {
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
			msg.ParseMode = "Markdown"
			msg.Text = HandleCommand(ctx, update.Message.Chat.ID, update.Message.Command(), update.Message.CommandArguments())

			if _, err := bot.Send(msg); err != nil {
				log.Printf("Bot send error: %v", err)
			}
		}
	}()
}

// HandleCommand returns the reply to a command sent from chatID
func HandleCommand(ctx context.Context, chatID int64, command, args string) string {
	switch command {
	case "start":
		return "🏢 *Elder Field Force*\n\n" +
			"*Commands:*\n" +
			"/link <employee id> - link this chat\n" +
			"/today - today's summary\n" +
			"/tasks - pending tasks\n" +
			"/sales - latest sales\n" +
			"/getid - show chat id"

	case "getid":
		return fmt.Sprintf("Chat ID: `%d`", chatID)

	case "link":
		return handleLink(ctx, chatID, args)

	case "today":
		return handleToday(ctx, chatID)

	case "tasks":
		return handleTasks(ctx, chatID)

	case "sales":
		return handleSales(ctx, chatID)
	}
	return "Unknown command. Use /start"
}

func handleLink(ctx context.Context, chatID int64, args string) string {
	employeeID := strings.TrimSpace(args)
	if employeeID == "" {
		return "Usage: `/link <employee id>`"
	}
	if deps == nil {
		return "❌ Service unavailable"
	}
	staff, err := deps.Staff.LinkTelegram(ctx, employeeID, chatID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Sprintf("❌ No staff member with id `%s`", employeeID)
	}
	if err != nil {
		return fmt.Sprintf("❌ Error: %v", err)
	}
	return fmt.Sprintf("✅ Linked!\nName: %s\nID: %s", staff.Name, staff.EmployeeID)
}

// linkedStaff returns the staff member for chatID or the reply to send
func linkedStaff(ctx context.Context, chatID int64) (*models.StaffMember, string) {
	if deps == nil {
		return nil, "❌ Service unavailable"
	}
	staff, err := deps.Staff.FindByChatID(ctx, chatID)
	if err != nil {
		return nil, "❌ Not linked. Use /link <employee id>"
	}
	return staff, ""
}

func handleToday(ctx context.Context, chatID int64) string {
	staff, reply := linkedStaff(ctx, chatID)
	if staff == nil {
		return reply
	}
	dash, err := deps.Dashboard.Salesman(ctx, staff.ID)
	if err != nil {
		return fmt.Sprintf("❌ Error: %v", err)
	}
	state := "Away"
	if dash.State == services.OnDutyState {
		state = "On duty"
	}
	return fmt.Sprintf("📊 *Today* (%s)\nStatus: %s\nVisits: %d\nValue: ₹%.2f",
		dash.Date, state, dash.Visits, dash.TodayValue)
}

func handleTasks(ctx context.Context, chatID int64) string {
	staff, reply := linkedStaff(ctx, chatID)
	if staff == nil {
		return reply
	}
	var sb strings.Builder
	for _, task := range staff.AssignedTasks {
		if task.Status != models.TaskPending {
			continue
		}
		fmt.Fprintf(&sb, "• %s (⏰ %s)\n", task.Title, task.Deadline)
	}
	if sb.Len() == 0 {
		return "✅ No pending tasks"
	}
	return "📋 *Pending tasks*\n\n" + sb.String()
}

func handleSales(ctx context.Context, chatID int64) string {
	staff, reply := linkedStaff(ctx, chatID)
	if staff == nil {
		return reply
	}
	records, err := deps.Sales.FindByUser(ctx, staff.ID)
	if err != nil {
		return fmt.Sprintf("❌ Error: %v", err)
	}
	if len(records) == 0 {
		return "No sales recorded yet"
	}
	if len(records) > recentSalesShown {
		records = records[:recentSalesShown]
	}
	text := "🧾 *Latest sales*\n\n"
	for _, r := range records {
		text += fmt.Sprintf("%s %s: %s ×%d = ₹%.2f\n", r.Timestamp.Format("02/01"), r.ShopName, r.MedicineName, r.Quantity, r.Value)
	}
	return text
}

// SendNotification sends message to admin
func SendNotification(message string) {
	if bot == nil || targetChatID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(targetChatID, message)
	msg.ParseMode = "Markdown"
	if _, err := bot.Send(msg); err != nil {
		log.Printf("Failed to send: %v", err)
	}
}

// SendPersonalNotification sends to specific user
func SendPersonalNotification(chatID int64, message string) {
	if bot == nil {
		return
	}
	msg := tgbotapi.NewMessage(chatID, message)
	msg.ParseMode = "Markdown"
	if _, err := bot.Send(msg); err != nil {
		log.Printf("Failed to send to %d: %v", chatID, err)
	}
}
