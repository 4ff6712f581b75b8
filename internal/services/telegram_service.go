package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/gemmarket/internal/models"
)

// ModerationNotifier tells administrators about listings awaiting review.
type ModerationNotifier interface {
	NotifyPendingProduct(ctx context.Context, product models.Product, seller models.User) error
}

// TelegramService sends notifications to the admin Telegram chat.
type TelegramService struct {
	botToken    string
	adminChatID string
	baseURL     string
	client      *http.Client
	log         *zap.Logger
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string, log *zap.Logger) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		baseURL:     "https://api.telegram.org",
		client:      &http.Client{Timeout: 10 * time.Second},
		log:         log,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" {
		s.log.Debug("telegram bot token not configured")
		return nil
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)

	body, err := json.Marshal(telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(ctx context.Context, text string) error {
	if s.adminChatID == "" {
		s.log.Debug("telegram admin chat not configured")
		return nil
	}
	return s.SendMessage(ctx, s.adminChatID, text)
}

// FormatPrice formats price with currency and thousand separators.
func FormatPrice(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = models.CurrencyMMK
	}
	amount = amount.Round(2)

	whole := amount.Truncate(0).Abs().String()
	var result strings.Builder
	if amount.IsNegative() {
		result.WriteByte('-')
	}
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			result.WriteByte(',')
		}
		result.WriteRune(digit)
	}
	if frac := amount.Abs().Sub(amount.Abs().Truncate(0)); !frac.IsZero() {
		result.WriteString(strings.TrimPrefix(frac.StringFixed(2), "0"))
	}

	return result.String() + " " + currency
}

// NotifyPendingProduct announces a listing that needs moderation.
func (s *TelegramService) NotifyPendingProduct(ctx context.Context, product models.Product, seller models.User) error {
	if s.adminChatID == "" {
		return nil
	}

	contact := seller.Email
	if seller.Phone != nil {
		contact = *seller.Phone
	}

	message := fmt.Sprintf(`<b>New listing awaiting review</b>
<b>Title:</b> %s
<b>SKU:</b> %s
<b>Type:</b> %s
<b>Price:</b> %s
<b>Seller:</b> %s (%s)
<b>ID:</b> <code>%s</code>`,
		html.EscapeString(product.Title),
		html.EscapeString(product.SKU),
		product.ProductType,
		FormatPrice(product.Price, product.Currency),
		html.EscapeString(seller.Name),
		html.EscapeString(contact),
		product.ID,
	)

	return s.SendToAdmin(ctx, strings.TrimSpace(message))
}
