package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"filedepot/internal/config"
	"filedepot/internal/logger"
)

// TelegramDriver stores objects as bot-uploaded documents in a single chat.
// Physical keys are "<messageID>:<fileID>"; the message ID is needed for
// deletion, the file ID for download.
type TelegramDriver struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	http   *http.Client
}

func NewTelegramDriver(cfg config.TelegramConfig) (*TelegramDriver, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("%w: telegram auth: %v", ErrUnavailable, err)
	}
	return &TelegramDriver{bot: bot, chatID: cfg.ChatID, http: http.DefaultClient}, nil
}

func (d *TelegramDriver) Upload(ctx context.Context, content io.Reader, name, mimeType, userScope string) (string, error) {
	// The scope travels in the caption since the bot API has no key space.
	doc := tgbotapi.NewDocument(d.chatID, tgbotapi.FileReader{Name: name, Reader: content})
	doc.Caption = userScope + "/" + name
	msg, err := d.bot.Send(doc)
	if err != nil {
		return "", fmt.Errorf("%w: send document %s: %v", ErrRejected, name, err)
	}
	if msg.Document == nil {
		return "", fmt.Errorf("%w: no document in response for %s", ErrRejected, name)
	}
	return fmt.Sprintf("%d:%s", msg.MessageID, msg.Document.FileID), nil
}

func (d *TelegramDriver) Download(ctx context.Context, key string) (io.ReadCloser, string, int64, error) {
	_, fileID, err := splitTelegramKey(key)
	if err != nil {
		return nil, "", 0, err
	}
	file, err := d.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, "", 0, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(d.bot.Token), nil)
	if err != nil {
		return nil, "", 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := d.http.Do(req)
	if err != nil {
		return nil, "", 0, fmt.Errorf("%w: fetch %s: %v", ErrUnavailable, key, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", 0, fmt.Errorf("%w: fetch %s: status %d", ErrUnavailable, key, resp.StatusCode)
	}
	return resp.Body, resp.Header.Get("Content-Type"), resp.ContentLength, nil
}

func (d *TelegramDriver) Remove(ctx context.Context, keys []string) {
	for _, key := range keys {
		messageID, _, err := splitTelegramKey(key)
		if err != nil {
			logger.Warn("telegram: skipping malformed key %s", key)
			continue
		}
		if _, err := d.bot.Request(tgbotapi.NewDeleteMessage(d.chatID, messageID)); err != nil {
			logger.Warn("telegram: failed to delete message %d: %v", messageID, err)
		}
	}
}

// Move is a metadata no-op: documents are ID-addressed, so the old key stays
// authoritative after a logical rename.
func (d *TelegramDriver) Move(ctx context.Context, oldKey, newKey string) (string, error) {
	return oldKey, nil
}

// List is unsupported: the bot API cannot enumerate uploaded documents.
func (d *TelegramDriver) List(ctx context.Context, prefix string) ([]Object, error) {
	logger.Warn("telegram: backend cannot list objects, returning empty page")
	return nil, nil
}

func splitTelegramKey(key string) (int, string, error) {
	messagePart, fileID, ok := strings.Cut(key, ":")
	if !ok {
		return 0, "", fmt.Errorf("%w: malformed key %s", ErrNotFound, key)
	}
	messageID, err := strconv.Atoi(messagePart)
	if err != nil {
		return 0, "", fmt.Errorf("%w: malformed key %s", ErrNotFound, key)
	}
	return messageID, fileID, nil
}
