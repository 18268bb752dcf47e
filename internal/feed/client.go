package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/yeldaryernazarov/NestVision/internal/config"
	"github.com/yeldaryernazarov/NestVision/internal/logging"
)

// ErrTransport marks feed API failures: the endpoint was unreachable, rejected
// the request, or refused access to a file. Callers back off and retry; they
// never treat it as data corruption.
var ErrTransport = errors.New("feed: transport error")

// Client talks to the incident message feed's bot API. Construct it with New;
// a Client that exists has already passed the credential probe.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	limiter    *rate.Limiter
	logger     *slog.Logger
	bot        BotInfo
}

// BotInfo identifies the authenticated bot account.
type BotInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"first_name"`
}

// VideoAttachment is the video payload carried by a feed message.
type VideoAttachment struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	Duration int64  `json:"duration"`
}

// Message is one feed event. Video is nil for messages without a recording.
type Message struct {
	UpdateID  int64
	MessageID int64
	Date      int64
	Caption   string
	ChatTitle string
	Video     *VideoAttachment
}

type apiEnvelope struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

type wireUpdate struct {
	UpdateID    int64        `json:"update_id"`
	Message     *wireMessage `json:"message"`
	ChannelPost *wireMessage `json:"channel_post"`
}

type wireMessage struct {
	MessageID int64  `json:"message_id"`
	Date      int64  `json:"date"`
	Caption   string `json:"caption"`
	Chat      struct {
		Title string `json:"title"`
	} `json:"chat"`
	Video *VideoAttachment `json:"video"`
}

type wireFile struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
}

// New constructs a feed client and verifies the token with a getMe probe.
// An unreachable feed or rejected token fails construction; there is no
// half-initialized client to probe later.
func New(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("feed: config is required")
	}
	if cfg.Feed.Token == "" {
		return nil, errors.New("feed: token is not configured")
	}

	client := &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.Feed.LongPollTimeout+15) * time.Second},
		baseURL:    cfg.Feed.APIBaseURL,
		token:      cfg.Feed.Token,
		limiter:    rate.NewLimiter(rate.Limit(cfg.Feed.RequestsPerSecond), cfg.Feed.RequestsPerSecond),
		logger:     logging.WithComponent(logger, "feed"),
	}

	probeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	bot, err := client.fetchBotInfo(probeCtx)
	if err != nil {
		return nil, fmt.Errorf("feed: credential probe failed: %w", err)
	}
	client.bot = bot
	client.logger.Info("feed client ready",
		logging.Int64("bot_id", bot.ID),
		logging.String("bot_username", bot.Username),
	)
	return client, nil
}

// BotInfo returns the identity captured during the construction probe.
func (c *Client) BotInfo() BotInfo {
	return c.bot
}

// GetUpdates fetches an ordered batch of feed events starting at offset. The
// call long-polls server-side for up to timeoutSec when no events are pending.
func (c *Client) GetUpdates(ctx context.Context, offset int64, limit, timeoutSec int) ([]Message, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("timeout", strconv.Itoa(timeoutSec))

	var updates []wireUpdate
	if err := c.call(ctx, "getUpdates", params, &updates); err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(updates))
	for _, update := range updates {
		// Channel posts arrive in channel_post, direct/forwarded messages
		// in message; either may carry the recording.
		wire := update.ChannelPost
		if wire == nil {
			wire = update.Message
		}
		msg := Message{UpdateID: update.UpdateID}
		if wire != nil {
			msg.MessageID = wire.MessageID
			msg.Date = wire.Date
			msg.Caption = wire.Caption
			msg.ChatTitle = wire.Chat.Title
			msg.Video = wire.Video
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// ResolveFile resolves a remote file id to a streamable byte source. The
// caller owns the returned reader. Invalid or expired ids, and ids the bot is
// not allowed to read, surface as ErrTransport.
func (c *Client) ResolveFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	params := url.Values{}
	params.Set("file_id", fileID)

	var file wireFile
	if err := c.call(ctx, "getFile", params, &file); err != nil {
		return nil, err
	}
	if file.FilePath == "" {
		return nil, fmt.Errorf("%w: no download path for file %s", ErrTransport, fileID)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	downloadURL := fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download %s: %v", ErrTransport, fileID, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: download %s: unexpected status %d", ErrTransport, fileID, resp.StatusCode)
	}
	return resp.Body, nil
}

func (c *Client) fetchBotInfo(ctx context.Context) (BotInfo, error) {
	var bot BotInfo
	if err := c.call(ctx, "getMe", nil, &bot); err != nil {
		return BotInfo{}, err
	}
	return bot, nil
}

func (c *Client) call(ctx context.Context, method string, params url.Values, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTransport, method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%w: read %s response: %v", ErrTransport, method, err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", ErrTransport, method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("%w: %s rejected (code %d): %s", ErrTransport, method, envelope.ErrorCode, envelope.Description)
	}
	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("%w: decode %s result: %v", ErrTransport, method, err)
		}
	}
	return nil
}
