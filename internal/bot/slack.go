// Package bot bridges Slack's Events API webhook to the orchestrator.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	slackgo "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"go.uber.org/zap"

	"github.com/mcpbridge/mcpbridge/internal/model"
	"github.com/mcpbridge/mcpbridge/internal/service/orchestrator"
)

// turnTimeout bounds one full turn, including every tool call in it.
const turnTimeout = 2 * time.Minute

// poster is the subset of the Slack web API the bot sends replies through.
type poster interface {
	PostMessage(channelID string, options ...slackgo.MsgOption) (string, string, error)
}

// turnHandler runs one turn for an inbound message.
type turnHandler interface {
	HandleMessage(ctx context.Context, msg orchestrator.Message) *orchestrator.TurnResult
}

// turnRecorder persists the audit trail of a turn.
type turnRecorder interface {
	RecordTurn(channelID, userID string, records []model.ExecutionRecord) error
}

// Options holds the collaborators and credentials of a SlackBot.
type Options struct {
	// SigningSecret verifies the webhook signature of inbound requests.
	SigningSecret string
	// BotToken authenticates outbound web API calls.
	BotToken string

	Orchestrator turnHandler
	Audit        turnRecorder
	Logger       *zap.Logger

	// Poster overrides the Slack client, for tests.
	Poster poster
	// Sync makes webhook handling wait for the turn to finish, for tests.
	Sync bool
}

// SlackBot receives Slack events over the webhook endpoint, runs each
// message through the orchestrator and posts the outcome back.
type SlackBot struct {
	signingSecret string
	botUserID     string

	client poster
	orch   turnHandler
	audit  turnRecorder
	logger *zap.Logger
	sync   bool
}

// New creates a Slack bot.
func New(opts *Options) *SlackBot {
	b := &SlackBot{
		signingSecret: opts.SigningSecret,
		client:        opts.Poster,
		orch:          opts.Orchestrator,
		audit:         opts.Audit,
		logger:        opts.Logger,
		sync:          opts.Sync,
	}
	if b.client == nil {
		b.client = slackgo.New(opts.BotToken)
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	return b
}

// Handler returns the webhook endpoint handler.
func (b *SlackBot) Handler() http.Handler {
	return http.HandlerFunc(b.serveEvents)
}

func (b *SlackBot) serveEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if b.signingSecret != "" {
		verifier, err := slackgo.NewSecretsVerifier(r.Header, b.signingSecret)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if _, err := verifier.Write(body); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if err := verifier.Ensure(); err != nil {
			b.logger.Warn("rejected webhook with bad signature")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(challenge.Challenge))

	case slackevents.CallbackEvent:
		b.dispatch(event.InnerEvent)
		// Slack expects a prompt 200; the turn runs in the background
		w.WriteHeader(http.StatusOK)

	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (b *SlackBot) dispatch(inner slackevents.EventsAPIInnerEvent) {
	var msg orchestrator.Message

	switch ev := inner.Data.(type) {
	case *slackevents.AppMentionEvent:
		msg = orchestrator.Message{
			Text:      ev.Text,
			ChannelID: ev.Channel,
			UserID:    ev.User,
			ThreadID:  firstNonEmpty(ev.ThreadTimeStamp, ev.TimeStamp),
		}
	case *slackevents.MessageEvent:
		// drop bot echoes and message edits/joins
		if ev.BotID != "" || ev.SubType != "" {
			return
		}
		// a mention arrives twice when the workspace also subscribes to
		// message.channels; the app_mention delivery handles it
		if mentionRE.MatchString(ev.Text) {
			return
		}
		msg = orchestrator.Message{
			Text:      ev.Text,
			ChannelID: ev.Channel,
			UserID:    ev.User,
			ThreadID:  firstNonEmpty(ev.ThreadTimeStamp, ev.TimeStamp),
		}
	default:
		return
	}

	if msg.UserID == "" || msg.ChannelID == "" {
		return
	}
	msg.Text = stripMentions(msg.Text)

	if b.sync {
		b.handleTurn(msg)
	} else {
		go b.handleTurn(msg)
	}
}

func (b *SlackBot) handleTurn(msg orchestrator.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	result := b.orch.HandleMessage(ctx, msg)

	if b.audit != nil {
		if err := b.audit.RecordTurn(msg.ChannelID, msg.UserID, result.Records); err != nil {
			b.logger.Warn("failed to persist turn audit", zap.Error(err))
		}
	}

	reply := renderTurn(result)
	if reply == "" {
		return
	}

	options := []slackgo.MsgOption{slackgo.MsgOptionText(reply, false)}
	if msg.ThreadID != "" {
		options = append(options, slackgo.MsgOptionTS(msg.ThreadID))
	}
	if _, _, err := b.client.PostMessage(msg.ChannelID, options...); err != nil {
		b.logger.Warn("failed to post reply",
			zap.String("channel_id", msg.ChannelID),
			zap.Error(err),
		)
	}
}

// renderTurn summarizes a turn's execution records for the channel.
// A turn with no selected tool gets no reply; the bot never answers
// from thin air.
func renderTurn(result *orchestrator.TurnResult) string {
	if len(result.Records) == 0 {
		return ""
	}

	var sb strings.Builder
	if result.FailedCount() == len(result.Records) {
		sb.WriteString("Sorry, I couldn't complete that.\n")
	}
	for _, rec := range result.Records {
		if rec.Success {
			sb.WriteString(fmt.Sprintf("`%s` finished in %s", rec.ToolID, rec.Duration.Round(time.Millisecond)))
			if rec.Output != nil {
				if raw, err := json.Marshal(rec.Output); err == nil {
					sb.WriteString("\n```")
					sb.Write(raw)
					sb.WriteString("```")
				}
			}
		} else {
			sb.WriteString(fmt.Sprintf("`%s` failed: %s", rec.ToolID, rec.Error))
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

var mentionRE = regexp.MustCompile(`<@[A-Z0-9]+>\s*`)

func stripMentions(text string) string {
	return strings.TrimSpace(mentionRE.ReplaceAllString(text, ""))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
