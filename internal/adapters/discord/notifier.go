package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"chapterhall/internal/ports/output"
	"chapterhall/pkg/tz"
)

var _ output.Notifier = (*Notifier)(nil)

// Notifier announces meeting activity in a chapter's Discord channel.
// Sends are plain REST calls; no gateway connection is opened. Emission
// is best-effort by contract: callers log and swallow errors.
type Notifier struct {
	session   *discordgo.Session
	channelID string
	log       zerolog.Logger
}

// NewNotifier creates a Notifier posting to the given channel.
func NewNotifier(token, channelID string, log zerolog.Logger) (*Notifier, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return &Notifier{session: s, channelID: channelID, log: log}, nil
}

// Notify posts one activity event to the chapter channel.
func (n *Notifier) Notify(ctx context.Context, event output.ActivityEvent) error {
	meeting := event.Meeting
	var msg string
	switch event.Type {
	case output.ActivityMeetingStarted:
		msg = fmt.Sprintf("🟢 Chapter %s meeting #%d started (scheduled %s).",
			meeting.ChapterID, meeting.ID,
			meeting.ScheduledAt.In(tz.Home).Format("Mon Jan 2, 3:04 PM"))
	case output.ActivityPhaseAdvanced:
		msg = fmt.Sprintf("➡️ Meeting #%d moved to %s.", meeting.ID, meeting.Phase)
	case output.ActivityMeetingCompleted:
		msg = fmt.Sprintf("✅ Meeting #%d completed. Great session, chapter %s!",
			meeting.ID, meeting.ChapterID)
	default:
		n.log.Warn().Str("type", string(event.Type)).Msg("discord: unknown activity event")
		return nil
	}
	if _, err := n.session.ChannelMessageSend(n.channelID, msg, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send channel message: %w", err)
	}
	return nil
}
