package schedule

import (
	"context"
	"fmt"

	"github.com/flemzord/tgnotify/internal/config"
	"github.com/flemzord/tgnotify/pkg/botapi"
	"github.com/flemzord/tgnotify/pkg/message"
	"github.com/flemzord/tgnotify/pkg/telegram"
)

// Sender delivers a message. *telegram.Telegram implements it.
type Sender interface {
	Send(ctx context.Context, msg message.Message, fallbackChatID string) (*botapi.Response, error)
}

// NotificationJob sends a fixed text message on a schedule.
type NotificationJob struct {
	JobName      string
	ScheduleExpr string
	Sender       Sender
	Message      message.Text

	// FallbackChatID is used when Message names no chat.
	FallbackChatID string
}

// Compile-time interface check.
var _ Job = (*NotificationJob)(nil)

// Name implements Job.
func (j *NotificationJob) Name() string { return j.JobName }

// Schedule implements Job.
func (j *NotificationJob) Schedule() string { return j.ScheduleExpr }

// Run sends the message. A run without any destination is an error, since
// the schedule would otherwise fire silently forever.
func (j *NotificationJob) Run(ctx context.Context) error {
	msg := j.Message
	resp, err := j.Sender.Send(ctx, &msg, j.FallbackChatID)
	if err != nil {
		return fmt.Errorf("schedule: %s: %w", j.JobName, err)
	}
	if resp == nil {
		return fmt.Errorf("schedule: %s: no destination chat", j.JobName)
	}
	return nil
}

// NotificationJobs builds one job per configured schedule. Chat and topic
// default to those of the schedule's bot.
func NotificationJobs(tg *telegram.Telegram, schedules []config.ScheduleConfig) ([]*NotificationJob, error) {
	jobs := make([]*NotificationJob, 0, len(schedules))
	for _, sc := range schedules {
		bot, err := tg.BotConfig(sc.Bot)
		if err != nil {
			return nil, fmt.Errorf("schedule: %s: %w", sc.Name, err)
		}

		msg := message.Text{
			Options: message.Options{
				ChatID:  sc.ChatID,
				TopicID: sc.TopicID,
				Bot:     sc.Bot,
				Silent:  sc.Silent,
			},
			Body:      sc.Text,
			ParseMode: message.ParseMode(sc.ParseMode),
		}
		if msg.ChatID == "" && msg.TopicID == "" {
			msg.TopicID = bot.TopicID
		}

		jobs = append(jobs, &NotificationJob{
			JobName:        sc.Name,
			ScheduleExpr:   sc.Schedule,
			Sender:         tg,
			Message:        msg,
			FallbackChatID: bot.ChatID,
		})
	}
	return jobs, nil
}
