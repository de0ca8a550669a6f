package bot

import (
	"context"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/message"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/kinobot/internal/format"
)

// Telegram rejects longer messages, counted in UTF-16 units
const maxMessageLength = 4096

const (
	pollTimeout    = 9
	requestTimeout = 10 * time.Second
	handlerTimeout = 2 * time.Minute
)

// Bot routes Telegram updates to a Flow
type Bot struct {
	log     zerolog.Logger
	flow    *Flow
	bot     *gotgbot.Bot
	updater *ext.Updater
	ctx     context.Context
	cancel  context.CancelFunc
}

// New authenticates token against the Bot API
func New(log zerolog.Logger, token string, flow *Flow) (*Bot, error) {
	if token == "" {
		return nil, errors.New("telegram token is not set")
	}

	b, err := gotgbot.NewBot(token, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create telegram bot")
	}

	return &Bot{
		log:  log.With().Str("module", "bot").Logger(),
		flow: flow,
		bot:  b,
	}, nil
}

// Username is the bot account name without the @
func (b *Bot) Username() string {
	return b.bot.Username
}

// Start begins long polling. Handlers run until Stop or ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx, b.cancel = context.WithCancel(ctx)

	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(_ *gotgbot.Bot, _ *ext.Context, err error) ext.DispatcherAction {
			b.log.Error().Err(err).Msg("error handling update")
			return ext.DispatcherActionNoop
		},
		Panic: func(_ *gotgbot.Bot, _ *ext.Context, r interface{}) {
			b.log.Error().Interface("panic", r).Msg("panic handling update")
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	b.register(dispatcher)

	b.updater = ext.NewUpdater(dispatcher, nil)

	err := b.updater.StartPolling(b.bot, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &gotgbot.GetUpdatesOpts{
			Timeout: pollTimeout,
			RequestOpts: &gotgbot.RequestOpts{
				Timeout: requestTimeout,
			},
		},
	})
	if err != nil {
		b.cancel()
		return errors.Wrap(err, "failed to start polling")
	}

	b.log.Info().Str("username", b.bot.Username).Msg("Bot started")
	return nil
}

// Stop ends polling and cancels in-flight handlers
func (b *Bot) Stop() error {
	if b.cancel != nil {
		b.cancel()
	}
	if b.updater == nil {
		return nil
	}
	return b.updater.Stop()
}

func (b *Bot) register(d *ext.Dispatcher) {
	d.AddHandler(handlers.NewCommand("start", b.static(b.flow.Start)))
	d.AddHandler(handlers.NewCommand("help", b.static(b.flow.Help)))
	d.AddHandler(handlers.NewCommand("history", b.user(b.flow.History)))
	d.AddHandler(handlers.NewCommand("stats", b.user(b.flow.Stats)))
	d.AddHandler(handlers.NewCommand("clear_history", b.user(b.flow.ClearHistory)))
	d.AddHandler(handlers.NewCommand("stats_all", b.user(b.flow.AllStats)))
	d.AddHandler(handlers.NewMessage(notCommand, b.search))
}

func notCommand(msg *gotgbot.Message) bool {
	return !message.Command(msg)
}

func (b *Bot) static(fn func() Reply) handlers.Response {
	return func(bot *gotgbot.Bot, ctx *ext.Context) error {
		return b.reply(bot, ctx.EffectiveMessage, fn())
	}
}

func (b *Bot) user(fn func(ctx context.Context, userID int64) Reply) handlers.Response {
	return func(bot *gotgbot.Bot, ctx *ext.Context) error {
		if ctx.EffectiveUser == nil {
			return nil
		}

		reqCtx, cancel := context.WithTimeout(b.ctx, handlerTimeout)
		defer cancel()

		return b.reply(bot, ctx.EffectiveMessage, fn(reqCtx, ctx.EffectiveUser.Id))
	}
}

func (b *Bot) search(bot *gotgbot.Bot, ctx *ext.Context) error {
	if ctx.EffectiveUser == nil {
		return nil
	}

	reqCtx, cancel := context.WithTimeout(b.ctx, handlerTimeout)
	defer cancel()

	reply := b.flow.Search(reqCtx, ctx.EffectiveUser.Id, ctx.EffectiveMessage.GetText())
	return b.reply(bot, ctx.EffectiveMessage, reply)
}

func (b *Bot) reply(bot *gotgbot.Bot, msg *gotgbot.Message, r Reply) error {
	if msg == nil || r.Text == "" {
		return nil
	}

	if r.HTML {
		_, err := msg.Reply(bot, r.Text, &gotgbot.SendMessageOpts{ParseMode: gotgbot.ParseModeHTML})
		return errors.Wrap(err, "failed to send reply")
	}

	for _, chunk := range split(r.Text, maxMessageLength) {
		if _, err := msg.Reply(bot, chunk, nil); err != nil {
			return errors.Wrap(err, "failed to send reply")
		}
	}

	return nil
}

// split cuts text into pieces of at most limit UTF-16 units, on line breaks where possible
func split(text string, limit int) []string {
	var (
		chunks []string
		cur    strings.Builder
		size   int
	)

	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			size = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		if size+format.Units(line) > limit {
			flush()
		}
		for _, r := range line {
			n := len(utf16.Encode([]rune{r}))
			if size+n > limit {
				flush()
			}
			cur.WriteRune(r)
			size += n
		}
	}
	flush()

	return chunks
}
