// Package echobot is the mock assistant behind the parley API. It narrates a
// short chain of thought, echoes the prompt back and, when the prompt asks for
// a chart, attaches a plotly figure built from the prompt itself.
package echobot

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/papercomputeco/parley/pkg/chat"
)

// DefaultDelay is the pause between emitted events.
const DefaultDelay = 500 * time.Millisecond

const (
	checkingMessage   = "Checking for visualization options..."
	noVizMessage      = "No visualization requested."
	convertingMessage = "Converting the data and building the chart...."
	completeMessage   = "Processing complete!"
)

var workingMessages = []string{
	"Give me a few minutes, I'm analyzing your request...",
	"Please hold on while I process your message...",
	"I'm working on your request, this will take just a moment...",
	"Analyzing your input, please wait a few seconds...",
	"Processing your message now, hang tight...",
	"I'm carefully reviewing your request, please be patient it may take a moment...",
	"Give me a moment to examine your message thoroughly...",
	"Working on your query, I'll have an answer shortly...",
	"Let me analyze this for you, it'll just take a minute...",
	"I'm processing your request, please wait while I work on it...",
}

var echoTemplates = []func(prompt string, now time.Time) string{
	func(p string, now time.Time) string {
		return fmt.Sprintf(`You said: "%s" at %s`, p, now.Format("3:04:05 PM"))
	},
	func(p string, _ time.Time) string {
		return fmt.Sprintf(`I received your message: "%s". How can I help you?`, p)
	},
	func(p string, _ time.Time) string {
		return fmt.Sprintf(`Thanks for your message: "%s". I'm a simple echo bot!`, p)
	},
	func(p string, _ time.Time) string {
		return fmt.Sprintf(`Message acknowledged: "%s". Is there anything else you'd like to discuss?`, p)
	},
	func(p string, _ time.Time) string {
		return fmt.Sprintf(`Your message "%s" has been processed successfully.`, p)
	},
}

// Option configures a Bot.
type Option func(*Bot)

// WithDelay sets the pause between events. Zero disables pauses.
func WithDelay(d time.Duration) Option {
	return func(b *Bot) {
		b.delay = d
	}
}

// WithSeed makes the bot's choices reproducible.
func WithSeed(seed uint64) Option {
	return func(b *Bot) {
		b.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithClock overrides the time used in echo responses.
func WithClock(now func() time.Time) Option {
	return func(b *Bot) {
		b.now = now
	}
}

// Bot produces mock assistant replies.
type Bot struct {
	delay time.Duration
	now   func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Bot.
func New(opts ...Option) *Bot {
	b := &Bot{
		delay: DefaultDelay,
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Plan returns the full event sequence for prompt, ending with chat.EndEvent.
func (b *Bot) Plan(prompt string) []chat.Event {
	choice := Analyze(prompt)
	working, echo := b.pick()

	events := []chat.Event{
		chat.MessageEvent{Content: working},
		chat.MessageEvent{Content: checkingMessage},
	}

	if choice.Requested() {
		events = append(events, chat.MessageEvent{
			Content: fmt.Sprintf("I picked a chart type: %s using %s", choice.Chart, choice.Library),
		})
	} else {
		events = append(events, chat.MessageEvent{Content: noVizMessage})
	}

	events = append(events, chat.MessageEvent{Content: echo(prompt, b.now())})

	if choice.Requested() {
		events = append(events,
			chat.MessageEvent{Content: convertingMessage},
			choice.Graph(prompt),
		)
	}

	return append(events,
		chat.MessageEvent{Content: completeMessage},
		chat.EndEvent{},
	)
}

func (b *Bot) pick() (string, func(string, time.Time) string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return workingMessages[b.rng.IntN(len(workingMessages))],
		echoTemplates[b.rng.IntN(len(echoTemplates))]
}

// Reply emits the plan for prompt, pausing between events. It stops with the
// context's error when ctx is done and with emit's error when emit fails.
func (b *Bot) Reply(ctx context.Context, prompt string, emit func(chat.Event) error) error {
	events := b.Plan(prompt)

	for i, ev := range events {
		if i > 0 && b.delay > 0 {
			timer := time.NewTimer(b.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(ev); err != nil {
			return err
		}
	}

	return nil
}
