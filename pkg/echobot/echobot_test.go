package echobot_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/parley/pkg/chat"
	"github.com/papercomputeco/parley/pkg/echobot"
)

func contents(events []chat.Event) []string {
	var out []string
	for _, ev := range events {
		if m, ok := ev.(chat.MessageEvent); ok {
			out = append(out, m.Content)
		}
	}
	return out
}

var _ = Describe("Bot", func() {
	var bot *echobot.Bot

	BeforeEach(func() {
		clock := func() time.Time { return time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC) }
		bot = echobot.New(echobot.WithDelay(0), echobot.WithSeed(7), echobot.WithClock(clock))
	})

	Describe("Plan", func() {
		It("narrates, echoes and ends for a plain prompt", func() {
			events := bot.Plan("hello there")

			Expect(events[len(events)-1]).To(Equal(chat.EndEvent{}))
			msgs := contents(events)
			Expect(msgs).To(HaveLen(5))
			Expect(msgs[0]).To(HaveSuffix("..."))
			Expect(msgs[1]).To(Equal("Checking for visualization options..."))
			Expect(msgs[2]).To(Equal("No visualization requested."))
			Expect(msgs[3]).To(ContainSubstring(`"hello there"`))
			Expect(msgs[4]).To(Equal("Processing complete!"))
		})

		It("adds a plotly graph when a chart is requested", func() {
			events := bot.Plan("show a chart of this")

			msgs := contents(events)
			Expect(msgs[2]).To(Equal("I picked a chart type: bar chart using plotly"))
			Expect(msgs).To(ContainElement("Converting the data and building the chart...."))

			var graph chat.GraphEvent
			for _, ev := range events {
				if g, ok := ev.(chat.GraphEvent); ok {
					graph = g
				}
			}
			Expect(graph.GraphType).To(Equal("plotly"))
			Expect(graph.Description).To(Equal("Bar Chart chart generated using plotly"))

			var fig struct {
				Data []struct {
					Type string   `json:"type"`
					X    []string `json:"x"`
					Y    []int    `json:"y"`
				} `json:"data"`
			}
			Expect(json.Unmarshal(graph.GraphData, &fig)).To(Succeed())
			Expect(fig.Data).To(HaveLen(1))
			Expect(fig.Data[0].Type).To(Equal("bar"))
			Expect(fig.Data[0].X).To(Equal([]string{"show", "a", "chart", "of", "this"}))
			Expect(fig.Data[0].Y).To(Equal([]int{4, 1, 5, 2, 4}))
		})

		It("folds into a graph message on the client side", func() {
			m := chat.Fold(bot.Plan("plot it")...)
			Expect(m.ContentType).To(Equal(chat.ContentGraph))
			Expect(m.Streaming).To(BeFalse())
			Expect(m.Text).To(HaveSuffix("Bar Chart chart generated using plotly"))
		})

		It("folds a plain reply into multi-paragraph text", func() {
			m := chat.Fold(bot.Plan("hi")...)
			Expect(m.ContentType).To(Equal(chat.ContentText))
			Expect(strings.Count(m.Text, "\n\n")).To(Equal(4))
		})

		It("is reproducible with a seed", func() {
			other := echobot.New(echobot.WithDelay(0), echobot.WithSeed(7), echobot.WithClock(func() time.Time {
				return time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
			}))
			Expect(other.Plan("same")).To(Equal(bot.Plan("same")))
		})
	})

	Describe("Reply", func() {
		It("emits the plan in order", func() {
			var got []chat.Event
			err := bot.Reply(context.Background(), "hi", func(ev chat.Event) error {
				got = append(got, ev)
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(len(bot.Plan("hi"))))
			Expect(got[len(got)-1]).To(Equal(chat.EndEvent{}))
		})

		It("stops when emit fails", func() {
			calls := 0
			err := bot.Reply(context.Background(), "hi", func(chat.Event) error {
				calls++
				return errors.New("client gone")
			})
			Expect(err).To(MatchError("client gone"))
			Expect(calls).To(Equal(1))
		})

		It("stops when the context ends between events", func() {
			slow := echobot.New(echobot.WithDelay(time.Hour))
			ctx, cancel := context.WithCancel(context.Background())

			calls := 0
			err := slow.Reply(ctx, "hi", func(chat.Event) error {
				calls++
				cancel()
				return nil
			})
			Expect(err).To(MatchError(context.Canceled))
			Expect(calls).To(Equal(1))
		})
	})
})

var _ = Describe("Analyze", func() {
	DescribeTable("picks a chart kind",
		func(prompt, chart string) {
			choice := echobot.Analyze(prompt)
			Expect(choice.Requested()).To(BeTrue())
			Expect(choice.Library).To(Equal(echobot.LibraryPlotly))
			Expect(choice.Chart).To(Equal(chart))
		},
		Entry("default bar", "make a graph", "bar chart"),
		Entry("pie", "Pie chart please", "pie chart"),
		Entry("line", "draw a line plot", "line chart"),
		Entry("scatter", "scatter plot of ages", "scatter plot"),
		Entry("visualization", "any visualization works", "bar chart"),
		Entry("plural", "two charts", "bar chart"),
	)

	It("does not request a chart for other prompts", func() {
		Expect(echobot.Analyze("hello world").Requested()).To(BeFalse())
		Expect(echobot.Analyze("graphite pencils").Requested()).To(BeFalse())
	})

	It("describes pie charts with labels and values", func() {
		graph := echobot.Analyze("pie chart").Graph("pie chart!")
		Expect(graph.GraphData).To(MatchJSON(`{
			"data":[{"type":"pie","labels":["pie","chart"],"values":[3,5]}],
			"layout":{"title":{"text":"Word lengths"}}
		}`))
		Expect(graph.Description).To(Equal("Pie Chart chart generated using plotly"))
	})
})
