package chat_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/parley/pkg/chat"
)

// foldLines decodes each line and folds the resulting events.
func foldLines(lines ...string) chat.Message {
	decoder := chat.NewDecoder()
	m := chat.NewMessage()
	for _, line := range lines {
		if ev, ok := decoder.Decode(line); ok {
			m = chat.Reduce(m, ev)
		}
	}
	return m
}

var _ = Describe("Message", func() {
	It("starts as an empty streaming text message", func() {
		m := chat.NewMessage()
		Expect(m.Text).To(BeEmpty())
		Expect(m.ContentType).To(Equal(chat.ContentText))
		Expect(m.Streaming).To(BeTrue())
		Expect(m.Error).To(BeFalse())
	})

	Context("text fragments", func() {
		It("ends the first fragment with a line break", func() {
			m := chat.Fold(chat.MessageEvent{Content: "A"})
			Expect(m.Text).To(Equal("A\n"))
			Expect(m.Streaming).To(BeTrue())
		})

		It("ignores empty fragments", func() {
			m := chat.Fold(chat.MessageEvent{Content: "A"}, chat.MessageEvent{})
			Expect(m.Text).To(Equal("A\n"))
		})

		It("separates fragments with a blank line", func() {
			m := chat.Fold(
				chat.MessageEvent{Content: "A"},
				chat.MessageEvent{Content: "B"},
				chat.MessageEvent{Content: "C"},
			)
			Expect(m.Text).To(Equal("A\n\nB\n\nC\n"))
			Expect(m.ContentType).To(Equal(chat.ContentText))
		})

		It("survives a malformed line between two messages", func() {
			m := foldLines(
				`{"type":"message","content":"A"}`,
				"not json",
				`{"type":"message","content":"B"}`,
				`{"type":"end"}`,
			)
			Expect(m.Text).To(Equal("A\n\nB\n"))
			Expect(m.ContentType).To(Equal(chat.ContentText))
			Expect(m.Streaming).To(BeFalse())
			Expect(m.Error).To(BeFalse())
		})
	})

	Context("graph promotion", func() {
		It("switches to graph content and finalizes", func() {
			m := foldLines(
				`{"type":"message","content":"Analyzing"}`,
				`{"type":"graph","graphType":"image","graphData":{"src":"x"},"description":"done"}`,
			)
			Expect(m.ContentType).To(Equal(chat.ContentGraph))
			Expect(m.GraphType).To(Equal("image"))
			Expect(m.GraphData).To(MatchJSON(`{"src":"x"}`))
			Expect(m.Text).To(Equal("Analyzing\ndone"))
			Expect(m.Streaming).To(BeFalse())
		})

		It("joins existing text and description with one line break", func() {
			m := chat.Fold(chat.GraphEvent{Description: "done"})
			Expect(m.Text).To(Equal("done"))

			m = chat.Reduce(chat.Message{Text: "Analyzing", ContentType: chat.ContentText, Streaming: true},
				chat.GraphEvent{GraphType: "image", Description: "done"})
			Expect(m.Text).To(Equal("Analyzing\ndone"))
		})

		It("keeps existing text when the description is empty", func() {
			m := chat.Fold(chat.MessageEvent{Content: "A"}, chat.GraphEvent{})
			Expect(m.Text).To(Equal("A\n"))
		})

		It("defaults the graph type", func() {
			m := chat.Fold(chat.GraphEvent{GraphData: json.RawMessage(`[]`)})
			Expect(m.GraphType).To(Equal(chat.DefaultGraphType))
		})

		It("never reverts to text", func() {
			m := chat.Fold(chat.GraphEvent{}, chat.MessageEvent{Content: "late"})
			Expect(m.ContentType).To(Equal(chat.ContentGraph))
			Expect(m.Text).To(BeEmpty())
		})
	})

	Context("error events", func() {
		It("uses the content when there is no prior text", func() {
			m := foldLines(`{"type":"error","content":"boom"}`)
			Expect(m.Text).To(Equal("boom"))
			Expect(m.Error).To(BeTrue())
			Expect(m.Streaming).To(BeFalse())
			Expect(m.DisplayText()).To(Equal("Error: boom"))
		})

		It("falls back to data and then a generic text", func() {
			Expect(chat.Fold(chat.ErrorEvent{Data: "trace"}).Text).To(Equal("trace"))
			Expect(chat.Fold(chat.ErrorEvent{}).Text).To(Equal("Unknown error"))
		})

		It("keeps prior text and does not prefix it", func() {
			m := chat.Fold(chat.MessageEvent{Content: "partial"}, chat.ErrorEvent{Content: "boom"})
			Expect(m.Text).To(Equal("partial\n"))
			Expect(m.Error).To(BeTrue())
			Expect(m.DisplayText()).To(Equal("partial\n"))
		})
	})

	Context("after finalize", func() {
		It("ignores every further event", func() {
			final := chat.Fold(chat.MessageEvent{Content: "A"}, chat.EndEvent{})
			Expect(final.Streaming).To(BeFalse())

			for _, ev := range []chat.Event{
				chat.MessageEvent{Content: "B"},
				chat.GraphEvent{Description: "g"},
				chat.ErrorEvent{Content: "e"},
				chat.EndEvent{},
			} {
				Expect(chat.Reduce(final, ev)).To(Equal(final))
			}
		})

		It("is reached by Finalize without a terminal event", func() {
			m := chat.Fold(chat.MessageEvent{Content: "tail"}).Finalize()
			Expect(m.Streaming).To(BeFalse())
			Expect(chat.Reduce(m, chat.MessageEvent{Content: "more"}).Text).To(Equal("tail\n"))
		})
	})

	It("does not modify its input", func() {
		start := chat.Fold(chat.MessageEvent{Content: "A"})
		_ = chat.Reduce(start, chat.MessageEvent{Content: "B"})
		Expect(start.Text).To(Equal("A\n"))
	})

	It("describes failed exchanges with the display prefix", func() {
		m := chat.Failed("server returned status 500: oops")
		Expect(m.Error).To(BeTrue())
		Expect(m.Streaming).To(BeFalse())
		Expect(m.DisplayText()).To(Equal("Error: server returned status 500: oops"))
	})
})
