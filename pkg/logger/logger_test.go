package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/parley/pkg/logger"
)

// decodeLines parses one JSON record per line.
func decodeLines(buf *bytes.Buffer) []map[string]any {
	var records []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		ExpectWithOffset(1, json.Unmarshal([]byte(line), &rec)).To(Succeed())
		records = append(records, rec)
	}
	return records
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

var _ = Describe("New", func() {
	It("writes text records at info level by default", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf))

		l.Debug("hidden")
		l.Info("reply streamed", "username", "admin")

		Expect(buf.String()).NotTo(ContainSubstring("hidden"))
		Expect(buf.String()).To(ContainSubstring("reply streamed"))
		Expect(buf.String()).To(ContainSubstring("username=admin"))
	})

	It("emits debug records with WithDebug", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithDebug(true))
		l.Debug("skipping malformed line")

		Expect(buf.String()).To(ContainSubstring("skipping malformed line"))
	})

	It("writes one JSON object per record", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
		l.Info("exchange recorded", "events", 7)
		l.Warn("queue full")

		records := decodeLines(&buf)
		Expect(records).To(HaveLen(2))
		Expect(records[0]["msg"]).To(Equal("exchange recorded"))
		Expect(records[0]["events"]).To(BeNumerically("==", 7))
		Expect(records[1]["level"]).To(Equal("WARN"))
	})

	It("tags structured records with the component", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithComponent("api"))
		l.Info("listening")

		Expect(decodeLines(&buf)[0]).To(HaveKeyWithValue(logger.ComponentKey, "api"))
	})

	It("prefixes pretty output with the component", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true), logger.WithComponent("chat"))
		l.Info("connected")

		Expect(buf.String()).To(ContainSubstring("chat"))
		Expect(buf.String()).To(ContainSubstring("connected"))
	})

	It("keeps pretty output at info unless debug is set", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true))
		l.Debug("quiet")

		Expect(buf.String()).To(BeEmpty())
	})

	It("fans out to every writer given", func() {
		var first, second bytes.Buffer
		l := logger.New(logger.WithWriter(&first), logger.WithWriter(&second), logger.WithWriter(nil))
		l.Info("both")

		Expect(first.String()).To(ContainSubstring("both"))
		Expect(second.String()).To(ContainSubstring("both"))
	})

	It("reports the caller with WithSource", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithSource(true))
		l.Info("located")

		Expect(decodeLines(&buf)[0]).To(HaveKey("source"))
	})
})

var _ = Describe("Nop", func() {
	It("is disabled at every level", func() {
		l := logger.Nop()
		for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelError} {
			Expect(l.Enabled(context.Background(), level)).To(BeFalse())
		}
		Expect(func() {
			l.With("key", "value").WithGroup("g").Error("dropped")
		}).NotTo(Panic())
	})
})

var _ = Describe("Multi", func() {
	It("tees pretty console output and a JSON file log", func() {
		var console, file bytes.Buffer
		l := logger.Multi(
			logger.New(logger.WithWriter(&console), logger.WithPretty(true)),
			logger.New(logger.WithWriter(&file), logger.WithJSON(true), logger.WithDebug(true)),
		)

		l.Debug("file only")
		l.Info("everywhere")

		Expect(console.String()).NotTo(ContainSubstring("file only"))
		Expect(console.String()).To(ContainSubstring("everywhere"))

		records := decodeLines(&file)
		Expect(records).To(HaveLen(2))
		Expect(records[0]["msg"]).To(Equal("file only"))
	})

	It("carries attributes and groups to every handler", func() {
		var a, b bytes.Buffer
		l := logger.Multi(
			logger.New(logger.WithWriter(&a), logger.WithJSON(true)),
			logger.New(logger.WithWriter(&b), logger.WithJSON(true)),
		)

		l.With("remote", "127.0.0.1").WithGroup("request").Info("handled", "status", 200)

		for _, buf := range []*bytes.Buffer{&a, &b} {
			rec := decodeLines(buf)[0]
			Expect(rec["remote"]).To(Equal("127.0.0.1"))
			Expect(rec["request"]).To(HaveKeyWithValue("status", BeNumerically("==", 200)))
		}
	})

	It("ignores nil loggers", func() {
		var buf bytes.Buffer
		l := logger.Multi(nil, logger.New(logger.WithWriter(&buf)))
		l.Info("still logged")

		Expect(buf.String()).To(ContainSubstring("still logged"))
	})

	It("keeps writing when one handler fails", func() {
		var buf bytes.Buffer
		l := logger.Multi(
			slog.New(failingHandler{}),
			logger.New(logger.WithWriter(&buf)),
		)

		err := l.Handler().Handle(context.Background(), slog.NewRecord(testTime, slog.LevelInfo, "after failure", 0))
		Expect(err).To(MatchError("disk full"))
		Expect(buf.String()).To(ContainSubstring("after failure"))
	})
})

var testTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
