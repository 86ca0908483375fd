// Package storagetest holds the behavior every storage.Driver must share.
package storagetest

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/parley/pkg/chat"
	"github.com/papercomputeco/parley/pkg/storage"
	"github.com/papercomputeco/parley/pkg/transcript"
)

// Exchange builds an exchange for username created at the given offset from
// a fixed base time.
func Exchange(id, username string, offset time.Duration) *transcript.Exchange {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &transcript.Exchange{
		ID:          id,
		Username:    username,
		Prompt:      "prompt " + id,
		Reply:       "reply " + id,
		ContentType: chat.ContentText,
		CreatedAt:   base.Add(offset),
	}
}

// DescribeDriver registers the shared driver behavior. newDriver is called
// before each spec and the driver is closed after it.
func DescribeDriver(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = newDriver()
	})

	AfterEach(func() {
		if driver != nil {
			Expect(driver.Close()).To(Succeed())
			driver = nil
		}
	})

	Describe("Put and Get", func() {
		It("stores and retrieves an exchange", func() {
			ex := Exchange("a1", "demo", 0)
			ex.ContentType = chat.ContentGraph
			ex.GraphType = chat.DefaultGraphType
			ex.IsError = true

			inserted, err := driver.Put(ctx, ex)
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeTrue())

			got, err := driver.Get(ctx, "a1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal("a1"))
			Expect(got.Username).To(Equal("demo"))
			Expect(got.Prompt).To(Equal("prompt a1"))
			Expect(got.Reply).To(Equal("reply a1"))
			Expect(got.ContentType).To(Equal(chat.ContentGraph))
			Expect(got.GraphType).To(Equal(chat.DefaultGraphType))
			Expect(got.IsError).To(BeTrue())
			Expect(got.CreatedAt).To(BeTemporally("~", ex.CreatedAt, time.Millisecond))
		})

		It("ignores a duplicate ID", func() {
			_, err := driver.Put(ctx, Exchange("dup", "demo", 0))
			Expect(err).NotTo(HaveOccurred())

			changed := Exchange("dup", "other", time.Hour)
			inserted, err := driver.Put(ctx, changed)
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeFalse())

			got, err := driver.Get(ctx, "dup")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Username).To(Equal("demo"))
		})

		It("rejects a nil exchange", func() {
			_, err := driver.Put(ctx, nil)
			Expect(err).To(MatchError(storage.ErrNilExchange))
		})

		It("returns NotFoundError for a missing ID", func() {
			_, err := driver.Get(ctx, "missing")
			var notFound storage.NotFoundError
			Expect(errors.As(err, &notFound)).To(BeTrue())
			Expect(notFound.ID).To(Equal("missing"))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			for _, ex := range []*transcript.Exchange{
				Exchange("e1", "demo", 0),
				Exchange("e2", "admin", time.Minute),
				Exchange("e3", "demo", 2*time.Minute),
				Exchange("e4", "demo", 3*time.Minute),
			} {
				_, err := driver.Put(ctx, ex)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		ids := func(exs []*transcript.Exchange) []string {
			out := make([]string, 0, len(exs))
			for _, ex := range exs {
				out = append(out, ex.ID)
			}
			return out
		}

		It("returns every exchange most recent first", func() {
			exs, err := driver.List(ctx, storage.Query{})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(exs)).To(Equal([]string{"e4", "e3", "e2", "e1"}))
		})

		It("filters by username", func() {
			exs, err := driver.List(ctx, storage.Query{Username: "demo"})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(exs)).To(Equal([]string{"e4", "e3", "e1"}))
		})

		It("applies the limit", func() {
			exs, err := driver.List(ctx, storage.Query{Username: "demo", Limit: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(exs)).To(Equal([]string{"e4", "e3"}))
		})

		It("returns nothing for an unknown user", func() {
			exs, err := driver.List(ctx, storage.Query{Username: "nobody"})
			Expect(err).NotTo(HaveOccurred())
			Expect(exs).To(BeEmpty())
		})
	})
}
