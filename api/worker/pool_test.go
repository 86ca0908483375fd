package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/parley/pkg/chat"
	"github.com/papercomputeco/parley/pkg/eventstream"
	"github.com/papercomputeco/parley/pkg/logger"
	"github.com/papercomputeco/parley/pkg/storage"
	"github.com/papercomputeco/parley/pkg/storage/inmemory"
	"github.com/papercomputeco/parley/pkg/transcript"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.ExchangeRecordedEvent
	err    error
}

func (r *recordingPublisher) PublishExchange(_ context.Context, ev *eventstream.ExchangeRecordedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordingPublisher) Close() error { return nil }

type failingDriver struct {
	storage.Driver
}

func (failingDriver) Put(context.Context, *transcript.Exchange) (bool, error) {
	return false, errors.New("disk full")
}

func exchange(username, prompt string) *transcript.Exchange {
	return transcript.New(username, prompt, chat.Fold(chat.MessageEvent{Content: "echo " + prompt}, chat.EndEvent{}))
}

var _ = Describe("Worker Pool", func() {
	var (
		wp        *Pool
		driver    *inmemory.Driver
		publisher *recordingPublisher
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
		publisher = &recordingPublisher{}

		var err error
		wp, err = NewPool(&Config{
			Driver:    driver,
			Publisher: publisher,
			Logger:    logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		wp.Close()
	})

	It("applies defaults", func() {
		Expect(wp.config.NumWorkers).To(Equal(defaultNumWorkers))
		Expect(wp.config.QueueSize).To(Equal(defaultJobQueueSize))
		Expect(wp.config.Service).To(Equal("parley-api"))
	})

	It("requires a driver", func() {
		_, err := NewPool(&Config{})
		Expect(err).To(HaveOccurred())
	})

	Describe("Enqueue", func() {
		It("stores the exchange and publishes an event", func() {
			ex := exchange("demo", "hello")
			Expect(wp.Enqueue(Job{Exchange: ex, RemoteAddr: "10.0.0.1"})).To(BeTrue())
			wp.Close()

			stored, err := driver.Get(ctx, ex.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Reply).To(Equal("echo hello\n"))

			Expect(publisher.events).To(HaveLen(1))
			Expect(publisher.events[0].Key()).To(Equal(ex.ID))
			Expect(publisher.events[0].Source.RemoteAddr).To(Equal("10.0.0.1"))
		})

		It("publishes once for a duplicate exchange", func() {
			ex := exchange("demo", "hello")
			Expect(wp.Enqueue(Job{Exchange: ex})).To(BeTrue())
			Expect(wp.Enqueue(Job{Exchange: ex})).To(BeTrue())
			wp.Close()

			Expect(publisher.events).To(HaveLen(1))
		})

		It("rejects jobs without an exchange", func() {
			Expect(wp.Enqueue(Job{})).To(BeFalse())
		})

		It("drops jobs when the queue is full", func() {
			full := &Pool{
				config: &Config{Driver: driver},
				queue:  make(chan Job, 1),
				logger: logger.Nop(),
			}
			Expect(full.Enqueue(Job{Exchange: exchange("demo", "a")})).To(BeTrue())
			Expect(full.Enqueue(Job{Exchange: exchange("demo", "b")})).To(BeFalse())
		})

		It("keeps working when publishing fails", func() {
			publisher.err = errors.New("broker down")
			first := exchange("demo", "one")
			second := exchange("demo", "two")
			wp.Enqueue(Job{Exchange: first})
			wp.Enqueue(Job{Exchange: second})
			wp.Close()

			list, err := driver.List(ctx, storage.Query{Username: "demo"})
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(2))
		})
	})

	It("logs and skips storage failures", func() {
		failing, err := NewPool(&Config{Driver: failingDriver{}, Publisher: publisher})
		Expect(err).NotTo(HaveOccurred())
		Expect(failing.Enqueue(Job{Exchange: exchange("demo", "x")})).To(BeTrue())
		failing.Close()

		Expect(publisher.events).To(BeEmpty())
	})

	It("can be closed more than once", func() {
		wp.Close()
		Expect(wp.Close).NotTo(Panic())
	})

	It("refuses jobs after Close", func() {
		wp.Close()

		var queued bool
		Expect(func() { queued = wp.Enqueue(Job{Exchange: exchange("demo", "late")}) }).NotTo(Panic())
		Expect(queued).To(BeFalse())
	})

	It("tolerates Enqueue racing Close", func() {
		var senders sync.WaitGroup
		for i := range 8 {
			senders.Add(1)
			go func() {
				defer senders.Done()
				defer GinkgoRecover()
				for j := range 50 {
					wp.Enqueue(Job{Exchange: exchange("demo", fmt.Sprintf("%d-%d", i, j))})
				}
			}()
		}

		wp.Close()
		senders.Wait()
	})
})
