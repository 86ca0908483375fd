package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/parley/pkg/chat"
	"github.com/papercomputeco/parley/pkg/logger"
	"github.com/papercomputeco/parley/pkg/storage"
	"github.com/papercomputeco/parley/pkg/storage/inmemory"
)

var _ = Describe("Server shutdown", func() {
	var (
		server *Server
		driver *inmemory.Driver
	)

	BeforeEach(func() {
		driver = inmemory.NewDriver()

		var err error
		server, err = NewServer(Config{Seed: 7, EventDelay: 100 * time.Millisecond}, driver, nil, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
	})

	It("ends open reply streams and records them before returning", func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		go func() { _ = server.app.Listener(ln) }()

		url := "http://" + ln.Addr().String() + "/api/chat"
		const streams = 4

		bodies := make([]*bufio.Reader, streams)
		closers := make([]io.Closer, streams)
		for i := range streams {
			payload, _ := json.Marshal(chat.Request{Message: "hello there"})
			req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer token_admin")

			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			closers[i] = resp.Body

			bodies[i] = bufio.NewReader(resp.Body)
			first, err := bodies[i].ReadString('\n')
			Expect(err).NotTo(HaveOccurred())
			Expect(first).To(HavePrefix("data: "))
		}
		defer func() {
			for _, c := range closers {
				_ = c.Close()
			}
		}()

		done := make(chan error, 1)
		go func() { done <- server.Shutdown() }()

		var readers sync.WaitGroup
		for _, body := range bodies {
			readers.Add(1)
			go func() {
				defer readers.Done()
				_, _ = io.Copy(io.Discard, body)
			}()
		}
		readers.Wait()

		Eventually(done, 5*time.Second).Should(Receive(Succeed()))

		list, err := driver.List(context.Background(), storage.Query{Username: "admin"})
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(streams))
		for _, ex := range list {
			Expect(ex.IsError).To(BeTrue())
			Expect(ex.Reply).NotTo(BeEmpty())
		}
	})

	It("refuses new chats once shut down", func() {
		Expect(server.Shutdown()).To(Succeed())

		resp, body := doJSON(server, http.MethodPost, "/api/chat", "token_admin", chat.Request{Message: "hi"})
		Expect(resp.StatusCode).To(Equal(http.StatusServiceUnavailable))
		Expect(errorMessage(body)).To(Equal("Server is shutting down"))
	})
})
