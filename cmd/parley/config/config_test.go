package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/papercomputeco/parley/cmd/parley/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))

		names := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir string
		out    *bytes.Buffer
	)

	run := func(args ...string) error {
		cmd := configcmder.NewConfigCmd()
		cmd.PersistentFlags().String("config-dir", "", "Override path to .parley/ config directory")
		out = &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append(args, "--config-dir", tmpDir))
		return cmd.Execute()
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	Describe("set", func() {
		It("writes the config file", func() {
			Expect(run("set", "client.target", "http://remote:3001")).To(Succeed())
			Expect(filepath.Join(tmpDir, "config.toml")).To(BeARegularFile())

			data, err := os.ReadFile(filepath.Join(tmpDir, "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`target = "http://remote:3001"`))
		})

		It("rejects unknown keys and bad values", func() {
			Expect(run("set", "invalid_key", "value")).To(MatchError(ContainSubstring("unknown config key")))
			Expect(run("set", "server.event_delay", "later")).To(HaveOccurred())
		})

		It("requires exactly two arguments", func() {
			Expect(run("set", "client.target")).To(HaveOccurred())
		})
	})

	Describe("get", func() {
		It("prints a previously set value", func() {
			Expect(run("set", "server.listen", ":4000")).To(Succeed())
			Expect(run("get", "server.listen")).To(Succeed())
			Expect(out.String()).To(ContainSubstring(":4000"))
		})

		It("marks keys without a value", func() {
			Expect(run("get", "storage.postgres_dsn")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("<not set>"))
		})

		It("rejects unknown keys", func() {
			Expect(run("get", "invalid_key")).To(HaveOccurred())
		})
	})

	Describe("list", func() {
		It("prints every key", func() {
			Expect(run("list")).To(Succeed())
			Expect(out.String()).To(ContainSubstring(`client.target        = "http://localhost:3001"`))
			Expect(out.String()).To(ContainSubstring("storage.sqlite_path  = <not set>"))
		})

		It("rejects any arguments", func() {
			Expect(run("list", "extra")).To(HaveOccurred())
		})
	})
})
