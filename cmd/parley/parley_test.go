package parleycmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	parleycmder "github.com/papercomputeco/parley/cmd/parley"
)

var _ = Describe("NewParleyCmd", func() {
	It("wires every subcommand", func() {
		cmd := parleycmder.NewParleyCmd()

		names := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("init", "serve", "login", "logout", "chat", "history", "config", "version"))
	})

	It("declares the global flags", func() {
		cmd := parleycmder.NewParleyCmd()
		Expect(cmd.PersistentFlags().Lookup("debug").Shorthand).To(Equal("d"))
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})

	It("runs config through the global --config-dir", func() {
		dir := GinkgoT().TempDir()
		out := &bytes.Buffer{}

		cmd := parleycmder.NewParleyCmd()
		cmd.SetOut(out)
		cmd.SetArgs([]string{"--config-dir", dir, "config", "get", "client.target"})
		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("http://localhost:3001"))
	})

	It("prints the version", func() {
		out := &bytes.Buffer{}

		cmd := parleycmder.NewParleyCmd()
		cmd.SetOut(out)
		cmd.SetArgs([]string{"version"})
		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Version: dev"))
	})

	It("prints only the version number with --short", func() {
		out := &bytes.Buffer{}

		cmd := parleycmder.NewParleyCmd()
		cmd.SetOut(out)
		cmd.SetArgs([]string{"version", "--short"})
		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(Equal("dev\n"))
	})
})
