package utils

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Truncate", func() {
	It("returns the string unchanged when within the limit", func() {
		Expect(Truncate("short", 10)).To(Equal("short"))
	})

	It("returns the string unchanged when exactly at the limit", func() {
		Expect(Truncate("12345", 5)).To(Equal("12345"))
	})

	It("truncates with ellipsis when over the limit", func() {
		Expect(Truncate("this is a long string", 10)).To(Equal("this is a ..."))
	})

	It("never splits a multi-byte character", func() {
		Expect(Truncate("héllo wörld", 7)).To(Equal("héllo w..."))
	})
})

var _ = Describe("FirstLine", func() {
	It("stops at the first newline", func() {
		Expect(FirstLine("one\ntwo")).To(Equal("one"))
		Expect(FirstLine("single")).To(Equal("single"))
	})
})

var _ = Describe("UserAgent", func() {
	It("names parley and the build version", func() {
		Expect(UserAgent()).To(Equal("parley/" + Version))
	})
})
