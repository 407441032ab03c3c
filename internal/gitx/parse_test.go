// SPDX-License-Identifier: MIT
package gitx_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/fleetpull/internal/gitx"
)

var _ = Describe("SplitLines", func() {
	It("drops a single trailing newline", func() {
		Expect(gitx.SplitLines("a\nb\n")).To(Equal([]string{"a", "b"}))
	})

	It("returns nil for empty output", func() {
		Expect(gitx.SplitLines("")).To(BeNil())
		Expect(gitx.SplitLines("\n")).To(BeNil())
	})

	It("strips carriage returns", func() {
		Expect(gitx.SplitLines("a\r\nb\r\n")).To(Equal([]string{"a", "b"}))
	})

	It("keeps leading whitespace of porcelain rows", func() {
		Expect(gitx.SplitLines(" M file.go\n")).To(Equal([]string{" M file.go"}))
	})
})

var _ = Describe("ParseLocalChanges", func() {
	DescribeTable("classifies porcelain rows",
		func(lines []string, want bool) {
			Expect(gitx.ParseLocalChanges(lines)).To(Equal(want))
		},
		Entry("clean", nil, false),
		Entry("untracked only", []string{"?? new.go", "?? dir/"}, false),
		Entry("unstaged modification", []string{" M file.go"}, true),
		Entry("staged addition", []string{"A  file.go"}, true),
		Entry("deleted", []string{" D gone.go"}, true),
		Entry("renamed", []string{"R  old.go -> new.go"}, true),
		Entry("untracked mixed with modified", []string{"?? new.go", "MM file.go"}, true),
		Entry("blank rows", []string{"", "   "}, false),
	)
})

var _ = Describe("ParseCurrentBranch", func() {
	It("returns the starred branch", func() {
		Expect(gitx.ParseCurrentBranch([]string{"  main", "* release/1.2", "  topic"})).To(Equal("release/1.2"))
	})

	It("ignores branches checked out in other worktrees", func() {
		Expect(gitx.ParseCurrentBranch([]string{"+ other", "* main"})).To(Equal("main"))
	})

	It("reports the first token of a detached HEAD row", func() {
		Expect(gitx.ParseCurrentBranch([]string{"* (HEAD detached at abc1234)", "  main"})).To(Equal("(HEAD"))
	})

	It("returns empty when nothing is checked out", func() {
		Expect(gitx.ParseCurrentBranch(nil)).To(Equal(""))
		Expect(gitx.ParseCurrentBranch([]string{"  main"})).To(Equal(""))
	})
})

var _ = Describe("ParseStashCount", func() {
	It("counts non-empty rows", func() {
		Expect(gitx.ParseStashCount(nil)).To(Equal(0))
		Expect(gitx.ParseStashCount([]string{"stash@{0}: WIP", "", "stash@{1}: WIP"})).To(Equal(2))
	})
})

var _ = Describe("ParseRefExists", func() {
	It("requires a non-blank row", func() {
		Expect(gitx.ParseRefExists(nil)).To(BeFalse())
		Expect(gitx.ParseRefExists([]string{""})).To(BeFalse())
		Expect(gitx.ParseRefExists([]string{"abc refs/heads/main"})).To(BeTrue())
	})
})
