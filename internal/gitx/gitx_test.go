// SPDX-License-Identifier: MIT
package gitx_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/fleetpull/internal/gitx"
)

var _ = Describe("GitRunner.Run", func() {
	var runner *gitx.GitRunner

	BeforeEach(func() {
		runner = &gitx.GitRunner{}
	})

	It("runs git version successfully", func() {
		out, err := runner.Run(context.Background(), "", "version")
		Expect(err).NotTo(HaveOccurred())
		Expect(out.ExitCode).To(Equal(0))
		Expect(out.Lines).To(HaveLen(1))
		Expect(out.Lines[0]).To(ContainSubstring("git version"))
	})

	It("reports a failing command as an exit status with empty stdout", func() {
		dir := GinkgoT().TempDir()
		out, err := runner.Run(context.Background(), dir, "show-ref", "--verify", "refs/heads/definitely-missing")
		Expect(err).NotTo(HaveOccurred())
		Expect(out.ExitCode).NotTo(Equal(0))
		Expect(out.Lines).To(BeEmpty())
	})

	It("errors for nonexistent directory", func() {
		_, err := runner.Run(context.Background(), "/nonexistent/path/xyz", "status")
		Expect(err).To(HaveOccurred())
	})

	It("respects context cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := runner.Run(ctx, "", "version")
		Expect(err).To(HaveOccurred())
		Expect(gitx.ClassifyError(err)).To(Equal("canceled"))
	})

	It("wraps a missing binary as ErrGitNotFound", func() {
		runner.GitBin = "fleetpull-no-such-git-binary"
		_, err := runner.Run(context.Background(), "", "version")
		Expect(errors.Is(err, gitx.ErrGitNotFound)).To(BeTrue())
	})

	It("traces every command before running it", func() {
		var traced []string
		runner.Trace = func(dir string, args []string) {
			traced = append(traced, dir)
			traced = append(traced, args...)
		}
		runner.Timeout = 30 * time.Second
		_, err := runner.Run(context.Background(), "", "version")
		Expect(err).NotTo(HaveOccurred())
		Expect(traced).To(Equal([]string{"", "version"}))
	})
})

var _ = Describe("HasGitDir", func() {
	It("is true only for a .git directory", func() {
		root := GinkgoT().TempDir()
		repo := filepath.Join(root, "repo")
		Expect(os.MkdirAll(filepath.Join(repo, ".git"), 0o755)).To(Succeed())
		Expect(gitx.HasGitDir(repo)).To(BeTrue())

		linked := filepath.Join(root, "linked")
		Expect(os.MkdirAll(linked, 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(linked, ".git"), []byte("gitdir: ../repo/.git\n"), 0o644)).To(Succeed())
		Expect(gitx.HasGitDir(linked)).To(BeFalse())

		Expect(gitx.HasGitDir(filepath.Join(root, "missing"))).To(BeFalse())
	})
})

var _ = Describe("BranchExists", func() {
	It("returns true when show-ref prints the ref", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:show-ref --verify refs/heads/release": {Output: "abc123 refs/heads/release\n"},
		}}
		ok, err := gitx.BranchExists(context.Background(), mock, "/repo", "release")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("returns false when git exits non-zero with no stdout", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:show-ref --verify refs/heads/rel": {Exit: 128},
		}}
		ok, err := gitx.BranchExists(context.Background(), mock, "/repo", "rel")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("propagates transport errors", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:show-ref --verify refs/heads/main": {Err: context.DeadlineExceeded},
		}}
		_, err := gitx.BranchExists(context.Background(), mock, "/repo", "main")
		Expect(err).To(MatchError(context.DeadlineExceeded))
	})
})

var _ = Describe("inspection commands", func() {
	It("ignores untracked files when checking local changes", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:status --porcelain": {Output: "?? new.txt\n?? other/\n"},
		}}
		dirty, err := gitx.HasLocalChanges(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(dirty).To(BeFalse())
	})

	It("reads the current branch from the starred row", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:branch": {Output: "  feature\n* main\n  release\n"},
		}}
		branch, err := gitx.CurrentBranch(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(branch).To(Equal("main"))
	})

	It("counts stash entries", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:stash list": {Output: "stash@{0}: WIP on main: abc\nstash@{1}: WIP on main: def\n"},
		}}
		count, err := gitx.StashCount(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(2))
	})
})

var _ = Describe("mutating commands", func() {
	It("issues checkout, pull and fetch with the expected arguments", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:checkout release":             {},
			"/repo:pull --rebase origin release": {Exit: 1},
			"/repo:fetch origin release":         {},
		}}
		code, err := gitx.Checkout(context.Background(), mock, "/repo", "release")
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(0))

		code, err = gitx.PullRebase(context.Background(), mock, "/repo", "origin", "release")
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(1))

		code, err = gitx.FetchBranch(context.Background(), mock, "/repo", "origin", "release")
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(0))

		Expect(mock.Calls).To(Equal([]string{
			"/repo:checkout release",
			"/repo:pull --rebase origin release",
			"/repo:fetch origin release",
		}))
	})
})
