// SPDX-License-Identifier: MIT
package model_test

import (
	"encoding/json"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/fleetpull/internal/model"
)

var _ = Describe("RepositoryRef", func() {
	It("derives the display name from the last path component", func() {
		ref := model.NewRepositoryRef(filepath.Join("/", "src", "api") + string(filepath.Separator))
		Expect(ref.Name).To(Equal("api"))
		Expect(ref.Path).To(Equal(filepath.Join("/", "src", "api")))
	})
})

var _ = Describe("StashNote", func() {
	DescribeTable("formats the stash suffix",
		func(count int, want string) {
			Expect(model.StashNote(count)).To(Equal(want))
		},
		Entry("none", 0, ""),
		Entry("negative is treated as none", -1, ""),
		Entry("singular", 1, " ( 1 existent stash )"),
		Entry("plural", 2, " ( 2 existent stashes )"),
		Entry("many", 12, " ( 12 existent stashes )"),
	)
})

var _ = Describe("FleetResult", func() {
	It("counts every non-synced outcome as failed", func() {
		res := model.NewFleetResult([]model.SyncResult{
			{Outcome: model.OutcomeSynced},
			{Outcome: model.OutcomeSkippedLocalChanges},
			{Outcome: model.OutcomeSkippedNotARepo},
			{Outcome: model.OutcomeSkippedInvalidBranch},
		})
		Expect(res.Total).To(Equal(4))
		Expect(res.Failed).To(Equal(3))
		Expect(res.Summary()).To(Equal("Done. ( 3 projects untouched )"))
	})

	It("prints a bare summary when nothing failed", func() {
		res := model.NewFleetResult([]model.SyncResult{{Outcome: model.OutcomeSynced}})
		Expect(res.Summary()).To(Equal("Done."))
		Expect(model.NewFleetResult(nil).Summary()).To(Equal("Done."))
	})

	It("serializes outcomes as stable strings", func() {
		data, err := json.Marshal(model.NewFleetResult([]model.SyncResult{{
			Repository: model.NewRepositoryRef("/src/api"),
			Outcome:    model.OutcomeSkippedLocalChanges,
		}}))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"outcome":"skipped_local_changes"`))
		Expect(string(data)).To(ContainSubstring(`"failed":1`))
		Expect(string(data)).NotTo(ContainSubstring("error_class"))
	})
})
