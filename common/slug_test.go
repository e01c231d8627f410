package common_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/resensebox/Mindful-Libraries-sub000/common"
)

var _ = Describe("Slugify", func() {
	DescribeTable("slugs",
		func(input, fallback, want string) {
			got, err := common.Slugify(input, fallback)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("simple", "Hello World", "default", "hello-world"),
		Entry("special chars", "Hello@World!", "default", "hello-world"),
		Entry("folds accents", "Zoë Brontë", "default", "zoe-bronte"),
		Entry("trims hyphens", "---test---", "default", "test"),
		Entry("fallback when empty", "   ", "report", "report"),
		Entry("fallback when only symbols", "@#$%", "report", "report"),
	)

	It("fails when nothing usable remains", func() {
		_, err := common.Slugify("@#$", "!@#")
		Expect(err).To(MatchError(common.ErrEmptySlug))
	})
})
