package vocabulary_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/resensebox/Mindful-Libraries-sub000/internal/vocabulary"
)

var _ = Describe("Vocabulary", func() {
	It("rejects an empty vocabulary", func() {
		_, err := vocabulary.New(nil)
		Expect(err).To(MatchError(vocabulary.ErrEmpty))

		_, err = vocabulary.New([]vocabulary.Category{{Name: "blank", Topics: []string{" ", ""}}})
		Expect(err).To(MatchError(vocabulary.ErrEmpty))
	})

	It("flattens in category order and drops duplicates", func() {
		v, err := vocabulary.New([]vocabulary.Category{
			{Name: "Outdoors", Topics: []string{"Gardening", "birds"}},
			{Name: "Kitchen", Topics: []string{"cooking", " gardening "}},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Topics()).To(Equal([]string{"gardening", "birds", "cooking"}))
		Expect(v.Len()).To(Equal(3))
		Expect(v.Categories()[1].Topics).To(Equal([]string{"cooking"}))
	})

	It("matches case-insensitively with surrounding whitespace", func() {
		v, err := vocabulary.New([]vocabulary.Category{{Name: "x", Topics: []string{"world war ii"}}})
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Contains("World War II")).To(BeTrue())
		Expect(v.Contains("  world war ii\n")).To(BeTrue())
		Expect(v.Contains("world war")).To(BeFalse())
	})

	It("hands out copies", func() {
		v := vocabulary.Default()
		topics := v.Topics()
		topics[0] = "mutated"
		Expect(v.Topics()[0]).NotTo(Equal("mutated"))
	})

	Describe("Default", func() {
		It("has eleven categories with unique topics", func() {
			v := vocabulary.Default()
			Expect(v.Categories()).To(HaveLen(11))

			seen := map[string]bool{}
			for _, t := range v.Topics() {
				Expect(seen[t]).To(BeFalse(), "duplicate topic %q", t)
				seen[t] = true
			}
			Expect(v.Contains("gardening")).To(BeTrue())
		})
	})
})
