package auth

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = ginkgo.Describe("Password", func() {
	ginkgo.It("should verify the plaintext it hashed", func() {
		hash, err := HashPassword("s3cret-pass", bcrypt.MinCost)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(hash).ToNot(gomega.Equal("s3cret-pass"))
		gomega.Expect(VerifyPassword(hash, "s3cret-pass")).To(gomega.BeTrue())
		gomega.Expect(VerifyPassword(hash, "S3cret-pass")).To(gomega.BeFalse())
	})

	ginkgo.It("should fail closed on empty or corrupt hashes", func() {
		gomega.Expect(VerifyPassword("", "anything")).To(gomega.BeFalse())
		gomega.Expect(VerifyPassword("plaintext-not-a-hash", "plaintext-not-a-hash")).To(gomega.BeFalse())
	})

	ginkgo.It("should refuse to hash an empty password", func() {
		_, err := HashPassword("", bcrypt.MinCost)
		gomega.Expect(err).To(gomega.MatchError(ErrEmptyPassword))
	})

	ginkgo.It("should use the default cost for out of range values", func() {
		h := NewBcryptHasher(99)
		hash, err := h.Hash("s3cret-pass")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		cost, err := bcrypt.Cost([]byte(hash))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(cost).To(gomega.Equal(DefaultBCryptCost))
		gomega.Expect(h.Verify(hash, "s3cret-pass")).To(gomega.BeTrue())
	})
})
