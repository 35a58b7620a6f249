package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("JWTTokenGenerator", func() {
	var tokenGen *JWTTokenGenerator

	ginkgo.BeforeEach(func() {
		tokenGen = NewJWTTokenGenerator(testSecret, 0, 0)
	})

	ginkgo.It("should default to 24h access and 7d refresh lifetimes", func() {
		gomega.Expect(tokenGen.AccessTokenTTL).To(gomega.Equal(24 * time.Hour))
		gomega.Expect(tokenGen.RefreshTokenTTL).To(gomega.Equal(7 * 24 * time.Hour))
	})

	ginkgo.It("should round trip user id and email", func() {
		token, err := tokenGen.GenerateAccessToken("u-1", "a@example.com")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		claims, err := tokenGen.ValidateAccessToken(token)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(claims.UserID).To(gomega.Equal("u-1"))
		gomega.Expect(claims.Email).To(gomega.Equal("a@example.com"))
		gomega.Expect(claims.TokenType).To(gomega.Equal(TokenTypeAccess))
		gomega.Expect(claims.Subject).To(gomega.Equal("u-1"))
		gomega.Expect(claims.ID).ToNot(gomega.BeEmpty())
		gomega.Expect(claims.ExpiresAt.Time).To(gomega.BeTemporally("~", time.Now().Add(24*time.Hour), time.Minute))
	})

	ginkgo.It("should keep access and refresh tokens apart", func() {
		access, _ := tokenGen.GenerateAccessToken("u-1", "a@example.com")
		refresh, _ := tokenGen.GenerateRefreshToken("u-1", "a@example.com")

		_, err := tokenGen.ValidateRefreshToken(access)
		gomega.Expect(err).To(gomega.MatchError(ErrWrongTokenType))

		_, err = tokenGen.ValidateAccessToken(refresh)
		gomega.Expect(err).To(gomega.MatchError(ErrWrongTokenType))

		claims, err := tokenGen.ValidateRefreshToken(refresh)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(claims.ExpiresAt.Time).To(gomega.BeTemporally("~", time.Now().Add(7*24*time.Hour), time.Minute))
	})

	ginkgo.It("should reject a hand crafted token whose type is refresh at access endpoints", func() {
		claims := &Claims{
			UserID:    "u-1",
			Email:     "a@example.com",
			TokenType: TokenTypeRefresh,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = tokenGen.ValidateAccessToken(token)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.It("should report expired tokens", func() {
		expired := NewJWTTokenGenerator(testSecret, -time.Minute, time.Hour)
		token, _ := expired.GenerateAccessToken("u-1", "a@example.com")

		_, err := tokenGen.ValidateToken(token)
		gomega.Expect(err).To(gomega.MatchError(ErrTokenExpired))
	})

	ginkgo.It("should reject tokens signed with another secret", func() {
		other := NewJWTTokenGenerator("another-secret-another-secret-xx", 0, 0)
		token, _ := other.GenerateAccessToken("u-1", "a@example.com")

		_, err := tokenGen.ValidateToken(token)
		gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
	})

	ginkgo.It("should reject unsigned and malformed tokens", func() {
		claims := &Claims{UserID: "u-1", TokenType: TokenTypeAccess, RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		for _, token := range []string{none, "", "not-a-jwt", "a.b.c"} {
			_, err := tokenGen.ValidateToken(token)
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken), token)
		}
	})

	ginkgo.It("should reject tokens without an expiry", func() {
		claims := &Claims{UserID: "u-1", TokenType: TokenTypeAccess}
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))

		_, err := tokenGen.ValidateToken(token)
		gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
	})
})
