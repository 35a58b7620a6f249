package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("isUniqueViolation", func() {
	DescribeTable("classifies driver errors",
		func(err error, want bool) {
			Expect(isUniqueViolation(err)).To(Equal(want))
		},
		Entry("nil", nil, false),
		Entry("postgres unique violation", &pgconn.PgError{Code: "23505"}, true),
		Entry("wrapped unique violation", fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505"}), true),
		Entry("foreign key violation", &pgconn.PgError{Code: "23503"}, false),
		Entry("translated by gorm", gorm.ErrDuplicatedKey, true),
		Entry("message that only looks like one", errors.New("ERROR: duplicate key (SQLSTATE 23505)"), false),
	)
})
