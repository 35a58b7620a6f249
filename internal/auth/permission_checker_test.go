package auth

import (
	"github.com/frahmantamala/crm-auth/internal/position"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("PermissionChecker", func() {
	var checker *DefaultPermissionChecker

	ginkgo.BeforeEach(func() {
		checker = NewPermissionChecker()
	})

	ginkgo.It("should deny a nil user", func() {
		gomega.Expect(checker.HasPermission(nil, "dashboard", "view")).To(gomega.BeFalse())
		gomega.Expect(checker.IsAdmin(nil)).To(gomega.BeFalse())
		gomega.Expect(checker.IsManager(nil)).To(gomega.BeFalse())
	})

	ginkgo.It("should allow admins everything even when the permissions omit a section", func() {
		// Given admin@example.com with an admin position that has no "users" key
		admin := &User{ID: "u-admin", Email: "admin@example.com", Role: "admin", IsActive: true, Position: adminPosition}

		// Then
		gomega.Expect(checker.IsAdmin(admin)).To(gomega.BeTrue())
		gomega.Expect(checker.HasPermission(admin, "users", "delete")).To(gomega.BeTrue())
		for _, section := range []string{"reports", "billing", "anything"} {
			for _, action := range []string{"view", "create", "delete", "export"} {
				gomega.Expect(checker.HasPermission(admin, section, action)).To(gomega.BeTrue())
			}
		}
	})

	ginkgo.It("should use only the position flag as the admin signal", func() {
		// role says admin but the stored position is a plain agent
		u := &User{ID: "u-1", Email: "admin@example.com", Role: "admin", Position: agentPosition}

		gomega.Expect(checker.IsAdmin(u)).To(gomega.BeFalse())
		gomega.Expect(checker.HasPermission(u, "users", "delete")).To(gomega.BeFalse())
	})

	ginkgo.It("should grant explicitly stored permissions", func() {
		p := &position.Position{Name: "Custom", Level: 2, Permissions: position.Permissions{"reports": {"export": true}}}
		u := &User{ID: "u-1", Role: "agent", Position: p}

		gomega.Expect(checker.HasPermission(u, "reports", "export")).To(gomega.BeTrue())
		gomega.Expect(checker.HasPermission(u, "reports", "view")).To(gomega.BeFalse())
	})

	ginkgo.It("should grant critical defaults whatever the stored permissions say", func() {
		locked := &position.Position{Name: "Locked", Level: 1, Permissions: position.Permissions{
			"dashboard": {"view": false},
			"settings":  {"edit": false},
		}}
		nilPerms := &position.Position{Name: "Empty", Level: 1}

		for _, p := range []*position.Position{locked, nilPerms} {
			u := &User{ID: "u-1", Role: "agent", IsActive: true, Position: p}
			gomega.Expect(checker.HasPermission(u, "dashboard", "view")).To(gomega.BeTrue())
			gomega.Expect(checker.HasPermission(u, "book", "edit")).To(gomega.BeTrue())
			gomega.Expect(checker.HasPermission(u, "post-deal", "create")).To(gomega.BeTrue())
			gomega.Expect(checker.HasPermission(u, "settings", "edit")).To(gomega.BeTrue())
			gomega.Expect(checker.HasPermission(u, "book", "delete")).To(gomega.BeFalse())
			gomega.Expect(checker.HasPermission(u, "users", "view")).To(gomega.BeFalse())
		}
	})

	ginkgo.It("should fall back to a role derived position when none is stored", func() {
		agent := &User{ID: "u-1", Role: "agent"}
		admin := &User{ID: "u-2", Role: "admin"}

		gomega.Expect(ResolvePosition(agent).Synthetic).To(gomega.BeTrue())
		gomega.Expect(checker.IsAdmin(agent)).To(gomega.BeFalse())
		gomega.Expect(checker.HasPermission(agent, "dashboard", "view")).To(gomega.BeTrue())
		gomega.Expect(checker.IsAdmin(admin)).To(gomega.BeTrue())
		gomega.Expect(checker.HasPermission(admin, "users", "delete")).To(gomega.BeTrue())
	})

	ginkgo.It("should treat level 4 and above as managers", func() {
		lead := &User{ID: "u-1", Position: &position.Position{Level: position.LevelTeamLead}}
		manager := &User{ID: "u-2", Position: &position.Position{Level: position.LevelManager}}

		gomega.Expect(checker.IsManager(lead)).To(gomega.BeFalse())
		gomega.Expect(checker.IsManager(manager)).To(gomega.BeTrue())
		gomega.Expect(checker.IsManager(&User{Position: adminPosition})).To(gomega.BeTrue())
	})
})

var _ = ginkgo.Describe("ABACPolicy", func() {
	var policy *ABACPolicy

	ginkgo.BeforeEach(func() {
		policy = NewABACPolicy(NewPermissionChecker())
	})

	ginkgo.It("should let users view themselves without users.view", func() {
		agent := &User{ID: "u-1", Position: agentPosition}

		gomega.Expect(policy.CanViewUser(agent, "u-1")).To(gomega.BeTrue())
		gomega.Expect(policy.CanViewUser(agent, "u-2")).To(gomega.BeFalse())
		gomega.Expect(policy.CanViewUser(nil, "u-1")).To(gomega.BeFalse())
	})

	ginkgo.It("should forbid modifying one's own account even for admins", func() {
		admin := &User{ID: "u-1", Position: adminPosition}

		gomega.Expect(policy.CanModifyUser(admin, "u-1", "delete")).To(gomega.MatchError(ErrSelfAction))
		gomega.Expect(policy.CanModifyUser(admin, "u-2", "delete")).To(gomega.Succeed())
	})

	ginkgo.It("should require the users permission for others", func() {
		agent := &User{ID: "u-1", Position: agentPosition}

		gomega.Expect(policy.CanModifyUser(agent, "u-2", "edit")).To(gomega.MatchError(ErrForbidden))
	})

	ginkgo.Describe("CanGrantPosition", func() {
		var seeds []*position.Position

		ginkgo.BeforeEach(func() {
			seeds = position.Seeds()
		})

		ginkgo.It("should keep the admin tier to admins", func() {
			director := &User{ID: "u-d", Position: seeds[4]}
			admin := &User{ID: "u-a", Position: seeds[5]}

			gomega.Expect(policy.CanGrantPosition(director, seeds[5])).To(gomega.MatchError(ErrOutranked))
			gomega.Expect(policy.CanGrantPosition(director, position.Synthetic(position.RoleAdmin))).To(gomega.MatchError(ErrOutranked))
			gomega.Expect(policy.CanGrantPosition(admin, seeds[5])).To(gomega.Succeed())
		})

		ginkgo.It("should refuse positions ranked above the actor", func() {
			manager := &User{ID: "u-m", Position: seeds[3]}

			gomega.Expect(policy.CanGrantPosition(manager, seeds[4])).To(gomega.MatchError(ErrOutranked))
			gomega.Expect(policy.CanGrantPosition(manager, seeds[3])).To(gomega.Succeed())
			gomega.Expect(policy.CanGrantPosition(manager, seeds[0])).To(gomega.Succeed())
		})

		ginkgo.It("should refuse a missing actor or position", func() {
			gomega.Expect(policy.CanGrantPosition(nil, seeds[0])).To(gomega.MatchError(ErrForbidden))
			gomega.Expect(policy.CanGrantPosition(&User{Position: seeds[5]}, nil)).To(gomega.MatchError(ErrForbidden))
		})
	})
})
