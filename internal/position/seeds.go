package position

func grant(actions ...string) map[string]bool {
	m := make(map[string]bool, len(actions))
	for _, a := range actions {
		m[a] = true
	}
	return m
}

// Seeds returns the standard position tiers ordered by level. A fresh copy is
// returned on every call so callers may mutate the result.
func Seeds() []*Position {
	return []*Position{
		{
			Name:  "Agent",
			Level: LevelAgent,
			Permissions: Permissions{
				"dashboard": grant("view"),
				"book":      grant("view", "edit"),
				"post-deal": grant("view", "create", "edit"),
				"settings":  grant("view"),
			},
		},
		{
			Name:  "Senior Agent",
			Level: LevelSeniorAgent,
			Permissions: Permissions{
				"dashboard": grant("view"),
				"book":      grant("view", "edit"),
				"post-deal": grant("view", "create", "edit"),
				"reports":   grant("view"),
				"settings":  grant("view"),
			},
		},
		{
			Name:  "Team Lead",
			Level: LevelTeamLead,
			Permissions: Permissions{
				"dashboard": grant("view"),
				"book":      grant("view", "edit"),
				"post-deal": grant("view", "create", "edit"),
				"reports":   grant("view"),
				"users":     grant("view"),
				"settings":  grant("view"),
			},
		},
		{
			Name:  "Manager",
			Level: LevelManager,
			Permissions: Permissions{
				"dashboard": grant("view"),
				"book":      grant("view", "edit"),
				"post-deal": grant("view", "create", "edit", "delete"),
				"reports":   grant("view", "export"),
				"users":     grant("view", "edit"),
				"settings":  grant("view", "edit"),
			},
		},
		{
			Name:  "Director",
			Level: LevelDirector,
			Permissions: Permissions{
				"dashboard": grant("view"),
				"book":      grant("view", "edit", "delete"),
				"post-deal": grant("view", "create", "edit", "delete"),
				"reports":   grant("view", "export"),
				"users":     grant("view", "create", "edit"),
				"settings":  grant("view", "edit"),
			},
		},
		{
			Name:    "Admin",
			Level:   LevelAdmin,
			IsAdmin: true,
			Permissions: Permissions{
				"dashboard": grant("view"),
				"book":      grant("view", "edit", "delete"),
				"post-deal": grant("view", "create", "edit", "delete"),
				"reports":   grant("view", "export"),
				"users":     grant("view", "create", "edit", "delete"),
				"settings":  grant("view", "edit"),
			},
		},
	}
}

// IsAdminRole reports whether the legacy role string names an administrator.
func IsAdminRole(role string) bool {
	return role == RoleAdmin
}

// Synthetic builds the in-memory default for role from the seed tiers: the
// highest tier for admins, the lowest for everyone else.
func Synthetic(role string) *Position {
	seeds := Seeds()
	p := seeds[0]
	if IsAdminRole(role) {
		p = seeds[len(seeds)-1]
	}
	p.Synthetic = true
	return p
}
