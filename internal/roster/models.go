package roster

// Team links a team's membership role to the representative role authorized
// to hire and dismiss for it. The mapping is explicit configuration rather
// than a naming convention so that renaming a role cannot silently break the
// pairing.
type Team struct {
	Name                 string `yaml:"name" json:"name"`
	RoleID               string `yaml:"role_id" json:"role_id"`
	RepresentativeRoleID string `yaml:"representative_role_id" json:"representative_role_id"`
}
