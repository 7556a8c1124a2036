// Package roster resolves the configured team and representative roles.
package roster

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors returned when building a Directory.
var (
	ErrNoTeams            = errors.New("at least one team must be configured")
	ErrTeamNameRequired   = errors.New("team name is required")
	ErrTeamRoleRequired   = errors.New("team role_id is required")
	ErrRepRoleRequired    = errors.New("team representative_role_id is required")
	ErrDuplicateTeamName  = errors.New("duplicate team name")
	ErrDuplicateTeamRole  = errors.New("duplicate team role_id")
	ErrDuplicateRepRole   = errors.New("duplicate representative_role_id")
	ErrRoleUsedForBothEnds = errors.New("a role cannot be both a team role and a representative role")
)

// Directory provides read-only lookups over the configured team roles and
// their representative roles. It is built once from config and never mutated.
type Directory struct {
	teams   []Team
	byName  map[string]*Team
	byRole  map[string]*Team
	byRep   map[string]*Team
}

// NewDirectory validates the team mapping and builds the lookup indexes.
func NewDirectory(teams []Team) (*Directory, error) {
	if len(teams) == 0 {
		return nil, ErrNoTeams
	}

	d := &Directory{
		teams:  make([]Team, len(teams)),
		byName: make(map[string]*Team, len(teams)),
		byRole: make(map[string]*Team, len(teams)),
		byRep:  make(map[string]*Team, len(teams)),
	}
	copy(d.teams, teams)

	for i := range d.teams {
		t := &d.teams[i]
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			return nil, ErrTeamNameRequired
		}
		if t.RoleID == "" {
			return nil, fmt.Errorf("team %q: %w", t.Name, ErrTeamRoleRequired)
		}
		if t.RepresentativeRoleID == "" {
			return nil, fmt.Errorf("team %q: %w", t.Name, ErrRepRoleRequired)
		}
		if _, ok := d.byName[t.Name]; ok {
			return nil, fmt.Errorf("team %q: %w", t.Name, ErrDuplicateTeamName)
		}
		if _, ok := d.byRole[t.RoleID]; ok {
			return nil, fmt.Errorf("team %q: %w", t.Name, ErrDuplicateTeamRole)
		}
		if _, ok := d.byRep[t.RepresentativeRoleID]; ok {
			return nil, fmt.Errorf("team %q: %w", t.Name, ErrDuplicateRepRole)
		}
		d.byName[t.Name] = t
		d.byRole[t.RoleID] = t
		d.byRep[t.RepresentativeRoleID] = t
	}

	// The two role sets must be disjoint or holding one role would make a
	// member both employable and a representative for the same pairing.
	for _, t := range d.teams {
		if _, ok := d.byRole[t.RepresentativeRoleID]; ok {
			return nil, fmt.Errorf("team %q: %w", t.Name, ErrRoleUsedForBothEnds)
		}
	}

	return d, nil
}

// Teams returns all configured teams.
func (d *Directory) Teams() []Team {
	out := make([]Team, len(d.teams))
	copy(out, d.teams)
	return out
}

// TeamByName returns the team with the given name.
func (d *Directory) TeamByName(name string) (Team, bool) {
	t, ok := d.byName[name]
	if !ok {
		return Team{}, false
	}
	return *t, true
}

// TeamByRole returns the team whose membership role is roleID.
func (d *Directory) TeamByRole(roleID string) (Team, bool) {
	t, ok := d.byRole[roleID]
	if !ok {
		return Team{}, false
	}
	return *t, true
}

// TeamByRepresentativeRole returns the team managed by the given
// representative role.
func (d *Directory) TeamByRepresentativeRole(roleID string) (Team, bool) {
	t, ok := d.byRep[roleID]
	if !ok {
		return Team{}, false
	}
	return *t, true
}

// TeamHeldBy scans a member's role IDs for a configured team role and returns
// the matching team. A member holds at most one team role by invariant, so
// the first match wins.
func (d *Directory) TeamHeldBy(roleIDs []string) (Team, bool) {
	for _, id := range roleIDs {
		if t, ok := d.byRole[id]; ok {
			return *t, true
		}
	}
	return Team{}, false
}

// RepresentedTeam scans a member's role IDs for a configured representative
// role and returns the team it manages.
func (d *Directory) RepresentedTeam(roleIDs []string) (Team, bool) {
	for _, id := range roleIDs {
		if t, ok := d.byRep[id]; ok {
			return *t, true
		}
	}
	return Team{}, false
}
