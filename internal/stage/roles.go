package stage

import (
	_ "embed"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed roles.yaml
var rolesYAML []byte

// Role is one supported position, with the structured requirements the
// prompt builder feeds into question strategy. The set of roles is closed:
// an unrecognized role on a candidate record is a configuration error, not
// something to silently default around.
type Role struct {
	Name              string   `yaml:"name"`
	DisplayName       string   `yaml:"display_name"`
	Skills            []string `yaml:"skills"`
	Dealbreakers      []string `yaml:"dealbreakers"`
	CriticalQuestions []string `yaml:"critical_questions"`
}

var (
	rolesOnce   sync.Once
	rolesByName map[string]Role
	rolesErr    error
)

func loadRoles() {
	var wrapper struct {
		Roles []Role `yaml:"roles"`
	}
	if err := yaml.Unmarshal(rolesYAML, &wrapper); err != nil {
		rolesErr = eris.Wrap(err, "stage: parse roles.yaml")
		return
	}
	rolesByName = make(map[string]Role, len(wrapper.Roles))
	for _, r := range wrapper.Roles {
		rolesByName[r.Name] = r
	}
}

// LookupRole returns the role record for a target role name. Unknown names
// are a configuration error.
func LookupRole(name string) (Role, error) {
	rolesOnce.Do(loadRoles)
	if rolesErr != nil {
		return Role{}, rolesErr
	}
	r, ok := rolesByName[name]
	if !ok {
		return Role{}, eris.Errorf("stage: unsupported role %q", name)
	}
	return r, nil
}

// SupportedRoles returns the names of all registered roles.
func SupportedRoles() ([]string, error) {
	rolesOnce.Do(loadRoles)
	if rolesErr != nil {
		return nil, rolesErr
	}
	names := make([]string, 0, len(rolesByName))
	for name := range rolesByName {
		names = append(names, name)
	}
	return names, nil
}
