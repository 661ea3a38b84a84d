package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadGroups reads a file mapping group names to member logins and returns
// the group of each login. JSON files decode as well. A login listed under
// two groups is an error.
func LoadGroups(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening groups file %s", path)
	}
	defer f.Close()

	var members map[string][]string
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&members); err != nil {
		return nil, errors.Wrapf(err, "decoding groups file %s", path)
	}

	groups := make(map[string]string)
	for group, logins := range members {
		for _, login := range logins {
			if other, ok := groups[login]; ok && other != group {
				return nil, errors.Errorf("%s is in groups %q and %q", login, other, group)
			}
			groups[login] = group
		}
	}
	return groups, nil
}
