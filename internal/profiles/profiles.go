package profiles

/*
 * AWS SSO Profiles
 * Copyright (c) 2021-2025 Aaron Turner  <synfinatic at gmail dot com>
 *
 * This program is free software: you can redistribute it
 * and/or modify it under the terms of the GNU General Public License as
 * published by the Free Software Foundation, either version 3 of the
 * License, or with the authors permission any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

import (
	"sort"

	"github.com/synfinatic/aws-sso-profiles/internal/awssso"
)

// Profile is the flattened (account, role) pair we render a config
// block for
type Profile struct {
	Name        string
	AccountName string
	AccountId   string
	RoleName    string
}

// Build flattens the account => roles mapping into Profiles sorted by
// account name then role name, so the rendered output is deterministic
// no matter what order the enumeration completed in.
func Build(accountRoles map[string][]awssso.RoleInfo, userRules []Replacement) ([]Profile, error) {
	rules := MergeReplacements(userRules)

	accountNames := make([]string, 0, len(accountRoles))
	for name := range accountRoles {
		accountNames = append(accountNames, name)
	}
	sort.Strings(accountNames)

	profiles := []Profile{}
	for _, accountName := range accountNames {
		roles := make([]awssso.RoleInfo, len(accountRoles[accountName]))
		copy(roles, accountRoles[accountName])
		sort.Slice(roles, func(i, j int) bool {
			return roles[i].RoleName < roles[j].RoleName
		})

		for _, role := range roles {
			name, err := Munge(accountName+"-"+role.RoleName, rules)
			if err != nil {
				return nil, err
			}
			profiles = append(profiles, Profile{
				Name:        name,
				AccountName: accountName,
				AccountId:   role.AccountId,
				RoleName:    role.RoleName,
			})
		}
	}
	return profiles, nil
}
