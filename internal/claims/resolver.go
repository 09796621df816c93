package claims

import "github.com/FamilySync/Services-Authentication/internal/models"

// Access is the resolved view of one catalog entry for a particular user.
type Access struct {
	AccessLevel *AccessLevel `json:"accessLevel,omitempty"`
	Name        string       `json:"name"`
	Claim       string       `json:"claim"`
	Description string       `json:"description"`
	Policy      string       `json:"policy"`
}

// Resolve maps a user's raw claims onto the catalog. Entries the user holds no
// parseable claim for are dropped; the result keeps catalog order.
func Resolve(userClaims []models.Claim) []Access {
	result := make([]Access, 0, len(definitions))
	for _, def := range definitions {
		level, ok := levelFor(userClaims, def.Claim)
		if !ok {
			continue
		}
		result = append(result, Access{
			Name:        def.Name,
			Claim:       def.Claim,
			Description: def.Description,
			Policy:      def.Policy,
			AccessLevel: &level,
		})
	}
	return result
}

// Lookup returns the first claim of the given type.
func Lookup(userClaims []models.Claim, claimType string) (models.Claim, bool) {
	for _, c := range userClaims {
		if c.Type == claimType {
			return c, true
		}
	}
	return models.Claim{}, false
}

// Satisfies reports whether the claims grant the named policy: the caller must
// hold the backing catalog claim at a level above None. Unknown policies are
// never satisfied.
func Satisfies(userClaims []models.Claim, policy string) bool {
	def, ok := ByPolicy(policy)
	if !ok {
		return false
	}
	level, ok := levelFor(userClaims, def.Claim)
	return ok && level > None
}

func levelFor(userClaims []models.Claim, claimType string) (AccessLevel, bool) {
	c, ok := Lookup(userClaims, claimType)
	if !ok {
		return None, false
	}
	return ParseAccessLevel(c.Value)
}
