// Package claims holds the static claim catalog and resolves a user's raw
// claims into per-claim access levels.
package claims

// Claim type keys written by the identity service.
const (
	// ClaimIdentityID carries the user's UUID.
	ClaimIdentityID = "iid"
	// ClaimUsername carries the username.
	ClaimUsername = "uid"
	// ClaimEmail carries the email address.
	ClaimEmail = "email"
	// ClaimFamily is the privileged family/administrative tier.
	ClaimFamily = "fam"
)

// PolicyAdmin is the authorization policy backed by ClaimFamily.
const PolicyAdmin = "famsync:admin"

// Definition describes one recognized claim and the policy it backs.
type Definition struct {
	Name        string `json:"name"`
	Claim       string `json:"claim"`
	Description string `json:"description"`
	Policy      string `json:"policy"`
}

// definitions is the process-wide catalog. Order is the presentation order
// used by every listing and by Resolve.
var definitions = []Definition{
	{
		Name:        "Family",
		Claim:       ClaimFamily,
		Description: "Membership tier of the family; administrators manage members and their claims",
		Policy:      PolicyAdmin,
	},
	{
		Name:        "Calendar",
		Claim:       "cal",
		Description: "Access to the shared family calendar",
		Policy:      "famsync:calendar",
	},
	{
		Name:        "Shopping lists",
		Claim:       "shop",
		Description: "Access to shared shopping lists",
		Policy:      "famsync:shopping",
	},
	{
		Name:        "Chores",
		Claim:       "chore",
		Description: "Access to chore planning and tracking",
		Policy:      "famsync:chores",
	},
	{
		Name:        "Budget",
		Claim:       "budget",
		Description: "Access to the household budget",
		Policy:      "famsync:budget",
	},
}

// All returns every catalog entry in catalog order.
// The returned slice is a copy; callers may modify it freely.
func All() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Assignable returns the entries an administrator may grant through the
// management API, i.e. everything except the reserved family tier.
func Assignable() []Definition {
	out := make([]Definition, 0, len(definitions))
	for _, def := range definitions {
		if def.Claim == ClaimFamily {
			continue
		}
		out = append(out, def)
	}
	return out
}

// ByClaim returns the entry for a claim type key.
func ByClaim(claim string) (Definition, bool) {
	for _, def := range definitions {
		if def.Claim == claim {
			return def, true
		}
	}
	return Definition{}, false
}

// ByPolicy returns the entry backing an authorization policy.
func ByPolicy(policy string) (Definition, bool) {
	for _, def := range definitions {
		if def.Policy == policy {
			return def, true
		}
	}
	return Definition{}, false
}
