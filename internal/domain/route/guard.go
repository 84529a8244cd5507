package route

import (
	"strings"

	"github.com/alanyang/agent-market/internal/domain/viewer"
)

type Access string

const (
	AccessPublic    Access = "public"
	AccessSignedIn  Access = "signed_in"
	AccessDeveloper Access = "developer"
)

const (
	SignInPath        = "/auth"
	UserDashboardPath = "/user/dashboard"
)

// Decision is the outcome of guarding a navigation.
type Decision struct {
	Allowed  bool
	Redirect string
	Required Access
}

func Required(path string) Access {
	switch {
	case underSection(path, "/developer"):
		return AccessDeveloper
	case underSection(path, "/user"):
		return AccessSignedIn
	default:
		return AccessPublic
	}
}

// Guard decides whether v may open path.
func Guard(path string, v viewer.Viewer) Decision {
	need := Required(path)
	switch need {
	case AccessSignedIn:
		if !v.SignedIn() {
			return Decision{Redirect: SignInPath, Required: need}
		}
	case AccessDeveloper:
		if !v.SignedIn() {
			return Decision{Redirect: SignInPath, Required: need}
		}
		if !v.IsDeveloper() {
			return Decision{Redirect: UserDashboardPath, Required: need}
		}
	}
	return Decision{Allowed: true, Required: need}
}

func underSection(path, section string) bool {
	return path == section || strings.HasPrefix(path, section+"/")
}
