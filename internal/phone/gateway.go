// Package phone wraps the external SMS confirmation collaborator. The core
// only depends on the Gateway contract; delivery mechanics stay outside.
package phone

import "context"

// Gateway sends and verifies one-time confirmation codes. Implementations
// must respect context deadlines; callers bound every call with the
// configured upstream timeout.
type Gateway interface {
	SendCode(ctx context.Context, phoneNumber string) error
	VerifyCode(ctx context.Context, phoneNumber, code string) error
}
