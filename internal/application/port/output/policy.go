package output

import "desktop-agent/internal/domain/entity"

type AuthorizationPort interface {
	IsAllowed(kind entity.CommandKind, action entity.CommandAction) bool
}
