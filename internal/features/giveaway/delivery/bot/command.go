package bot

import (
	"strings"
)

// Permission is the caller's standing in the chat the command came from.
type Permission int

const (
	PermissionMember Permission = iota
	PermissionManager
)

// ParsePermission maps a chat member status to a Permission. Owners and
// administrators may manage giveaways.
func ParsePermission(status string) Permission {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "creator", "owner", "administrator", "admin", "manager":
		return PermissionManager
	default:
		return PermissionMember
	}
}

// Command is a chat command already attributed to its caller and chat.
type Command struct {
	Name        string
	Args        []string
	CallerID    int64
	CallerName  string
	CommunityID int64
	ChatID      int64
	Permission  Permission
}

// ParseCommand splits "<prefix><name> args..." into a lowercase name and its
// arguments. Telegram's "/cmd@botname" suffix is dropped.
func ParseCommand(text, prefix string) (string, []string, bool) {
	text = strings.TrimSpace(text)
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return "", nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(text, prefix))
	if len(fields) == 0 {
		return "", nil, false
	}
	name := strings.ToLower(fields[0])
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	if name == "" {
		return "", nil, false
	}
	return name, fields[1:], true
}
