package entities

// Role is a member's role within a chapter.
type Role string

const (
	RoleLeader       Role = "leader"
	RoleBackupLeader Role = "backup_leader"
	RoleMember       Role = "member"
)

// Member is an active chapter member as reported by the membership
// service. The core only reads role for authorization checks.
type Member struct {
	UserID      string
	ChapterID   string
	DisplayName string
	Role        Role
	Active      bool
}

// CanLead reports whether the member may start meetings and use
// leader-override paths.
func (m Member) CanLead() bool {
	return m.Role == RoleLeader || m.Role == RoleBackupLeader
}
