package services

import "menu-telegram/models"

type Role int

const (
	RoleGuest Role = iota
	RoleAuthenticated
	RoleMaster
)

func (r Role) String() string {
	switch r {
	case RoleAuthenticated:
		return "authenticated"
	case RoleMaster:
		return "master"
	default:
		return "guest"
	}
}

// RoleOf derives the role from a fetched profile; nil means Guest.
func RoleOf(u *models.User) Role {
	switch {
	case u == nil:
		return RoleGuest
	case u.IsMaster:
		return RoleMaster
	default:
		return RoleAuthenticated
	}
}

type Transition struct {
	From, To Role
}

func (t Transition) Changed() bool {
	return t.From != t.To
}

func (t Transition) EnteredMaster() bool {
	return t.From != RoleMaster && t.To == RoleMaster
}

func (t Transition) LeftMaster() bool {
	return t.From == RoleMaster && t.To != RoleMaster
}

// Gate tracks the session's current user and role.
type Gate struct {
	user *models.User
	role Role
}

// Enter records u as the current user (nil for Guest) and reports the transition.
func (g *Gate) Enter(u *models.User) Transition {
	t := Transition{From: g.role, To: RoleOf(u)}
	if u != nil {
		cp := *u
		g.user = &cp
	} else {
		g.user = nil
	}
	g.role = t.To
	return t
}

func (g *Gate) Role() Role {
	return g.role
}

func (g *Gate) User() *models.User {
	return g.user
}

func (g *Gate) IsMaster() bool {
	return g.role == RoleMaster
}
