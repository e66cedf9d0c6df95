package main

import (
	"context"

	"github.com/trezcool/darasa/core/user"
)

// addTeacher creates a teacher account, optionally with admin roles.
func (cli *commandLine) addTeacher(schoolID, name, uname, email, pwd string, isAdmin bool) error {
	roles := []string{user.RoleTeacher}
	if isAdmin {
		roles = user.AllRoles
	}

	usr, err := cli.usrSvc.Create(context.Background(), user.NewUser{
		SchoolID:        schoolID,
		Name:            name,
		Username:        uname,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Roles:           roles,
	})
	if err != nil {
		return err
	}
	logger.Printf("created teacher %s (%s)", usr.Name, usr.ID)
	return nil
}
