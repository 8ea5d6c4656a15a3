package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"fxacademy/internal/model"
	"fxacademy/internal/service"
)

var errUserExists = errors.New("a user with this email already exists")

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

func (cli *commandLine) createAdmin(ctx context.Context, email, name, pwd string) error {
	email = service.NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(pwd) < 8 || len(pwd) > maxPasswordBytes {
		return service.ErrWeakPassword
	}

	if _, err := cli.users.FindByEmail(ctx, email); err == nil {
		return errUserExists
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	hash, err := cli.hasher.Hash(pwd)
	if err != nil {
		return err
	}
	now := cli.clock().UTC()
	usr, err := cli.users.Create(ctx, &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Status:       model.UserApproved,
		CreatedAt:    now,
		ApprovedAt:   &now,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "admin %s created (%s)\n", usr.Email, usr.ID)
	return nil
}

func (cli *commandLine) invite(ctx context.Context, email string, uses, days int) error {
	in := service.InviteInput{Email: email, MaxUses: uses}
	if days > 0 {
		exp := cli.clock().UTC().AddDate(0, 0, days)
		in.ExpiresAt = &exp
	}
	inv, err := cli.admin.CreateInvite(ctx, "", in)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, inv.Code)
	return nil
}
