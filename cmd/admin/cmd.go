package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"
	"time"

	"golang.org/x/term"

	"fxacademy/internal/repository"
	"fxacademy/internal/service"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type passwordHasher interface {
	Hash(password string) (string, error)
}

type commandLine struct {
	out     io.Writer
	users   repository.UserRepository
	courses repository.CourseRepository
	lessons repository.LessonRepository
	plans   repository.PlanRepository
	admin   service.AdminService
	hasher  passwordHasher
	migrate func(ctx context.Context) error
	now     func() time.Time
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate                                  - apply pending schema migrations")
	fmt.Fprintln(cli.out, "  createadmin -email EMAIL -name NAME      - create an approved admin; the password is prompted next")
	fmt.Fprintln(cli.out, "  invite [-email EMAIL] [-uses N] [-days D] - create an invite and print its code")
	fmt.Fprintln(cli.out, "  seed                                     - insert demo courses, lessons and plans")
}

func (cli *commandLine) clock() time.Time {
	if cli.now != nil {
		return cli.now()
	}
	return time.Now()
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAdminCmd := flag.NewFlagSet("createadmin", flag.ContinueOnError)
	createAdminCmd.SetOutput(cli.out)
	createAdminEmail := createAdminCmd.String("email", "", "The admin's email address.")
	createAdminName := createAdminCmd.String("name", "", "The admin's display name.")

	inviteCmd := flag.NewFlagSet("invite", flag.ContinueOnError)
	inviteCmd.SetOutput(cli.out)
	inviteEmail := inviteCmd.String("email", "", "Restrict the invite to this email address.")
	inviteUses := inviteCmd.Int("uses", 1, "How many registrations the invite admits.")
	inviteDays := inviteCmd.Int("days", 0, "Days until the invite expires; 0 never expires.")

	switch args[1] {
	case "migrate":
		if err := cli.migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "migrations applied")
		return nil
	case "createadmin":
		if err := createAdminCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *createAdminEmail == "" || *createAdminName == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			createAdminCmd.Usage()
			return errHelp
		}
		return cli.createAdmin(ctx, *createAdminEmail, *createAdminName, string(pwd))
	case "invite":
		if err := inviteCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *inviteUses < 1 || *inviteDays < 0 {
			inviteCmd.Usage()
			return errHelp
		}
		return cli.invite(ctx, *inviteEmail, *inviteUses, *inviteDays)
	case "seed":
		return cli.seed(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}
