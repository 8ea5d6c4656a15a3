package main

import (
	"context"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"fxacademy/internal/auth"
	"fxacademy/internal/config"
	"fxacademy/internal/database"
	"fxacademy/internal/database/migration"
	"fxacademy/internal/logging"
	"fxacademy/internal/mail"
	"fxacademy/internal/repository/postgres"
	"fxacademy/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New(os.Stderr, cfg.Location())
	logging.SetDefault(logger)

	ctx := context.Background()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logger.Error("db_connect_failed", err, nil)
		os.Exit(1)
	}
	defer db.Close()

	var sender mail.Sender
	if cfg.SendGrid.APIKey != "" {
		sender = mail.NewSendGrid(cfg.SendGrid)
	} else {
		sender = mail.NewConsole(logger)
	}
	mailer := mail.NewDispatcher(sender, logger)
	composer := mail.NewComposer(cfg.SendGrid.FromName, cfg.FrontendURL)

	users := postgres.NewUserPostgres(db)
	invites := postgres.NewInvitePostgres(db)
	courses := postgres.NewCoursePostgres(db)
	lessons := postgres.NewLessonPostgres(db)
	plans := postgres.NewPlanPostgres(db)

	cli := commandLine{
		out:     os.Stdout,
		users:   users,
		courses: courses,
		lessons: lessons,
		plans:   plans,
		hasher:  auth.NewPasswordHasher(),
		admin: service.NewAdminService(users, invites, courses, lessons,
			postgres.NewEnrollmentPostgres(db), postgres.NewAdhocAccessPostgres(db), plans, mailer, composer),
		migrate: func(ctx context.Context) error {
			return migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host)
		},
	}

	err = cli.run(ctx, os.Args)
	mailer.Wait()
	if err != nil {
		if err != errHelp {
			logger.Error("admin_command_failed", err, map[string]any{"args": os.Args[1:]})
		}
		os.Exit(1)
	}
}
