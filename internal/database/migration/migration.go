package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fxacademy/internal/logging"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_pgcrypto",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	},
	{
		Name: "create_table_plans",
		SQL: `CREATE TABLE IF NOT EXISTS plans (
  id             UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  name           TEXT        NOT NULL UNIQUE,
  description    TEXT        NOT NULL DEFAULT '',
  price_cents    INTEGER     NOT NULL CHECK (price_cents >= 0),
  currency       TEXT        NOT NULL DEFAULT 'USD',
  interval_days  INTEGER     NOT NULL CHECK (interval_days > 0),
  paypal_plan_id TEXT        NOT NULL DEFAULT '',
  active         BOOLEAN     NOT NULL DEFAULT TRUE,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id                      UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  email                   TEXT        NOT NULL UNIQUE,
  name                    TEXT        NOT NULL,
  password_hash           TEXT        NOT NULL,
  role                    TEXT        NOT NULL DEFAULT 'student' CHECK (role IN ('student', 'admin')),
  status                  TEXT        NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
  invite_code             TEXT        NOT NULL DEFAULT '',
  subscription_plan_id    UUID        REFERENCES plans (id) ON DELETE SET NULL,
  subscription_expires_at TIMESTAMPTZ,
  created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
  approved_at             TIMESTAMPTZ
);`,
	},
	{
		Name: "create_table_invites",
		SQL: `CREATE TABLE IF NOT EXISTS invites (
  code       TEXT        PRIMARY KEY,
  email      TEXT,
  created_by UUID        REFERENCES users (id) ON DELETE SET NULL,
  max_uses   INTEGER     NOT NULL DEFAULT 1 CHECK (max_uses > 0),
  used_count INTEGER     NOT NULL DEFAULT 0 CHECK (used_count >= 0),
  expires_at TIMESTAMPTZ,
  revoked    BOOLEAN     NOT NULL DEFAULT FALSE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_courses",
		SQL: `CREATE TABLE IF NOT EXISTS courses (
  id          UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  slug        TEXT        NOT NULL UNIQUE,
  title       TEXT        NOT NULL,
  description TEXT        NOT NULL DEFAULT '',
  cover_key   TEXT,
  published   BOOLEAN     NOT NULL DEFAULT FALSE,
  position    INTEGER     NOT NULL DEFAULT 0,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_lessons",
		SQL: `CREATE TABLE IF NOT EXISTS lessons (
  id          UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  course_id   UUID        NOT NULL REFERENCES courses (id) ON DELETE CASCADE,
  title       TEXT        NOT NULL,
  description TEXT        NOT NULL DEFAULT '',
  video_url   TEXT        NOT NULL DEFAULT '',
  position    INTEGER     NOT NULL DEFAULT 0,
  drip_days   INTEGER     NOT NULL DEFAULT 0 CHECK (drip_days >= 0),
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_lessons_course_position",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_lessons_course_position ON lessons (course_id, position);`,
	},
	{
		Name: "create_table_enrollments",
		SQL: `CREATE TABLE IF NOT EXISTS enrollments (
  user_id     UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  course_id   UUID        NOT NULL REFERENCES courses (id) ON DELETE CASCADE,
  enrolled_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (user_id, course_id)
);`,
	},
	{
		Name: "create_table_progress",
		SQL: `CREATE TABLE IF NOT EXISTS progress (
  user_id      UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  lesson_id    UUID        NOT NULL REFERENCES lessons (id) ON DELETE CASCADE,
  completed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (user_id, lesson_id)
);`,
	},
	{
		Name: "create_table_adhoc_access",
		SQL: `CREATE TABLE IF NOT EXISTS adhoc_access (
  id         UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  user_id    UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  lesson_id  UUID        NOT NULL REFERENCES lessons (id) ON DELETE CASCADE,
  granted_by UUID        REFERENCES users (id) ON DELETE SET NULL,
  starts_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  expires_at TIMESTAMPTZ NOT NULL,
  note       TEXT        NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  CHECK (expires_at > starts_at)
);`,
	},
	{
		Name: "create_index_adhoc_access_user_lesson",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_adhoc_access_user_lesson ON adhoc_access (user_id, lesson_id, expires_at);`,
	},
	{
		Name: "create_table_chat_messages",
		SQL: `CREATE TABLE IF NOT EXISTS chat_messages (
  id         UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  room       TEXT        NOT NULL,
  user_id    UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  lesson_id  UUID        REFERENCES lessons (id) ON DELETE SET NULL,
  body       TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_chat_messages_room_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_chat_messages_room_created_at ON chat_messages (room, created_at DESC);`,
	},
	{
		Name: "create_table_private_rooms",
		SQL: `CREATE TABLE IF NOT EXISTS private_rooms (
  id              TEXT        PRIMARY KEY,
  user_a          UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  user_b          UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  last_message_at TIMESTAMPTZ,
  UNIQUE (user_a, user_b),
  CHECK (user_a < user_b)
);`,
	},
	{
		Name: "create_table_room_reads",
		SQL: `CREATE TABLE IF NOT EXISTS room_reads (
  room         TEXT        NOT NULL,
  user_id      UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  last_read_at TIMESTAMPTZ NOT NULL,
  PRIMARY KEY (room, user_id)
);`,
	},
	{
		Name: "create_table_subscriptions",
		SQL: `CREATE TABLE IF NOT EXISTS subscriptions (
  id                     UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  user_id                UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  plan_id                UUID        NOT NULL REFERENCES plans (id),
  paypal_subscription_id TEXT        NOT NULL UNIQUE,
  status                 TEXT        NOT NULL CHECK (status IN ('pending', 'active', 'cancelled', 'expired')),
  started_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
  expires_at             TIMESTAMPTZ NOT NULL
);`,
	},
}

const (
	createLedger = `CREATE TABLE IF NOT EXISTS schema_migrations (
  name       TEXT        PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`
	selectApplied = `SELECT name FROM schema_migrations`
	insertApplied = `INSERT INTO schema_migrations (name) VALUES ($1)`
)

// EnsureMigrated applies every step not yet recorded in schema_migrations, in order.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *logging.Logger, dbHost string) error {
	start := time.Now()

	log.Log(map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	fail := func(step string, err error) error {
		log.Log(map[string]any{
			"component":      "database",
			"event":          "db_migration_failed",
			"status":         "error",
			"migration_step": step,
			"error_message":  err.Error(),
			"db_host":        dbHost,
			"duration_ms":    time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("migration step %s failed: %w", step, err)
	}

	if _, err := db.ExecContext(ctx, createLedger); err != nil {
		return fail("create_schema_migrations", err)
	}

	applied, err := appliedSteps(ctx, db)
	if err != nil {
		return fail("read_schema_migrations", err)
	}

	ran := 0
	for _, step := range steps {
		if applied[step.Name] {
			continue
		}
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			return fail(step.Name, err)
		}
		if _, err := db.ExecContext(ctx, insertApplied, step.Name); err != nil {
			return fail(step.Name, err)
		}
		ran++

		log.Log(map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	event := "db_migration_success"
	if ran == 0 {
		event = "db_migration_skip"
	}
	log.Log(map[string]any{
		"component":     "database",
		"event":         event,
		"status":        "success",
		"steps_applied": ran,
		"db_host":       dbHost,
		"duration_ms":   time.Since(start).Milliseconds(),
	})
	return nil
}

func appliedSteps(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, selectApplied)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}
