package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fxacademy/internal/model"
)

type seedLesson struct {
	title    string
	videoURL string
	dripDays int
}

type seedCourse struct {
	slug        string
	title       string
	description string
	lessons     []seedLesson
}

var demoCourses = []seedCourse{
	{
		slug:        "forex-foundations",
		title:       "Forex Foundations",
		description: "Currency pairs, pips, lots and how the market is quoted.",
		lessons: []seedLesson{
			{title: "How currency pairs work", videoURL: "https://vimeo.com/76979871", dripDays: 0},
			{title: "Pips, lots and leverage", videoURL: "https://vimeo.com/76979871", dripDays: 0},
			{title: "Reading a price chart", videoURL: "https://vimeo.com/76979871", dripDays: 3},
			{title: "Placing your first demo trade", videoURL: "https://vimeo.com/76979871", dripDays: 7},
		},
	},
	{
		slug:        "risk-management",
		title:       "Risk Management",
		description: "Position sizing, stop losses and protecting a trading account.",
		lessons: []seedLesson{
			{title: "The 1% rule", videoURL: "https://vimeo.com/76979871", dripDays: 0},
			{title: "Setting stop losses", videoURL: "https://vimeo.com/76979871", dripDays: 2},
			{title: "Risk to reward", videoURL: "https://vimeo.com/76979871", dripDays: 5},
		},
	},
	{
		slug:        "technical-analysis",
		title:       "Technical Analysis",
		description: "Support and resistance, trends and the indicators worth knowing.",
		lessons: []seedLesson{
			{title: "Support and resistance", videoURL: "https://vimeo.com/76979871", dripDays: 0},
			{title: "Trend lines and channels", videoURL: "https://vimeo.com/76979871", dripDays: 7},
			{title: "Moving averages", videoURL: "https://vimeo.com/76979871", dripDays: 14},
		},
	},
}

var demoPlans = []model.Plan{
	{
		Name:         "Monthly",
		Description:  "Full access, billed every month.",
		PriceCents:   4900,
		Currency:     "USD",
		IntervalDays: 30,
		PayPalPlanID: "P-DEMO-MONTHLY",
		Active:       true,
	},
	{
		Name:         "Yearly",
		Description:  "Full access, billed once a year.",
		PriceCents:   49000,
		Currency:     "USD",
		IntervalDays: 365,
		PayPalPlanID: "P-DEMO-YEARLY",
		Active:       true,
	},
}

// seed inserts the demo catalog. Courses are matched by slug and plans by name, so running it
// again changes nothing for courses and refreshes the plans.
func (cli *commandLine) seed(ctx context.Context) error {
	now := cli.clock().UTC()

	for i, sc := range demoCourses {
		if _, err := cli.courses.FindBySlug(ctx, sc.slug); err == nil {
			fmt.Fprintf(cli.out, "course %s exists, skipped\n", sc.slug)
			continue
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("find course %s: %w", sc.slug, err)
		}

		course, err := cli.courses.Create(ctx, &model.Course{
			ID:          uuid.NewString(),
			Slug:        sc.slug,
			Title:       sc.title,
			Description: sc.description,
			Published:   true,
			Position:    i + 1,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("create course %s: %w", sc.slug, err)
		}
		for j, sl := range sc.lessons {
			if _, err := cli.lessons.Create(ctx, &model.Lesson{
				ID:        uuid.NewString(),
				CourseID:  course.ID,
				Title:     sl.title,
				VideoURL:  sl.videoURL,
				Position:  j + 1,
				DripDays:  sl.dripDays,
				CreatedAt: now,
				UpdatedAt: now,
			}); err != nil {
				return fmt.Errorf("create lesson %q: %w", sl.title, err)
			}
		}
		fmt.Fprintf(cli.out, "course %s created with %d lessons\n", sc.slug, len(sc.lessons))
	}

	for _, p := range demoPlans {
		plan := p
		plan.ID = uuid.NewString()
		if _, err := cli.plans.Upsert(ctx, &plan); err != nil {
			return fmt.Errorf("upsert plan %s: %w", p.Name, err)
		}
		fmt.Fprintf(cli.out, "plan %s ready\n", p.Name)
	}
	return nil
}
