package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/mcdev12/codeduel/go/internal/dbconfig"
	"github.com/mcdev12/codeduel/go/internal/questions"
)

const defaultQuestionsFile = "go/internal/assets/questions.json"

func main() {
	_ = godotenv.Load()

	path := defaultQuestionsFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	// 1) Load the JSON question pool
	qs, err := questions.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load questions: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	ctx := context.Background()
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Insert and count; questions without test cases are never servable
	var (
		total    = len(qs)
		inserted int
		skipped  int
		errs     int
	)

	for _, q := range qs {
		if q.TotalTests() == 0 {
			fmt.Fprintf(os.Stderr, "skipping %q: no test cases\n", q.Title)
			skipped++
			continue
		}

		testCases, err := json.Marshal(q.TestCases)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error encoding test cases of %q: %v\n", q.Title, err)
			errs++
			continue
		}

		cmdTag, err := pool.Exec(ctx, `
            INSERT INTO questions (title, description, test_cases, elo, type)
            VALUES ($1, $2, $3, $4, $5)
            ON CONFLICT (title) DO NOTHING
        `,
			q.Title, q.Description, string(testCases), q.Elo, string(q.Type),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting question %q: %v\n", q.Title, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	// 4) Print summary
	fmt.Printf(
		"Questions seed complete: %d total, %d inserted, %d skipped, %d errors\n",
		total, inserted, skipped, errs,
	)
}
