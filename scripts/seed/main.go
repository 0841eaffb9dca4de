package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/bimbel-adp-api/internal/models"
	"github.com/noah-isme/bimbel-adp-api/internal/repository"
)

type demoTeacher struct {
	name    string
	subject string
}

var demoTeachers = []demoTeacher{
	{"Budi Hartono", "Matematika"},
	{"Sari Wulandari", "Fisika"},
	{"Agus Prasetyo", "Kimia"},
	{"Dewi Lestari", "Bahasa Inggris"},
	{"Rina Kusuma", "Biologi"},
	{"Joko Santoso", "Ekonomi"},
}

var (
	levels      = []string{"Kelas 10", "Kelas 11", "Kelas 12", "Intensif UTBK"}
	rooms       = []string{"R-101", "R-102", "R-201", "R-202"}
	startTimes  = []string{"08:00", "10:00", "13:00", "15:30", "18:00"}
	blockLabels = []string{"Rapat kurikulum", "Les privat", "Konsultasi orang tua"}
)

type counts struct {
	teachers int
	batches  int
	rules    int
	blocks   int
	holidays int
}

func main() {
	var (
		dsn         string
		numTeachers int
		perTeacher  int
		wipe        bool
	)

	flag.StringVar(&dsn, "dsn", "postgres://localhost:5432/bimbel?sslmode=disable", "Postgres connection string")
	flag.IntVar(&numTeachers, "teachers", 4, "Number of demo teachers")
	flag.IntVar(&perTeacher, "batches", 3, "Batches per teacher")
	flag.BoolVar(&wipe, "wipe", false, "Truncate scheduling tables before seeding")
	flag.Parse()

	if numTeachers > len(demoTeachers) {
		numTeachers = len(demoTeachers)
	}
	if numTeachers < 1 || perTeacher < 1 {
		log.Fatalf("teachers and batches must be positive")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if wipe {
		if err := truncate(ctx, db); err != nil {
			log.Fatalf("failed to wipe tables: %v", err)
		}
		fmt.Println("Existing scheduling data removed")
	}

	seeded, err := seed(ctx, db, numTeachers, perTeacher)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}

	fmt.Printf("Seeded %d teachers, %d batches, %d rules, %d blocks, %d holidays\n",
		seeded.teachers, seeded.batches, seeded.rules, seeded.blocks, seeded.holidays)
}

func truncate(ctx context.Context, db *sqlx.DB) error {
	const query = `TRUNCATE TABLE schedule_overrides, sessions, schedule_rules, time_blocks, holidays, batches, teachers CASCADE`
	_, err := db.ExecContext(ctx, query)
	return err
}

func seed(ctx context.Context, db *sqlx.DB, numTeachers, perTeacher int) (counts, error) {
	var seeded counts

	teacherRepo := repository.NewTeacherRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	ruleRepo := repository.NewScheduleRuleRepository(db)
	blockRepo := repository.NewTimeBlockRepository(db)
	holidayRepo := repository.NewHolidayRepository(db)

	start := nextMonday(time.Now().UTC())
	end := start.AddDate(0, 3, 0)

	for i := 0; i < numTeachers; i++ {
		demo := demoTeachers[i]
		teacher := &models.Teacher{
			Email:    demoEmail(demo.name),
			FullName: demo.name,
			Subject:  &demoTeachers[i].subject,
			Active:   true,
		}
		if err := teacherRepo.Create(ctx, teacher); err != nil {
			return seeded, fmt.Errorf("teacher %s: %w", demo.name, err)
		}
		seeded.teachers++

		for j := 0; j < perTeacher; j++ {
			room := rooms[(i+j)%len(rooms)]
			capacity := 12 + 4*(j%3)
			batch := &models.Batch{
				Name:        fmt.Sprintf("%s %s %c", demo.subject, levels[j%len(levels)], 'A'+rune(i)),
				TeacherID:   teacher.ID,
				Room:        &room,
				DurationMin: 90,
				Capacity:    capacity,
				Enrolled:    capacity - 2 - j,
				StartDate:   start,
				EndDate:     &end,
			}
			if err := batchRepo.Create(ctx, batch); err != nil {
				return seeded, fmt.Errorf("batch %s: %w", batch.Name, err)
			}
			seeded.batches++

			// Two weekly meetings per batch, spread over the working week.
			for k := 0; k < 2; k++ {
				rule := &models.ScheduleRule{
					BatchID:     batch.ID,
					Weekday:     1 + (i+j+3*k)%5,
					StartTime:   startTimes[(i+j+k)%len(startTimes)],
					DurationMin: 90,
				}
				if err := ruleRepo.Create(ctx, rule); err != nil {
					return seeded, fmt.Errorf("rule for %s: %w", batch.Name, err)
				}
				seeded.rules++
			}
		}

		block := &models.TimeBlock{
			TeacherID:   teacher.ID,
			Date:        start.AddDate(0, 0, 2+i),
			StartTime:   "12:00",
			DurationMin: 60,
			Label:       blockLabels[i%len(blockLabels)],
		}
		if err := blockRepo.Create(ctx, block); err != nil {
			return seeded, fmt.Errorf("block for %s: %w", demo.name, err)
		}
		seeded.blocks++
	}

	holidays := []models.Holiday{
		{Date: start.AddDate(0, 0, 9), Name: "Simulasi Ujian Sekolah"},
		{Date: start.AddDate(0, 0, 23), Name: "Libur Yayasan"},
	}
	for i := range holidays {
		if err := holidayRepo.Create(ctx, &holidays[i]); err != nil {
			return seeded, fmt.Errorf("holiday %s: %w", holidays[i].Name, err)
		}
		seeded.holidays++
	}

	return seeded, nil
}

func demoEmail(fullName string) string {
	slug := strings.ToLower(strings.ReplaceAll(fullName, " ", "."))
	return slug + "@bimbel.example"
}

func nextMonday(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(time.Monday) - int(day.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return day.AddDate(0, 0, offset)
}
