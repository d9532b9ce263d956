package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/database"
	auditrepo "github.com/mrlokans/catalog/internal/database/audit"
	"github.com/mrlokans/catalog/internal/database/authors"
	"github.com/mrlokans/catalog/internal/database/books"
	"github.com/mrlokans/catalog/internal/database/genres"
	"github.com/mrlokans/catalog/internal/entities"
	"github.com/mrlokans/catalog/internal/forms"
)

// SeedCommand fills the catalog with a small sample library.
type SeedCommand struct {
	DatabasePath string
	Reset        bool
}

// NewSeedCommand seeds databasePath unless -db overrides it.
func NewSeedCommand(databasePath string) *SeedCommand {
	return &SeedCommand{DatabasePath: databasePath}
}

func (cmd *SeedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cmd.DatabasePath, "Path to the catalog database file (default from DATABASE_PATH)")
	fs.BoolVar(&cmd.Reset, "reset", false, "Delete every catalog record before seeding")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Populate the catalog with sample genres, authors, books and copies.\n")
		fmt.Fprintf(os.Stderr, "Genres that already exist are reused, so seeding twice does not duplicate them.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

type seedAuthor struct {
	first, family string
	born, died    string
}

type seedBook struct {
	title, summary, isbn string
	author               int
	genre                int // -1 for none
	copies               []seedCopy
}

type seedCopy struct {
	imprint string
	status  entities.BookInstanceStatus
	dueBack string
}

var (
	sampleGenres = []string{"Fantasy", "Science Fiction", "French Poetry"}

	sampleAuthors = []seedAuthor{
		{"Patrick", "Rothfuss", "1973-06-06", ""},
		{"Ben", "Bova", "1932-11-08", "2020-11-29"},
		{"Isaac", "Asimov", "1920-01-02", "1992-04-06"},
		{"Bob", "Billings", "", ""},
		{"Jim", "Jones", "1971-12-16", ""},
	}

	sampleBooks = []seedBook{
		{
			title:   "The Name of the Wind (The Kingkiller Chronicle, #1)",
			summary: "I have stolen princesses back from sleeping barrow kings. I burned down the town of Trebon.",
			isbn:    "9781473211896", author: 0, genre: 0,
			copies: []seedCopy{
				{"London Gollancz, 2014.", entities.BookInstanceAvailable, ""},
				{"Gollancz, 2011.", entities.BookInstanceLoaned, "2026-11-01"},
			},
		},
		{
			title:   "The Wise Man's Fear (The Kingkiller Chronicle, #2)",
			summary: "Picking up the tale of Kvothe Kingkiller once again, we follow him into exile.",
			isbn:    "9788401352836", author: 0, genre: 0,
			copies: []seedCopy{
				{"Gollancz, 2011.", entities.BookInstanceMaintenance, ""},
			},
		},
		{
			title:   "Apes and Angels",
			summary: "Humankind headed out to the stars not for conquest, nor exploration, nor even for curiosity.",
			isbn:    "9780765379528", author: 1, genre: 1,
			copies: []seedCopy{
				{"New York Tom Doherty Associates, 2016.", entities.BookInstanceAvailable, ""},
				{"New York Tom Doherty Associates, 2016.", entities.BookInstanceReserved, "2026-10-30"},
			},
		},
		{
			title:   "Death Wave",
			summary: "In Ben Bova's previous novel New Earth, Jordan Kell led the first human mission beyond the solar system.",
			isbn:    "9780765379504", author: 1, genre: 1,
			copies: []seedCopy{
				{"New York, NY Tom Doherty Associates, LLC, 2015.", entities.BookInstanceMaintenance, ""},
			},
		},
		{
			title:   "Foundation",
			summary: "For twelve thousand years the Galactic Empire has ruled supreme. Now it is dying.",
			isbn:    "9780553293357", author: 2, genre: 1,
			copies: []seedCopy{
				{"Bantam Spectra, 1991.", entities.BookInstanceAvailable, ""},
			},
		},
		{
			title:   "Test Book 1",
			summary: "Summary of test book 1",
			isbn:    "ISBN111111", author: 4, genre: 2,
		},
		{
			title:   "Test Book 2",
			summary: "Summary of test book 2",
			isbn:    "ISBN222222", author: 4, genre: -1,
		},
	}
)

func (cmd *SeedCommand) Run() error {
	fmt.Println("Catalog Seed")
	fmt.Println("============")
	fmt.Printf("Database: %s\n", cmd.DatabasePath)

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	defer auditService.Wait()

	err = cmd.seed(context.Background(), db)
	auditService.LogSeed(fmt.Sprintf("Seeded %d genres, %d authors, %d books", len(sampleGenres), len(sampleAuthors), len(sampleBooks)), err)
	if err != nil {
		return err
	}

	fmt.Println("\nDone.")
	return nil
}

func (cmd *SeedCommand) seed(ctx context.Context, db *database.Database) error {
	if cmd.Reset {
		if err := db.Reset(); err != nil {
			return fmt.Errorf("failed to reset catalog: %w", err)
		}
		fmt.Println("Existing catalog records deleted")
	}

	genresRepo := genres.NewRepository(db.DB)
	authorsRepo := authors.NewRepository(db.DB)
	booksRepo := books.NewRepository(db.DB)

	genreIDs := make([]string, len(sampleGenres))
	for i, name := range sampleGenres {
		genre, created, err := genresRepo.CreateIfAbsent(ctx, forms.Escape(name))
		if err != nil {
			return fmt.Errorf("failed to create genre %q: %w", name, err)
		}
		genreIDs[i] = genre.ID
		if created {
			fmt.Printf("  Genre:  %s\n", name)
		}
	}

	authorIDs := make([]string, len(sampleAuthors))
	for i, a := range sampleAuthors {
		author := entities.Author{
			FirstName:   forms.Escape(a.first),
			FamilyName:  forms.Escape(a.family),
			DateOfBirth: mustDate(a.born),
			DateOfDeath: mustDate(a.died),
		}
		if err := authorsRepo.Create(ctx, &author); err != nil {
			return err
		}
		authorIDs[i] = author.ID
		fmt.Printf("  Author: %s, %s\n", a.family, a.first)
	}

	copies := 0
	for _, b := range sampleBooks {
		book := entities.Book{
			Title:    forms.Escape(b.title),
			Summary:  forms.Escape(b.summary),
			ISBN:     b.isbn,
			AuthorID: authorIDs[b.author],
		}
		if b.genre >= 0 {
			book.GenreID = &genreIDs[b.genre]
		}
		if err := booksRepo.Create(ctx, &book); err != nil {
			return err
		}
		fmt.Printf("  Book:   %s\n", b.title)

		for _, c := range b.copies {
			instance := entities.BookInstance{
				BookID:  book.ID,
				Imprint: forms.Escape(c.imprint),
				Status:  c.status,
			}
			if due := mustDate(c.dueBack); due != nil {
				instance.DueBack = *due
			}
			if err := booksRepo.CreateInstance(ctx, &instance); err != nil {
				return err
			}
			copies++
		}
	}

	log.Info().
		Int("authors", len(sampleAuthors)).
		Int("books", len(sampleBooks)).
		Int("copies", copies).
		Msg("Catalog seeded")
	return nil
}

// mustDate parses the fixed sample dates; "" means unknown.
func mustDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(entities.FormDateLayout, value)
	if err != nil {
		panic(fmt.Sprintf("invalid sample date %q: %v", value, err))
	}
	return &t
}
