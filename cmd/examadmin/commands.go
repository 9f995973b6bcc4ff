package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"

	"examreg/internal/examinee/models"
	jwttoken "examreg/internal/jwt_token"
	lookup "examreg/internal/lookup/models"
	lookupservice "examreg/internal/lookup/service"
	lookupstore "examreg/internal/lookup/store"
	"examreg/internal/platform/config"
	"examreg/internal/platform/postgres"
	"examreg/internal/reconcile"
	id "examreg/pkg/domain"
)

func runSummary(ctx context.Context, client *adminClient, out io.Writer) error {
	s, err := client.Summary(ctx)
	if err != nil {
		return err
	}
	color.New(color.FgCyan).Fprintf(out, "\n=== Registration summary as of %s ===\n", s.AsOf)
	renderSummary(out, s)
	return nil
}

func runRecords(ctx context.Context, client *adminClient, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("records", flag.ContinueOnError)
	fs.SetOutput(out)
	examineeType := fs.String("type", "", "examinee type code or label")
	name := fs.String("name", "", "examinee name contains")
	church := fs.String("church", "", "church name contains")
	if err := fs.Parse(args); err != nil {
		return err
	}

	query := url.Values{}
	for field, v := range map[string]string{
		models.FieldExamineeType: *examineeType,
		models.FieldName:         *name,
		models.FieldChurchName:   *church,
	} {
		if v != "" {
			query.Set(field, v)
		}
	}
	rows, err := client.ListRecords(ctx, query)
	if err != nil {
		return err
	}
	catalog, err := localCatalog(ctx)
	if err != nil {
		return err
	}
	renderRecords(ctx, out, catalog, rows)
	color.New(color.FgYellow).Fprintf(out, "%d records\n", len(rows))
	return nil
}

func runImportExamNumbers(ctx context.Context, client *adminClient, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("import-exam-numbers takes one CSV file")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := readExamNumbers(f)
	if err != nil {
		return err
	}
	result, err := client.ApplyExamNumbers(ctx, rows)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(out, "updated %d of %d records\n", result.Updated, len(rows))
	if len(result.NotFound) > 0 {
		color.New(color.FgYellow).Fprintf(out, "no record for registration numbers %v\n", result.NotFound)
	}
	return nil
}

// runPatchRecords loads the admin grid, applies the CSV edits to the matching
// rows and saves only those rows. A rejected batch leaves nothing changed on
// the server and prints every row's outcome.
func runPatchRecords(ctx context.Context, client *adminClient, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("patch-records takes one CSV file")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	edits, err := readEdits(f)
	if err != nil {
		return err
	}
	rows, err := client.ListRecords(ctx, nil)
	if err != nil {
		return err
	}
	catalog, err := localCatalog(ctx)
	if err != nil {
		return err
	}

	grid := make([]reconcile.Row, 0, len(rows))
	dirty := reconcile.NewDirtySet()
	now := time.Now()
	for _, r := range rows {
		values, ok := edits[r.RegistrationNo]
		if ok {
			if err := r.Record.ApplyPatch(values, now); err != nil {
				return fmt.Errorf("registration %d: %w", r.RegistrationNo, err)
			}
			delete(edits, r.RegistrationNo)
		}
		row := reconcile.RecordRow{AdminRow: r}
		grid = append(grid, row)
		if ok {
			dirty.Mark(row.Key())
		}
	}
	for n := range edits {
		color.New(color.FgYellow).Fprintf(out, "no record for registration number %d\n", n)
	}
	if dirty.Len() == 0 {
		return errors.New("no matching records to update")
	}

	saver := reconcile.NewSaver(client.RecordsTransport(), catalog,
		reconcile.WithCodedFields(models.CodedFieldType),
		reconcile.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	sent, err := saver.Save(ctx, grid, dirty)
	var rejected *reconcile.RejectedError
	if errors.As(err, &rejected) {
		renderResults(out, rejected.Results)
		return fmt.Errorf("batch rolled back: %w", err)
	}
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(out, "saved %d records\n", sent)
	return nil
}

func runSeedLookups(ctx context.Context, out io.Writer) error {
	dsn := os.Getenv("EXAMREG_DATABASE_URL")
	if dsn == "" {
		return errors.New("EXAMREG_DATABASE_URL is required")
	}
	db, err := postgres.Open(ctx, config.DatabaseConfig{URL: dsn, MaxOpenConns: 2})
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	if err := lookupstore.SeedDefaults(ctx, lookupstore.NewPostgres(db)); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(out, "seeded %d lookup entries\n", len(lookupstore.DefaultEntries()))
	return nil
}

func runToken(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(out)
	account := fs.String("account", "", "account id (generated when empty)")
	email := fs.String("email", "", "account email")
	name := fs.String("name", "", "display name")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}

	accountID := id.NewAccountID()
	if *account != "" {
		parsed, err := id.ParseAccountID(*account)
		if err != nil {
			return fmt.Errorf("invalid -account: %w", err)
		}
		accountID = parsed
	}

	jwtCfg := config.JWTFromEnv()
	token, err := jwttoken.NewJWTService(jwtCfg.SigningKey, jwtCfg.Issuer, config.JWTAudience).
		GenerateAccessToken(accountID, *email, *name, *ttl)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "account %s\n%s\n", accountID, token)
	return nil
}

// localCatalog is the default lookup catalog, used to resolve labels for
// display and to turn labels typed in CSV files back into codes.
func localCatalog(ctx context.Context) (*lookupservice.Catalog, error) {
	store := lookupstore.NewInMemory()
	if err := lookupstore.SeedDefaults(ctx, store); err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(envOr("EXAMREG_TIMEZONE", "Asia/Seoul"))
	if err != nil {
		loc = time.UTC
	}
	return lookupservice.New(store, lookupservice.WithLocation(loc)), nil
}

func label(ctx context.Context, catalog *lookupservice.Catalog, typeID lookup.TypeID, code string) string {
	if code == "" {
		return ""
	}
	return catalog.ResolveLabel(ctx, typeID, code, catalog.Today(ctx))
}

func itoa(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
