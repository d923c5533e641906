package database

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stapelberg/postgrestest"
)

func TestBunPostgresJobHistory(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping ephemeral PostgreSQL test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	t.Log("Attempting to start postgrestest server...")
	pgt, err := postgrestest.Start(ctx)
	if err != nil {
		t.Skipf("PostgreSQL is not installed, skipping: %v", err)
	}
	defer pgt.Cleanup()

	dsn, err := pgt.CreateDatabase(ctx)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}

	db, err := NewRepository(pgdriverDSN(t, dsn), false)
	if err != nil {
		t.Fatalf("Failed to open job history: %v", err)
	}
	defer db.Close()

	if db.dbType != "postgres" {
		t.Fatalf("Expected postgres job history, got %s", db.dbType)
	}
	t.Log("Bun Postgres database setup successfully")
	runJobHistoryTests(t, db)
}

// pgdriverDSN rewrites a libpq style DSN (URL or key=value) into the
// postgres:// URL pgdriver understands. Unix socket directories become
// the socket file path.
func pgdriverDSN(t *testing.T, dsn string) string {
	t.Helper()
	params := map[string]string{}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			t.Fatalf("Unable to parse DSN %q: %v", dsn, err)
		}
		for key, values := range u.Query() {
			params[key] = values[0]
		}
		if u.Hostname() != "" {
			params["host"] = u.Hostname()
		}
		if u.Port() != "" {
			params["port"] = u.Port()
		}
		if u.User != nil {
			params["user"] = u.User.Username()
			if password, ok := u.User.Password(); ok {
				params["password"] = password
			}
		}
		if len(u.Path) > 1 {
			params["dbname"] = u.Path[1:]
		}
	} else {
		for _, field := range strings.Fields(dsn) {
			if key, value, ok := strings.Cut(field, "="); ok {
				params[key] = strings.Trim(value, "'")
			}
		}
	}

	port := params["port"]
	if port == "" {
		port = "5432"
	}
	user := params["user"]
	if user == "" {
		user = "postgres"
	}
	u := &url.URL{Scheme: "postgres", Path: "/" + params["dbname"]}
	if password := params["password"]; password != "" {
		u.User = url.UserPassword(user, password)
	} else {
		u.User = url.User(user)
	}

	query := url.Values{"sslmode": []string{"disable"}}
	host := params["host"]
	switch {
	case strings.HasPrefix(host, "/"):
		query.Set("host", filepath.Join(host, ".s.PGSQL."+port))
	case host != "":
		u.Host = host + ":" + port
	default:
		u.Host = "localhost:" + port
	}
	u.RawQuery = query.Encode()
	return u.String()
}

func TestPgdriverDSN(t *testing.T) {
	cases := map[string]string{
		"postgres://postgres@localhost:5433/jobs?sslmode=disable":  "postgres://postgres@localhost:5433/jobs?sslmode=disable",
		"host=/tmp/pg port=5432 user=postgres dbname=jobs":         "postgres://postgres@/jobs?host=%2Ftmp%2Fpg%2F.s.PGSQL.5432&sslmode=disable",
		"postgres:///jobs?host=/tmp/pg&user=alice&sslmode=disable": "postgres://alice@/jobs?host=%2Ftmp%2Fpg%2F.s.PGSQL.5432&sslmode=disable",
	}
	for input, want := range cases {
		if diff := cmp.Diff(want, pgdriverDSN(t, input)); diff != "" {
			t.Errorf("pgdriverDSN(%q) mismatch (-want +got):\n%s", input, diff)
		}
	}
}
