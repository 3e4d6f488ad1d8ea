package session

import (
	"bufio"
	"context"
	"embed"
	"io/fs"
	"sort"
	"strings"
	"time"
)

// Store persists sessions and their append-only history.
type Store interface {
	Migrate(ctx context.Context) error
	Get(ctx context.Context, id string) (*Session, error)
	RecordTurn(ctx context.Context, t TurnRecord) error
	RecordClick(ctx context.Context, c ProductClick) error
	MarkConverted(ctx context.Context, id string, at time.Time) error
	ListMessages(ctx context.Context, id string) ([]Message, error)
}

//go:embed migrations
var migrationFS embed.FS

// migrationStatements returns the statements of every migration for a dialect, in file order.
func migrationStatements(dialect string) ([]string, error) {
	dir := "migrations/" + dialect
	entries, err := fs.ReadDir(migrationFS, dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var stmts []string
	for _, name := range names {
		content, err := fs.ReadFile(migrationFS, dir+"/"+name)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, splitSQL(stripSQLComments(string(content)))...)
	}
	return stmts, nil
}

func stripSQLComments(input string) string {
	var b strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	return b.String()
}

func splitSQL(input string) []string {
	parts := strings.Split(input, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		stmt := strings.TrimSpace(p)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
