package history

import (
	"embed"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Driver names accepted in Config.Driver. They double as database/sql
// driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

type dialect struct {
	driver  string
	dollars bool
}

func dialectFor(driver string) (dialect, error) {
	switch strings.ToLower(driver) {
	case DriverSQLite, "":
		return dialect{driver: DriverSQLite}, nil
	case DriverPostgres, "postgresql":
		return dialect{driver: DriverPostgres, dollars: true}, nil
	case DriverMySQL:
		return dialect{driver: DriverMySQL}, nil
	default:
		return dialect{}, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// rebind rewrites "?" placeholders to "$n" for postgres.
func (d dialect) rebind(query string) string {
	if !d.dollars {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// statements returns the schema split into single statements, since the
// mysql driver rejects multi-statement Exec by default.
func (d dialect) statements() ([]string, error) {
	data, err := schemaFS.ReadFile("schema/" + d.driver + ".sql")
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	var out []string
	for _, stmt := range strings.Split(string(data), ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
