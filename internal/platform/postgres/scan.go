package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/teamai/teamai-api/internal/store"
)

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// escapeLike escapes the LIKE wildcards in a user-supplied fragment.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// loadSkills reads ordered skill names for every owner id from table, which
// must have (owner column, position, name).
func loadSkills(ctx context.Context, db store.DBTX, table, ownerColumn string, ids []uuid.UUID) (map[uuid.UUID][]string, error) {
	skills := make(map[uuid.UUID][]string, len(ids))
	if len(ids) == 0 {
		return skills, nil
	}

	query := "SELECT " + ownerColumn + ", name FROM " + table +
		" WHERE " + ownerColumn + " = ANY($1::uuid[]) ORDER BY " + ownerColumn + ", position"
	rows, err := db.QueryContext(ctx, query, idStrings(ids))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var owner uuid.UUID
		var name string
		if err := rows.Scan(&owner, &name); err != nil {
			return nil, err
		}
		skills[owner] = append(skills[owner], name)
	}
	return skills, rows.Err()
}

// saveSkills writes names for owner in order.
func saveSkills(ctx context.Context, db store.DBTX, table, ownerColumn string, owner uuid.UUID, names []string) error {
	query := "INSERT INTO " + table + " (" + ownerColumn + ", position, name) VALUES ($1, $2, $3)"
	for i, name := range names {
		if _, err := db.ExecContext(ctx, query, owner, i, name); err != nil {
			return err
		}
	}
	return nil
}
