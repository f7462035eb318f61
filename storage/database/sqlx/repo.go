package sqlxrepos

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/pownas/dancecourse/core"
)

// stringList is a list column stored as a JSON array.
type stringList []string

func (l stringList) Value() (driver.Value, error) {
	data, err := json.Marshal(core.NonNilStrings(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *stringList) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = stringList{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("stringList: cannot scan %T", src)
	}
	var items []string
	if len(data) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			return errors.Wrap(err, "stringList: decoding")
		}
	}
	*l = core.NonNilStrings(items)
	return nil
}

// trapNoRowsErr maps sql.ErrNoRows to notFound.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// checkAffected returns notFound when res did not touch any row.
func checkAffected(res sql.Result, notFound error, msg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern is a LIKE pattern matching s anywhere, s being lowered.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// ilike builds a case-insensitive "contains" condition on one of cols.
func ilike(cols ...string) string {
	conds := make([]string, 0, len(cols))
	for _, col := range cols {
		conds = append(conds, fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col))
	}
	return "(" + strings.Join(conds, " OR ") + ")"
}

// whereClause joins conds with AND.
func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func orderBy(ords ...core.DBOrdering) string {
	parts := make([]string, 0, len(ords))
	for _, o := range ords {
		parts = append(parts, o.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// isUniqueViolation reports whether err comes from a UNIQUE constraint.
func isUniqueViolation(err error) bool {
	switch e := errors.Cause(err).(type) {
	case sqlite3.Error:
		return e.ExtendedCode == sqlite3.ErrConstraintUnique
	case *pq.Error:
		return e.Code == "23505" // unique_violation
	}
	return false
}

// contains builds a case-sensitive "contains" condition on col.
func contains(driverName, col string) string {
	if driverName == "postgres" {
		return fmt.Sprintf("strpos(%s, ?) > 0", col)
	}
	return fmt.Sprintf("instr(%s, ?) > 0", col)
}

// ilikeJSONItem builds a case-insensitive "contains" condition on the items of the JSON array col.
func ilikeJSONItem(driverName, col string) string {
	if driverName == "postgres" {
		return fmt.Sprintf(`EXISTS (SELECT 1 FROM json_array_elements_text(%s::json) AS item(value) `+
			`WHERE LOWER(item.value) LIKE ? ESCAPE '\')`, col)
	}
	return fmt.Sprintf(`EXISTS (SELECT 1 FROM json_each(%s) WHERE LOWER(json_each.value) LIKE ? ESCAPE '\')`, col)
}
