package domain

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// VerifyTemplates checks every lookup template with PostgreSQL's parser.
func VerifyTemplates() error {
	for _, q := range Lookups {
		if err := VerifyTemplate(q); err != nil {
			return err
		}
	}
	return nil
}

// VerifyTemplate parses q and rejects it unless it is a single SELECT that
// projects every column in RequiredColumns.
func VerifyTemplate(q Query) error {
	params := make(Params)
	for _, name := range Placeholders(q.Text) {
		params[name] = nil
	}
	sql, _, err := Bind(q.Text, params, Dollar)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTemplate, q.Name, err)
	}

	tree, err := pg_query.Parse(sql)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTemplate, q.Name, err)
	}
	if len(tree.Stmts) != 1 || tree.Stmts[0].Stmt == nil {
		return fmt.Errorf("%w: %s: expected exactly one statement", ErrTemplate, q.Name)
	}

	sel, ok := tree.Stmts[0].Stmt.Node.(*pg_query.Node_SelectStmt)
	if !ok {
		return fmt.Errorf("%w: %s: only SELECT statements are allowed", ErrTemplate, q.Name)
	}

	projected := make(map[string]bool)
	for _, name := range targetNames(sel.SelectStmt) {
		projected[strings.ToUpper(name)] = true
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !projected[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s: missing columns %s", ErrTemplate, q.Name, strings.Join(missing, ", "))
	}

	return nil
}

// targetNames returns the output column name of each select target: the
// alias when one is given, else the last field of a plain column reference.
func targetNames(stmt *pg_query.SelectStmt) []string {
	var names []string
	for _, target := range stmt.TargetList {
		rt, ok := target.Node.(*pg_query.Node_ResTarget)
		if !ok || rt.ResTarget == nil {
			continue
		}

		if rt.ResTarget.Name != "" {
			names = append(names, rt.ResTarget.Name)
			continue
		}

		val := rt.ResTarget.Val
		if val == nil {
			continue
		}
		cr, ok := val.Node.(*pg_query.Node_ColumnRef)
		if !ok || cr.ColumnRef == nil || len(cr.ColumnRef.Fields) == 0 {
			continue
		}

		// flights.ORIGIN_AIRPORT -> Fields = [String{flights}, String{origin_airport}]
		last := cr.ColumnRef.Fields[len(cr.ColumnRef.Fields)-1]
		if str, ok := last.Node.(*pg_query.Node_String_); ok && str.String_ != nil {
			names = append(names, str.String_.Sval)
		}
	}
	return names
}
