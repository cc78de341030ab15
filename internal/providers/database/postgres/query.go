// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tugascript/devlogs/dataforge/internal/engine"
)

const recordColumns string = `"id", "table_id", "owner_id", "payload", "deleted", "created_at", "updated_at"`

type queryArgs struct {
	values []interface{}
}

func (a *queryArgs) add(v interface{}) string {
	a.values = append(a.values, v)
	return `$` + strconv.Itoa(len(a.values))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func jsonArg(v engine.Value) (string, error) {
	raw, err := json.Marshal(v.Interface())
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func buildConditionSQL(args *queryArgs, c engine.Condition) (string, error) {
	key := args.add(c.Field.Key) + "::text"

	switch c.Operator {
	case engine.OperatorContains:
		needle, ok := c.Value.(engine.StringVal)
		if !ok {
			return "", fmt.Errorf("contains condition on non string value for field '%s'", c.Field.Key)
		}
		value := args.add("%" + likeEscaper.Replace(string(needle)) + "%")
		return fmt.Sprintf(
			`(jsonb_typeof("payload" -> %s) = 'string' AND "payload" ->> %s ILIKE %s)`,
			key, key, value,
		), nil
	case engine.OperatorEqual:
		raw, err := jsonArg(c.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`"payload" -> %s = %s::jsonb`, key, args.add(raw)), nil
	case engine.OperatorGreaterOrEqual, engine.OperatorLessOrEqual:
		op := ">="
		if c.Operator == engine.OperatorLessOrEqual {
			op = "<="
		}

		switch v := c.Value.(type) {
		case engine.NumberVal:
			raw, err := jsonArg(v)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf(
				`(jsonb_typeof("payload" -> %s) = 'number' AND "payload" -> %s %s %s::jsonb)`,
				key, key, op, args.add(raw),
			), nil
		case engine.DateVal:
			return fmt.Sprintf(
				`(jsonb_typeof("payload" -> %s) = 'string' AND ("payload" ->> %s) COLLATE "C" %s %s)`,
				key, key, op, args.add(v.String()),
			), nil
		default:
			return "", fmt.Errorf("range condition on unsupported value for field '%s'", c.Field.Key)
		}
	default:
		return "", fmt.Errorf("unsupported operator '%s'", c.Operator)
	}
}

func buildOrderSQL(args *queryArgs, fields []engine.Field, keys []engine.SortKey) string {
	parts := make([]string, 0, len(keys)+2)
	for _, k := range keys {
		f, ok := engine.FindField(fields, k.FieldKey)
		if !ok {
			continue
		}

		key := args.add(k.FieldKey) + "::text"
		expr := fmt.Sprintf(`"payload" -> %s`, key)
		if f.DataType == engine.DataTypeString || f.DataType == engine.DataTypeDate {
			expr = fmt.Sprintf(`("payload" ->> %s) COLLATE "C"`, key)
		}

		if k.Direction == engine.Descending {
			parts = append(parts, expr+" DESC NULLS LAST")
		} else {
			parts = append(parts, expr+" ASC NULLS FIRST")
		}
	}

	parts = append(parts, `"created_at" ASC`, `"id" ASC`)
	return " ORDER BY " + strings.Join(parts, ", ")
}

type listRecordsQuery struct {
	countSQL  string
	countArgs []interface{}
	selectSQL string
	args      []interface{}
}

// buildListRecordsQuery translates a filter, a sort and a window into a count
// query and a select query over the live records of a table.
func buildListRecordsQuery(
	tableID uuid.UUID,
	fields []engine.Field,
	filter engine.Filter,
	sort []engine.SortKey,
	window engine.Window,
) (listRecordsQuery, error) {
	args := &queryArgs{}
	where := []string{
		`"table_id" = ` + args.add(tableID),
		`"deleted" = false`,
	}
	for _, c := range filter.Conditions {
		sql, err := buildConditionSQL(args, c)
		if err != nil {
			return listRecordsQuery{}, err
		}
		where = append(where, sql)
	}

	whereSQL := " WHERE " + strings.Join(where, " AND ")
	countArgs := make([]interface{}, len(args.values))
	copy(countArgs, args.values)

	selectSQL := `SELECT ` + recordColumns + ` FROM "records"` + whereSQL + buildOrderSQL(args, fields, sort)
	if window.Bounded() {
		selectSQL += " LIMIT " + args.add(window.Size) + " OFFSET " + args.add(window.Skip)
	}

	return listRecordsQuery{
		countSQL:  `SELECT COUNT("id") FROM "records"` + whereSQL,
		countArgs: countArgs,
		selectSQL: selectSQL,
		args:      args.values,
	}, nil
}
