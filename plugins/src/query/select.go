/*
 * SQL WHERE clause to MongoDB filter converter
 */

package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/blastrain/vitess-sqlparser/sqlparser"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

/*
 * Convert a WHERE clause into the filter.
 * Empty clause matches all the documents
 */
func convert(where string) (bson.M, error) {
	if strings.TrimSpace(where) == "" {
		return bson.M{}, nil
	}

	ast, err := sqlparser.Parse("SELECT * FROM docs WHERE " + where)
	if err != nil {
		return nil, fmt.Errorf("Can't parse query: %s", err.Error())
	}

	sel, ok := ast.(*sqlparser.Select)
	if !ok || sel.Where == nil {
		return nil, fmt.Errorf("Invalid query: %s", where)
	}

	if len(sel.GroupBy) > 0 || sel.OrderBy != nil || sel.Limit != nil {
		return nil, fmt.Errorf("Only filtering conditions are allowed")
	}

	return handleWhere(sel.Where.Expr)
}

func handleWhere(expr sqlparser.Expr) (bson.M, error) {
	if expr == nil {
		return nil, fmt.Errorf("SQL expression cannot be nil")
	}

	switch expr := expr.(type) {
	case *sqlparser.ComparisonExpr:
		return handleComparison(expr)

	case *sqlparser.AndExpr:
		return handleLogical("$and", expr.Left, expr.Right)

	case *sqlparser.OrExpr:
		return handleLogical("$or", expr.Left, expr.Right)

	case *sqlparser.NotExpr:
		inner, err := handleWhere(expr.Expr)
		if err != nil {
			return nil, err
		}

		return bson.M{"$nor": bson.A{inner}}, nil

	case *sqlparser.ParenExpr:
		return handleWhere(expr.Expr)

	case *sqlparser.RangeCond:
		return handleBetween(expr)
	}

	return nil, fmt.Errorf("Unexpected SQL expression type received: %T", expr)
}

/*
 * Both sides of AND / OR
 */
func handleLogical(operator string, left, right sqlparser.Expr) (bson.M, error) {
	l, err := handleWhere(left)
	if err != nil {
		return nil, err
	}

	r, err := handleWhere(right)
	if err != nil {
		return nil, err
	}

	return bson.M{operator: bson.A{l, r}}, nil
}

func handleComparison(expr *sqlparser.ComparisonExpr) (bson.M, error) {
	field, err := column(expr.Left)
	if err != nil {
		return nil, err
	}

	// "field = exist" checks the field's presence
	if c, ok := expr.Right.(*sqlparser.ColName); ok && sqlparser.String(c) == "exist" {
		switch expr.Operator {
		case sqlparser.EqualStr:
			return bson.M{field: bson.M{"$exists": true}}, nil
		case sqlparser.NotEqualStr:
			return bson.M{field: bson.M{"$exists": false}}, nil
		}

		return nil, fmt.Errorf("'exist' can be used with '=' and '!=' only")
	}

	switch expr.Operator {
	case sqlparser.InStr, sqlparser.NotInStr:
		list, err := tuple(expr.Right)
		if err != nil {
			return nil, err
		}

		if expr.Operator == sqlparser.InStr {
			return bson.M{field: bson.M{"$in": list}}, nil
		}
		return bson.M{field: bson.M{"$nin": list}}, nil

	case sqlparser.LikeStr, sqlparser.NotLikeStr:
		v, err := value(expr.Right)
		if err != nil {
			return nil, err
		}

		pattern, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("LIKE expects a string, got: %v", v)
		}

		regex := primitive.Regex{Pattern: likeToRegex(pattern), Options: "i"}

		if expr.Operator == sqlparser.LikeStr {
			return bson.M{field: bson.M{"$regex": regex}}, nil
		}
		return bson.M{field: bson.M{"$not": bson.M{"$regex": regex}}}, nil
	}

	v, err := value(expr.Right)
	if err != nil {
		return nil, err
	}

	switch expr.Operator {
	case sqlparser.EqualStr:
		return bson.M{field: v}, nil
	case sqlparser.NotEqualStr, "<>":
		return bson.M{field: bson.M{"$ne": v}}, nil
	case sqlparser.GreaterThanStr:
		return bson.M{field: bson.M{"$gt": v}}, nil
	case sqlparser.LessThanStr:
		return bson.M{field: bson.M{"$lt": v}}, nil
	case sqlparser.GreaterEqualStr:
		return bson.M{field: bson.M{"$gte": v}}, nil
	case sqlparser.LessEqualStr:
		return bson.M{field: bson.M{"$lte": v}}, nil
	}

	return nil, fmt.Errorf("Unsupported operator: '%s'", expr.Operator)
}

/*
 * BETWEEN a AND b, both ends included
 */
func handleBetween(expr *sqlparser.RangeCond) (bson.M, error) {
	field, err := column(expr.Left)
	if err != nil {
		return nil, err
	}

	from, err := value(expr.From)
	if err != nil {
		return nil, fmt.Errorf("Invalid BETWEEN 'from' value: %s", err.Error())
	}

	to, err := value(expr.To)
	if err != nil {
		return nil, fmt.Errorf("Invalid BETWEEN 'to' value: %s", err.Error())
	}

	if expr.Operator == sqlparser.NotBetweenStr {
		return bson.M{"$or": bson.A{
			bson.M{field: bson.M{"$lt": from}},
			bson.M{field: bson.M{"$gt": to}},
		}}, nil
	}

	return bson.M{field: bson.M{"$gte": from, "$lte": to}}, nil
}

/*
 * Field name of the left side, dots address nested fields
 */
func column(expr sqlparser.Expr) (string, error) {
	c, ok := expr.(*sqlparser.ColName)
	if !ok {
		return "", fmt.Errorf("Invalid comparison expression, the left must be a column name")
	}

	return strings.Replace(sqlparser.String(c), "`", "", -1), nil
}

/*
 * Typed value of the right side
 */
func value(expr sqlparser.Expr) (interface{}, error) {
	switch expr := expr.(type) {
	case *sqlparser.SQLVal:
		switch expr.Type {
		case sqlparser.IntVal:
			return strconv.Atoi(string(expr.Val))

		case sqlparser.FloatVal:
			return strconv.ParseFloat(string(expr.Val), 64)

		case sqlparser.StrVal:
			return string(expr.Val), nil
		}

		return nil, fmt.Errorf("Unexpected value: %v (type %v)", string(expr.Val), expr.Type)

	case sqlparser.BoolVal:
		return bool(expr), nil

	case *sqlparser.ColName:
		return nil, fmt.Errorf("Column name on the right side of compare operator is not supported")
	}

	return nil, fmt.Errorf("Unexpected SQL expression right part's type: %T", expr)
}

/*
 * Values of "IN (...)"
 */
func tuple(expr sqlparser.Expr) (bson.A, error) {
	t, ok := expr.(sqlparser.ValTuple)
	if !ok {
		return nil, fmt.Errorf("Expected a list of values, got: %s", sqlparser.String(expr))
	}

	list := bson.A{}

	for _, e := range t {
		v, err := value(e)
		if err != nil {
			return nil, err
		}

		list = append(list, v)
	}

	return list, nil
}

/*
 * SQL LIKE pattern to an anchored regular expression
 */
func likeToRegex(pattern string) string {
	quoted := regexp.QuoteMeta(pattern)
	quoted = strings.Replace(quoted, "%", ".*", -1)
	quoted = strings.Replace(quoted, "_", ".", -1)

	return "^" + quoted + "$"
}
