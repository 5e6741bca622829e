// Package filterexpr parses AIP-160 style list filters and order_by
// strings against a whitelisted schema. The result is a flat predicate
// list plus a validated ordering, which storage adapters translate into
// SQL. Only AND-conjunctions of simple comparisons are accepted.
package filterexpr

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Source supplies the raw filter and order_by inputs of a list request.
type Source interface {
	GetFilter() string
	GetOrderBy() string
}

// ValueKind is the literal type a filter field accepts.
type ValueKind string

const (
	KindString    ValueKind = "string"
	KindNumber    ValueKind = "number"
	KindTimestamp ValueKind = "timestamp"
)

// Op is a supported comparison operation.
type Op string

const (
	OpEQ  Op = "=="
	OpGTE Op = ">="
	OpLTE Op = "<="
	OpSW  Op = "startsWith"
	OpIN  Op = "in"
)

// FieldRule whitelists a filter field: its literal kind and the
// operations callers may apply to it.
type FieldRule struct {
	Kind ValueKind
	Ops  []Op
}

// Schema aggregates the filter and order rules for one resource.
type Schema struct {
	Fields map[string]FieldRule
	Order  OrderSchema
}

// Predicate is one parsed comparison. Value is string, float64,
// []string (for in-lists), or time.Time depending on the field kind.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// Query is the validated outcome of parsing a Source.
type Query struct {
	Predicates []Predicate
	Order      []OrderKey
}

// Parse validates src against schema and returns the resulting query.
// An empty filter yields no predicates; an empty order_by yields the
// schema's default ordering.
func Parse(src Source, schema Schema) (Query, error) {
	preds, err := parseFilter(src.GetFilter(), schema.Fields)
	if err != nil {
		return Query{}, fmt.Errorf("filter: %w", err)
	}
	order, err := parseOrderBy(src.GetOrderBy(), schema.Order)
	if err != nil {
		return Query{}, fmt.Errorf("order_by: %w", err)
	}
	return Query{Predicates: preds, Order: order}, nil
}

func parseFilter(filter string, fields map[string]FieldRule) ([]Predicate, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, nil
	}
	if len(fields) == 0 {
		return nil, errors.New("no filterable fields defined")
	}

	env, err := buildEnv(fields)
	if err != nil {
		return nil, err
	}

	ast, issues := env.Parse(filter)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid filter: %w", issues.Err())
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, fmt.Errorf("convert ast: %w", err)
	}

	conjuncts, err := splitConjuncts(parsed.GetExpr())
	if err != nil {
		return nil, err
	}

	preds := make([]Predicate, 0, len(conjuncts))
	for _, expr := range conjuncts {
		pred, err := parsePredicate(expr)
		if err != nil {
			return nil, err
		}

		rule, ok := fields[pred.Field]
		if !ok {
			return nil, fmt.Errorf("field %q is not filterable", pred.Field)
		}
		if !opAllowed(rule.Ops, pred.Op) {
			return nil, fmt.Errorf("operator %q is not allowed for field %q", string(pred.Op), pred.Field)
		}
		if err := checkLiteral(rule.Kind, pred.Op, pred.Value); err != nil {
			return nil, fmt.Errorf("field %q: %w", pred.Field, err)
		}
		preds = append(preds, pred)
	}
	return preds, nil
}

func opAllowed(ops []Op, op Op) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

func buildEnv(fields map[string]FieldRule) (*cel.Env, error) {
	opts := make([]cel.EnvOption, 0, len(fields)+1)
	for name, rule := range fields {
		celType, err := celTypeFor(rule.Kind)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		opts = append(opts, cel.Variable(name, celType))
	}
	opts = append(opts, cel.CrossTypeNumericComparisons(true))
	return cel.NewEnv(opts...)
}

func celTypeFor(kind ValueKind) (*cel.Type, error) {
	switch kind {
	case KindString:
		return cel.StringType, nil
	case KindNumber:
		return cel.DoubleType, nil
	case KindTimestamp:
		return cel.TimestampType, nil
	default:
		return nil, fmt.Errorf("unsupported field kind %s", kind)
	}
}

// splitConjuncts flattens nested AND chains into a predicate list. Any
// other logical operator is rejected.
func splitConjuncts(expr *exprpb.Expr) ([]*exprpb.Expr, error) {
	if expr == nil {
		return nil, errors.New("empty expression")
	}
	call := expr.GetCallExpr()
	if call == nil {
		return []*exprpb.Expr{expr}, nil
	}

	switch call.Function {
	case "_&&_":
		if len(call.Args) < 2 || call.Target != nil {
			return nil, errors.New("AND needs at least two operands")
		}
		var out []*exprpb.Expr
		for _, arg := range call.Args {
			sub, err := splitConjuncts(arg)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		return out, nil
	case "_||_", "_?_:_", "!_":
		return nil, fmt.Errorf("operator %q is not supported; only AND is allowed", call.Function)
	default:
		return []*exprpb.Expr{expr}, nil
	}
}

func parsePredicate(expr *exprpb.Expr) (Predicate, error) {
	call := expr.GetCallExpr()
	if call == nil {
		return Predicate{}, errors.New("expected a comparison")
	}

	switch call.Function {
	case "_==_":
		return parseComparison(call, OpEQ)
	case "_>=_":
		return parseComparison(call, OpGTE)
	case "_<=_":
		return parseComparison(call, OpLTE)
	case "_in_", "@in":
		return parseIn(call)
	case "startsWith":
		return parseStartsWith(call)
	default:
		return Predicate{}, fmt.Errorf("function %q is not supported", call.Function)
	}
}

func parseComparison(call *exprpb.Expr_Call, op Op) (Predicate, error) {
	if call.Target != nil || len(call.Args) != 2 {
		return Predicate{}, fmt.Errorf("operator %q expects two operands", string(op))
	}
	field, err := identName(call.Args[0])
	if err != nil {
		return Predicate{}, err
	}
	value, err := literalValue(call.Args[1])
	if err != nil {
		return Predicate{}, err
	}
	return Predicate{Field: field, Op: op, Value: value}, nil
}

func parseIn(call *exprpb.Expr_Call) (Predicate, error) {
	var fieldExpr, listExpr *exprpb.Expr
	if call.Target != nil {
		if len(call.Args) != 1 {
			return Predicate{}, errors.New("in with receiver takes one argument")
		}
		listExpr, fieldExpr = call.Target, call.Args[0]
	} else {
		if len(call.Args) != 2 {
			return Predicate{}, errors.New("in expects two operands")
		}
		fieldExpr, listExpr = call.Args[0], call.Args[1]
	}

	field, err := identName(fieldExpr)
	if err != nil {
		return Predicate{}, err
	}
	value, err := literalValue(listExpr)
	if err != nil {
		return Predicate{}, err
	}
	return Predicate{Field: field, Op: OpIN, Value: value}, nil
}

func parseStartsWith(call *exprpb.Expr_Call) (Predicate, error) {
	var fieldExpr, valueExpr *exprpb.Expr
	if call.Target != nil {
		if len(call.Args) != 1 {
			return Predicate{}, errors.New("startsWith with receiver takes one argument")
		}
		fieldExpr, valueExpr = call.Target, call.Args[0]
	} else {
		if len(call.Args) != 2 {
			return Predicate{}, errors.New("startsWith expects two arguments")
		}
		fieldExpr, valueExpr = call.Args[0], call.Args[1]
	}

	field, err := identName(fieldExpr)
	if err != nil {
		return Predicate{}, err
	}
	value, err := literalValue(valueExpr)
	if err != nil {
		return Predicate{}, err
	}
	str, ok := value.(string)
	if !ok {
		return Predicate{}, errors.New("startsWith requires a string literal")
	}
	return Predicate{Field: field, Op: OpSW, Value: str}, nil
}

func identName(expr *exprpb.Expr) (string, error) {
	ident := expr.GetIdentExpr()
	if ident == nil {
		return "", errors.New("left-hand side must be a field name")
	}
	return ident.GetName(), nil
}

func literalValue(expr *exprpb.Expr) (any, error) {
	if constant := expr.GetConstExpr(); constant != nil {
		switch constant.ConstantKind.(type) {
		case *exprpb.Constant_StringValue:
			return constant.GetStringValue(), nil
		case *exprpb.Constant_Int64Value:
			return float64(constant.GetInt64Value()), nil
		case *exprpb.Constant_Uint64Value:
			return float64(constant.GetUint64Value()), nil
		case *exprpb.Constant_DoubleValue:
			return constant.GetDoubleValue(), nil
		default:
			return nil, fmt.Errorf("literal type %T is not supported", constant.ConstantKind)
		}
	}

	if list := expr.GetListExpr(); list != nil {
		elems := list.GetElements()
		values := make([]string, len(elems))
		for i, elem := range elems {
			val, err := literalValue(elem)
			if err != nil {
				return nil, fmt.Errorf("list element %d: %w", i, err)
			}
			str, ok := val.(string)
			if !ok {
				return nil, errors.New("list elements must be strings")
			}
			values[i] = str
		}
		return values, nil
	}

	if call := expr.GetCallExpr(); call != nil && call.Function == "timestamp" {
		if call.Target != nil || len(call.Args) != 1 {
			return nil, errors.New("timestamp() takes a single string argument")
		}
		arg := call.Args[0].GetConstExpr()
		if arg == nil {
			return nil, errors.New("timestamp() argument must be a string literal")
		}
		str := arg.GetStringValue()
		if t, err := time.Parse(time.RFC3339Nano, str); err == nil {
			return t, nil
		}
		if t, err := time.Parse(time.RFC3339, str); err == nil {
			return t, nil
		}
		return nil, fmt.Errorf("timestamp %q is not RFC3339", str)
	}

	return nil, errors.New("right-hand side must be a literal, list, or timestamp()")
}

func checkLiteral(kind ValueKind, op Op, value any) error {
	if op == OpIN {
		list, ok := value.([]string)
		if !ok || kind != KindString {
			return errors.New("in expects a list of string literals")
		}
		if len(list) == 0 {
			return errors.New("in list must not be empty")
		}
		for _, item := range list {
			if item == "" {
				return errors.New("in list must not contain empty strings")
			}
		}
		return nil
	}

	switch kind {
	case KindString:
		if _, ok := value.(string); !ok {
			return errors.New("expected string literal")
		}
	case KindNumber:
		if _, ok := value.(float64); !ok {
			return errors.New("expected numeric literal")
		}
	case KindTimestamp:
		if _, ok := value.(time.Time); !ok {
			return errors.New("expected timestamp literal")
		}
	default:
		return fmt.Errorf("unsupported field kind %s", kind)
	}
	return nil
}
