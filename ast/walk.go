package ast

// Walk invokes visit on n and every child expression reachable from n,
// depth-first. It does not descend into subqueries (Subquery,
// InSubquery.Subquery, Exists.Subquery) - those have their own scope,
// per spec §4.2's expectNoAggregate note. Callers that do need to walk
// into a subquery's own tree call Walk again on its Columns/Where/etc.
// themselves.
func Walk(n Expr, visit func(Expr)) {
	if n == nil {
		return
	}
	visit(n)
	switch t := n.(type) {
	case *Literal, *Identifier:
		// leaves
	case *Unary:
		Walk(t.Arg, visit)
	case *Binary:
		Walk(t.L, visit)
		Walk(t.R, visit)
	case *Between:
		Walk(t.Expr, visit)
		Walk(t.Lo, visit)
		Walk(t.Hi, visit)
	case *NotBetween:
		Walk(t.Expr, visit)
		Walk(t.Lo, visit)
		Walk(t.Hi, visit)
	case *InList:
		Walk(t.Expr, visit)
		for _, v := range t.Values {
			Walk(v, visit)
		}
	case *NotInList:
		Walk(t.Expr, visit)
		for _, v := range t.Values {
			Walk(v, visit)
		}
	case *InSubquery:
		Walk(t.Expr, visit)
	case *NotInSubquery:
		Walk(t.Expr, visit)
	case *Exists, *NotExists:
		// subquery only; nothing else to walk
	case *Case:
		if t.CaseExpr != nil {
			Walk(t.CaseExpr, visit)
		}
		for _, w := range t.Whens {
			Walk(w.Condition, visit)
			Walk(w.Result, visit)
		}
		if t.Else != nil {
			Walk(t.Else, visit)
		}
	case *Cast:
		Walk(t.Expr, visit)
	case *Function:
		for _, a := range t.Args {
			Walk(a, visit)
		}
		if t.Filter != nil {
			Walk(t.Filter, visit)
		}
	case *Interval:
		Walk(t.Value, visit)
	case *Subquery:
		// own scope; not descended into
	}
}

// ContainsAggregate reports whether n (not descending into subqueries)
// contains an aggregate function call.
func ContainsAggregate(n Expr) bool {
	found := false
	Walk(n, func(e Expr) {
		if f, ok := e.(*Function); ok && IsAggregateFunctionName(f.Name) {
			found = true
		}
	})
	return found
}

// Identifiers collects the set of column names referenced by n (not
// descending into subqueries), used by the planner to compute scan hint
// columns (spec §4.3).
func Identifiers(n Expr) []string {
	var names []string
	seen := map[string]bool{}
	Walk(n, func(e Expr) {
		if id, ok := e.(*Identifier); ok && id.Name != "*" {
			if !seen[id.Name] {
				seen[id.Name] = true
				names = append(names, id.Name)
			}
		}
	})
	return names
}
