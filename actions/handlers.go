package actions

import "fmt"

const defaultAmount = 1

func increment(p Params) ActionResult {
	count, ok := p.Int("count")
	if !ok {
		return MissingParameter("count")
	}
	amount := amountOf(p)
	n := count + amount
	return Succeed(map[string]any{"count": n}, fmt.Sprintf("Counter incremented by %d to %d", amount, n))
}

func decrement(p Params) ActionResult {
	count, ok := p.Int("count")
	if !ok {
		return MissingParameter("count")
	}
	amount := amountOf(p)
	n := count - amount
	return Succeed(map[string]any{"count": n}, fmt.Sprintf("Counter decremented by %d to %d", amount, n))
}

func reset(Params) ActionResult {
	return Succeed(map[string]any{"count": int64(0)}, "Counter reset to 0")
}

// toggle negates the named visibility flag.
func toggle(field, subject string) Handler {
	return func(p Params) ActionResult {
		v, ok := p.Bool(field)
		if !ok {
			return MissingParameter(field)
		}
		return Succeed(map[string]any{field: !v}, fmt.Sprintf("%s visibility toggled to %t", subject, !v))
	}
}

func amountOf(p Params) int64 {
	if a, ok := p.Int("amount"); ok {
		return a
	}
	return defaultAmount
}
