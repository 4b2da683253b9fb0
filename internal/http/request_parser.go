package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"reikningar/internal/core"
	"reikningar/internal/services"
)

// billQueryFromRequest reads creditor, recurring, sort and order from the
// query string.
func billQueryFromRequest(r *http.Request) (services.BillQuery, error) {
	q := r.URL.Query()
	query := services.BillQuery{
		Creditor: sanitizeInput(q.Get("creditor")),
		SortBy:   strings.ToLower(sanitizeInput(q.Get("sort"))),
	}

	if raw := q.Get("recurring"); raw != "" {
		v, err := parseBool(raw)
		if err != nil {
			return services.BillQuery{}, err
		}
		query.Recurring = &v
	}

	switch order := strings.ToLower(q.Get("order")); order {
	case "", "asc":
	case "desc":
		query.Desc = true
	default:
		return services.BillQuery{}, fmt.Errorf("%w: order must be asc or desc, got %q", core.ErrMalformedInput, order)
	}
	return query, nil
}

// parseBool accepts the strconv forms plus yes/no.
func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("%w: invalid boolean %q", core.ErrMalformedInput, raw)
	}
	return v, nil
}

// limitParam parses an optional positive limit; zero means unlimited.
func limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid limit %q", core.ErrMalformedInput, raw)
	}
	return n, nil
}
