package handlers

import (
	"net/url"
	"strings"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
)

const dateLayout = "2006-01-02"

// filterFromQuery reads region and product (repeatable) and from/to
// (YYYY-MM-DD) query parameters.
func filterFromQuery(q url.Values) (models.Filter, error) {
	return newFilter(q["region"], q["product"], q.Get("from"), q.Get("to"))
}

func newFilter(regions, products []string, from, to string) (models.Filter, error) {
	f := models.Filter{
		Regions:  nonEmpty(regions),
		Products: nonEmpty(products),
	}

	var err error
	if f.From, err = parseDay("from", from); err != nil {
		return models.Filter{}, err
	}
	if f.To, err = parseDay("to", to); err != nil {
		return models.Filter{}, err
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return models.Filter{}, errors.Validation("from must not be after to")
	}
	return f, nil
}

func parseDay(name, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return nil, errors.ValidationWrap(err, "invalid "+name+" date, expected YYYY-MM-DD")
	}
	return &t, nil
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
