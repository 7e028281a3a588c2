package service

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"

	"github.com/octobees/rentroom/api/internal/apperror"
	"github.com/octobees/rentroom/api/internal/listquery"
	"github.com/octobees/rentroom/api/internal/repository"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

const defaultPhoneRegion = "US"

func label(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

// fieldChecker accumulates per-field messages for one payload.
type fieldChecker struct {
	errs apperror.FieldErrors
}

func newFieldChecker() *fieldChecker {
	return &fieldChecker{errs: apperror.FieldErrors{}}
}

func (c *fieldChecker) fail(field, format string, args ...any) {
	c.errs.Add(field, fmt.Sprintf(format, args...))
}

func (c *fieldChecker) err() error { return c.errs.Err() }

// required flags a missing value when the rule applies (create) and returns
// whether the value is present and should be checked further.
func (c *fieldChecker) required(field string, present, mandatory bool) bool {
	if !present {
		if mandatory {
			c.fail(field, "The %s field is required.", label(field))
		}
		return false
	}
	return true
}

// text checks a string that must not be blank once sent. mandatory makes it
// required even when absent.
func (c *fieldChecker) text(field string, value *string, mandatory bool, max int) (string, bool) {
	if !c.required(field, value != nil, mandatory) {
		return "", false
	}
	s := strings.TrimSpace(*value)
	if s == "" {
		c.fail(field, "The %s field is required.", label(field))
		return "", false
	}
	return c.maxLen(field, s, max)
}

// optionalText checks a nullable string; blank is allowed.
func (c *fieldChecker) optionalText(field string, value *string, max int) (string, bool) {
	if value == nil {
		return "", false
	}
	return c.maxLen(field, strings.TrimSpace(*value), max)
}

func (c *fieldChecker) maxLen(field, s string, max int) (string, bool) {
	if max > 0 && utf8.RuneCountInString(s) > max {
		c.fail(field, "The %s field must not be greater than %d characters.", label(field), max)
		return "", false
	}
	return s, true
}

func (c *fieldChecker) between(field string, value *float64, mandatory bool, lo, hi float64) (float64, bool) {
	if !c.required(field, value != nil, mandatory) {
		return 0, false
	}
	v := *value
	if math.IsNaN(v) || v < lo || v > hi {
		c.fail(field, "The %s field must be between %s and %s.", label(field), formatNumber(lo), formatNumber(hi))
		return 0, false
	}
	return v, true
}

func (c *fieldChecker) positiveID(field string, value *int64, mandatory bool) (int64, bool) {
	if !c.required(field, value != nil, mandatory) {
		return 0, false
	}
	if *value < 1 {
		c.fail(field, "The selected %s is invalid.", label(field))
		return 0, false
	}
	return *value, true
}

func (c *fieldChecker) oneOf(field string, value *int, mandatory bool, valid func(int) bool) (int, bool) {
	if !c.required(field, value != nil, mandatory) {
		return 0, false
	}
	if !valid(*value) {
		c.fail(field, "The selected %s is invalid.", label(field))
		return 0, false
	}
	return *value, true
}

func (c *fieldChecker) date(field string, value *string, mandatory bool) (time.Time, bool) {
	if !c.required(field, value != nil, mandatory) {
		return time.Time{}, false
	}
	t, err := time.Parse(listquery.DateLayout, strings.TrimSpace(*value))
	if err != nil {
		c.fail(field, "The %s field must match the format Y-m-d.", label(field))
		return time.Time{}, false
	}
	return t, true
}

// unique reports a taken value. Lookup failures are returned as-is.
func (c *fieldChecker) unique(ctx context.Context, lookup repository.Lookup, table, column, field string, value any, ignoreID int64) error {
	taken, err := lookup.Exists(ctx, table, column, value, ignoreID)
	if err != nil {
		return err
	}
	if taken {
		c.fail(field, "The %s has already been taken.", label(field))
	}
	return nil
}

// exists reports a dangling reference. Lookup failures are returned as-is.
func (c *fieldChecker) exists(ctx context.Context, lookup repository.Lookup, table, field string, id int64) error {
	missing, err := lookup.MissingIDs(ctx, table, []int64{id})
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		c.fail(field, "The selected %s is invalid.", label(field))
	}
	return nil
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// normalizeEmail lower-cases the address and converts its domain to ASCII.
// ok is false when the address is not usable.
func normalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	local, domain, found := strings.Cut(email, "@")
	if !found || local == "" || !isDomainValid(domain) {
		return "", false
	}
	asciiDomain, err := idnaProfile.ToASCII(domain)
	if err != nil || asciiDomain == "" {
		return "", false
	}
	email = local + "@" + asciiDomain
	if !emailPattern.MatchString(email) {
		return "", false
	}
	return email, true
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	for _, part := range strings.Split(domain, ".") {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}

// possiblePhone reports whether raw could be a phone number dialled from
// region, or an international number when it starts with '+'.
func possiblePhone(raw, region string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	if region == "" {
		region = defaultPhoneRegion
	}
	number, err := phonenumbers.Parse(raw, strings.ToUpper(region))
	if err != nil {
		return false
	}
	return phonenumbers.IsPossibleNumber(number)
}

// parseBulkIDs checks that ids is a non-empty list of distinct positive
// integers. Messages are keyed ids or ids.<index>.
func parseBulkIDs(raw []any) ([]int64, apperror.FieldErrors) {
	errs := apperror.FieldErrors{}
	if len(raw) == 0 {
		errs.Add("ids", "The ids field is required.")
		return nil, errs
	}

	ids := make([]int64, 0, len(raw))
	seen := make(map[int64]int, len(raw))
	for i, v := range raw {
		key := fmt.Sprintf("ids.%d", i)
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) || f > math.MaxInt64 {
			errs.Add(key, fmt.Sprintf("The ids.%d field must be an integer.", i))
			continue
		}
		id := int64(f)
		if id < 1 {
			errs.Add(key, fmt.Sprintf("The ids.%d field must be at least 1.", i))
			continue
		}
		if first, dup := seen[id]; dup {
			errs.Add(key, fmt.Sprintf("The ids.%d field has a duplicate value.", i))
			errs.Add(fmt.Sprintf("ids.%d", first), fmt.Sprintf("The ids.%d field has a duplicate value.", first))
			continue
		}
		seen[id] = i
		ids = append(ids, id)
	}
	return ids, errs
}

// checkBulkIDs runs parseBulkIDs and then flags ids that do not exist in table.
func checkBulkIDs(ctx context.Context, lookup repository.Lookup, table string, raw []any) ([]int64, error) {
	ids, errs := parseBulkIDs(raw)
	if len(errs) > 0 {
		return nil, errs
	}
	missing, err := lookup.MissingIDs(ctx, table, ids)
	if err != nil {
		return nil, apperror.Storage("lookup", err)
	}
	if len(missing) > 0 {
		missingSet := make(map[int64]struct{}, len(missing))
		for _, id := range missing {
			missingSet[id] = struct{}{}
		}
		for i, id := range ids {
			if _, gone := missingSet[id]; gone {
				errs.Add(fmt.Sprintf("ids.%d", i), fmt.Sprintf("The selected ids.%d is invalid.", i))
			}
		}
		return nil, errs
	}
	return ids, nil
}
