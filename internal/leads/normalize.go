package leads

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/microtix/lead-platform/internal/equipment"
)

// isoMillis matches JavaScript's Date.prototype.toISOString output.
const isoMillis = "2006-01-02T15:04:05.000Z"

var (
	reBadEmail     = regexp.MustCompile(`(?i)not\s*found|n/a|null|^"?=not`)
	reEmailPrefix  = regexp.MustCompile(`^"?=+`)
	reEmailSuffix  = regexp.MustCompile(`"$`)
	nameKeys       = []string{"name", "businessName", "company"}
	phoneKeys      = []string{"phone", "phoneNumber", "phone_number"}
	websiteKeys    = []string{"website", "url", "domain", "site"}
	ratingKeys     = []string{"rating", "googleRating"}
	addressKeys    = []string{"address", "fullAddress", "full_address", "formattedAddress"}
	categoryKeys   = []string{"category", "type", "businessType"}
	idKeys         = []string{"id", "leadId", "lead_id", "businessId", "placeId", "googleId"}
	leadShapeKeys  = []string{"name", "address", "city", "category"}
	emailKeys      = []string{"primaryEmail", "email"}
	equipmentField = "equipmentRecommendation"
)

// Normalize converts one raw backend record into a Lead. It never fails: every
// field falls back to the search context or a synthesized value. now is the
// batch generation time shared by all records of one response.
func Normalize(raw map[string]any, index int, sc SearchContext, now time.Time) Lead {
	if raw == nil {
		raw = map[string]any{}
	}

	name := firstString(raw, nameKeys...)
	if name == "" {
		name = fmt.Sprintf("%s Prospect #%d", sc.Industry, index+1)
	}

	category := firstString(raw, categoryKeys...)
	if category == "" {
		category = sc.Industry
	}
	city := firstString(raw, "city")
	if city == "" {
		city = sc.City
	}
	state := firstString(raw, "state")
	if state == "" {
		state = sc.State
	}

	createdAt := firstString(raw, "createdAt")
	if createdAt == "" {
		createdAt = now.UTC().Format(isoMillis)
	}

	return Lead{
		ID:                       leadID(raw, index, now),
		Name:                     name,
		Phone:                    optional(firstString(raw, phoneKeys...)),
		Email:                    sanitizeEmail(raw),
		Website:                  optional(firstString(raw, websiteKeys...)),
		Rating:                   optional(firstString(raw, ratingKeys...)),
		City:                     city,
		State:                    state,
		Address:                  firstString(raw, addressKeys...),
		Category:                 category,
		Stage:                    StageNew,
		CreatedAt:                createdAt,
		Source:                   SourceOutscraper,
		EquipmentRecommendations: equipment.Extract(recommendationText(raw), category),
	}
}

// leadID appends the positional index so ids stay unique inside one batch even
// when the backend repeats or omits them.
func leadID(raw map[string]any, index int, now time.Time) string {
	base := firstString(raw, idKeys...)
	if base == "" {
		base = strconv.FormatInt(now.UnixMilli(), 10)
	}
	return fmt.Sprintf("%s-%d", base, index)
}

func sanitizeEmail(raw map[string]any) *string {
	var value any
	for _, key := range emailKeys {
		if v, ok := raw[key]; ok && v != nil {
			value = v
			break
		}
	}
	email, _ := scalarString(value)
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || reBadEmail.MatchString(email) {
		return nil
	}
	email = reEmailPrefix.ReplaceAllString(email, "")
	email = reEmailSuffix.ReplaceAllString(email, "")
	return optional(email)
}

// recommendationText picks the free-form text the extractor runs over:
// equipmentRecommendation, then an AI message body, then an already
// extracted list.
func recommendationText(raw map[string]any) string {
	if v, ok := raw[equipmentField]; ok && v != nil {
		return textOf(v)
	}
	if msg, ok := raw["message"].(map[string]any); ok {
		if v, ok := msg["content"]; ok && v != nil {
			return textOf(v)
		}
	}
	if v, ok := raw["equipmentRecommendations"]; ok && v != nil {
		return textOf(v)
	}
	return ""
}

func textOf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}

// firstString returns the first non-empty scalar value under keys.
func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := scalarString(raw[key]); ok && s != "" {
			return s
		}
	}
	return ""
}

// scalarString stringifies JSON scalars the way JavaScript's String() does.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		s := t.String()
		if strings.ContainsAny(s, ".eE") {
			if f, err := t.Float64(); err == nil {
				return formatNumber(f), true
			}
		}
		return s, true
	case float64:
		return formatNumber(t), true
	case float32:
		return formatNumber(float64(t)), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if abs := math.Abs(f); abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		// Exponent form as JavaScript prints it: 1e+21, 1.5e-7.
		mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
